package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// escapeStringValue escapes a string value for safe use in SQL.
// It escapes both single quotes (by doubling) and backslashes (for MySQL compatibility).
func escapeStringValue(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// Driver is a dialect.Conn implementation backed by a database/sql pool.
type Driver struct {
	Conn
}

// Open wraps the database/sql.Open method and returns a Driver for the
// given dialect. driverName is the registered database/sql driver.
func Open(dialectName, driverName, source string) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(dialectName, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(dialectName string, db *sql.DB, opts ...DriverOption) *Driver {
	d := &Driver{Conn: Conn{ExecQuerier: db, dialect: dialectName}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithLogger logs every statement sent by the driver, and by the
// transactions it starts, at debug level.
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.log = l
	}
}

// WithReturning overrides whether the driver accepts RETURNING clauses.
// Postgres always does and MySQL never does. SQLite connections opened by
// SQLiteConnector are checked against the linked library version; other
// SQLite drivers default to false.
func WithReturning(ok bool) DriverOption {
	return func(d *Driver) {
		d.returning = &ok
	}
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Begin starts a transaction. The transaction holds one pooled connection
// until it is committed or rolled back.
func (d *Driver) Begin(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, strata.NewConnectionError("", fmt.Errorf("dialect/sql: begin: %w", err))
	}
	d.debug(ctx, "begin transaction")
	c := d.Conn
	c.ExecQuerier = tx
	return &Tx{Conn: c, tx: tx}, nil
}

// Close closes the underlying pool.
func (d *Driver) Close() error { return d.DB().Close() }

// Tx implements the dialect.Tx interface.
type Tx struct {
	Conn
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	t.debug(context.Background(), "commit transaction")
	return t.tx.Commit()
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error {
	t.debug(context.Background(), "rollback transaction")
	return t.tx.Rollback()
}

// ctyVarsKey is the key used for attaching and reading the context variables.
type ctxVarsKey struct{}

// sessionVars holds sessions/transactions variables to set before every statement.
type sessionVars struct {
	vars []struct{ k, v string }
}

// WithVar returns a new context that holds the session variable to be executed before every query.
func WithVar(ctx context.Context, name, value string) context.Context {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	sv.vars = append(sv.vars[:len(sv.vars):len(sv.vars)], struct {
		k, v string
	}{
		k: name,
		v: value,
	})
	return context.WithValue(ctx, ctxVarsKey{}, sv)
}

// VarFromContext returns the session variable value from the context.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	for _, s := range sv.vars {
		if s.k == name {
			return s.v, true
		}
	}
	return "", false
}

// WithIntVar calls WithVar with the string representation of the value.
func WithIntVar(ctx context.Context, name string, value int) context.Context {
	return WithVar(ctx, name, strconv.Itoa(value))
}

// ExecQuerier wraps the standard Exec and Query methods of *sql.DB,
// *sql.Conn and *sql.Tx.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn implements dialect.ExecQuerier given ExecQuerier.
type Conn struct {
	ExecQuerier
	dialect   string
	log       *slog.Logger
	returning *bool
}

// Dialect implements the dialect.ExecQuerier interface.
func (c Conn) Dialect() string {
	// The registered driver name may carry a suffix, e.g. "sqlite3".
	for _, name := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres} {
		if strings.HasPrefix(c.dialect, name) {
			return name
		}
	}
	return c.dialect
}

// Execute implements the dialect.ExecQuerier interface.
func (c Conn) Execute(ctx context.Context, stmt dialect.Statement) (_ dialect.ExecResult, rerr error) {
	c.debug(ctx, "exec", slog.String("sql", stmt.SQL), slog.Any("args", stmt.Args))
	ex, cf, err := c.maySetVars(ctx)
	if err != nil {
		return dialect.ExecResult{}, strata.NewExecError(stmt.SQL, fmt.Errorf("dialect/sql: exec: set session vars: %w", err))
	}
	if cf != nil {
		defer func() { rerr = errors.Join(rerr, cf()) }()
	}
	res, err := ex.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return dialect.ExecResult{}, strata.NewExecError(stmt.SQL, err)
	}
	var r dialect.ExecResult
	if r.RowsAffected, err = res.RowsAffected(); err != nil {
		return r, strata.NewExecError(stmt.SQL, fmt.Errorf("dialect/sql: rows affected: %w", err))
	}
	// Postgres does not support LastInsertId.
	if c.Dialect() != dialect.Postgres {
		if id, err := res.LastInsertId(); err == nil {
			r.LastInsertID = id
		}
	}
	return r, nil
}

// ExecuteReturning implements the dialect.ExecQuerier interface. Failures
// are reported as *strata.ExecError.
func (c Conn) ExecuteReturning(ctx context.Context, stmt dialect.Statement) ([]*dialect.Row, error) {
	if !c.SupportsReturning() {
		return nil, strata.NewExecError(stmt.SQL, fmt.Errorf("%w: %s", strata.ErrReturningUnsupported, c.Dialect()))
	}
	rows, err := c.QueryAll(ctx, stmt)
	var qe *strata.QueryError
	if errors.As(err, &qe) {
		return nil, strata.NewExecError(stmt.SQL, qe.Err)
	}
	return rows, err
}

// SupportsReturning implements the dialect.ExecQuerier interface.
func (c Conn) SupportsReturning() bool {
	if c.returning != nil {
		return *c.returning
	}
	return c.Dialect() == dialect.Postgres
}

// QueryOne implements the dialect.ExecQuerier interface.
func (c Conn) QueryOne(ctx context.Context, stmt dialect.Statement) (*dialect.Row, error) {
	rows, err := c.Stream(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, strata.NewQueryError(stmt.SQL, err)
		}
		return nil, nil
	}
	row, err := rows.Row()
	if err != nil {
		return nil, strata.NewQueryError(stmt.SQL, err)
	}
	return row, nil
}

// QueryAll implements the dialect.ExecQuerier interface.
func (c Conn) QueryAll(ctx context.Context, stmt dialect.Statement) (_ []*dialect.Row, rerr error) {
	rows, err := c.Stream(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil && rerr == nil {
			rerr = strata.NewQueryError(stmt.SQL, err)
		}
	}()
	var all []*dialect.Row
	for rows.Next() {
		row, err := rows.Row()
		if err != nil {
			return nil, strata.NewQueryError(stmt.SQL, err)
		}
		all = append(all, row)
	}
	if err := rows.Err(); err != nil {
		return nil, strata.NewQueryError(stmt.SQL, err)
	}
	return all, nil
}

// Stream implements the dialect.ExecQuerier interface. The returned cursor
// must be closed to release the connection.
func (c Conn) Stream(ctx context.Context, stmt dialect.Statement) (dialect.Rows, error) {
	c.debug(ctx, "query", slog.String("sql", stmt.SQL), slog.Any("args", stmt.Args))
	ex, cf, err := c.maySetVars(ctx)
	if err != nil {
		return nil, strata.NewQueryError(stmt.SQL, fmt.Errorf("dialect/sql: query: set session vars: %w", err))
	}
	rows, err := ex.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		if cf != nil {
			err = errors.Join(err, cf())
		}
		return nil, strata.NewQueryError(stmt.SQL, err)
	}
	r := &Rows{ColumnScanner: rows}
	if cf != nil {
		r.ColumnScanner = rowsWithCloser{rows, cf}
	}
	return r, nil
}

func (c Conn) debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	if c.log != nil {
		c.log.LogAttrs(ctx, slog.LevelDebug, msg, append(attrs, slog.String("dialect", c.Dialect()))...)
	}
}

// maySetVars sets the session variables before executing a query.
func (c Conn) maySetVars(ctx context.Context) (ExecQuerier, func() error, error) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	if len(sv.vars) == 0 {
		return c.ExecQuerier, nil, nil
	}
	var (
		ex    ExecQuerier  // Underlying ExecQuerier.
		cf    func() error // Close function.
		reset []string     // Reset variables.
		seen  = make(map[string]struct{}, len(sv.vars))
	)
	switch e := c.ExecQuerier.(type) {
	case *sql.Tx:
		ex = e
	case *sql.DB:
		conn, err := e.Conn(ctx)
		if err != nil {
			return nil, nil, err
		}
		ex, cf = conn, conn.Close
	default:
		return nil, nil, fmt.Errorf("unsupported ExecQuerier type: %T", c.ExecQuerier)
	}
	for _, s := range sv.vars {
		if !isValidIdentifier(s.k) {
			if cf != nil {
				_ = cf()
			}
			return nil, nil, fmt.Errorf("invalid session variable name: %q", s.k)
		}
		if _, ok := seen[s.k]; !ok {
			switch c.Dialect() {
			case dialect.Postgres:
				reset = append(reset, fmt.Sprintf("RESET %s", s.k))
			case dialect.MySQL:
				reset = append(reset, fmt.Sprintf("SET %s = NULL", s.k))
			}
			seen[s.k] = struct{}{}
		}
		if _, err := ex.ExecContext(ctx, fmt.Sprintf("SET %s = '%s'", s.k, escapeStringValue(s.v))); err != nil {
			if cf != nil {
				err = errors.Join(err, cf())
			}
			return nil, nil, err
		}
	}
	// Variables are reset before the connection is returned to the pool,
	// even if the original context was canceled.
	if cls := cf; cf != nil && len(reset) > 0 {
		cf = func() error {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, q := range reset {
				if _, err := ex.ExecContext(cleanupCtx, q); err != nil {
					return errors.Join(err, cls())
				}
			}
			return cls()
		}
	}
	return ex, cf, nil
}

var (
	_ dialect.Conn = (*Driver)(nil)
	_ dialect.Tx   = (*Tx)(nil)
	_ dialect.Rows = (*Rows)(nil)
)

// TxOptions holds the transaction options to be used in DB.BeginTx.
type TxOptions = sql.TxOptions

// Rows implements dialect.Rows on top of the standard sql.Rows.
type Rows struct {
	ColumnScanner
	columns []string
	closed  bool
}

// Close closes the rows and releases the connection they hold. Calling
// Close more than once is a no-op.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.ColumnScanner.Close()
}

// Row decodes the current row into a name-indexed dialect.Row. Values are
// kept in their driver-native representation.
func (r *Rows) Row() (*dialect.Row, error) {
	if r.columns == nil {
		columns, err := r.Columns()
		if err != nil {
			return nil, err
		}
		r.columns = columns
	}
	values := make([]any, len(r.columns))
	dest := make([]any, len(r.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	for i, v := range values {
		// Drivers may reuse byte slices between rows.
		if b, ok := v.([]byte); ok {
			values[i] = append([]byte(nil), b...)
		}
	}
	return dialect.NewRow(r.columns, values), nil
}

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// rowsWithCloser wraps the ColumnScanner interface with a custom Close hook.
type rowsWithCloser struct {
	ColumnScanner
	closer func() error
}

// Close closes the underlying ColumnScanner and calls the custom closer.
func (r rowsWithCloser) Close() error {
	err := r.ColumnScanner.Close()
	return errors.Join(err, r.closer())
}
