package dialect

import (
	"context"
	"log/slog"
	"time"
)

// Dialect names for external usage.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier is the capability shared by connections and transactions.
// Statements are rendered by the caller; implementations only send them.
type ExecQuerier interface {
	// Dialect returns the dialect used to render statements for this backend.
	Dialect() string
	// Execute sends one write statement.
	Execute(ctx context.Context, stmt Statement) (ExecResult, error)
	// ExecuteReturning sends one write statement carrying a RETURNING
	// clause and returns the rows it produced.
	ExecuteReturning(ctx context.Context, stmt Statement) ([]*Row, error)
	// SupportsReturning reports whether write statements may carry a
	// RETURNING clause on this backend.
	SupportsReturning() bool
	// QueryOne returns the first row of a read statement, or nil when the
	// statement produced no rows.
	QueryOne(ctx context.Context, stmt Statement) (*Row, error)
	// QueryAll returns every row of a read statement.
	QueryAll(ctx context.Context, stmt Statement) ([]*Row, error)
	// Stream returns a forward-only cursor over the rows of a read statement.
	// The cursor holds a connection until it is closed.
	Stream(ctx context.Context, stmt Statement) (Rows, error)
}

// Conn is a pooled backend connection handle.
type Conn interface {
	ExecQuerier
	// Begin borrows one connection from the pool for the whole transaction.
	Begin(ctx context.Context) (Tx, error)
	// Close closes the pool.
	Close() error
}

// Tx is a transaction scoped to a single borrowed connection.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Rows is a lazy, forward-only and non-restartable row cursor.
type Rows interface {
	// Next advances the cursor. It returns false when the rows are
	// exhausted or an error occurred.
	Next() bool
	// Row decodes the current row.
	Row() (*Row, error)
	// Err returns the error, if any, that was encountered during iteration.
	Err() error
	// Close releases the connection held by the cursor.
	Close() error
}

// Connector establishes connections for the URIs it accepts.
type Connector interface {
	// Accepts reports whether the connector handles the given URI.
	Accepts(uri string) bool
	// Connect opens a connection pool for the given options.
	Connect(ctx context.Context, opts ConnectOptions) (Conn, error)
}

// ConnectOptions holds the options used to establish a connection pool.
type ConnectOptions struct {
	// URL is the connection URI, e.g. "mysql://root@localhost/bakery",
	// "postgres://localhost/bakery" or "sqlite::memory:".
	URL string `yaml:"url"`
	// MaxOpenConns limits the number of open connections. Zero means
	// the backend default (SQLite connections default to one).
	MaxOpenConns int `yaml:"max_open_conns"`
	// MaxIdleConns limits the number of idle connections.
	MaxIdleConns int `yaml:"max_idle_conns"`
	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	// Logger receives every statement at debug level. Nil disables
	// statement logging.
	Logger *slog.Logger `yaml:"-"`
}
