package sql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/strata/dialect"
)

// Builder is the base rendering context shared by all statements. It writes
// the SQL text, quotes identifiers according to the dialect and collects the
// positional arguments.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
	errs    []error
}

// Dialect returns a new Builder for the given dialect.
func Dialect(name string) *Builder {
	return &Builder{dialect: name}
}

// DialectName returns the dialect of the builder.
func (b *Builder) DialectName() string {
	return b.dialect
}

// WriteString writes raw SQL text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte writes a single raw byte.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad writes a single space.
func (b *Builder) Pad() *Builder {
	return b.WriteByte(' ')
}

// Ident writes a quoted identifier.
func (b *Builder) Ident(s string) *Builder {
	q := b.quoteChar()
	b.sb.WriteByte(q)
	b.sb.WriteString(strings.ReplaceAll(s, string(q), string([]byte{q, q})))
	b.sb.WriteByte(q)
	return b
}

// QualifiedIdent writes a table-qualified identifier. An empty table writes
// the bare column.
func (b *Builder) QualifiedIdent(table, column string) *Builder {
	if table != "" {
		b.Ident(table).WriteByte('.')
	}
	return b.Ident(column)
}

// Arg writes a placeholder and appends the value to the argument list.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(len(b.args)))
	} else {
		b.sb.WriteByte('?')
	}
	return b
}

// Join writes the given expressions separated by sep.
func (b *Builder) Join(sep string, exprs ...Expr) *Builder {
	for i, e := range exprs {
		if i > 0 {
			b.sb.WriteString(sep)
		}
		e.WriteSQL(b)
	}
	return b
}

// AddError appends an error to the builder. Errors are reported by Statement.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns the errors added to the builder, joined.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// String returns the SQL text written so far.
func (b *Builder) String() string {
	return b.sb.String()
}

// Statement returns the rendered statement, or the first errors that were
// recorded while rendering.
func (b *Builder) Statement() (dialect.Statement, error) {
	if err := b.Err(); err != nil {
		return dialect.Statement{}, err
	}
	return dialect.Statement{Dialect: b.dialect, SQL: b.sb.String(), Args: b.args}, nil
}

func (b *Builder) quoteChar() byte {
	if b.dialect == dialect.MySQL {
		return '`'
	}
	return '"'
}

// JoinKind selects the kind of a join clause.
type JoinKind int

// Join kinds.
const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
)

// String returns the SQL keyword of the join kind.
func (k JoinKind) String() string {
	switch k {
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	default:
		return "INNER JOIN"
	}
}

type (
	selection struct {
		expr  Expr
		alias string
	}
	join struct {
		kind  JoinKind
		table string
		on    Expr
	}
	order struct {
		expr Expr
		desc bool
	}
)

// SelectStmt is the AST of a SELECT statement. Every method appends to the
// statement and preserves call order.
type SelectStmt struct {
	distinct bool
	columns  []selection
	from     string
	joins    []join
	where    []Expr
	group    []Expr
	having   []Expr
	order    []order
	limit    *int
	offset   *int
	errs     []error
}

// Select returns a new SELECT statement projecting the given expressions.
func Select(exprs ...Expr) *SelectStmt {
	s := &SelectStmt{}
	for _, e := range exprs {
		s.columns = append(s.columns, selection{expr: e})
	}
	return s
}

// From sets the table of the FROM clause.
func (s *SelectStmt) From(table string) *SelectStmt {
	s.from = table
	return s
}

// Table returns the table of the FROM clause.
func (s *SelectStmt) Table() string {
	return s.from
}

// Distinct adds the DISTINCT keyword.
func (s *SelectStmt) Distinct() *SelectStmt {
	s.distinct = true
	return s
}

// AppendSelect appends expressions to the projection list.
func (s *SelectStmt) AppendSelect(exprs ...Expr) *SelectStmt {
	for _, e := range exprs {
		s.columns = append(s.columns, selection{expr: e})
	}
	return s
}

// AppendSelectAs appends an expression with an output alias.
func (s *SelectStmt) AppendSelectAs(e Expr, alias string) *SelectStmt {
	s.columns = append(s.columns, selection{expr: e, alias: alias})
	return s
}

// ClearSelect removes every projected expression.
func (s *SelectStmt) ClearSelect() *SelectStmt {
	s.columns = nil
	return s
}

// SelectedColumns returns the number of projected expressions.
func (s *SelectStmt) SelectedColumns() int {
	return len(s.columns)
}

// Join appends a join clause.
func (s *SelectStmt) Join(kind JoinKind, table string, on Expr) *SelectStmt {
	s.joins = append(s.joins, join{kind: kind, table: table, on: on})
	return s
}

// Where conjoins the predicate onto the existing WHERE clause.
func (s *SelectStmt) Where(p Expr) *SelectStmt {
	s.where = append(s.where, p)
	return s
}

// GroupBy appends expressions to the GROUP BY clause.
func (s *SelectStmt) GroupBy(exprs ...Expr) *SelectStmt {
	s.group = append(s.group, exprs...)
	return s
}

// Having conjoins the predicate onto the HAVING clause.
func (s *SelectStmt) Having(p Expr) *SelectStmt {
	s.having = append(s.having, p)
	return s
}

// OrderBy appends an ascending or descending ORDER BY term.
func (s *SelectStmt) OrderBy(e Expr, desc bool) *SelectStmt {
	s.order = append(s.order, order{expr: e, desc: desc})
	return s
}

// Limit sets the LIMIT clause.
func (s *SelectStmt) Limit(n int) *SelectStmt {
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause.
func (s *SelectStmt) Offset(n int) *SelectStmt {
	s.offset = &n
	return s
}

// AddError records an error that will be returned by Build.
func (s *SelectStmt) AddError(err error) *SelectStmt {
	if err != nil {
		s.errs = append(s.errs, err)
	}
	return s
}

// Clone returns a deep copy of the statement AST.
func (s *SelectStmt) Clone() *SelectStmt {
	c := *s
	c.columns = append([]selection(nil), s.columns...)
	c.joins = append([]join(nil), s.joins...)
	c.where = append([]Expr(nil), s.where...)
	c.group = append([]Expr(nil), s.group...)
	c.having = append([]Expr(nil), s.having...)
	c.order = append([]order(nil), s.order...)
	c.errs = append([]error(nil), s.errs...)
	return &c
}

// WriteSQL implements the Expr interface, so a SELECT can be nested as a
// subquery.
func (s *SelectStmt) WriteSQL(b *Builder) {
	for _, err := range s.errs {
		b.AddError(err)
	}
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.columns) == 0 {
		b.WriteByte('*')
	}
	for i, c := range s.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		c.expr.WriteSQL(b)
		if c.alias != "" {
			b.WriteString(" AS ").Ident(c.alias)
		}
	}
	if s.from == "" {
		b.AddError(errors.New("sql: select statement without a FROM table"))
	} else {
		b.WriteString(" FROM ").Ident(s.from)
	}
	for _, j := range s.joins {
		b.Pad().WriteString(j.kind.String()).Pad().Ident(j.table)
		if j.on != nil {
			b.WriteString(" ON ")
			j.on.WriteSQL(b)
		}
	}
	if len(s.where) > 0 {
		b.WriteString(" WHERE ")
		And(s.where...).WriteSQL(b)
	}
	if len(s.group) > 0 {
		b.WriteString(" GROUP BY ").Join(", ", s.group...)
	}
	if len(s.having) > 0 {
		b.WriteString(" HAVING ")
		And(s.having...).WriteSQL(b)
	}
	for i, o := range s.order {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		o.expr.WriteSQL(b)
		if o.desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}
	writeLimit(b, s.limit, s.offset)
}

// Build renders the statement for the given dialect. Rendering is pure: the
// same AST and dialect always produce the same statement.
func (s *SelectStmt) Build(dialectName string) (dialect.Statement, error) {
	b := Dialect(dialectName)
	s.WriteSQL(b)
	return b.Statement()
}

func writeLimit(b *Builder, limit, offset *int) {
	switch {
	case limit != nil:
		fmt.Fprintf(&b.sb, " LIMIT %d", *limit)
	case offset != nil && b.dialect == dialect.MySQL:
		b.WriteString(" LIMIT 18446744073709551615")
	case offset != nil && b.dialect == dialect.SQLite:
		b.WriteString(" LIMIT -1")
	}
	if offset != nil {
		fmt.Fprintf(&b.sb, " OFFSET %d", *offset)
	}
}
