package sql

import (
	"errors"
	"fmt"

	"github.com/syssam/strata/dialect"
)

// InsertStmt is the AST of an INSERT statement. All rows share one column
// list and are rendered as a single multi-row VALUES clause.
type InsertStmt struct {
	table     string
	columns   []string
	values    [][]Expr
	returning []string
	errs      []error
}

// Insert returns a new INSERT statement for the given table.
func Insert(table string) *InsertStmt {
	return &InsertStmt{table: table}
}

// Table returns the target table.
func (i *InsertStmt) Table() string {
	return i.table
}

// Columns sets the column list of the statement.
func (i *InsertStmt) Columns(columns ...string) *InsertStmt {
	i.columns = append(i.columns[:0:0], columns...)
	return i
}

// ColumnNames returns the column list of the statement.
func (i *InsertStmt) ColumnNames() []string {
	return i.columns
}

// Values appends a value tuple. Values that are not expressions are bound.
func (i *InsertStmt) Values(vs ...any) *InsertStmt {
	row := make([]Expr, len(vs))
	for j, v := range vs {
		row[j] = operand(v)
	}
	i.values = append(i.values, row)
	return i
}

// Rows returns the number of value tuples.
func (i *InsertStmt) Rows() int {
	return len(i.values)
}

// Returning sets the RETURNING clause. Only Postgres and SQLite render it.
func (i *InsertStmt) Returning(columns ...string) *InsertStmt {
	i.returning = columns
	return i
}

// AddError records an error that will be returned by Build.
func (i *InsertStmt) AddError(err error) *InsertStmt {
	if err != nil {
		i.errs = append(i.errs, err)
	}
	return i
}

// WriteSQL implements the Expr interface.
func (i *InsertStmt) WriteSQL(b *Builder) {
	for _, err := range i.errs {
		b.AddError(err)
	}
	if i.table == "" {
		b.AddError(errors.New("sql: insert statement without a table"))
	}
	b.WriteString("INSERT INTO ").Ident(i.table)
	switch {
	case len(i.columns) == 0 && b.dialect == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	case len(i.columns) == 0:
		b.WriteString(" DEFAULT VALUES")
	default:
		b.WriteString(" (")
		for j, c := range i.columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
		b.WriteString(") VALUES ")
		if len(i.values) == 0 {
			b.AddError(errors.New("sql: insert statement without values"))
		}
		for j, row := range i.values {
			if len(row) != len(i.columns) {
				b.AddError(fmt.Errorf("sql: insert row %d has %d values, expected %d", j, len(row), len(i.columns)))
			}
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('(').Join(", ", row...).WriteByte(')')
		}
	}
	writeReturning(b, i.returning)
}

// Build renders the statement for the given dialect.
func (i *InsertStmt) Build(dialectName string) (dialect.Statement, error) {
	b := Dialect(dialectName)
	i.WriteSQL(b)
	return b.Statement()
}

type assignment struct {
	column string
	value  Expr
}

// UpdateStmt is the AST of an UPDATE statement.
type UpdateStmt struct {
	table string
	set   []assignment
	where []Expr
	errs  []error
}

// Update returns a new UPDATE statement for the given table.
func Update(table string) *UpdateStmt {
	return &UpdateStmt{table: table}
}

// Table returns the target table.
func (u *UpdateStmt) Table() string {
	return u.table
}

// Set appends a "column = value" assignment. Values that are not
// expressions are bound.
func (u *UpdateStmt) Set(column string, v any) *UpdateStmt {
	u.set = append(u.set, assignment{column: column, value: operand(v)})
	return u
}

// Empty reports whether the statement has no assignments.
func (u *UpdateStmt) Empty() bool {
	return len(u.set) == 0
}

// Where conjoins the predicate onto the WHERE clause.
func (u *UpdateStmt) Where(p Expr) *UpdateStmt {
	u.where = append(u.where, p)
	return u
}

// AddError records an error that will be returned by Build.
func (u *UpdateStmt) AddError(err error) *UpdateStmt {
	if err != nil {
		u.errs = append(u.errs, err)
	}
	return u
}

// WriteSQL implements the Expr interface.
func (u *UpdateStmt) WriteSQL(b *Builder) {
	for _, err := range u.errs {
		b.AddError(err)
	}
	if len(u.set) == 0 {
		b.AddError(fmt.Errorf("sql: update %q without assignments", u.table))
	}
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for j, a := range u.set {
		if j > 0 {
			b.WriteString(", ")
		}
		b.Ident(a.column).WriteString(" = ")
		a.value.WriteSQL(b)
	}
	if len(u.where) > 0 {
		b.WriteString(" WHERE ")
		And(u.where...).WriteSQL(b)
	}
}

// Build renders the statement for the given dialect.
func (u *UpdateStmt) Build(dialectName string) (dialect.Statement, error) {
	b := Dialect(dialectName)
	u.WriteSQL(b)
	return b.Statement()
}

// DeleteStmt is the AST of a DELETE statement.
type DeleteStmt struct {
	table string
	where []Expr
	errs  []error
}

// Delete returns a new DELETE statement for the given table.
func Delete(table string) *DeleteStmt {
	return &DeleteStmt{table: table}
}

// Table returns the target table.
func (d *DeleteStmt) Table() string {
	return d.table
}

// Where conjoins the predicate onto the WHERE clause.
func (d *DeleteStmt) Where(p Expr) *DeleteStmt {
	d.where = append(d.where, p)
	return d
}

// AddError records an error that will be returned by Build.
func (d *DeleteStmt) AddError(err error) *DeleteStmt {
	if err != nil {
		d.errs = append(d.errs, err)
	}
	return d
}

// WriteSQL implements the Expr interface.
func (d *DeleteStmt) WriteSQL(b *Builder) {
	for _, err := range d.errs {
		b.AddError(err)
	}
	b.WriteString("DELETE FROM ").Ident(d.table)
	if len(d.where) > 0 {
		b.WriteString(" WHERE ")
		And(d.where...).WriteSQL(b)
	}
}

// Build renders the statement for the given dialect.
func (d *DeleteStmt) Build(dialectName string) (dialect.Statement, error) {
	b := Dialect(dialectName)
	d.WriteSQL(b)
	return b.Statement()
}

func writeReturning(b *Builder, columns []string) {
	if len(columns) == 0 {
		return
	}
	if b.dialect == dialect.MySQL {
		b.AddError(errors.New("sql: RETURNING is not supported by mysql"))
		return
	}
	b.WriteString(" RETURNING ")
	for j, c := range columns {
		if j > 0 {
			b.WriteString(", ")
		}
		b.Ident(c)
	}
}
