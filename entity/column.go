package entity

import (
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema/field"
)

// ColumnRef is implemented by everything that describes a column.
type ColumnRef interface {
	Def() ColumnDef
}

// ColumnDef is the untyped description of a column. It implements sql.Expr
// and renders as the table-qualified column, so predicates built from it
// stay unambiguous after joins.
type ColumnDef struct {
	Table    string
	Name     string
	Type     field.Type
	Nullable bool
	Unique   bool
}

// Def implements ColumnRef.
func (c ColumnDef) Def() ColumnDef { return c }

// WriteSQL implements sql.Expr.
func (c ColumnDef) WriteSQL(b *sql.Builder) {
	b.QualifiedIdent(c.Table, c.Name)
}

// EQ returns the predicate "column = v".
func (c ColumnDef) EQ(v any) sql.Expr { return sql.EQ(c, v) }

// NE returns the predicate "column <> v".
func (c ColumnDef) NE(v any) sql.Expr { return sql.NEQ(c, v) }

// GT returns the predicate "column > v".
func (c ColumnDef) GT(v any) sql.Expr { return sql.GT(c, v) }

// GTE returns the predicate "column >= v".
func (c ColumnDef) GTE(v any) sql.Expr { return sql.GTE(c, v) }

// LT returns the predicate "column < v".
func (c ColumnDef) LT(v any) sql.Expr { return sql.LT(c, v) }

// LTE returns the predicate "column <= v".
func (c ColumnDef) LTE(v any) sql.Expr { return sql.LTE(c, v) }

// Between returns the predicate "column BETWEEN lo AND hi".
func (c ColumnDef) Between(lo, hi any) sql.Expr { return sql.Between(c, lo, hi) }

// NotBetween returns the predicate "column NOT BETWEEN lo AND hi".
func (c ColumnDef) NotBetween(lo, hi any) sql.Expr { return sql.NotBetween(c, lo, hi) }

// Like returns the predicate "column LIKE pattern".
func (c ColumnDef) Like(pattern string) sql.Expr { return sql.Like(c, pattern) }

// NotLike returns the predicate "column NOT LIKE pattern".
func (c ColumnDef) NotLike(pattern string) sql.Expr { return sql.NotLike(c, pattern) }

// StartsWith matches values starting with s. Wildcards in s are not escaped.
func (c ColumnDef) StartsWith(s string) sql.Expr { return sql.HasPrefix(c, s) }

// EndsWith matches values ending with s. Wildcards in s are not escaped.
func (c ColumnDef) EndsWith(s string) sql.Expr { return sql.HasSuffix(c, s) }

// Contains matches values containing s. Wildcards in s are not escaped.
func (c ColumnDef) Contains(s string) sql.Expr { return sql.Contains(c, s) }

// IsNull returns the predicate "column IS NULL".
func (c ColumnDef) IsNull() sql.Expr { return sql.IsNull(c) }

// IsNotNull returns the predicate "column IS NOT NULL".
func (c ColumnDef) IsNotNull() sql.Expr { return sql.NotNull(c) }

// In returns the predicate "column IN (vs...)".
func (c ColumnDef) In(vs ...any) sql.Expr { return sql.In(c, vs...) }

// NotIn returns the predicate "column NOT IN (vs...)".
func (c ColumnDef) NotIn(vs ...any) sql.Expr { return sql.NotIn(c, vs...) }

// Count returns COUNT(column).
func (c ColumnDef) Count() sql.Expr { return sql.Count(c) }

// Sum returns SUM(column).
func (c ColumnDef) Sum() sql.Expr { return sql.Sum(c) }

// Max returns MAX(column).
func (c ColumnDef) Max() sql.Expr { return sql.Max(c) }

// Min returns MIN(column).
func (c ColumnDef) Min() sql.Expr { return sql.Min(c) }

// Avg returns AVG(column).
func (c ColumnDef) Avg() sql.Expr { return sql.Avg(c) }

// ColumnOption configures a column declaration.
type ColumnOption func(*ColumnDef)

// Nullable marks the column as nullable.
func Nullable() ColumnOption {
	return func(c *ColumnDef) { c.Nullable = true }
}

// Unique marks the column as unique.
func Unique() ColumnOption {
	return func(c *ColumnDef) { c.Unique = true }
}

// Column is a column of entity E holding values of type T. Operators only
// accept operands of type T, so comparing a column with a value of the
// wrong type fails to compile.
//
//	var CakeName = entity.NewColumn[Cake, string]("name", field.TypeString)
//
//	CakeName.EQ("Chocolate Forest")
type Column[E Entity, T any] struct {
	def ColumnDef
}

// NewColumn declares a column of E. The owning table is taken from the
// zero value of E.
func NewColumn[E Entity, T any](name string, typ field.Type, opts ...ColumnOption) Column[E, T] {
	var e E
	def := ColumnDef{Table: e.Table(), Name: name, Type: typ}
	for _, opt := range opts {
		opt(&def)
	}
	return Column[E, T]{def: def}
}

// Def implements ColumnRef.
func (c Column[E, T]) Def() ColumnDef { return c.def }

// Name returns the column name.
func (c Column[E, T]) Name() string { return c.def.Name }

// WriteSQL implements sql.Expr.
func (c Column[E, T]) WriteSQL(b *sql.Builder) { c.def.WriteSQL(b) }

// EQ returns the predicate "column = v".
func (c Column[E, T]) EQ(v T) sql.Expr { return c.def.EQ(v) }

// NE returns the predicate "column <> v".
func (c Column[E, T]) NE(v T) sql.Expr { return c.def.NE(v) }

// GT returns the predicate "column > v".
func (c Column[E, T]) GT(v T) sql.Expr { return c.def.GT(v) }

// GTE returns the predicate "column >= v".
func (c Column[E, T]) GTE(v T) sql.Expr { return c.def.GTE(v) }

// LT returns the predicate "column < v".
func (c Column[E, T]) LT(v T) sql.Expr { return c.def.LT(v) }

// LTE returns the predicate "column <= v".
func (c Column[E, T]) LTE(v T) sql.Expr { return c.def.LTE(v) }

// Between returns the predicate "column BETWEEN lo AND hi".
func (c Column[E, T]) Between(lo, hi T) sql.Expr { return c.def.Between(lo, hi) }

// NotBetween returns the predicate "column NOT BETWEEN lo AND hi".
func (c Column[E, T]) NotBetween(lo, hi T) sql.Expr { return c.def.NotBetween(lo, hi) }

// Like returns the predicate "column LIKE pattern".
func (c Column[E, T]) Like(pattern string) sql.Expr { return c.def.Like(pattern) }

// NotLike returns the predicate "column NOT LIKE pattern".
func (c Column[E, T]) NotLike(pattern string) sql.Expr { return c.def.NotLike(pattern) }

// StartsWith returns a LIKE predicate matching values with the prefix s.
func (c Column[E, T]) StartsWith(s string) sql.Expr { return c.def.StartsWith(s) }

// EndsWith returns a LIKE predicate matching values with the suffix s.
func (c Column[E, T]) EndsWith(s string) sql.Expr { return c.def.EndsWith(s) }

// Contains returns a LIKE predicate matching values containing s.
func (c Column[E, T]) Contains(s string) sql.Expr { return c.def.Contains(s) }

// IsNull returns the predicate "column IS NULL".
func (c Column[E, T]) IsNull() sql.Expr { return c.def.IsNull() }

// IsNotNull returns the predicate "column IS NOT NULL".
func (c Column[E, T]) IsNotNull() sql.Expr { return c.def.IsNotNull() }

// In returns the predicate "column IN (vs...)".
func (c Column[E, T]) In(vs ...T) sql.Expr { return c.def.In(anys(vs)...) }

// NotIn returns the predicate "column NOT IN (vs...)".
func (c Column[E, T]) NotIn(vs ...T) sql.Expr { return c.def.NotIn(anys(vs)...) }

// Count returns the aggregate "COUNT(column)".
func (c Column[E, T]) Count() sql.Expr { return c.def.Count() }

// Sum returns the aggregate "SUM(column)".
func (c Column[E, T]) Sum() sql.Expr { return c.def.Sum() }

// Max returns the aggregate "MAX(column)".
func (c Column[E, T]) Max() sql.Expr { return c.def.Max() }

// Min returns the aggregate "MIN(column)".
func (c Column[E, T]) Min() sql.Expr { return c.def.Min() }

// Avg returns the aggregate "AVG(column)".
func (c Column[E, T]) Avg() sql.Expr { return c.def.Avg() }

func anys[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// Defs returns the descriptions of the given columns.
func Defs(cols ...ColumnRef) []ColumnDef {
	defs := make([]ColumnDef, len(cols))
	for i, c := range cols {
		defs[i] = c.Def()
	}
	return defs
}
