package query

import (
	"errors"
	"fmt"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/entity"
)

// Errors reported by Build.
var (
	// ErrPrimaryKeyArity is reported when a key lookup supplies a different
	// number of values than the primary key has columns.
	ErrPrimaryKeyArity = errors.New("query: primary key arity mismatch")
	// ErrCompositeJoin is reported when joining on a relation with a
	// multi-column key.
	ErrCompositeJoin = errors.New("query: composite keys cannot be joined")
	// ErrColumnMismatch is reported when the rows of a multi-row insert
	// write different column sets.
	ErrColumnMismatch = errors.New("query: insert rows have different columns")
	// ErrPrimaryKeyUnset is reported when a single-record write has no
	// value for a primary-key column.
	ErrPrimaryKeyUnset = errors.New("query: primary key value is unset")
)

// JoinKind selects the kind of a join.
type JoinKind = sql.JoinKind

// Join kinds.
const (
	InnerJoin = sql.InnerJoin
	LeftJoin  = sql.LeftJoin
	RightJoin = sql.RightJoin
)

// Select is a SELECT statement scoped to entity E.
type Select[E entity.Entity] struct {
	entity E
	stmt   *sql.SelectStmt
}

// Find returns a query selecting every column of E.
//
//	query.Find[Cake]().Filter(CakeName.Contains("chocolate"))
func Find[E entity.Entity]() *Select[E] {
	var e E
	return From(e)
}

// From is like Find for an entity value, such as a runtime entity.
func From[E entity.Entity](e E) *Select[E] {
	cols := e.Columns()
	exprs := make([]sql.Expr, len(cols))
	for i, c := range cols {
		exprs[i] = c
	}
	return &Select[E]{entity: e, stmt: sql.Select(exprs...).From(e.Table())}
}

// FindBy returns a query selecting the record of E with the given primary
// key. Values are matched with the primary-key columns in declared order.
//
//	query.FindBy[CakeFilling](2, 3)
func FindBy[E entity.Entity](pk ...any) *Select[E] {
	return Find[E]().ByKey(pk...)
}

// ByKey filters by primary key. A value count that differs from the key
// arity is reported by Build as ErrPrimaryKeyArity.
func (s *Select[E]) ByKey(pk ...any) *Select[E] {
	s.stmt.AddError(filterKey(s.entity, pk, func(p sql.Expr) { s.stmt.Where(p) }))
	return s
}

func filterKey(e entity.Entity, pk []any, where func(sql.Expr)) error {
	keys := e.PrimaryKey()
	if len(keys) != len(pk) {
		return fmt.Errorf("%w: %s has %d key columns, got %d values", ErrPrimaryKeyArity, e.Table(), len(keys), len(pk))
	}
	for i, c := range keys {
		where(c.EQ(pk[i]))
	}
	return nil
}

// Entity returns the entity the query is scoped to.
func (s *Select[E]) Entity() E { return s.entity }

// Table returns the table the query selects from.
func (s *Select[E]) Table() string { return s.stmt.Table() }

// SelectOnly clears the projection. It must be called before Column or
// ColumnAs to select only the given columns.
func (s *Select[E]) SelectOnly() *Select[E] {
	s.stmt.ClearSelect()
	return s
}

// Column appends columns to the projection.
func (s *Select[E]) Column(cols ...sql.Expr) *Select[E] {
	s.stmt.AppendSelect(cols...)
	return s
}

// ColumnAs appends an expression to the projection under an alias.
//
//	query.Find[Cake]().SelectOnly().ColumnAs(CakeID.Count(), "count")
func (s *Select[E]) ColumnAs(e sql.Expr, alias string) *Select[E] {
	s.stmt.AppendSelectAs(e, alias)
	return s
}

// Distinct makes the query return distinct rows.
func (s *Select[E]) Distinct() *Select[E] {
	s.stmt.Distinct()
	return s
}

// Filter adds a predicate. Repeated calls are joined with AND.
func (s *Select[E]) Filter(p sql.Expr) *Select[E] {
	s.stmt.Where(p)
	return s
}

// GroupBy appends expressions to the GROUP BY clause.
func (s *Select[E]) GroupBy(exprs ...sql.Expr) *Select[E] {
	s.stmt.GroupBy(exprs...)
	return s
}

// Having adds a predicate on groups. Repeated calls are joined with AND.
func (s *Select[E]) Having(p sql.Expr) *Select[E] {
	s.stmt.Having(p)
	return s
}

// OrderBy appends an ascending sort key.
func (s *Select[E]) OrderBy(e sql.Expr) *Select[E] {
	s.stmt.OrderBy(e, false)
	return s
}

// OrderByDesc appends a descending sort key.
func (s *Select[E]) OrderByDesc(e sql.Expr) *Select[E] {
	s.stmt.OrderBy(e, true)
	return s
}

// Limit limits the number of rows returned.
func (s *Select[E]) Limit(n int) *Select[E] {
	s.stmt.Limit(n)
	return s
}

// Offset skips the first n rows.
func (s *Select[E]) Offset(n int) *Select[E] {
	s.stmt.Offset(n)
	return s
}

// Join joins the target table of rel, equating the owner column with the
// target column. Only single-column keys can be joined; composite keys are
// reported by Build as ErrCompositeJoin.
func (s *Select[E]) Join(kind JoinKind, rel entity.RelationDef) *Select[E] {
	return s.join(kind, rel, rel.ToTable)
}

// JoinRev joins the owner table of rel, for following a relation backwards
// from its target.
func (s *Select[E]) JoinRev(kind JoinKind, rel entity.RelationDef) *Select[E] {
	return s.join(kind, rel, rel.FromTable)
}

func (s *Select[E]) join(kind JoinKind, rel entity.RelationDef, table string) *Select[E] {
	on, err := joinOn(rel)
	if err != nil {
		s.stmt.AddError(err)
		return s
	}
	s.stmt.Join(kind, table, on)
	return s
}

func joinOn(rel entity.RelationDef) (sql.Expr, error) {
	if err := rel.Validate(); err != nil {
		return nil, fmt.Errorf("query: join: %w", err)
	}
	if !rel.FromCol.IsUnary() {
		return nil, fmt.Errorf("%w: %s", ErrCompositeJoin, rel)
	}
	return sql.EQ(sql.Col(rel.FromTable, rel.FromCol[0]), sql.Col(rel.ToTable, rel.ToCol[0])), nil
}

// InnerJoin is a shorthand for Join(InnerJoin, rel).
func (s *Select[E]) InnerJoin(rel entity.RelationDef) *Select[E] { return s.Join(InnerJoin, rel) }

// LeftJoin is a shorthand for Join(LeftJoin, rel).
func (s *Select[E]) LeftJoin(rel entity.RelationDef) *Select[E] { return s.Join(LeftJoin, rel) }

// RightJoin is a shorthand for Join(RightJoin, rel).
func (s *Select[E]) RightJoin(rel entity.RelationDef) *Select[E] { return s.Join(RightJoin, rel) }

// JoinLink joins every relation of the link: the junction first, then the
// target.
func (s *Select[E]) JoinLink(kind JoinKind, link entity.Link) *Select[E] {
	for _, rel := range link.Relations() {
		s.Join(kind, rel)
	}
	return s
}

// Clone returns a deep copy of the query.
func (s *Select[E]) Clone() *Select[E] {
	return &Select[E]{entity: s.entity, stmt: s.stmt.Clone()}
}

// Query returns the underlying statement AST.
func (s *Select[E]) Query() *sql.SelectStmt {
	return s.stmt
}

// WriteSQL implements sql.Expr, so a query can be used as a subquery.
func (s *Select[E]) WriteSQL(b *sql.Builder) {
	s.stmt.WriteSQL(b)
}

// Build renders the query for the given dialect. Build does not modify the
// query and may be called several times.
func (s *Select[E]) Build(dialectName string) (dialect.Statement, error) {
	return s.stmt.Build(dialectName)
}

// FindRelated returns a query selecting the records of R related to the
// record of E with the given primary key. The link leads from E to R,
// possibly through a junction table.
//
//	query.FindRelated[Cake, Filling](entity.ConjunctRelations(Cake{})[0].Link(), 1)
func FindRelated[E, R entity.Entity](link entity.Link, pk ...any) *Select[R] {
	var (
		owner  E
		target R
	)
	return Related(owner, target, link, pk...)
}

// Related is like FindRelated for entity values.
func Related[E, R entity.Entity](owner E, target R, link entity.Link, pk ...any) *Select[R] {
	s := From(target)
	rels := link.Relations()
	if first, last := rels[0], rels[len(rels)-1]; first.FromTable != owner.Table() || last.ToTable != target.Table() {
		s.stmt.AddError(fmt.Errorf("query: link %s -> %s does not lead from %s to %s",
			first.FromTable, last.ToTable, owner.Table(), target.Table()))
		return s
	}
	for i := len(rels) - 1; i >= 0; i-- {
		s.JoinRev(InnerJoin, rels[i])
	}
	s.stmt.AddError(filterKey(owner, pk, func(p sql.Expr) { s.stmt.Where(p) }))
	return s
}
