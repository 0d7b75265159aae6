package query

import (
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/entity"
)

// DeleteOneQuery deletes the record of E identified by the primary key of
// a model.
type DeleteOneQuery[E entity.Entity] struct {
	entity E
	key    []entity.ActiveValue[any]
}

// DeleteOne returns a DELETE statement for the model. Only the primary-key
// values are read.
func DeleteOne[E entity.Entity](m entity.ActiveModel[E]) *DeleteOneQuery[E] {
	e := m.Entity()
	q := &DeleteOneQuery[E]{entity: e}
	for _, c := range e.PrimaryKey() {
		q.key = append(q.key, m.Take(c.Name))
	}
	return q
}

// Table returns the target table.
func (q *DeleteOneQuery[E]) Table() string { return q.entity.Table() }

// Build renders the statement.
func (q *DeleteOneQuery[E]) Build(dialectName string) (dialect.Statement, error) {
	d := sql.Delete(q.entity.Table())
	d.AddError(whereKey(q.entity, q.key, func(p sql.Expr) { d.Where(p) }))
	return d.Build(dialectName)
}

// DeleteManyQuery deletes every record of E matching its filters.
type DeleteManyQuery[E entity.Entity] struct {
	entity E
	stmt   *sql.DeleteStmt
}

// DeleteMany returns a DELETE statement over E. Without filters it deletes
// every row of the table.
func DeleteMany[E entity.Entity]() *DeleteManyQuery[E] {
	var e E
	return DeleteManyOf(e)
}

// DeleteManyOf is like DeleteMany for an entity value.
func DeleteManyOf[E entity.Entity](e E) *DeleteManyQuery[E] {
	return &DeleteManyQuery[E]{entity: e, stmt: sql.Delete(e.Table())}
}

// Filter adds a predicate. Repeated calls are joined with AND.
func (q *DeleteManyQuery[E]) Filter(p sql.Expr) *DeleteManyQuery[E] {
	q.stmt.Where(p)
	return q
}

// Table returns the target table.
func (q *DeleteManyQuery[E]) Table() string { return q.entity.Table() }

// Build renders the statement.
func (q *DeleteManyQuery[E]) Build(dialectName string) (dialect.Statement, error) {
	return q.stmt.Build(dialectName)
}
