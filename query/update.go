package query

import (
	"fmt"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/entity"
)

// UpdateOneQuery updates the single record of E identified by the primary
// key of a model.
type UpdateOneQuery[E entity.Entity] struct {
	entity     E
	key        []entity.ActiveValue[any]
	columns    []entity.ColumnDef
	values     []entity.ActiveValue[any]
	persistAll bool
	mustExist  bool
}

// UpdateOne returns an UPDATE statement for the model. Primary-key values
// address the record and the remaining Set values are written. The model
// is consumed.
//
//	query.UpdateOne[Cake](m).MustExist()
func UpdateOne[E entity.Entity](m entity.ActiveModel[E]) *UpdateOneQuery[E] {
	e := m.Entity()
	q := &UpdateOneQuery[E]{entity: e}
	pk := e.PrimaryKey()
	for _, c := range pk {
		q.key = append(q.key, m.Take(c.Name))
	}
	for _, c := range e.Columns() {
		if isKey(pk, c.Name) {
			continue
		}
		q.columns = append(q.columns, c)
		q.values = append(q.values, m.Take(c.Name))
	}
	return q
}

func isKey(pk []entity.ColumnDef, name string) bool {
	for _, c := range pk {
		if c.Name == name {
			return true
		}
	}
	return false
}

// PersistAll also writes Unchanged values, for full-row updates.
func (q *UpdateOneQuery[E]) PersistAll() *UpdateOneQuery[E] {
	q.persistAll = true
	return q
}

// MustExist makes the executor report a RecordNotFoundError when the
// update affects no rows.
func (q *UpdateOneQuery[E]) MustExist() *UpdateOneQuery[E] {
	q.mustExist = true
	return q
}

// ExpectsRow reports whether MustExist was requested.
func (q *UpdateOneQuery[E]) ExpectsRow() bool { return q.mustExist }

// Table returns the target table.
func (q *UpdateOneQuery[E]) Table() string { return q.entity.Table() }

// Key returns the primary-key values addressing the record.
func (q *UpdateOneQuery[E]) Key() []any {
	key := make([]any, len(q.key))
	for i, v := range q.key {
		key[i] = v.Unwrap()
	}
	return key
}

// Build renders the statement.
func (q *UpdateOneQuery[E]) Build(dialectName string) (dialect.Statement, error) {
	u := sql.Update(q.entity.Table())
	for i, c := range q.columns {
		v := q.values[i]
		if !v.IsSet() && !(q.persistAll && v.IsUnchanged()) {
			continue
		}
		dv, err := v.IntoValue()
		if err != nil {
			u.AddError(strata.NewValidationError(c.Name, err))
		}
		u.Set(c.Name, dv)
	}
	u.AddError(whereKey(q.entity, q.key, func(p sql.Expr) { u.Where(p) }))
	return u.Build(dialectName)
}

func whereKey(e entity.Entity, key []entity.ActiveValue[any], where func(sql.Expr)) error {
	pk := e.PrimaryKey()
	if len(pk) == 0 {
		return fmt.Errorf("%w: %s has no primary key", ErrPrimaryKeyArity, e.Table())
	}
	for i, c := range pk {
		if key[i].IsUnset() {
			return fmt.Errorf("%w: %s.%s", ErrPrimaryKeyUnset, e.Table(), c.Name)
		}
		where(c.EQ(key[i].Unwrap()))
	}
	return nil
}

// UpdateManyQuery updates every record of E matching its filters.
type UpdateManyQuery[E entity.Entity] struct {
	entity E
	stmt   *sql.UpdateStmt
}

// UpdateMany returns an UPDATE statement over E.
//
//	query.UpdateMany[Fruit]().Set(FruitCakeID, nil).Filter(FruitName.Contains("Apple"))
func UpdateMany[E entity.Entity]() *UpdateManyQuery[E] {
	var e E
	return UpdateManyOf(e)
}

// UpdateManyOf is like UpdateMany for an entity value.
func UpdateManyOf[E entity.Entity](e E) *UpdateManyQuery[E] {
	return &UpdateManyQuery[E]{entity: e, stmt: sql.Update(e.Table())}
}

// Set appends an assignment. v may be an sql.Expr.
func (q *UpdateManyQuery[E]) Set(col entity.ColumnRef, v any) *UpdateManyQuery[E] {
	q.stmt.Set(col.Def().Name, v)
	return q
}

// Filter adds a predicate. Repeated calls are joined with AND.
func (q *UpdateManyQuery[E]) Filter(p sql.Expr) *UpdateManyQuery[E] {
	q.stmt.Where(p)
	return q
}

// ExpectsRow always returns false; bulk updates may affect no rows.
func (q *UpdateManyQuery[E]) ExpectsRow() bool { return false }

// Table returns the target table.
func (q *UpdateManyQuery[E]) Table() string { return q.entity.Table() }

// Key returns nil; bulk updates are not addressed by key.
func (q *UpdateManyQuery[E]) Key() []any { return nil }

// Build renders the statement.
func (q *UpdateManyQuery[E]) Build(dialectName string) (dialect.Statement, error) {
	return q.stmt.Build(dialectName)
}
