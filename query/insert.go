package query

import (
	"errors"
	"fmt"
	"slices"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/entity"
)

// InsertQuery is an INSERT statement writing one or more models of E.
type InsertQuery[E entity.Entity] struct {
	entity     E
	columns    []entity.ColumnDef
	rows       [][]entity.ActiveValue[any]
	persistAll bool
	returning  []string
}

// Insert returns an INSERT statement for the given models. Each model is
// consumed: its values are moved into the statement and the model is left
// Unset.
//
//	query.Insert[Cake](&CakeActive{Name: entity.Set("Apple Pie")})
func Insert[E entity.Entity](models ...entity.ActiveModel[E]) *InsertQuery[E] {
	var e E
	if len(models) > 0 {
		e = models[0].Entity()
	}
	q := InsertInto(e)
	for _, m := range models {
		q.Add(m)
	}
	return q
}

// InsertInto returns an empty INSERT statement for e.
func InsertInto[E entity.Entity](e E) *InsertQuery[E] {
	return &InsertQuery[E]{entity: e, columns: e.Columns()}
}

// Add appends a model as a new row.
func (q *InsertQuery[E]) Add(m entity.ActiveModel[E]) *InsertQuery[E] {
	row := make([]entity.ActiveValue[any], len(q.columns))
	for i, c := range q.columns {
		row[i] = m.Take(c.Name)
	}
	q.rows = append(q.rows, row)
	return q
}

// PersistAll also writes Unchanged values. By default only Set values are
// written.
func (q *InsertQuery[E]) PersistAll() *InsertQuery[E] {
	q.persistAll = true
	return q
}

// Returning adds a RETURNING clause. It is rendered for Postgres and
// SQLite and reported as an error for MySQL.
func (q *InsertQuery[E]) Returning(cols ...entity.ColumnRef) *InsertQuery[E] {
	q.returning = q.returning[:0]
	for _, c := range cols {
		q.returning = append(q.returning, c.Def().Name)
	}
	return q
}

// Table returns the target table.
func (q *InsertQuery[E]) Table() string { return q.entity.Table() }

// Rows returns the number of rows to insert.
func (q *InsertQuery[E]) Rows() int { return len(q.rows) }

// HasReturning reports whether the statement has a RETURNING clause.
func (q *InsertQuery[E]) HasReturning() bool { return len(q.returning) > 0 }

// Build renders the statement. Columns are written in declared order and
// Unset values are left out entirely; every row must write the same set of
// columns.
func (q *InsertQuery[E]) Build(dialectName string) (dialect.Statement, error) {
	ins := sql.Insert(q.entity.Table())
	if len(q.rows) == 0 {
		ins.AddError(errors.New("query: insert without models"))
	}
	var idx []int
	for i, row := range q.rows {
		cur := written(row, q.persistAll)
		if i == 0 {
			idx = cur
			continue
		}
		if !slices.Equal(idx, cur) {
			ins.AddError(fmt.Errorf("%w: row %d writes %v, row 0 writes %v",
				ErrColumnMismatch, i, q.names(cur), q.names(idx)))
		}
	}
	names := q.names(idx)
	ins.Columns(names...)
	switch {
	case len(names) > 0:
		for _, row := range q.rows {
			ins.Values(q.values(ins, row, idx)...)
		}
	case len(q.rows) > 1:
		ins.AddError(errors.New("query: multi-row insert without columns"))
	}
	if len(q.returning) > 0 {
		ins.Returning(q.returning...)
	}
	return ins.Build(dialectName)
}

func (q *InsertQuery[E]) names(idx []int) []string {
	names := make([]string, len(idx))
	for i, j := range idx {
		names[i] = q.columns[j].Name
	}
	return names
}

func (q *InsertQuery[E]) values(ins *sql.InsertStmt, row []entity.ActiveValue[any], idx []int) []any {
	vs := make([]any, len(idx))
	for i, j := range idx {
		v, err := row[j].IntoValue()
		if err != nil {
			ins.AddError(strata.NewValidationError(q.columns[j].Name, err))
		}
		vs[i] = v
	}
	return vs
}

// written returns the indexes of the values that are written: Set values,
// and Unchanged values when persistAll is set.
func written(row []entity.ActiveValue[any], persistAll bool) []int {
	var idx []int
	for i, v := range row {
		if v.IsSet() || (persistAll && v.IsUnchanged()) {
			idx = append(idx, i)
		}
	}
	return idx
}
