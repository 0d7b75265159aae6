package executor

import (
	"context"
	"fmt"
	"iter"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql/sqlgraph"
	"github.com/syssam/strata/entity"
)

// Builder is a statement that renders for a dialect. Every builder of
// package query implements it.
type Builder interface {
	Build(dialectName string) (dialect.Statement, error)
}

// InsertBuilder is an INSERT statement that may carry a RETURNING clause.
type InsertBuilder interface {
	Builder
	HasReturning() bool
}

// UpdateBuilder is an UPDATE statement that knows the record it addresses.
type UpdateBuilder interface {
	Builder
	Table() string
	Key() []any
	ExpectsRow() bool
}

// Model is the pointer constraint of a decodable model type M.
type Model[M any] interface {
	*M
	entity.FromRow
}

// Exec builds and executes a write statement. Constraint violations are
// reported as *strata.ConstraintError.
func Exec(ctx context.Context, db dialect.ExecQuerier, b Builder) (dialect.ExecResult, error) {
	stmt, err := b.Build(db.Dialect())
	if err != nil {
		return dialect.ExecResult{}, err
	}
	res, err := db.Execute(ctx, stmt)
	if err != nil {
		return res, sqlgraph.Wrap(err)
	}
	return res, nil
}

// One returns the first row decoded as M, or nil when the statement
// produced no rows.
//
//	cake, err := executor.One[fixture.CakeModel](ctx, db, query.FindBy[fixture.Cake](1))
func One[M any, PM Model[M]](ctx context.Context, db dialect.ExecQuerier, b Builder) (*M, error) {
	stmt, err := b.Build(db.Dialect())
	if err != nil {
		return nil, err
	}
	row, err := db.QueryOne(ctx, stmt)
	if err != nil || row == nil {
		return nil, err
	}
	m := new(M)
	if err := PM(m).FromRow(row, ""); err != nil {
		return nil, err
	}
	return m, nil
}

// All returns every row decoded as M, in result order.
func All[M any, PM Model[M]](ctx context.Context, db dialect.ExecQuerier, b Builder) ([]M, error) {
	rows, err := Rows(ctx, db, b)
	if err != nil {
		return nil, err
	}
	return Decode[M, PM](rows, "")
}

// Rows returns the undecoded rows of a read statement, for entities that
// have no model type.
func Rows(ctx context.Context, db dialect.ExecQuerier, b Builder) ([]*dialect.Row, error) {
	stmt, err := b.Build(db.Dialect())
	if err != nil {
		return nil, err
	}
	return db.QueryAll(ctx, stmt)
}

// Decode decodes rows as M. Columns are looked up under prefix.
func Decode[M any, PM Model[M]](rows []*dialect.Row, prefix string) ([]M, error) {
	ms := make([]M, len(rows))
	for i, row := range rows {
		if err := PM(&ms[i]).FromRow(row, prefix); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

// Stream returns an iterator over the rows of a read statement decoded as
// M. Rows are fetched lazily and the connection is released when the
// iteration ends or the loop is left early. The first error ends the
// iteration.
//
//	for cake, err := range executor.Stream[fixture.CakeModel](ctx, db, query.Find[fixture.Cake]()) {
//		if err != nil {
//			return err
//		}
//		...
//	}
func Stream[M any, PM Model[M]](ctx context.Context, db dialect.ExecQuerier, b Builder) iter.Seq2[M, error] {
	return func(yield func(M, error) bool) {
		var zero M
		stmt, err := b.Build(db.Dialect())
		if err != nil {
			yield(zero, err)
			return
		}
		rows, err := db.Stream(ctx, stmt)
		if err != nil {
			yield(zero, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			row, err := rows.Row()
			if err != nil {
				yield(zero, strata.NewQueryError(stmt.SQL, err))
				return
			}
			var m M
			if err := PM(&m).FromRow(row, ""); err != nil {
				yield(zero, err)
				return
			}
			if !yield(m, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, strata.NewQueryError(stmt.SQL, err))
			return
		}
		if err := rows.Close(); err != nil {
			yield(zero, strata.NewQueryError(stmt.SQL, err))
		}
	}
}

// InsertResult is the outcome of an INSERT statement.
type InsertResult struct {
	dialect.ExecResult
	// Returned holds the rows produced by a RETURNING clause.
	Returned []*dialect.Row
}

// Insert executes an INSERT statement. With a RETURNING clause the
// returned rows are kept in the result, and strata.ErrReturningUnsupported
// is returned without contacting the database when the backend cannot run
// the clause.
func Insert(ctx context.Context, db dialect.ExecQuerier, q InsertBuilder) (InsertResult, error) {
	if !q.HasReturning() {
		res, err := Exec(ctx, db, q)
		return InsertResult{ExecResult: res}, err
	}
	if !db.SupportsReturning() {
		return InsertResult{}, fmt.Errorf("executor: insert on %s: %w", db.Dialect(), strata.ErrReturningUnsupported)
	}
	stmt, err := q.Build(db.Dialect())
	if err != nil {
		return InsertResult{}, err
	}
	rows, err := db.ExecuteReturning(ctx, stmt)
	if err != nil {
		return InsertResult{}, sqlgraph.Wrap(err)
	}
	return InsertResult{
		ExecResult: dialect.ExecResult{RowsAffected: int64(len(rows))},
		Returned:   rows,
	}, nil
}

// Update executes an UPDATE statement and returns the number of affected
// rows. When the statement expects a row and none was affected, a
// *strata.RecordNotFoundError carrying the table and key is returned.
func Update(ctx context.Context, db dialect.ExecQuerier, q UpdateBuilder) (int64, error) {
	res, err := Exec(ctx, db, q)
	if err != nil {
		return 0, err
	}
	if res.RowsAffected == 0 && q.ExpectsRow() {
		return 0, strata.NewRecordNotFoundError(q.Table(), q.Key()...)
	}
	return res.RowsAffected, nil
}

// Delete executes a DELETE statement and returns the number of affected
// rows. Deleting nothing is not an error.
func Delete(ctx context.Context, db dialect.ExecQuerier, b Builder) (int64, error) {
	res, err := Exec(ctx, db, b)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}
