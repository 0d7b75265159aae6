package executor_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/entity"
	"github.com/syssam/strata/executor"
	"github.com/syssam/strata/internal/fixture"
	"github.com/syssam/strata/query"
)

func mockDriver(t *testing.T) (*sql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sql.OpenDB(dialect.Postgres, db), mock
}

func TestTransactionRollbackFailure(t *testing.T) {
	drv, mock := mockDriver(t)
	errBoom := errors.New("boom")
	errLost := errors.New("connection lost")
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errLost)

	err := executor.Transaction(context.Background(), drv, func(context.Context, dialect.Tx) error {
		return errBoom
	})
	require.Error(t, err)
	assert.True(t, strata.IsRollbackError(err))
	var re *strata.RollbackError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, errBoom, re.Err)
	assert.ErrorIs(t, err, errLost)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCommitFailure(t *testing.T) {
	drv, mock := mockDriver(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "fruit"`)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := executor.Transaction(context.Background(), drv, func(ctx context.Context, tx dialect.Tx) error {
		n, err := executor.Delete(ctx, tx, query.DeleteMany[fixture.Fruit]())
		assert.EqualValues(t, 4, n)
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executor: commit")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionBeginFailure(t *testing.T) {
	drv, mock := mockDriver(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
	called := false
	err := executor.Transaction(context.Background(), drv, func(context.Context, dialect.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, strata.IsConnectionError(err))
	assert.False(t, called)
}

func TestExecPostgres(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cake" ("name") VALUES ($1) RETURNING "id"`)).
		WithArgs("Apple Pie").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	res, err := executor.Insert(ctx, drv, query.Insert[fixture.Cake](
		&fixture.CakeActive{Name: entity.Set("Apple Pie")},
	).Returning(fixture.CakeID))
	require.NoError(t, err)
	require.Len(t, res.Returned, 1)
	id, err := dialect.Get[int](res.Returned[0], "id")
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "cake" ("name") VALUES ($1)`)).
		WithArgs("Apple Pie").
		WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "cake_name_key"`})
	_, err = executor.Insert(ctx, drv, query.Insert[fixture.Cake](&fixture.CakeActive{Name: entity.Set("Apple Pie")}))
	require.Error(t, err)
	assert.True(t, strata.IsConstraintError(err))
	var pqErr *pq.Error
	assert.ErrorAs(t, err, &pqErr)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "fruit" SET "name" = $1 WHERE "fruit"."id" = $2`)).
		WithArgs("Pear", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = executor.Update(ctx, drv, query.UpdateOne[fixture.Fruit](&fixture.FruitActive{
		ID:   entity.Unchanged(5),
		Name: entity.Set("Pear"),
	}).MustExist())
	require.Error(t, err)
	assert.EqualError(t, err, strata.NewRecordNotFoundError("fruit", 5).Error())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "cake"."id", "cake"."name" FROM "cake" WHERE "cake"."id" = $1`)).
		WithArgs(1).
		WillReturnError(errors.New("canceling statement due to statement timeout"))
	_, err = executor.One[fixture.CakeModel](ctx, drv, query.FindBy[fixture.Cake](1))
	require.Error(t, err)
	assert.True(t, strata.IsQueryError(err))
	assert.False(t, strata.IsConstraintError(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertReturningUnsupported(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	drv := sql.OpenDB(dialect.SQLite, db, sql.WithReturning(false))

	_, err = executor.Insert(context.Background(), drv, query.Insert[fixture.Cake](
		&fixture.CakeActive{Name: entity.Set("Apple Pie")},
	).Returning(fixture.CakeID))
	require.ErrorIs(t, err, strata.ErrReturningUnsupported)
	assert.False(t, strata.IsExecError(err), "rejected before the statement is sent")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildErrorsAreNotSent(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t)

	_, err := executor.Update(ctx, drv, query.UpdateOne[fixture.Cake](&fixture.CakeActive{Name: entity.Set("Orange")}))
	require.ErrorIs(t, err, query.ErrPrimaryKeyUnset)
	_, err = executor.Rows(ctx, drv, query.Find[fixture.Cake]().InnerJoin(entity.RelationDef{}))
	require.Error(t, err)
	_, err = executor.All[fixture.CakeModel](ctx, drv, query.FindBy[fixture.Cake]())
	require.ErrorIs(t, err, query.ErrPrimaryKeyArity)
	require.NoError(t, mock.ExpectationsWereMet(), "nothing was sent to the database")
}
