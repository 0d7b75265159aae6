package executor

import (
	"context"
	"fmt"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
)

// Transaction runs fn inside a transaction on one borrowed connection.
// The transaction is committed when fn returns nil and rolled back when fn
// returns an error or panics. A panic is re-raised after the rollback.
// When the rollback itself fails, both errors are returned in a
// *strata.RollbackError.
//
//	err := executor.Transaction(ctx, db, func(ctx context.Context, tx dialect.Tx) error {
//		if _, err := executor.Insert(ctx, tx, query.Insert[Cake](cake)); err != nil {
//			return err
//		}
//		_, err := executor.Insert(ctx, tx, query.Insert[Fruit](fruit))
//		return err
//	})
func Transaction(ctx context.Context, conn dialect.Conn, fn func(ctx context.Context, tx dialect.Tx) error) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(ctx, tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return &strata.RollbackError{Err: err, Rollback: rerr}
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("executor: commit: %w", err)
	}
	return nil
}
