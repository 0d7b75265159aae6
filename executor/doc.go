// Package executor sends statements built by package query to a
// connection and decodes the resulting rows into models.
//
// Every function takes a dialect.ExecQuerier, so the same call works on a
// pool and inside a transaction:
//
//	db, err := executor.Connect(ctx, dialect.ConnectOptions{URL: "postgres://localhost/bakery"})
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//	cakes, err := executor.All[CakeModel](ctx, db, query.Find[Cake]().OrderBy(CakeName))
//
// Models are decoded through their entity.FromRow implementation; a
// missing column or a value of the wrong type is reported as a
// *strata.DecodeError naming the column.
package executor
