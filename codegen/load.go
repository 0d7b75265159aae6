package codegen

import (
	"context"
	stdsql "database/sql"

	"github.com/syssam/strata/dialect/sql/schema"
)

// Source is a connection whose schema can be inspected. *sql.Driver
// implements it.
type Source interface {
	Dialect() string
	DB() *stdsql.DB
}

// Load inspects the schema of a live database and transforms it.
//
//	drv, err := sql.SQLiteConnector.Connect(ctx, dialect.ConnectOptions{URL: "sqlite:bakery.db"})
//	...
//	w, err := codegen.Load(ctx, drv.(*sql.Driver))
func Load(ctx context.Context, src Source, opts ...schema.InspectOption) (*Writer, error) {
	tables, err := schema.Inspect(ctx, src.DB(), src.Dialect(), opts...)
	if err != nil {
		return nil, err
	}
	return Transform(tables)
}
