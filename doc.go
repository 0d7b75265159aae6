// Package strata is a typed entity/relation mapping layer over SQL databases.
//
// Tables are described as zero-state entity types that enumerate their
// columns, primary key and relations. Queries are composed through generic
// builders parameterized by the entity type, rendered to a portable SQL AST,
// and executed against a pluggable backend.
//
// # Packages
//
//   - entity: entities, typed columns, relations and active models
//   - query: Select, Insert, Update and Delete builders
//   - executor: statement execution, row decoding, streaming and transactions
//   - dialect: backend-agnostic statements, rows and driver interfaces
//   - dialect/sql: SQL AST, dialect rendering and database/sql drivers
//   - dialect/sql/schema: physical schema descriptors and introspection
//   - codegen: schema transformer and entity writer
//
// # Usage
//
//	db, err := executor.Connect(ctx, dialect.ConnectOptions{URL: "sqlite::memory:"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	cakes, err := executor.All[CakeModel](ctx, db,
//	    query.Find[Cake]().Filter(CakeName.Contains("chocolate")))
//
// This package holds the error taxonomy shared by every layer and the result
// Cache interface.
package strata
