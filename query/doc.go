// Package query builds SELECT, INSERT, UPDATE and DELETE statements scoped
// to an entity type.
//
// Builders accumulate clauses onto a statement AST from package
// dialect/sql, and Build renders the AST for one dialect. Errors found while
// building, such as a key lookup with the wrong number of values or a join
// on a composite key, are recorded and returned by Build, so a malformed
// statement is never rendered.
//
//	stmt, err := query.Find[Cake]().
//		Filter(CakeName.Contains("chocolate")).
//		OrderBy(CakeName).
//		Build(dialect.Postgres)
//
// Write builders consume active models: every column value is moved into
// the statement once, Unset values are left out of the statement and
// Unchanged values are only written in PersistAll mode.
package query
