// Package sql provides the portable SQL statement AST, its per-dialect
// renderer, and a database/sql backed implementation of the dialect
// connection interfaces.
//
// # Statements
//
// SELECT, INSERT, UPDATE and DELETE statements accumulate clauses in call
// order and are rendered for one dialect by Build:
//
//	stmt, err := sql.Select(sql.Col("cake", "id"), sql.Col("cake", "name")).
//	    From("cake").
//	    Where(sql.EQ(sql.Col("cake", "id"), 5)).
//	    Build(dialect.MySQL)
//	// SELECT `cake`.`id`, `cake`.`name` FROM `cake` WHERE `cake`.`id` = ?
//
// Identifiers are quoted with backticks for MySQL and double quotes for
// Postgres and SQLite. Placeholders are "?" except for Postgres, which uses
// "$1", "$2" and so on. Rendering is pure: the same AST and dialect always
// produce the same statement.
//
// # Predicates
//
//	sql.EQ(col, "john")              // col = ?
//	sql.NEQ(col, "deleted")          // col <> ?
//	sql.Between(col, 1, 10)          // col BETWEEN ? AND ?
//	sql.Contains(col, "john")        // col LIKE '%john%'
//	sql.IsNull(col)                  // col IS NULL
//	sql.In(col, "active", "pending") // col IN (?, ?)
//	sql.Or(p1, sql.And(p2, p3))      // p1 OR (p2 AND p3)
//
// # Connections
//
// Connectors open pooled connections for mysql://, postgres:// and sqlite:
// URIs. Every statement runs on a pooled connection; a transaction and a
// statement carrying session variables (WithVar) hold a single connection
// until they complete.
package sql
