// Package dialect defines the boundary between statement building and
// statement execution.
//
// A rendered Statement, a fetched Row and an ExecResult are the only values
// that cross the boundary. Backends implement Connector, Conn and Tx; the
// dialect/sql package provides the database/sql backed implementation for
// the supported dialects:
//
//   - MySQL: MySQL/MariaDB database
//   - Postgres: PostgreSQL database
//   - SQLite: SQLite database
//
// Rows are read with the generic accessor Get:
//
//	row, err := conn.QueryOne(ctx, stmt)
//	if err != nil {
//	    return err
//	}
//	if row == nil {
//	    return nil // no rows
//	}
//	name, err := dialect.Get[string](row, "name")
package dialect
