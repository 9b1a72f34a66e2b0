// Package database manages the SQLite connection and schema migrations
// for Haven Core.
//
// SQLite is used with WAL mode and a single-connection pool (one writer).
// Migrations are embedded into the binary by the top-level migrations
// package and applied in version order, one transaction each.
package database
