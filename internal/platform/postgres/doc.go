// Package postgres provides PostgreSQL-backed implementations of the read-only
// interfaces defined in the internal/store package, together with the
// embedded schema migrations for the event logs and the content catalog.
package postgres
