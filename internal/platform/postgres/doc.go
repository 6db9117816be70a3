// Package postgres provides the PostgreSQL implementation of store.AccountStore.
// It handles query execution through database/sql with the pgx driver, maps
// PostgreSQL errors onto store sentinel errors, and ships the embedded goose
// migrations that create the accounts table.
package postgres
