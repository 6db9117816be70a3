// Package store defines the persistence contract for accounts.
// The AccountStore interface keeps the account service independent of the
// storage engine; the Postgres and in-memory implementations live under
// internal/platform. Sentinel errors here are the only failure values the
// service inspects, so every implementation must translate its native
// errors into them.
package store
