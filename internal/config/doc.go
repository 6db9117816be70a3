// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config.yaml, and ACCOUNTS_-prefixed environment
// variables. It provides type-safe access to settings needed by the server,
// the store, credential hashing and the background task runner.
package config
