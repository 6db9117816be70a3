// Package api exposes the account service over HTTP. It decodes and
// validates JSON requests, calls service.AccountService, and maps domain
// and service errors onto status codes with client-safe messages.
package api
