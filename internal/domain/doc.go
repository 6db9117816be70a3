// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The Account entity owns its own invariants: handle and email format,
// the closed role set, profile field bounds, and the rule that changing an
// email clears the verification flag. Uniqueness is not checked here; it
// belongs to the store and the account service.
package domain
