// Package service contains the account management use cases.
//
// AccountService sits between the HTTP layer and an store.AccountStore. It
// owns the decision of whether a change is allowed (uniqueness pre-checks,
// input bounds, credential checks, lifecycle transitions) while the store
// owns durability and remains the final arbiter of handle and email
// uniqueness under concurrent writers.
//
// Read-modify-write operations run inside AccountStore.RunInTx so the
// precondition they check and the write they make are atomic. The service
// itself holds no mutable state; the clock, hasher and event emitter are
// injected through the constructor.
package service
