// Package mocks provides shared test doubles for the account service.
//
// Two styles are used, matching how the doubles are consumed:
//
//   - TestifyMockAccountStore is a testify/mock double for tests that assert
//     exact store interactions.
//   - MockAccountService and MockCredentialHasher use function fields so a
//     test overrides only the behavior it cares about.
//
// PlainHasher is a deterministic CredentialHasher for scenario tests, and
// RecordingEmitter captures emitted events for later assertions.
//
//	hasher := mocks.PlainHasher{}
//	svc, _ := service.NewAccountService(memory.NewMemoryAccountStore(nil), hasher, logger)
package mocks
