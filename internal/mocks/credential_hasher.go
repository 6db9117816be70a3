package mocks

import (
	"strings"
	"sync"

	"github.com/phrazzld/account-service/internal/service/auth"
)

// plainPrefix marks PlainHasher output so it never equals the secret itself.
const plainPrefix = "plain:"

// PlainHasher is a deterministic auth.CredentialHasher for tests.
// Hash("pw") is always "plain:pw".
type PlainHasher struct{}

// Hash implements auth.CredentialHasher
func (PlainHasher) Hash(secret string) (string, error) {
	return plainPrefix + secret, nil
}

// Verify implements auth.CredentialHasher
func (PlainHasher) Verify(secret, hash string) bool {
	return strings.HasPrefix(hash, plainPrefix) && hash == plainPrefix+secret
}

// MockCredentialHasher implements auth.CredentialHasher with overridable behavior.
// Without overrides it behaves like PlainHasher.
type MockCredentialHasher struct {
	HashFn   func(secret string) (string, error)
	VerifyFn func(secret, hash string) bool

	mu          sync.Mutex
	HashCalls   int
	VerifyCalls int
}

// Hash implements auth.CredentialHasher
func (m *MockCredentialHasher) Hash(secret string) (string, error) {
	m.mu.Lock()
	m.HashCalls++
	m.mu.Unlock()

	if m.HashFn != nil {
		return m.HashFn(secret)
	}
	return PlainHasher{}.Hash(secret)
}

// Verify implements auth.CredentialHasher
func (m *MockCredentialHasher) Verify(secret, hash string) bool {
	m.mu.Lock()
	m.VerifyCalls++
	m.mu.Unlock()

	if m.VerifyFn != nil {
		return m.VerifyFn(secret, hash)
	}
	return PlainHasher{}.Verify(secret, hash)
}

var (
	_ auth.CredentialHasher = PlainHasher{}
	_ auth.CredentialHasher = (*MockCredentialHasher)(nil)
)
