package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Field bounds for account data.
const (
	MinHandleLength = 3
	MaxHandleLength = 50
	MaxEmailLength  = 254
	MaxNameLength   = 50
	MaxPhoneLength  = 20

	// MaxSecretLength is bcrypt's input limit in bytes.
	MaxSecretLength = 72
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration can only fail for an empty tag or nil func.
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})
	return v
}

// Role is the authorization level of an account.
type Role string

// The closed set of roles.
const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
	RoleGuest   Role = "GUEST"
)

// Roles lists every valid role in privilege order.
var Roles = []Role{RoleAdmin, RoleManager, RoleUser, RoleGuest}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleGuest:
		return true
	}
	return false
}

// DisplayName returns the human readable label for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleManager:
		return "Manager"
	case RoleUser:
		return "Regular User"
	case RoleGuest:
		return "Guest User"
	}
	return string(r)
}

// ParseRole converts s (any case, surrounding spaces ignored) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", NewValidationError("role", "must be one of ADMIN, MANAGER, USER, GUEST", ErrInvalidRole)
	}
	return r, nil
}

// Profile holds the optional display fields of an account.
type Profile struct {
	FirstName   string
	LastName    string
	PhoneNumber string
}

// Validate checks the length bounds of every profile field.
func (p Profile) Validate() error {
	if err := ValidateName("first_name", p.FirstName); err != nil {
		return err
	}
	if err := ValidateName("last_name", p.LastName); err != nil {
		return err
	}
	return ValidatePhoneNumber(p.PhoneNumber)
}

// Account is a registered user of the application.
type Account struct {
	ID              uuid.UUID  `json:"id"`
	Handle          string     `json:"handle"`
	Email           string     `json:"email"`
	CredentialHash  string     `json:"-"` // Never expose the hash
	FirstName       string     `json:"first_name,omitempty"`
	LastName        string     `json:"last_name,omitempty"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	Role            Role       `json:"role"`
	IsActive        bool       `json:"is_active"`
	IsEmailVerified bool       `json:"is_email_verified"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
}

// NewAccount builds an unsaved account with the registration defaults:
// role USER, active, email not verified. ID and timestamps are left for the
// store to assign; the caller must set CredentialHash before saving.
func NewAccount(handle, email string, profile Profile) (*Account, error) {
	handle = NormalizeHandle(handle)
	email = NormalizeEmail(email)

	if err := ValidateHandle(handle); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return &Account{
		Handle:          handle,
		Email:           email,
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		PhoneNumber:     profile.PhoneNumber,
		Role:            RoleUser,
		IsActive:        true,
		IsEmailVerified: false,
	}, nil
}

// Validate checks that the account satisfies the invariants required before
// it is written to a store.
func (a *Account) Validate() error {
	if err := ValidateHandle(a.Handle); err != nil {
		return err
	}
	if err := ValidateEmail(a.Email); err != nil {
		return err
	}
	if a.CredentialHash == "" {
		return NewValidationError("credential_hash", "cannot be empty", ErrEmptyContent)
	}
	if !a.Role.Valid() {
		return NewValidationError("role", "must be one of ADMIN, MANAGER, USER, GUEST", ErrInvalidRole)
	}
	if !a.CreatedAt.IsZero() && a.UpdatedAt.Before(a.CreatedAt) {
		return NewValidationError("updated_at", "cannot be before created_at", ErrInvalidFormat)
	}
	return a.Profile().Validate()
}

// Profile returns the optional display fields.
func (a *Account) Profile() Profile {
	return Profile{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		PhoneNumber: a.PhoneNumber,
	}
}

// ChangeEmail sets a new email and clears the verification flag when the
// address actually changes. It reports whether a change happened.
func (a *Account) ChangeEmail(email string) (bool, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return false, err
	}
	if email == a.Email {
		return false, nil
	}
	a.Email = email
	a.IsEmailVerified = false
	return true, nil
}

// SetRole assigns a role from the closed set.
func (a *Account) SetRole(role Role) error {
	if !role.Valid() {
		return NewValidationError("role", "must be one of ADMIN, MANAGER, USER, GUEST", ErrInvalidRole)
	}
	a.Role = role
	return nil
}

// FullName joins first and last name with a single space.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// InactiveSince reports whether the account has not logged in since cutoff.
// Accounts that never logged in always qualify.
func (a *Account) InactiveSince(cutoff time.Time) bool {
	return a.LastLogin == nil || a.LastLogin.Before(cutoff)
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	if a.LastLogin != nil {
		t := *a.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// NormalizeHandle trims surrounding whitespace. Handles stay case-sensitive.
func NormalizeHandle(handle string) string {
	return strings.TrimSpace(handle)
}

// NormalizeEmail trims and lower-cases an email so that uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateHandle checks that a handle is 3-50 characters of letters, digits,
// dots, underscores or hyphens.
func ValidateHandle(handle string) error {
	if handle == "" {
		return NewValidationError("handle", "cannot be empty", ErrEmptyContent)
	}
	if err := validate.Var(handle, "min=3,max=50,handle"); err != nil {
		return NewValidationError("handle",
			"must be 3-50 characters of letters, digits, '.', '_' or '-'", ErrInvalidHandle)
	}
	return nil
}

// ValidateEmail checks email syntax and length.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "cannot be empty", ErrEmptyContent)
	}
	if err := validate.Var(email, "email,max=254"); err != nil {
		return NewValidationError("email", "is not a valid email address", ErrInvalidEmail)
	}
	return nil
}

// ValidateSecret checks that a plaintext secret is usable. The secret must
// contain a non-whitespace character and fit bcrypt's 72 byte input.
func ValidateSecret(field, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return NewValidationError(field, "cannot be empty", ErrInvalidSecret)
	}
	if len(secret) > MaxSecretLength {
		return NewValidationError(field, "must be at most 72 bytes long", ErrInvalidSecret)
	}
	return nil
}

// ValidateName checks a first or last name against MaxNameLength.
func ValidateName(field, name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return NewValidationError(field, "cannot exceed 50 characters", ErrFieldTooLong)
	}
	return nil
}

// ValidatePhoneNumber checks a phone number against MaxPhoneLength.
func ValidatePhoneNumber(phone string) error {
	if utf8.RuneCountInString(phone) > MaxPhoneLength {
		return NewValidationError("phone_number", "cannot exceed 20 characters", ErrFieldTooLong)
	}
	return nil
}
