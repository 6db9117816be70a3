package api

import (
	"time"

	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/service"
	"github.com/phrazzld/account-service/internal/store"
)

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Handle      string `json:"handle"      validate:"required"`
	Email       string `json:"email"       validate:"required"`
	Secret      string `json:"secret"      validate:"required"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// ToInput converts the request into the service registration input.
func (r RegisterRequest) ToInput() service.RegisterInput {
	return service.RegisterInput{
		Handle:      r.Handle,
		Email:       r.Email,
		Secret:      r.Secret,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
	}
}

// UpdateAccountRequest defines the payload for profile updates.
// Omitted fields are left unchanged.
type UpdateAccountRequest struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
}

// ToUpdate converts the request into the service update input.
func (r UpdateAccountRequest) ToUpdate() service.UpdateAccountInput {
	return service.UpdateAccountInput{
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	HandleOrEmail string `json:"handleOrEmail" validate:"required"`
	Secret        string `json:"secret"        validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Authenticated bool   `json:"authenticated"`
	AccountID     string `json:"accountId"`
}

// SetRoleRequest defines the payload for role assignment.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ChangeSecretRequest defines the payload for changing a secret.
type ChangeSecretRequest struct {
	CurrentSecret string `json:"currentSecret" validate:"required"`
	NewSecret     string `json:"newSecret"     validate:"required"`
}

// AvailabilityResponse answers the handle and email availability checks.
type AvailabilityResponse struct {
	Available bool `json:"available"`
}

// AccountResponse is the full public view of an account. It never carries
// the credential hash.
type AccountResponse struct {
	ID              string     `json:"id"`
	Handle          string     `json:"handle"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	FullName        string     `json:"fullName"`
	PhoneNumber     string     `json:"phoneNumber"`
	Role            string     `json:"role"`
	RoleDisplayName string     `json:"roleDisplayName"`
	IsActive        bool       `json:"isActive"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	LastLogin       *time.Time `json:"lastLogin"`
}

// BasicAccountResponse is the reduced projection used where contact details
// are not needed.
type BasicAccountResponse struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
}

// AccountPageResponse wraps one page of a listing.
type AccountPageResponse struct {
	Items         []AccountResponse `json:"items"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
	HasNext       bool              `json:"hasNext"`
}

// StatsResponse reports aggregate account counts.
type StatsResponse struct {
	Total           int64            `json:"total"`
	Active          int64            `json:"active"`
	RegisteredToday int64            `json:"registeredToday"`
	ByRole          map[string]int64 `json:"byRole"`
}

// ToAccountResponse maps an account to its full public view.
func ToAccountResponse(a *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:              a.ID.String(),
		Handle:          a.Handle,
		Email:           a.Email,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		FullName:        a.FullName(),
		PhoneNumber:     a.PhoneNumber,
		Role:            string(a.Role),
		RoleDisplayName: a.Role.DisplayName(),
		IsActive:        a.IsActive,
		IsEmailVerified: a.IsEmailVerified,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.LastLogin != nil {
		t := *a.LastLogin
		resp.LastLogin = &t
	}
	return resp
}

// ToBasicAccountResponse maps an account to the reduced projection.
func ToBasicAccountResponse(a *domain.Account) BasicAccountResponse {
	return BasicAccountResponse{
		ID:        a.ID.String(),
		Handle:    a.Handle,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		FullName:  a.FullName(),
		Role:      string(a.Role),
		IsActive:  a.IsActive,
	}
}

// ToAccountResponses maps a list, always returning a non-nil slice so that
// empty results encode as [].
func ToAccountResponses(accounts []*domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ToAccountResponse(a))
	}
	return out
}

// ToAccountPageResponse maps a store page.
func ToAccountPageResponse(p *store.AccountPage) AccountPageResponse {
	return AccountPageResponse{
		Items:         ToAccountResponses(p.Items),
		Page:          p.Index,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		HasNext:       p.HasNext(),
	}
}

// ToStatsResponse maps service statistics.
func ToStatsResponse(s *service.AccountStats) StatsResponse {
	byRole := make(map[string]int64, len(s.ByRole))
	for role, n := range s.ByRole {
		byRole[string(role)] = n
	}
	return StatsResponse{
		Total:           s.Total,
		Active:          s.Active,
		RegisteredToday: s.RegisteredToday,
		ByRole:          byRole,
	}
}
