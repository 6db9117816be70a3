package store

import (
	"fmt"
	"math"
	"strings"

	"github.com/phrazzld/account-service/internal/domain"
)

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortField names an account column that listings can be ordered by.
type SortField string

// Sortable account fields.
const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByHandle    SortField = "handle"
	SortByEmail     SortField = "email"
	SortByLastLogin SortField = "last_login"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByHandle, SortByEmail, SortByLastLogin:
		return true
	}
	return false
}

// ParseSortField accepts snake_case or camelCase names ("lastLogin").
// An empty string yields SortByCreatedAt.
func ParseSortField(s string) (SortField, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortByCreatedAt, nil
	}
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "createdat":
		return SortByCreatedAt, nil
	case "updatedat":
		return SortByUpdatedAt, nil
	case "handle":
		return SortByHandle, nil
	case "email":
		return SortByEmail, nil
	case "lastlogin":
		return SortByLastLogin, nil
	}
	return "", domain.NewValidationError("sort",
		"must be one of created_at, updated_at, handle, email, last_login", domain.ErrInvalidFormat)
}

// PageRequest selects a zero-based page of a listing.
type PageRequest struct {
	Index      int
	Size       int
	SortBy     SortField
	Descending bool
}

// NewPageRequest builds a request ordered by creation time, newest first.
func NewPageRequest(index, size int) PageRequest {
	return PageRequest{
		Index:      index,
		Size:       size,
		SortBy:     SortByCreatedAt,
		Descending: true,
	}
}

// Validate checks the page bounds and sort field.
func (p PageRequest) Validate() error {
	if p.Index < 0 {
		return domain.NewValidationError("page", "cannot be negative", domain.ErrInvalidFormat)
	}
	if p.Size <= 0 || p.Size > MaxPageSize {
		return domain.NewValidationError("size",
			fmt.Sprintf("must be between 1 and %d", MaxPageSize), domain.ErrInvalidFormat)
	}
	if p.Index > math.MaxInt/p.Size {
		return domain.NewValidationError("page", "is out of range", domain.ErrInvalidFormat)
	}
	if p.SortBy != "" && !p.SortBy.Valid() {
		return domain.NewValidationError("sort", "unknown sort field", domain.ErrInvalidFormat)
	}
	return nil
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt
// instead of wrapping.
func (p PageRequest) Offset() int {
	if p.Index <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Index > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Index * p.Size
}

// OrderBy returns the effective sort field, defaulting to creation time.
func (p PageRequest) OrderBy() SortField {
	if p.SortBy == "" {
		return SortByCreatedAt
	}
	return p.SortBy
}

// AccountPage is one page of a listing plus the totals of the full result.
type AccountPage struct {
	Items         []*domain.Account
	TotalElements int64
	TotalPages    int
	Index         int
	Size          int
}

// NewAccountPage assembles a page and derives TotalPages as ceil(total/size).
func NewAccountPage(items []*domain.Account, total int64, req PageRequest) *AccountPage {
	if items == nil {
		items = []*domain.Account{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &AccountPage{
		Items:         items,
		TotalElements: total,
		TotalPages:    pages,
		Index:         req.Index,
		Size:          req.Size,
	}
}

// HasNext reports whether a later page exists.
func (p *AccountPage) HasNext() bool {
	return p.Index < p.TotalPages-1
}
