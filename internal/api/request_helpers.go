package api

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/api/shared"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/store"
)

// requestValidator reports field names as they appear in JSON.
var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads and validates a JSON body into v. On failure it writes
// a 400 response and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := requestValidator.Struct(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrInvalidFormat)
	}
	return n, nil
}

// queryTime reads a required RFC 3339 timestamp query parameter.
func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, domain.NewValidationError(name, "is required", domain.ErrEmptyContent)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(name, "must be an RFC 3339 timestamp", domain.ErrInvalidFormat)
	}
	return t, nil
}

// hasPaging reports whether the caller asked for a page explicitly.
func hasPaging(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("page") || q.Has("size")
}

// parsePageRequest reads page, size, sort and dir query parameters.
// Defaults: page 0, size store.DefaultPageSize, newest first.
func parsePageRequest(r *http.Request) (store.PageRequest, error) {
	index, err := queryInt(r, "page", 0)
	if err != nil {
		return store.PageRequest{}, err
	}
	size, err := queryInt(r, "size", store.DefaultPageSize)
	if err != nil {
		return store.PageRequest{}, err
	}
	sortBy, err := store.ParseSortField(r.URL.Query().Get("sort"))
	if err != nil {
		return store.PageRequest{}, err
	}

	page := store.PageRequest{Index: index, Size: size, SortBy: sortBy, Descending: true}
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("dir"))) {
	case "", "desc":
	case "asc":
		page.Descending = false
	default:
		return store.PageRequest{}, domain.NewValidationError("dir", "must be asc or desc", domain.ErrInvalidFormat)
	}
	return page, page.Validate()
}
