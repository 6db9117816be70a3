package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathUUID(t *testing.T) {
	id := uuid.New()
	r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	got, err := getPathUUID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "123")
	_, err = getPathUUID(r, "id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = getPathUUID(httptest.NewRequest(http.MethodGet, "/", nil), "id")
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "id", vErr.Field)
}

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		query     string
		want      store.PageRequest
		wantField string
	}{
		{"", store.PageRequest{Index: 0, Size: store.DefaultPageSize, SortBy: store.SortByCreatedAt, Descending: true}, ""},
		{"?page=2&size=5&sort=lastLogin&dir=ASC", store.PageRequest{Index: 2, Size: 5, SortBy: store.SortByLastLogin}, ""},
		{"?sort=email&dir=desc", store.PageRequest{Size: store.DefaultPageSize, SortBy: store.SortByEmail, Descending: true}, ""},
		{"?page=-1", store.PageRequest{}, "page"},
		{"?size=0", store.PageRequest{}, "size"},
		{"?size=101", store.PageRequest{}, "size"},
		{"?size=ten", store.PageRequest{}, "size"},
		{"?sort=secret", store.PageRequest{}, "sort"},
		{"?dir=sideways", store.PageRequest{}, "dir"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, err := parsePageRequest(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			if tt.wantField != "" {
				var vErr *domain.ValidationError
				require.True(t, errors.As(err, &vErr), "got %v", err)
				assert.Equal(t, tt.wantField, vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, page)
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?days=14&from=2024-03-01T10:00:00Z&bad=tomorrow", nil)

	n, err := queryInt(r, "days", 30)
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	n, err = queryInt(r, "missing", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	from, err := queryTime(r, "from")
	require.NoError(t, err)
	assert.Equal(t, 2024, from.Year())

	_, err = queryTime(r, "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
	_, err = queryTime(r, "to")
	assert.ErrorIs(t, err, domain.ErrEmptyContent)

	assert.False(t, hasPaging(r))
	assert.True(t, hasPaging(httptest.NewRequest(http.MethodGet, "/?size=3", nil)))
}
