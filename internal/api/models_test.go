package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAccountResponse(t *testing.T) {
	login := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := &domain.Account{
		ID:              uuid.New(),
		Handle:          "jsmith",
		Email:           "j@x.com",
		CredentialHash:  "hash-value",
		FirstName:       "John",
		LastName:        "Smith",
		Role:            domain.RoleManager,
		IsActive:        true,
		IsEmailVerified: true,
		LastLogin:       &login,
	}

	resp := ToAccountResponse(a)
	assert.Equal(t, "John Smith", resp.FullName)
	assert.Equal(t, "MANAGER", resp.Role)
	assert.Equal(t, "Manager", resp.RoleDisplayName)
	require.NotNil(t, resp.LastLogin)
	assert.NotSame(t, a.LastLogin, resp.LastLogin)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash-value")
	assert.Contains(t, string(raw), `"roleDisplayName":"Manager"`)

	basic, err := json.Marshal(ToBasicAccountResponse(a))
	require.NoError(t, err)
	assert.NotContains(t, string(basic), "j@x.com")
	assert.Contains(t, string(basic), `"fullName":"John Smith"`)
}

func TestToAccountResponses_Empty(t *testing.T) {
	raw, err := json.Marshal(ToAccountResponses(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestToAccountPageResponse(t *testing.T) {
	p := store.NewAccountPage(nil, 0, store.NewPageRequest(0, 10))
	resp := ToAccountPageResponse(p)
	assert.NotNil(t, resp.Items)
	assert.Equal(t, 0, resp.TotalPages)
	assert.False(t, resp.HasNext)
}

func TestUpdateAccountRequest_ToUpdate(t *testing.T) {
	var req UpdateAccountRequest
	require.NoError(t, json.Unmarshal([]byte(`{"firstName":"","phoneNumber":"555"}`), &req))
	in := req.ToUpdate()
	assert.Nil(t, in.Email)
	require.NotNil(t, in.FirstName)
	assert.Equal(t, "", *in.FirstName)
	assert.Equal(t, "555", *in.PhoneNumber)
}
