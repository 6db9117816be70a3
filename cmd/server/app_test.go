package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/account-service/internal/config"
	"github.com/phrazzld/account-service/internal/platform/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:                   0,
			LogLevel:               "debug",
			ShutdownTimeoutSeconds: 1,
		},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Auth:     config.AuthConfig{BCryptCost: bcrypt.MinCost},
		Task:     config.TaskConfig{QueueSize: 10, WorkerCount: 1},
	}
}

func newTestApp(t *testing.T) (*application, http.Handler) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := assembleApplication(testConfig(), log, memory.NewMemoryAccountStore(log))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		app.cleanup(ctx)
	})
	return app, app.setupRouter()
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, r))
	return w
}

func TestServer_RegisterLoginFlow(t *testing.T) {
	_, router := newTestApp(t)

	w := call(t, router, http.MethodPost, "/api/accounts/register",
		`{"handle":"alice","email":"Alice@Example.com","secret":"pw123456","firstName":"Alice"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	var created struct {
		ID        string     `json:"id"`
		Email     string     `json:"email"`
		LastLogin *time.Time `json:"lastLogin"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Nil(t, created.LastLogin)

	w = call(t, router, http.MethodPost, "/api/accounts/login", `{"handleOrEmail":"ALICE@example.com","secret":"pw123456"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"authenticated":true,"accountId":"`+created.ID+`"}`, w.Body.String())

	require.Eventually(t, func() bool {
		w := call(t, router, http.MethodGet, "/api/accounts/"+created.ID, "")
		var got struct {
			LastLogin *time.Time `json:"lastLogin"`
		}
		return w.Code == http.StatusOK &&
			json.Unmarshal(w.Body.Bytes(), &got) == nil &&
			got.LastLogin != nil
	}, 2*time.Second, 10*time.Millisecond)

	w = call(t, router, http.MethodPost, "/api/accounts/login", `{"handleOrEmail":"alice","secret":"wrong-secret"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, router, http.MethodPost, "/api/accounts/register",
		`{"handle":"alice2","email":"alice@example.com","secret":"pw123456"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	_, router := newTestApp(t)

	w := call(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	call(t, router, http.MethodGet, "/api/accounts/check-handle/bob", "")

	w = call(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/accounts/check-handle/{handle}",status="200"} 1`)
	assert.Contains(t, body, "go_goroutines")
	assert.Contains(t, body, "account_task_queue_depth 0")
}

func TestOpenStore(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts, db, err := openStore(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory}, log)
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Nil(t, db)

	_, _, err = openStore(context.Background(), config.DatabaseConfig{Driver: "sqlite"}, log)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestRunMigrationCommand_RequiresPostgres(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := runMigrationCommand(context.Background(), testConfig(), "up", log)
	assert.ErrorContains(t, err, "migrations require the postgres driver")
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(""))
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ACCOUNTS_TEST_ENV_VALUE=from-file\n"), 0o600))
	t.Setenv("ACCOUNTS_TEST_ENV_VALUE", "")
	require.NoError(t, os.Unsetenv("ACCOUNTS_TEST_ENV_VALUE"))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("ACCOUNTS_TEST_ENV_VALUE"))
}
