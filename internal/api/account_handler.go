package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/api/shared"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/platform/logger"
	"github.com/phrazzld/account-service/internal/service"
	"github.com/phrazzld/account-service/internal/task"
)

// DefaultInactiveDays is used by the inactive listing when no days are given.
const DefaultInactiveDays = 30

// TaskSubmitter accepts background tasks without blocking.
type TaskSubmitter interface {
	Submit(ctx context.Context, t task.Task) error
}

// AccountHandler serves the /api/accounts endpoints.
type AccountHandler struct {
	accounts service.AccountService
	tasks    TaskSubmitter
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler. When tasks is nil, logins are
// recorded inline instead of in the background.
func NewAccountHandler(accounts service.AccountService, tasks TaskSubmitter, logger *slog.Logger) *AccountHandler {
	if accounts == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("account service cannot be nil for AccountHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountHandler{
		accounts: accounts,
		tasks:    tasks,
		logger:   logger.With(slog.String("component", "account_handler")),
	}
}

// Routes returns a router with every account endpoint, ready to be mounted
// at /api/accounts.
func (h *AccountHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Get("/", h.ListAccounts)
	r.Get("/active", h.ListActiveAccounts)
	r.Get("/role/{role}", h.ListAccountsByRole)
	r.Get("/verified/{verified}", h.ListAccountsByEmailVerified)
	r.Get("/search", h.SearchAccounts)
	r.Get("/by-name", h.FindAccountsByName)
	r.Get("/created", h.ListAccountsCreatedBetween)
	r.Get("/inactive", h.ListInactiveAccounts)
	r.Get("/stats", h.GetStats)
	r.Get("/check-handle/{handle}", h.CheckHandle)
	r.Get("/check-email/{email}", h.CheckEmail)
	r.Get("/handle/{handle}", h.GetAccountByHandle)
	r.Get("/email/{email}", h.GetAccountByEmail)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetAccount)
		r.Put("/", h.UpdateAccount)
		r.Delete("/", h.DeleteAccount)
		r.Patch("/activate", h.Activate)
		r.Patch("/deactivate", h.Deactivate)
		r.Patch("/verify-email", h.VerifyEmail)
		r.Patch("/role", h.SetRole)
		r.Patch("/change-secret", h.ChangeSecret)
	})

	return r
}

// pathParam returns an unescaped path parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *AccountHandler) respondAccount(w http.ResponseWriter, r *http.Request, status int, a *domain.Account) {
	shared.RespondWithJSON(w, r, status, ToAccountResponse(a))
}

// Register handles POST /register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	account, err := h.accounts.Register(r.Context(), req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register account")
		return
	}
	h.respondAccount(w, r, http.StatusCreated, account)
}

// Login handles POST /login. A successful login schedules last-login
// recording; its outcome never affects the response.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	id, ok, err := h.accounts.Authenticate(r.Context(), req.HandleOrEmail, req.Secret)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate")
		return
	}
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", nil,
			shared.WithElevatedLogLevel())
		return
	}

	h.recordLogin(r.Context(), log, id.String(), task.NewRecordLoginTask(h.accounts, id).WithLogger(log))

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{Authenticated: true, AccountID: id.String()})
}

func (h *AccountHandler) recordLogin(ctx context.Context, log *slog.Logger, accountID string, t *task.RecordLoginTask) {
	if h.tasks == nil {
		// Execute logs its own failure.
		_ = t.Execute(ctx)
		return
	}
	// Workers run the task on their own context; only the bound logger
	// carries over from the request.
	if err := h.tasks.Submit(ctx, t); err != nil {
		log.Warn("login recording not scheduled",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()))
	}
}

// ListAccounts handles GET /.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	result, err := h.accounts.ListAccounts(r.Context(), page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list accounts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ToAccountPageResponse(result))
}

// ListActiveAccounts handles GET /active. The response is paged only when
// page or size is given.
func (h *AccountHandler) ListActiveAccounts(w http.ResponseWriter, r *http.Request) {
	if hasPaging(r) {
		page, err := parsePageRequest(r)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		result, err := h.accounts.ListActiveAccountsPaged(r.Context(), page)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to list accounts")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, ToAccountPageResponse(result))
		return
	}

	accounts, err := h.accounts.ListActiveAccounts(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list accounts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ToAccountResponses(accounts))
}

// ListAccountsByRole handles GET /role/{role}.
func (h *AccountHandler) ListAccountsByRole(w http.ResponseWriter, r *http.Request) {
	role, err := domain.ParseRole(pathParam(r, "role"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	accounts, err := h.accounts.ListAccountsByRole(r.Context(), role)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list accounts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ToAccountResponses(accounts))
}

// ListAccountsByEmailVerified handles GET /verified/{verified}.
func (h *AccountHandler) ListAccountsByEmailVerified(w http.ResponseWriter, r *http.Request) {
	verified, err := strconv.ParseBool(pathParam(r, "verified"))
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("verified", "must be true or false", domain.ErrInvalidFormat), "")
		return
	}
	accounts, err := h.accounts.ListAccountsByEmailVerified(r.Context(), verified)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list accounts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ToAccountResponses(accounts))
}

// SearchAccounts handles GET /search?q=.
func (h *AccountHandler) SearchAccounts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	result, err := h.accounts.SearchAccounts(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search accounts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ToAccountPageResponse(result))
}

// FindAccountsByName handles GET /by-name?firstName=&lastName=.
func (h *AccountHandler) FindAccountsByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accounts, err := h.accounts.FindAccountsByName(r.Context(), q.Get("firstName"), q.Get("lastName"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to find accounts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ToAccountResponses(accounts))
}

// ListAccountsCreatedBetween handles GET /created?from=&to=.
func (h *AccountHandler) ListAccountsCreatedBetween(w http.ResponseWriter, r *http.Request) {
	from, err := queryTime(r, "from")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	accounts, err := h.accounts.ListAccountsCreatedBetween(r.Context(), from, to)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list accounts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ToAccountResponses(accounts))
}

// ListInactiveAccounts handles GET /inactive?days=.
func (h *AccountHandler) ListInactiveAccounts(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", DefaultInactiveDays)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	accounts, err := h.accounts.ListInactiveAccounts(r.Context(), days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list accounts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ToAccountResponses(accounts))
}

// GetStats handles GET /stats.
func (h *AccountHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.accounts.GetStats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ToStatsResponse(stats))
}

// CheckHandle handles GET /check-handle/{handle}.
func (h *AccountHandler) CheckHandle(w http.ResponseWriter, r *http.Request) {
	available, err := h.accounts.IsHandleAvailable(r.Context(), pathParam(r, "handle"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check handle")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AvailabilityResponse{Available: available})
}

// CheckEmail handles GET /check-email/{email}.
func (h *AccountHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	available, err := h.accounts.IsEmailAvailable(r.Context(), pathParam(r, "email"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check email")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AvailabilityResponse{Available: available})
}

// GetAccountByHandle handles GET /handle/{handle}.
func (h *AccountHandler) GetAccountByHandle(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetAccountByHandle(r.Context(), pathParam(r, "handle"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get account")
		return
	}
	h.respondAccount(w, r, http.StatusOK, account)
}

// GetAccountByEmail handles GET /email/{email}.
func (h *AccountHandler) GetAccountByEmail(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetAccountByEmail(r.Context(), pathParam(r, "email"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get account")
		return
	}
	h.respondAccount(w, r, http.StatusOK, account)
}

// GetAccount handles GET /{id}. ?view=basic selects the reduced projection.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get account")
		return
	}
	if strings.EqualFold(r.URL.Query().Get("view"), "basic") {
		shared.RespondWithJSON(w, r, http.StatusOK, ToBasicAccountResponse(account))
		return
	}
	h.respondAccount(w, r, http.StatusOK, account)
}

// UpdateAccount handles PUT /{id}.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	var req UpdateAccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	account, err := h.accounts.UpdateAccount(r.Context(), id, req.ToUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update account")
		return
	}
	h.respondAccount(w, r, http.StatusOK, account)
}

// DeleteAccount handles DELETE /{id}.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lifecycle runs one of the id-only state transitions.
func (h *AccountHandler) lifecycle(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, uuid.UUID) (*domain.Account, error),
) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	account, err := op(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update account")
		return
	}
	h.respondAccount(w, r, http.StatusOK, account)
}

// Activate handles PATCH /{id}/activate.
func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.accounts.Activate)
}

// Deactivate handles PATCH /{id}/deactivate.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.accounts.Deactivate)
}

// VerifyEmail handles PATCH /{id}/verify-email.
func (h *AccountHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.accounts.VerifyEmail)
}

// SetRole handles PATCH /{id}/role.
func (h *AccountHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	var req SetRoleRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	account, err := h.accounts.SetRole(r.Context(), id, role)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to set role")
		return
	}
	h.respondAccount(w, r, http.StatusOK, account)
}

// ChangeSecret handles PATCH /{id}/change-secret. A wrong current secret is
// a 400.
func (h *AccountHandler) ChangeSecret(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	var req ChangeSecretRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	changed, err := h.accounts.ChangeSecret(r.Context(), id, req.CurrentSecret, req.NewSecret)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to change secret")
		return
	}
	if !changed {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Current secret is incorrect")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
