package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/guard"
	"github.com/pitchside/league/internal/ledger"
	"github.com/pitchside/league/internal/repository"
	"github.com/pitchside/league/internal/service"
)

// WagerHandler handles wager, prediction and account endpoints.
type WagerHandler struct {
	svc         *service.WagerService
	accounts    repository.AccountRepository
	entries     repository.EntryRepository
	engine      *ledger.Engine
	limiter     *guard.RateLimiter
	idempotency *guard.IdempotencyGuard
}

// NewWagerHandler creates a new WagerHandler.
func NewWagerHandler(
	svc *service.WagerService,
	accounts repository.AccountRepository,
	entries repository.EntryRepository,
	engine *ledger.Engine,
	limiter *guard.RateLimiter,
	idempotency *guard.IdempotencyGuard,
) *WagerHandler {
	return &WagerHandler{
		svc:         svc,
		accounts:    accounts,
		entries:     entries,
		engine:      engine,
		limiter:     limiter,
		idempotency: idempotency,
	}
}

// PlaceWager handles POST /wagers. Requests may carry an Idempotency-Key
// header; a repeated key is rejected as a duplicate. Placement is rate
// limited per account.
func (h *WagerHandler) PlaceWager(w http.ResponseWriter, r *http.Request) {
	idemKey := r.Header.Get("Idempotency-Key")
	if v := h.idempotency.Claim(idemKey); !v.Allowed {
		RespondError(w, domain.ErrConflict(v.Reason))
		return
	}

	var input service.PlaceWagerInput
	if err := DecodeJSON(r, &input); err != nil {
		h.idempotency.Release(idemKey)
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if v := h.limiter.Allow(input.AccountID.String()); !v.Allowed {
		h.idempotency.Release(idemKey)
		RespondError(w, domain.ErrPrecondition(v.Reason))
		return
	}

	wager, err := h.svc.PlaceWager(r.Context(), input)
	if err != nil {
		h.idempotency.Release(idemKey)
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, wager)
}

// GetWager handles GET /wagers/{wagerID}.
func (h *WagerHandler) GetWager(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "wagerID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid wager id"))
		return
	}
	wager, err := h.svc.GetWager(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, wager)
}

// PlacePrediction handles POST /predictions.
func (h *WagerHandler) PlacePrediction(w http.ResponseWriter, r *http.Request) {
	var input service.PlacePredictionInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	p, err := h.svc.PlacePrediction(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, p)
}

type createAccountRequest struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// CreateAccount handles POST /accounts.
func (h *WagerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.Name == "" {
		RespondError(w, domain.ErrValidation("account name is required"))
		return
	}
	if req.Balance < 0 {
		RespondError(w, domain.ErrValidation("opening balance cannot be negative"))
		return
	}
	account := &domain.Account{ID: uuid.New(), Name: req.Name, Balance: req.Balance}
	if err := h.accounts.Create(r.Context(), account); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, account)
}

// GetAccount handles GET /accounts/{accountID}.
func (h *WagerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}
	account, err := h.accounts.FindByID(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	if account == nil {
		RespondError(w, domain.ErrNotFound("account", id.String()))
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

// ListEntries handles GET /accounts/{accountID}/entries.
func (h *WagerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}
	entries, err := h.entries.ListByAccount(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, entries)
}

// AuditAccount handles GET /accounts/{accountID}/audit. It replays the
// account's ledger and reports invariant violations, if any.
func (h *WagerHandler) AuditAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}
	report, err := h.engine.AuditAccount(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}
