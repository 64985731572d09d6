package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pointkeep/pointkeep/internal/handler/dto"
	"github.com/pointkeep/pointkeep/internal/metrics"
	"github.com/pointkeep/pointkeep/internal/middleware"
	"github.com/pointkeep/pointkeep/internal/model"
	"github.com/pointkeep/pointkeep/internal/service"
)

// LoyaltyHandler handles HTTP requests for users and their points ledgers.
type LoyaltyHandler struct {
	svc     *service.LedgerService
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewLoyaltyHandler creates a new LoyaltyHandler.
func NewLoyaltyHandler(svc *service.LedgerService, recorder metrics.Recorder, logger *slog.Logger) *LoyaltyHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoyaltyHandler{
		svc:     svc,
		metrics: recorder,
		logger:  logger,
	}
}

// Routes mounts the loyalty endpoints on r.
func (h *LoyaltyHandler) Routes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Get("/balance/{userId}", h.Balance)
	r.Post("/transaction", h.RecordTransaction)
	r.Get("/transactions/{userId}", h.Transactions)
}

// Register handles POST /api/v1/register.
func (h *LoyaltyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	var v middleware.Validator
	v.Check("name", middleware.ValidateName(name))
	v.Check("email", middleware.ValidateEmail(email))
	if err := v.Err(); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	user, err := h.svc.Register(r.Context(), name, email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Balance handles GET /api/v1/balance/{userId}.
func (h *LoyaltyHandler) Balance(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetBalance(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBalanceResponse(view))
}

// RecordTransaction handles POST /api/v1/transaction.
func (h *LoyaltyHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if !h.decode(w, r, &req) {
		return
	}

	amount, amountErr := parseAmount(req.Amount)

	var v middleware.Validator
	v.Check("userId", middleware.ValidateUserID(req.UserID))
	v.Check("type", middleware.ValidateTransactionType(req.Type))
	v.Check("amount", amountErr)
	if err := v.Err(); err != nil {
		h.metrics.IncTransactionRejected(metrics.ReasonInvalid)
		h.handleServiceError(w, r, err)
		return
	}

	tx, err := h.svc.RecordTransaction(r.Context(), req.UserID, model.TransactionType(req.Type), amount)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransactionResponse(*tx))
}

// Transactions handles GET /api/v1/transactions/{userId}.
func (h *LoyaltyHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.GetTransactions(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransactionResponses(txs))
}

// decode reads a JSON body into dst, writing the error response itself
// when the body is unusable.
func (h *LoyaltyHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	return false
}

// parseAmount accepts only a bare JSON number.
func parseAmount(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, middleware.ErrAmountRequired
	}
	if raw[0] == '"' {
		return 0, middleware.ErrAmountInvalid
	}
	return middleware.ParseAmount(json.Number(raw))
}

// handleServiceError maps service errors to HTTP responses.
func (h *LoyaltyHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *middleware.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_FAILED",
			Errors: verr.Fields,
		})
	case errors.Is(err, service.ErrInvalidTransaction):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid transaction")
	case errors.Is(err, service.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "DUPLICATE_EMAIL", "Email is already registered")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", "Insufficient balance")
	case errors.Is(err, service.ErrBalanceOverflow):
		writeError(w, http.StatusUnprocessableEntity, "BALANCE_OVERFLOW", "Balance would exceed the maximum")
	default:
		h.logger.ErrorContext(r.Context(), "internal_error",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
