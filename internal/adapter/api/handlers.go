package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/remitline/remitline-backend/internal/usecase/feeadmin"
	"github.com/remitline/remitline-backend/internal/usecase/rates"
	"github.com/remitline/remitline-backend/internal/usecase/release"
	"github.com/remitline/remitline-backend/internal/usecase/settlement"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	settlement *settlement.SettlementService
	release    *release.ReleaseService
	feeAdmin   *feeadmin.FeeAdminService
	rates      *rates.RateService
	funds      domain.FundStore
	log        *slog.Logger
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidTransaction):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// --- ExecuteTransfer ---

type executeTransferRequest struct {
	SenderID            uuid.UUID `json:"sender_id"`
	ReceiverID          uuid.UUID `json:"receiver_id"`
	FundID              uuid.UUID `json:"fund_id"`
	Amount              string    `json:"amount"`
	SourceCurrency      string    `json:"source_currency"`
	DestinationCurrency string    `json:"destination_currency"`
	SenderBranchID      uuid.UUID `json:"sender_branch_id"`
	ReceiverBranchID    uuid.UUID `json:"receiver_branch_id"`
}

func (h *Handlers) ExecuteTransfer(w http.ResponseWriter, r *http.Request) {
	var req executeTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	receipt, err := h.settlement.ExecuteTransfer(r.Context(), GetActor(r.Context()), settlement.TransferInput{
		SenderID:            req.SenderID,
		ReceiverID:          req.ReceiverID,
		FundID:              req.FundID,
		Amount:              amount,
		SourceCurrency:      req.SourceCurrency,
		DestinationCurrency: req.DestinationCurrency,
		SenderBranchID:      req.SenderBranchID,
		ReceiverBranchID:    req.ReceiverBranchID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// --- CreateSimpleTransfer ---

type simpleTransferRequest struct {
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	FundID     uuid.UUID `json:"fund_id"`
	Amount     string    `json:"amount"`
}

func (h *Handlers) CreateSimpleTransfer(w http.ResponseWriter, r *http.Request) {
	var req simpleTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	record, err := h.settlement.CreateSimpleTransfer(r.Context(), GetActor(r.Context()), settlement.SimpleTransferInput{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		FundID:     req.FundID,
		Amount:     amount,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// --- ReleaseTransfer ---

type releaseRequest struct {
	Passcode   string    `json:"passcode"`
	ReceiverID uuid.UUID `json:"receiver_id"`
}

func (h *Handlers) ReleaseTransfer(w http.ResponseWriter, r *http.Request) {
	transferID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	var req releaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	record, err := h.release.Release(r.Context(), GetActor(r.Context()), transferID, req.Passcode, req.ReceiverID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// --- GetTransfer ---

func (h *Handlers) GetTransfer(w http.ResponseWriter, r *http.Request) {
	transferID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	record, err := h.release.View(r.Context(), GetActor(r.Context()), transferID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// --- GetFund ---

func (h *Handlers) GetFund(w http.ResponseWriter, r *http.Request) {
	fundID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fund id")
		return
	}

	fund, err := h.funds.GetByID(r.Context(), fundID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fund)
}

// --- Commission rates ---

type updateRateRequest struct {
	Scope string `json:"scope"`
	Rate  string `json:"rate"`
}

func (h *Handlers) UpdateCommissionRate(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseUUIDParam(r, "branchID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid branch id")
		return
	}

	var req updateRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rate: "+err.Error())
		return
	}

	updated, err := h.feeAdmin.UpdateRate(r.Context(), GetActor(r.Context()), branchID, domain.CommissionScope(req.Scope), rate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) ListCommissionRates(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseUUIDParam(r, "branchID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid branch id")
		return
	}

	configured, err := h.feeAdmin.ListBranchRates(r.Context(), branchID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, configured)
}

// --- Rates ---

func (h *Handlers) QuoteRate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	quote := h.rates.Quote(r.Context(), code)
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handlers) RefreshRate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	currency, err := h.rates.RefreshCurrency(r.Context(), code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currency)
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
