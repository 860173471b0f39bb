package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"caixa/backend/internal/cashback"
	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/service"
	"caixa/backend/internal/store"
)

type cashbackGrantRequest struct {
	TaxID  string       `json:"tax_id"`
	Name   string       `json:"name"`
	Amount money.Amount `json:"amount"`
}

type cashbackRedeemRequest struct {
	TaxID  string       `json:"tax_id"`
	Amount money.Amount `json:"amount"`
}

func (a *API) cancellationRoutes(r chi.Router) {
	r.Get("/cancellations", a.handleListCancellations)
	r.Get("/cancellations/integrity", a.handleCancellationIntegrity)
	r.Post("/cancellations", a.handleCreateCancellation)
	r.Put("/cancellations/{id}", a.handleUpdateCancellation)
	r.Delete("/cancellations/{id}", a.handleDeleteCancellation)
}

func (a *API) cashbackRoutes(r chi.Router) {
	r.Get("/cashback", a.handleListCashback)
	r.Get("/cashback/{taxID}", a.handleGetCashback)
	r.Get("/cashback/{taxID}/balance", a.handleCashbackBalance)
	r.Post("/cashback/grant", a.handleGrantCashback)
	r.Post("/cashback/redeem", a.handleRedeemCashback)
}

func (a *API) handleListCancellations(w http.ResponseWriter, r *http.Request) {
	state := a.service.State()
	writeJSON(w, http.StatusOK, state.Snapshot.Cancellations)
}

func (a *API) handleCancellationIntegrity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.CancellationIntegrity())
}

func (a *API) handleCreateCancellation(w http.ResponseWriter, r *http.Request) {
	var req domain.Cancellation
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, state, err := a.service.AddCancellation(r.Context(), req)
	if err != nil {
		writeCancellationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"cancellation": created,
		"state":        state,
	})
}

func (a *API) handleUpdateCancellation(w http.ResponseWriter, r *http.Request) {
	var req domain.Cancellation
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	updated, state, err := a.service.UpdateCancellation(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeCancellationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cancellation": updated,
		"state":        state,
	})
}

func (a *API) handleDeleteCancellation(w http.ResponseWriter, r *http.Request) {
	state, err := a.service.RemoveCancellation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCancellationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func writeCancellationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCancellationNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, service.ErrInvalidCancellation):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (a *API) handleListCashback(w http.ResponseWriter, r *http.Request) {
	customers, err := a.service.ListCashbackCustomers(r.Context())
	if err != nil {
		writeCashbackError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (a *API) handleGetCashback(w http.ResponseWriter, r *http.Request) {
	customer, err := a.service.CashbackCustomer(r.Context(), chi.URLParam(r, "taxID"))
	if err != nil {
		writeCashbackError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (a *API) handleCashbackBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := a.service.CashbackBalance(r.Context(), chi.URLParam(r, "taxID"))
	if err != nil {
		writeCashbackError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"available": balance,
	})
}

func (a *API) handleGrantCashback(w http.ResponseWriter, r *http.Request) {
	var req cashbackGrantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	customer, err := a.service.GrantCashback(r.Context(), req.TaxID, req.Name, req.Amount)
	if err != nil {
		writeCashbackError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// handleRedeemCashback answers 409 when the balance cannot cover the amount;
// nothing is written in that case.
func (a *API) handleRedeemCashback(w http.ResponseWriter, r *http.Request) {
	var req cashbackRedeemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ok, err := a.service.RedeemCashback(r.Context(), req.TaxID, req.Amount)
	if err != nil {
		writeCashbackError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"redeemed": false,
			"error":    "insufficient cashback balance",
		})
		return
	}

	balance, err := a.service.CashbackBalance(r.Context(), req.TaxID)
	if err != nil {
		writeCashbackError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"redeemed":  true,
		"available": balance,
	})
}

func writeCashbackError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cashback.ErrInvalidAmount), errors.Is(err, cashback.ErrInvalidTaxID):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, cashback.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (a *API) handleGetStartingFloat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"amount": a.service.DefaultStartingFloat(r.Context()),
	})
}

func (a *API) handleSetStartingFloat(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	amount, err := a.service.SetDefaultStartingFloat(r.Context(), req.Amount)
	if errors.Is(err, service.ErrForbidden) {
		writeError(w, http.StatusForbidden, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"amount": amount,
	})
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)
	logs, err := a.service.ListAuditLogs(r.Context(), r.URL.Query().Get("date"), limit)
	switch {
	case errors.Is(err, service.ErrAuditUnavailable):
		writeError(w, http.StatusNotImplemented, err)
		return
	case errors.Is(err, service.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (a *API) handleListOperators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.auth.ListOperators(r.Context()))
}

func (a *API) handleCreateOperator(w http.ResponseWriter, r *http.Request) {
	var req domain.OperatorCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := a.auth.CreateOperator(r.Context(), req)
	if errors.Is(err, store.ErrUserExists) {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
