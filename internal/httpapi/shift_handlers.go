package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/service"
	"caixa/backend/internal/shift"
)

type amountRequest struct {
	Amount money.Amount `json:"amount"`
}

type flagRequest struct {
	Included bool `json:"included"`
}

type observationsRequest struct {
	Observations string `json:"observations"`
}

type justificationsRequest struct {
	A domain.Justification `json:"a"`
	B domain.Justification `json:"b"`
}

func (a *API) shiftRoutes(r chi.Router) {
	svc := a.service

	r.Route("/shift", func(r chi.Router) {
		r.Get("/", a.handleShiftState)
		r.Get("/totals", a.handleShiftTotals)
		r.Get("/validation", a.handleShiftValidation)
		r.Post("/save", a.handleShiftSave)
		r.Post("/load", a.handleShiftLoad)
		r.With(limitByIP(8, "too many manager PIN attempts")).Post("/clear", a.handleShiftClear)
		r.Put("/observations", withBody(func(_ *http.Request, body observationsRequest) (service.State, error) {
			return svc.SetObservations(body.Observations), nil
		}))

		r.Route("/entries", func(r chi.Router) {
			r.Put("/starting-float", withBody(func(_ *http.Request, body amountRequest) (service.State, error) {
				return svc.SetStartingFloat(body.Amount), nil
			}))

			r.Put("/channels/{channel}/total", withBody(func(r *http.Request, body amountRequest) (service.State, error) {
				return svc.SetDeclaredTotal(channelParam(r), body.Amount)
			}))
			r.Post("/channels/{channel}/splits", withBody(func(r *http.Request, body domain.Split) (service.State, error) {
				return svc.AddSplit(channelParam(r), body)
			}))
			r.Put("/channels/{channel}/splits/{index}", withIndexBody(func(r *http.Request, i int, body domain.Split) (service.State, error) {
				return svc.UpdateSplit(channelParam(r), i, body)
			}))
			r.Delete("/channels/{channel}/splits/{index}", withIndex(func(r *http.Request, i int) (service.State, error) {
				return svc.RemoveSplit(channelParam(r), i)
			}))

			r.Post("/checks", withBody(func(_ *http.Request, body domain.Check) (service.State, error) {
				return svc.AddCheck(body), nil
			}))
			r.Put("/checks/{index}", withIndexBody(func(_ *http.Request, i int, body domain.Check) (service.State, error) {
				return svc.UpdateCheck(i, body)
			}))
			r.Delete("/checks/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveCheck(i)
			}))

			r.Post("/taxes", withBody(func(_ *http.Request, body domain.Tax) (service.State, error) {
				return svc.AddTax(body), nil
			}))
			r.Delete("/taxes/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveTax(i)
			}))

			r.Post("/misc-income", withBody(func(_ *http.Request, body domain.LedgerItem) (service.State, error) {
				return svc.AddMiscIncome(body), nil
			}))
			r.Delete("/misc-income/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveMiscIncome(i)
			}))
			r.Put("/misc-income-total", withBody(func(_ *http.Request, body amountRequest) (service.State, error) {
				return svc.SetMiscIncomeTotal(body.Amount), nil
			}))

			r.Post("/free-gifts", withBody(func(_ *http.Request, body domain.LedgerItem) (service.State, error) {
				return svc.AddFreeGift(body), nil
			}))
			r.Delete("/free-gifts/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveFreeGift(i)
			}))
			r.Put("/free-gifts-total", withBody(func(_ *http.Request, body amountRequest) (service.State, error) {
				return svc.SetFreeGiftsTotal(body.Amount), nil
			}))
		})

		r.Route("/exits", func(r chi.Router) {
			r.Put("/discounts", withBody(func(_ *http.Request, body amountRequest) (service.State, error) {
				return svc.SetDiscounts(body.Amount), nil
			}))
			r.Put("/withdrawal-total", withBody(func(_ *http.Request, body amountRequest) (service.State, error) {
				return svc.SetWithdrawalTotal(body.Amount), nil
			}))
			r.Put("/justifications", withBody(func(_ *http.Request, body justificationsRequest) (service.State, error) {
				return svc.SetJustifications(body.A, body.B), nil
			}))

			r.Post("/withdrawals", withBody(func(_ *http.Request, body domain.ExitRecord) (service.State, error) {
				return svc.AddExitRecord(body), nil
			}))
			r.Put("/withdrawals/{index}", withIndexBody(func(_ *http.Request, i int, body domain.ExitRecord) (service.State, error) {
				return svc.UpdateExitRecord(i, body)
			}))
			r.Delete("/withdrawals/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveExitRecord(i)
			}))

			r.Post("/devolutions", withBody(func(_ *http.Request, body domain.Devolution) (service.State, error) {
				return svc.AddDevolution(body), nil
			}))
			r.Put("/devolutions/{index}", withIndexBody(func(_ *http.Request, i int, body domain.Devolution) (service.State, error) {
				return svc.UpdateDevolution(i, body)
			}))
			r.Delete("/devolutions/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveDevolution(i)
			}))

			r.Post("/courier-shipments", withBody(func(_ *http.Request, body domain.CourierShipment) (service.State, error) {
				return svc.AddCourierShipment(body), nil
			}))
			r.Put("/courier-shipments/{index}", withIndexBody(func(_ *http.Request, i int, body domain.CourierShipment) (service.State, error) {
				return svc.UpdateCourierShipment(i, body)
			}))
			r.Delete("/courier-shipments/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveCourierShipment(i)
			}))

			r.Post("/freight-shipments", withBody(func(_ *http.Request, body domain.FreightShipment) (service.State, error) {
				return svc.AddFreightShipment(body), nil
			}))
			r.Delete("/freight-shipments/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveFreightShipment(i)
			}))

			r.Post("/employee-advances", withBody(func(_ *http.Request, body domain.EmployeeAdvance) (service.State, error) {
				return svc.AddEmployeeAdvance(body), nil
			}))
			r.Delete("/employee-advances/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveEmployeeAdvance(i)
			}))
			r.Put("/advances-included", withBody(func(_ *http.Request, body flagRequest) (service.State, error) {
				return svc.SetAdvancesIncluded(body.Included), nil
			}))

			r.Post("/commission-agents", withBody(func(_ *http.Request, body domain.CommissionAgent) (service.State, error) {
				return svc.AddCommissionAgent(body), nil
			}))
			r.Put("/commission-agents/{index}", withIndexBody(func(_ *http.Request, i int, body domain.CommissionAgent) (service.State, error) {
				return svc.UpdateCommissionAgent(i, body)
			}))
			r.Delete("/commission-agents/{index}", withIndex(func(_ *http.Request, i int) (service.State, error) {
				return svc.RemoveCommissionAgent(i)
			}))
			r.Post("/commission-agents/{index}/clients", withIndexBody(func(_ *http.Request, i int, body domain.Split) (service.State, error) {
				return svc.AddCommissionClient(i, body)
			}))
			r.Delete("/commission-agents/{index}/clients/{client}", withIndex(func(r *http.Request, i int) (service.State, error) {
				client, err := strconv.Atoi(chi.URLParam(r, "client"))
				if err != nil {
					return svc.State(), shift.ErrIndexOutOfRange
				}
				return svc.RemoveCommissionClient(i, client)
			}))
		})
	})
}

func (a *API) handleShiftState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.State())
}

func (a *API) handleShiftTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.Totals())
}

func (a *API) handleShiftValidation(w http.ResponseWriter, r *http.Request) {
	state := a.service.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"can_save": state.CanSave,
		"problems": state.Problems,
	})
}

func (a *API) handleShiftSave(w http.ResponseWriter, r *http.Request) {
	state, err := a.service.Save(r.Context())
	if errors.Is(err, service.ErrNotReconciled) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    err.Error(),
			"problems": state.Problems,
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) handleShiftLoad(w http.ResponseWriter, r *http.Request) {
	state, found, err := a.service.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"found": found,
		"state": state,
	})
}

// handleShiftClear discards the shift. Operators need a manager PIN.
func (a *API) handleShiftClear(w http.ResponseWriter, r *http.Request) {
	actor, _ := service.ActorFromContext(r.Context())
	if err := a.auth.AuthorizeClear(actor, r.Header.Get("X-Manager-PIN")); err != nil {
		writeError(w, http.StatusForbidden, err)
		return
	}

	state, err := a.service.Clear(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func channelParam(r *http.Request) domain.Channel {
	raw := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "channel")))
	return domain.Channel(strings.ReplaceAll(raw, "-", "_"))
}

func withBody[T any](fn func(r *http.Request, body T) (service.State, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body T
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		state, err := fn(r, body)
		writeState(w, state, err)
	}
}

func withIndex(fn func(r *http.Request, index int) (service.State, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("index must be an integer"))
			return
		}
		state, err := fn(r, index)
		writeState(w, state, err)
	}
}

func withIndexBody[T any](fn func(r *http.Request, index int, body T) (service.State, error)) http.HandlerFunc {
	return withIndex(func(r *http.Request, index int) (service.State, error) {
		var body T
		if err := decodeJSON(r, &body); err != nil {
			return service.State{}, errBadBody{err}
		}
		return fn(r, index, body)
	})
}

type errBadBody struct{ err error }

func (e errBadBody) Error() string { return e.err.Error() }
func (e errBadBody) Unwrap() error { return e.err }

func writeState(w http.ResponseWriter, state service.State, err error) {
	var bad errBadBody
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, state)
	case errors.As(err, &bad):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, shift.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, shift.ErrUnknownChannel):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusUnprocessableEntity, err)
	}
}
