package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/masar-hr/payroll-engine-go/internal/domain/advance"
	"github.com/masar-hr/payroll-engine-go/internal/handler/http/response"
	advanceService "github.com/masar-hr/payroll-engine-go/internal/service/advance"
)

type AdvanceHandler interface {
	RecordPayment(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type advanceHandlerImpl struct {
	advanceService *advanceService.Service
}

func NewAdvanceHandler(svc *advanceService.Service) AdvanceHandler {
	return &advanceHandlerImpl{advanceService: svc}
}

func (h *advanceHandlerImpl) RecordPayment(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	advanceID := chi.URLParam(r, "id")
	if advanceID == "" {
		response.BadRequest(w, "Advance ID is required", nil)
		return
	}

	var req advance.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.AdvanceID = advanceID

	payment, err := h.advanceService.RecordPayment(r.Context(), companyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment recorded", payment)
}

func (h *advanceHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	advanceID := chi.URLParam(r, "id")
	if advanceID == "" {
		response.BadRequest(w, "Advance ID is required", nil)
		return
	}

	balance, err := h.advanceService.GetBalance(r.Context(), companyID, advanceID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balance)
}

func (h *advanceHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	advanceID := chi.URLParam(r, "id")
	if advanceID == "" {
		response.BadRequest(w, "Advance ID is required", nil)
		return
	}

	if err := h.advanceService.Cancel(r.Context(), companyID, advanceID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Advance cancelled", nil)
}
