package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/masar-hr/payroll-engine-go/internal/domain/policy"
	"github.com/masar-hr/payroll-engine-go/internal/handler/http/response"
	"github.com/masar-hr/payroll-engine-go/internal/service/policyengine"
)

type PolicyHandler interface {
	TriggerEvent(w http.ResponseWriter, r *http.Request)
	ChangeStatus(w http.ResponseWriter, r *http.Request)
}

type policyHandlerImpl struct {
	engine *policyengine.Engine
}

func NewPolicyHandler(engine *policyengine.Engine) PolicyHandler {
	return &policyHandlerImpl{engine: engine}
}

func (h *policyHandlerImpl) TriggerEvent(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var event policy.TriggerEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	// The token decides the tenant, never the payload.
	event.CompanyID = companyID

	if err := h.engine.HandleTrigger(r.Context(), event); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Event processed", nil)
}

type changePolicyStatusRequest struct {
	Status policy.Status `json:"status"`
}

func (h *policyHandlerImpl) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	policyID := chi.URLParam(r, "id")
	if policyID == "" {
		response.BadRequest(w, "Policy ID is required", nil)
		return
	}

	var req changePolicyStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if req.Status == "" {
		response.BadRequest(w, "Status is required", nil)
		return
	}

	if err := h.engine.ChangeStatus(r.Context(), policyID, companyID, req.Status); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Policy status updated", nil)
}
