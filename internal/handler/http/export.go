package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/masar-hr/payroll-engine-go/internal/handler/http/response"
	exportService "github.com/masar-hr/payroll-engine-go/internal/service/export"
)

type ExportHandler interface {
	LedgerProjection(w http.ResponseWriter, r *http.Request)
	BankTransfers(w http.ResponseWriter, r *http.Request)
	GosiReport(w http.ResponseWriter, r *http.Request)
}

type exportHandlerImpl struct {
	exportService *exportService.Service
}

func NewExportHandler(svc *exportService.Service) ExportHandler {
	return &exportHandlerImpl{exportService: svc}
}

func (h *exportHandlerImpl) LedgerProjection(w http.ResponseWriter, r *http.Request) {
	companyID, runID, ok := exportScope(w, r)
	if !ok {
		return
	}

	entries, err := h.exportService.LedgerProjection(r.Context(), companyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}

func (h *exportHandlerImpl) BankTransfers(w http.ResponseWriter, r *http.Request) {
	companyID, runID, ok := exportScope(w, r)
	if !ok {
		return
	}

	records, err := h.exportService.BankTransfers(r.Context(), companyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

func (h *exportHandlerImpl) GosiReport(w http.ResponseWriter, r *http.Request) {
	companyID, runID, ok := exportScope(w, r)
	if !ok {
		return
	}

	rows, err := h.exportService.GosiReport(r.Context(), companyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, rows)
}

func exportScope(w http.ResponseWriter, r *http.Request) (companyID, runID string, ok bool) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return "", "", false
	}

	runID = chi.URLParam(r, "id")
	if runID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return "", "", false
	}

	return companyID, runID, true
}
