package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/handler/http/response"
	"github.com/masar-hr/payroll-engine-go/internal/service/payrollrun"
)

type PayrollRunHandler interface {
	RunPayroll(w http.ResponseWriter, r *http.Request)
	ValidateRun(w http.ResponseWriter, r *http.Request)
	LockRun(w http.ResponseWriter, r *http.Request)
	CreateAdjustmentRun(w http.ResponseWriter, r *http.Request)
	MarkRunPaid(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)
}

type payrollRunHandlerImpl struct {
	runService *payrollrun.Service
}

func NewPayrollRunHandler(runService *payrollrun.Service) PayrollRunHandler {
	return &payrollRunHandlerImpl{runService: runService}
}

func (h *payrollRunHandlerImpl) RunPayroll(w http.ResponseWriter, r *http.Request) {
	companyID, userID, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req payroll.RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.runService.RunPayroll(r.Context(), companyID, userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run calculated", result)
}

func (h *payrollRunHandlerImpl) ValidateRun(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	runID := chi.URLParam(r, "id")
	if runID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	report, err := h.runService.ValidateRun(r.Context(), companyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

func (h *payrollRunHandlerImpl) LockRun(w http.ResponseWriter, r *http.Request) {
	companyID, userID, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	runID := chi.URLParam(r, "id")
	if runID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	run, report, err := h.runService.LockRun(r.Context(), companyID, userID, payroll.LockRunRequest{RunID: runID})
	if err != nil {
		if errors.Is(err, payroll.ErrValidationFailed) {
			response.BadRequest(w, "Pre-flight validation reported errors", reportDetails(report))
			return
		}
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run locked", toRunResponse(run))
}

func (h *payrollRunHandlerImpl) CreateAdjustmentRun(w http.ResponseWriter, r *http.Request) {
	companyID, userID, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	originalRunID := chi.URLParam(r, "id")
	if originalRunID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	var req payroll.CreateAdjustmentRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OriginalRunID = originalRunID

	run, err := h.runService.CreateAdjustmentRun(r.Context(), companyID, userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Adjustment run created", toRunResponse(run))
}

func (h *payrollRunHandlerImpl) MarkRunPaid(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	runID := chi.URLParam(r, "id")
	if runID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	if err := h.runService.MarkRunPaid(r.Context(), companyID, runID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run marked as paid", nil)
}

func (h *payrollRunHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	runID := chi.URLParam(r, "id")
	if runID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	run, slips, err := h.runService.GetRun(r.Context(), companyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	payslips := make([]payroll.PayslipResponse, 0, len(slips))
	for _, slip := range slips {
		payslips = append(payslips, toPayslipResponse(slip))
	}

	response.Success(w, map[string]interface{}{
		"run":      toRunResponse(run),
		"payslips": payslips,
	})
}

func (h *payrollRunHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := tenantClaims(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	payslipID := chi.URLParam(r, "id")
	if payslipID == "" {
		response.BadRequest(w, "Payslip ID is required", nil)
		return
	}

	slip, err := h.runService.GetPayslip(r.Context(), companyID, payslipID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, toPayslipResponse(slip))
}

func toRunResponse(run payroll.Run) payroll.RunResponse {
	resp := payroll.RunResponse{
		ID:               run.ID,
		PeriodID:         run.PeriodID,
		Status:           string(run.Status),
		IsAdjustment:     run.IsAdjustment,
		OriginalRunID:    run.OriginalRunID,
		AdjustmentReason: run.AdjustmentReason,
		LockedBy:         run.LockedBy,
	}
	if run.LockedAt != nil {
		lockedAt := run.LockedAt.Format(time.RFC3339)
		resp.LockedAt = &lockedAt
	}
	return resp
}

func toPayslipResponse(slip payroll.Payslip) payroll.PayslipResponse {
	lines := make([]payroll.LineResponse, 0, len(slip.Lines))
	for _, line := range slip.Lines {
		lines = append(lines, payroll.LineResponse{
			ComponentID: line.ComponentID,
			Sign:        string(line.Sign),
			Amount:      line.Amount,
			SourceType:  string(line.SourceType),
			SourceRef:   line.SourceRef,
			Description: line.Description,
		})
	}

	return payroll.PayslipResponse{
		ID:               slip.ID,
		EmployeeID:       slip.EmployeeID,
		BaseSalary:       slip.BaseSalary,
		GrossSalary:      slip.GrossSalary,
		TotalDeductions:  slip.TotalDeductions,
		NetSalary:        slip.NetSalary,
		Status:           string(slip.Status),
		Lines:            lines,
		CalculationTrace: slip.CalculationTrace,
	}
}

func reportDetails(report payrollrun.Report) map[string]string {
	details := make(map[string]string, len(report.Exceptions))
	for _, ex := range report.Exceptions {
		details[ex.EmployeeID+"/"+ex.Check] = ex.Message
	}
	return details
}
