package payroll

import (
	"github.com/masar-hr/payroll-engine-go/internal/pkg/validation"
	"github.com/shopspring/decimal"
)

// RunPayrollRequest - compute or recompute payslips for a DRAFT run. When
// EmployeeIDs is empty the whole active workforce is processed.
type RunPayrollRequest struct {
	PeriodID    string   `json:"period_id" validate:"required,uuid"`
	EmployeeIDs []string `json:"employee_ids,omitempty" validate:"omitempty,dive,uuid"`
}

func (r RunPayrollRequest) Validate() error {
	return validation.Struct(r)
}

// LockRunRequest - finalize a DRAFT run. Rejected when pre-flight validation
// reports any ERROR.
type LockRunRequest struct {
	RunID string `json:"run_id" validate:"required,uuid"`
}

func (r LockRunRequest) Validate() error {
	return validation.Struct(r)
}

// CreateAdjustmentRunRequest - open a correction run against a LOCKED run.
type CreateAdjustmentRunRequest struct {
	OriginalRunID string `json:"original_run_id" validate:"required,uuid"`
	Reason        string `json:"reason" validate:"required,min=3"`
}

func (r CreateAdjustmentRunRequest) Validate() error {
	return validation.Struct(r)
}

// EmployeeOutcome - per-employee result of a bulk run. One employee failing
// never aborts the run for the rest.
type EmployeeOutcome struct {
	EmployeeID string `json:"employee_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// RunResult returned by RunPayroll.
type RunResult struct {
	RunID              string            `json:"run_id"`
	EmployeesProcessed int               `json:"employees_processed"`
	Outcomes           []EmployeeOutcome `json:"outcomes"`
}

// RunResponse - API-facing projection of a run.
type RunResponse struct {
	ID               string  `json:"id"`
	PeriodID         string  `json:"period_id"`
	Status           string  `json:"status"`
	IsAdjustment     bool    `json:"is_adjustment"`
	OriginalRunID    *string `json:"original_run_id,omitempty"`
	AdjustmentReason *string `json:"adjustment_reason,omitempty"`
	LockedAt         *string `json:"locked_at,omitempty"`
	LockedBy         *string `json:"locked_by,omitempty"`
}

// PayslipResponse - API-facing projection of a payslip with its lines and the
// calculation trace behind them.
type PayslipResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetSalary        decimal.Decimal `json:"net_salary"`
	Status           string          `json:"status"`
	Lines            []LineResponse  `json:"lines"`
	CalculationTrace []TraceEntry    `json:"calculation_trace,omitempty"`
}

type LineResponse struct {
	ComponentID string          `json:"component_id"`
	Sign        string          `json:"sign"`
	Amount      decimal.Decimal `json:"amount"`
	SourceType  string          `json:"source_type"`
	SourceRef   string          `json:"source_ref"`
	Description string          `json:"description,omitempty"`
}
