package response

import (
	"errors"
	"net/http"

	"github.com/masar-hr/payroll-engine-go/internal/domain/advance"
	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/domain/policy"
	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/validation"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs)
		return
	}

	// Payroll domain errors
	switch {
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrPeriodAlreadyPaid):
		Conflict(w, "Payroll period is already paid")
	case errors.Is(err, payroll.ErrRunAlreadyLocked):
		Conflict(w, "Payroll run is already locked")
	case errors.Is(err, payroll.ErrLockedRunViolation):
		Conflict(w, "Payroll run is locked; open an adjustment run instead")
	case errors.Is(err, payroll.ErrRunNotBalanced):
		Conflict(w, "Run totals do not balance with payslip lines")
	case errors.Is(err, payroll.ErrRunNotLocked):
		BadRequest(w, "Original run must be locked first", nil)
	case errors.Is(err, payroll.ErrAdjustmentNeedsReason):
		BadRequest(w, "Adjustment run requires a reason", nil)
	case errors.Is(err, payroll.ErrValidationFailed):
		BadRequest(w, "Pre-flight validation reported errors", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNoActiveContract):
		BadRequest(w, "Employee has no active contract for the period", nil)
	case errors.Is(err, employee.ErrNoActiveAssignment):
		BadRequest(w, "Employee has no active salary assignment", nil)
	case errors.Is(err, employee.ErrNoBankAccount):
		BadRequest(w, "Employee has no primary bank account", nil)

	// Policy domain errors
	case errors.Is(err, policy.ErrPolicyNotFound):
		NotFound(w, "Smart policy not found")
	case errors.Is(err, policy.ErrExecutionNotFound):
		NotFound(w, "Policy execution not found")
	case errors.Is(err, policy.ErrInvalidStatusChange):
		Conflict(w, "Invalid policy status transition")
	case errors.Is(err, policy.ErrExecutionAlreadyExists):
		Conflict(w, "Event already processed")

	// Statutory configuration errors
	case errors.Is(err, statutory.ErrGosiConfigMissing):
		BadRequest(w, "No active GOSI configuration for the period", nil)

	// Advance domain errors
	case errors.Is(err, advance.ErrAdvanceNotFound):
		NotFound(w, "Advance request not found")
	case errors.Is(err, advance.ErrAdvanceNotApproved):
		Conflict(w, "Advance request is not in an approved state")
	case errors.Is(err, advance.ErrAlreadyFullyPaid):
		Conflict(w, "Advance is already fully paid")
	case errors.Is(err, advance.ErrPaymentExceedsBalance):
		BadRequest(w, "Payment exceeds remaining advance balance", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
