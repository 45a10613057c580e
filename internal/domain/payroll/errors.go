package payroll

import "errors"

var (
	ErrPeriodNotFound        = errors.New("payroll period not found")
	ErrPeriodAlreadyPaid     = errors.New("payroll period already paid")
	ErrRunNotFound           = errors.New("payroll run not found")
	ErrRunAlreadyLocked      = errors.New("payroll run already locked")
	ErrLockedRunViolation    = errors.New("payroll run is locked, open an adjustment run instead")
	ErrRunNotLocked          = errors.New("original run must be locked before adjusting")
	ErrAdjustmentNeedsReason = errors.New("adjustment run requires a reason")
	ErrPayslipNotFound       = errors.New("payslip not found")
	ErrValidationFailed      = errors.New("pre-flight validation reported errors")
	ErrRunNotBalanced        = errors.New("run totals do not balance")
)
