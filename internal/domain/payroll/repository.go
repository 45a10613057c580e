package payroll

import "context"

// RunRepository defines data access for periods and runs.
// All methods take companyID to prevent cross-company data access.
type RunRepository interface {
	GetPeriodByID(ctx context.Context, id string, companyID string) (Period, error)
	CreateRun(ctx context.Context, run Run) (Run, error)
	GetRunByID(ctx context.Context, id string, companyID string) (Run, error)
	ListRunsByPeriod(ctx context.Context, periodID string, companyID string) ([]Run, error)

	// GetRunForShare loads the run under a shared row lock: concurrent
	// generators hold it together, while a LockRun waiting on the exclusive
	// lock blocks until they finish. Must be called inside a transaction.
	GetRunForShare(ctx context.Context, id string, companyID string) (Run, error)

	// GetRunForUpdate loads the run under an exclusive row lock for the lock
	// flip itself. Must be called inside a transaction.
	GetRunForUpdate(ctx context.Context, id string, companyID string) (Run, error)

	// LockRun is the atomic check-then-set: it sets lockedAt/lockedBy only if
	// the run is still DRAFT, returning ErrRunAlreadyLocked otherwise.
	LockRun(ctx context.Context, id string, companyID string, lockedBy string) (Run, error)

	MarkRunPaid(ctx context.Context, id string, companyID string) error
	GetRunTotals(ctx context.Context, runID string, companyID string) (RunTotals, error)
}

// PayslipRepository defines data access for payslips and their lines.
type PayslipRepository interface {
	UpsertPayslip(ctx context.Context, payslip Payslip) (Payslip, error)
	GetPayslip(ctx context.Context, runID, employeeID, companyID string) (Payslip, error)
	GetPayslipByID(ctx context.Context, id string, companyID string) (Payslip, error)
	ListPayslipsByRun(ctx context.Context, runID string, companyID string) ([]Payslip, error)

	// GetPayslipForUpdate serializes concurrent regeneration of the same
	// payslip. Must be called inside a transaction.
	GetPayslipForUpdate(ctx context.Context, id string, companyID string) (Payslip, error)

	ListLines(ctx context.Context, payslipID string) ([]Line, error)

	// DeleteEngineLines removes all engine-owned lines ahead of reinsertion;
	// MANUAL lines are never touched.
	DeleteEngineLines(ctx context.Context, payslipID string) error
	InsertLines(ctx context.Context, lines []Line) error
	UpdateTotals(ctx context.Context, payslip Payslip) error
	MarkPayslipFailed(ctx context.Context, id string, companyID string, reason string) error
}
