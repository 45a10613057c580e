package policy

import "context"

// PolicyRepository defines data access for policies and their executions.
type PolicyRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (SmartPolicy, error)
	ListActiveByEvent(ctx context.Context, companyID string, event string) ([]SmartPolicy, error)
	UpdateStatus(ctx context.Context, id string, companyID string, status Status) error

	// CreateExecution inserts the append-only fact; it must return
	// ErrExecutionAlreadyExists when the (policyID, eventRef) pair was
	// already recorded, which is how redelivered events are de-duplicated.
	CreateExecution(ctx context.Context, exec Execution) (Execution, error)

	// ListPendingForPeriod returns successful executions with conditions met
	// that are either not yet materialized into any payroll period, or were
	// already absorbed by this same period. Regenerating a DRAFT run
	// therefore sees exactly the same execution set and stays idempotent,
	// while a different period can never double-apply them.
	//
	// Executions absorbed by the period are returned to adjustment runs of
	// that period too: an adjustment payslip fully replaces the original, so
	// it must reproduce the original's policy lines rather than start from a
	// blank set. Settlement against the bank happens on the replacement
	// payslip, not on the delta.
	ListPendingForPeriod(ctx context.Context, employeeID string, companyID string, payrollPeriod string) ([]Execution, error)

	// MarkConsumed stamps executions with the payroll period that absorbed
	// them.
	MarkConsumed(ctx context.Context, executionIDs []string, payrollPeriod string) error
}
