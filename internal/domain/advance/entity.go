package advance

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus enum
type RequestStatus string

const (
	StatusApproved  RequestStatus = "APPROVED"
	StatusFullyPaid RequestStatus = "FULLY_PAID"
	StatusCancelled RequestStatus = "CANCELLED"
)

// Request - an approved salary advance with a monthly recovery schedule. The
// running balance is approvedAmount minus the sum of recorded payments; the
// request transitions to FULLY_PAID only when the balance reaches zero.
type Request struct {
	ID               string
	EmployeeID       string
	CompanyID        string
	ApprovedAmount   decimal.Decimal
	MonthlyDeduction decimal.Decimal
	StartDate        time.Time
	EndDate          time.Time
	Status           RequestStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Payment - one recovery installment, usually created when a payroll run
// materializes the LOAN_DED line.
type Payment struct {
	ID        string
	AdvanceID string
	RunID     *string
	Amount    decimal.Decimal
	PaidAt    time.Time
}

// Remaining computes the outstanding balance given recorded payments.
func (r Request) Remaining(payments []Payment) decimal.Decimal {
	remaining := r.ApprovedAmount
	for _, p := range payments {
		remaining = remaining.Sub(p.Amount)
	}
	return remaining
}
