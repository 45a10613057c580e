package advance

import (
	"context"
	"time"
)

// AdvanceRepository defines data access for advances and recovery payments.
type AdvanceRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Request, error)

	// ListActiveForPeriod returns approved advances whose recovery schedule
	// overlaps [from, to].
	ListActiveForPeriod(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]Request, error)

	ListPayments(ctx context.Context, advanceID string) ([]Payment, error)
	CreatePayment(ctx context.Context, payment Payment) (Payment, error)
	UpdateStatus(ctx context.Context, id string, companyID string, status RequestStatus) error
}
