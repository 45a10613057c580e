package advance

import (
	"github.com/masar-hr/payroll-engine-go/internal/pkg/validation"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest - record an out-of-band recovery payment (cash or
// manual settlement) against an approved advance.
type RecordPaymentRequest struct {
	AdvanceID string          `json:"advance_id" validate:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
}

func (r RecordPaymentRequest) Validate() error {
	return validation.Struct(r)
}

// BalanceResponse - the recovery position of one advance.
type BalanceResponse struct {
	AdvanceID        string          `json:"advance_id"`
	ApprovedAmount   decimal.Decimal `json:"approved_amount"`
	MonthlyDeduction decimal.Decimal `json:"monthly_deduction"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	Remaining        decimal.Decimal `json:"remaining"`
	Status           RequestStatus   `json:"status"`
}
