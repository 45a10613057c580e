package calculation

import (
	"fmt"

	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// SickLeaveResult breaks a sick leave span into pay bands and the resulting
// deduction.
type SickLeaveResult struct {
	FullPayDays    int
	PartialPayDays int
	UnpaidDays     int
	TotalDeduction decimal.Decimal
}

// ValidateSickPayTiers checks the scale is ordered, contiguous and
// non-overlapping starting at day 1.
func ValidateSickPayTiers(tiers []statutory.SickPayTier) error {
	expectedFrom := 1
	for _, tier := range tiers {
		if tier.FromDay != expectedFrom || tier.ToDay < tier.FromDay {
			return statutory.ErrTiersNotContiguous
		}
		expectedFrom = tier.ToDay + 1
	}
	return nil
}

// SickLeave prices each sick day by its cumulative ordinal position this year
// (previousSickDays + dayIndex) against the tier scale. The deduction for a
// day paid at p percent is dailyRate × (1 − p/100); a day beyond the last
// tier's toDay is fully deducted.
func SickLeave(
	sickDays int,
	previousSickDaysThisYear int,
	dailyRate decimal.Decimal,
	tiers []statutory.SickPayTier,
) (SickLeaveResult, Trace, error) {
	var trace Trace

	if err := ValidateSickPayTiers(tiers); err != nil {
		return SickLeaveResult{}, nil, err
	}

	var result SickLeaveResult
	deduction := decimal.Zero

	for i := 0; i < sickDays; i++ {
		dayNumber := previousSickDaysThisYear + i + 1

		payPercent := decimal.Zero
		for _, tier := range tiers {
			if dayNumber >= tier.FromDay && dayNumber <= tier.ToDay {
				payPercent = tier.PaymentPercent
				break
			}
		}

		switch {
		case payPercent.Equal(hundred):
			result.FullPayDays++
		case payPercent.IsPositive():
			result.PartialPayDays++
		default:
			result.UnpaidDays++
		}

		dayDeduction := dailyRate.Mul(hundred.Sub(payPercent)).Div(hundred)
		deduction = deduction.Add(dayDeduction)
	}

	result.TotalDeduction = money(deduction)

	trace.Add("sickLeave",
		fmt.Sprintf("%d days (prior %d): full=%d partial=%d unpaid=%d, deduction=%s",
			sickDays, previousSickDaysThisYear,
			result.FullPayDays, result.PartialPayDays, result.UnpaidDays,
			result.TotalDeduction),
		result.TotalDeduction)

	return result, trace, nil
}
