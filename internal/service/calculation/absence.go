package calculation

import (
	"fmt"

	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// Absence computes the deduction for n unexcused absence days. In FLAT mode
// the charge is dailyRate × n. In PROGRESSIVE mode repeated absence escalates:
// the n-th day costs n day-rates, so the charge is
// dailyRate × rateFactor × n(n+1)/2.
func Absence(absentDays int, dailyRate decimal.Decimal, settings statutory.CalculationSettings) (decimal.Decimal, Trace) {
	var trace Trace

	if absentDays <= 0 {
		return decimal.Zero, trace
	}

	n := decimal.NewFromInt(int64(absentDays))

	if settings.AbsenceMode == statutory.AbsenceProgressive {
		chargeDays := n.Mul(n.Add(decimal.NewFromInt(1))).Div(decimal.NewFromInt(2))
		amount := money(dailyRate.Mul(settings.AbsenceRateFactor).Mul(chargeDays))
		trace.Add("absenceDeduction",
			fmt.Sprintf("progressive: %s × %s × %d(%d+1)/2 = %s",
				dailyRate.Round(2), settings.AbsenceRateFactor, absentDays, absentDays, amount),
			amount)
		return amount, trace
	}

	amount := money(dailyRate.Mul(n))
	trace.Add("absenceDeduction",
		fmt.Sprintf("flat: %d × %s = %s", absentDays, dailyRate.Round(2), amount),
		amount)
	return amount, trace
}

// LateDeduction charges effective late minutes (beyond the grace period) at
// the per-minute wage.
func LateDeduction(lateMinutes int, hourlyRate decimal.Decimal, settings statutory.CalculationSettings) (decimal.Decimal, Trace) {
	var trace Trace

	effective := lateMinutes - settings.GracePeriodMinutes
	if effective <= 0 {
		return decimal.Zero, trace
	}

	amount := money(hourlyRate.Mul(decimal.NewFromInt(int64(effective))).Div(decimal.NewFromInt(60)))
	trace.Add("lateDeduction",
		fmt.Sprintf("%d min × %s/60 = %s", effective, hourlyRate.Round(2), amount),
		amount)
	return amount, trace
}
