package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CapResult - the outcome of the maximum-deduction ceiling applied after all
// deduction rules have stacked.
type CapResult struct {
	Applied   decimal.Decimal
	Clipped   bool
	ClippedBy decimal.Decimal
}

// DeductionCap clips total deductions to gross × maxDeductionPercent/100 so
// that stacking independent rules can never drive net pay negative. A clip is
// informational, not an error, but it must appear in the trace for audit.
func DeductionCap(totalDeductions, grossSalary, maxDeductionPercent decimal.Decimal) (CapResult, Trace) {
	var trace Trace

	ceiling := money(grossSalary.Mul(maxDeductionPercent).Div(hundred))
	if totalDeductions.LessThanOrEqual(ceiling) {
		return CapResult{Applied: totalDeductions}, trace
	}

	clippedBy := money(totalDeductions.Sub(ceiling))
	trace.Add("deductionCap",
		fmt.Sprintf("deductions %s > %s × %s%% = %s, clipped by %s",
			totalDeductions, grossSalary, maxDeductionPercent, ceiling, clippedBy),
		ceiling)

	return CapResult{Applied: ceiling, Clipped: true, ClippedBy: clippedBy}, trace
}
