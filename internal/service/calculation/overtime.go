package calculation

import (
	"fmt"
	"sort"

	"github.com/masar-hr/payroll-engine-go/internal/domain/attendance"
	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// OvertimeInput - hours by day type plus the salary figures the hourly rate
// may be derived from, per configuration.
type OvertimeInput struct {
	HoursByType map[attendance.DayType]decimal.Decimal
	BasicSalary decimal.Decimal
	GrossSalary decimal.Decimal
	DaysInMonth int
}

// Overtime prices overtime hours with a day-type multiplier. The hourly rate
// comes from basic salary alone or from gross, per company configuration.
func Overtime(input OvertimeInput, settings statutory.CalculationSettings) (decimal.Decimal, Trace) {
	var trace Trace

	base := input.BasicSalary
	if settings.OvertimeBase == statutory.OvertimeGrossBased {
		base = input.GrossSalary
	}
	hourlyRate := HourlyRate(DailyRate(base, input.DaysInMonth))

	// Deterministic order keeps regenerated traces identical.
	dayTypes := make([]string, 0, len(input.HoursByType))
	for dt := range input.HoursByType {
		dayTypes = append(dayTypes, string(dt))
	}
	sort.Strings(dayTypes)

	total := decimal.Zero
	for _, dt := range dayTypes {
		hours := input.HoursByType[attendance.DayType(dt)]
		if hours.IsZero() {
			continue
		}

		multiplier, ok := settings.OvertimeMultipliers[dt]
		if !ok {
			multiplier = decimal.NewFromInt(1)
		}

		amount := money(hours.Mul(hourlyRate).Mul(multiplier))
		total = total.Add(amount)
		trace.Add("overtime",
			fmt.Sprintf("%s: %s h × %s × %s = %s", dt, hours, hourlyRate.Round(2), multiplier, amount),
			amount)
	}

	return money(total), trace
}
