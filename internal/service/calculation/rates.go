package calculation

import (
	"time"

	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

var (
	hoursPerDay = decimal.NewFromInt(8)
	hundred     = decimal.NewFromInt(100)
)

// DaysInMonth resolves the divisor for daily-rate derivation according to the
// company's configured method. Working days assume a Sunday-Thursday week.
func DaysInMonth(year, month int, method statutory.DaysInMonthMethod) int {
	switch method {
	case statutory.CalendarDays:
		return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	case statutory.WorkingDays:
		last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
		working := 0
		for day := 1; day <= last; day++ {
			wd := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Weekday()
			if wd != time.Friday && wd != time.Saturday {
				working++
			}
		}
		return working
	default:
		return 30
	}
}

// DailyRate derives the per-day wage from basic salary.
func DailyRate(baseSalary decimal.Decimal, daysInMonth int) decimal.Decimal {
	return baseSalary.Div(decimal.NewFromInt(int64(daysInMonth)))
}

// HourlyRate derives the per-hour wage from a daily rate assuming an 8-hour
// working day.
func HourlyRate(dailyRate decimal.Decimal) decimal.Decimal {
	return dailyRate.Div(hoursPerDay)
}
