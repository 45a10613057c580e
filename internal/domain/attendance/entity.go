package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordStatus enum
type RecordStatus string

const (
	StatusPresent RecordStatus = "PRESENT"
	StatusLate    RecordStatus = "LATE"
	StatusAbsent  RecordStatus = "ABSENT"
	StatusOnLeave RecordStatus = "ON_LEAVE"
)

// DayType enum for overtime classification.
type DayType string

const (
	DayTypeWeekday DayType = "WEEKDAY"
	DayTypeWeekend DayType = "WEEKEND"
	DayTypeHoliday DayType = "HOLIDAY"
)

// Record - one raw attendance row. Calculators never read these directly;
// the aggregator reduces them into a PeriodSummary first.
type Record struct {
	ID                    string
	EmployeeID            string
	CompanyID             string
	Date                  time.Time
	Status                RecordStatus
	DayType               DayType
	LateMinutes           int
	EarlyDepartureMinutes int
	OvertimeMinutes       int
}

// LeaveRecord - one approved leave day span attributed to a leave type.
type LeaveRecord struct {
	ID            string
	EmployeeID    string
	CompanyID     string
	LeaveTypeCode string
	StartDate     time.Time
	EndDate       time.Time
	Days          int
}

// PeriodSummary - the per-employee reduction of all attendance and approved
// leave rows inside one pay period. This is the sole input surface for every
// downstream calculator.
type PeriodSummary struct {
	EmployeeID            string
	PeriodStart           time.Time
	PeriodEnd             time.Time
	PresentDays           int
	AbsentDays            int
	LateMinutesTotal      int
	EarlyDepartureMinutes int
	OvertimeHoursByType   map[DayType]decimal.Decimal
	LeaveDaysByType       map[string]int
	PriorSickDaysThisYear int
	RecordCount           int
}

// TotalOvertimeHours sums overtime across day types.
func (s PeriodSummary) TotalOvertimeHours() decimal.Decimal {
	total := decimal.Zero
	for _, h := range s.OvertimeHoursByType {
		total = total.Add(h)
	}
	return total
}
