package statutory

import (
	"time"

	"github.com/shopspring/decimal"
)

// GosiConfig - versioned social-insurance configuration. Multiple versions may
// coexist; the active one for a period is the latest whose EffectiveDate is on
// or before the period date.
type GosiConfig struct {
	ID            string
	CompanyID     string
	EmployeeRate  decimal.Decimal
	EmployerRate  decimal.Decimal
	SanedRate     decimal.Decimal
	HazardRate    decimal.Decimal
	MinBaseSalary decimal.Decimal
	MaxCapAmount  decimal.Decimal
	IsSaudiOnly   bool
	EffectiveDate time.Time
	IsActive      bool
}

// SickPayTier - one day range of the tiered sick pay scale. Tiers are ordered,
// non-overlapping and contiguous; a day beyond the last tier is unpaid.
type SickPayTier struct {
	FromDay        int
	ToDay          int
	PaymentPercent decimal.Decimal
}

// LeaveTypeConfig - per-company leave category configuration. Only the fields
// the engine consumes are modeled here; accrual editing lives outside.
type LeaveTypeConfig struct {
	ID           string
	CompanyID    string
	Code         string
	Name         string
	IsPaid       bool
	SickPayTiers []SickPayTier
}

// DaysInMonthMethod enum
type DaysInMonthMethod string

const (
	Fixed30      DaysInMonthMethod = "FIXED_30"
	CalendarDays DaysInMonthMethod = "CALENDAR_DAYS"
	WorkingDays  DaysInMonthMethod = "WORKING_DAYS"
)

// AbsenceMode enum
type AbsenceMode string

const (
	AbsenceFlat        AbsenceMode = "FLAT"
	AbsenceProgressive AbsenceMode = "PROGRESSIVE"
)

// OvertimeBase enum
type OvertimeBase string

const (
	OvertimeBasicOnly  OvertimeBase = "BASIC"
	OvertimeGrossBased OvertimeBase = "GROSS"
)

// CalculationSettings - per-company knobs for the statutory calculators.
type CalculationSettings struct {
	CompanyID           string
	DaysInMonthMethod   DaysInMonthMethod
	GracePeriodMinutes  int
	AbsenceMode         AbsenceMode
	AbsenceRateFactor   decimal.Decimal
	OvertimeBase        OvertimeBase
	OvertimeMultipliers map[string]decimal.Decimal // keyed by attendance.DayType
	MaxDeductionPercent decimal.Decimal
}

// Snapshot - the transactionally consistent effective-dated configuration
// every employee in one run calculates against, even if configuration changes
// mid-run elsewhere.
type Snapshot struct {
	Gosi       *GosiConfig
	LeaveTypes map[string]LeaveTypeConfig // keyed by leave type code
	Settings   CalculationSettings
	TakenAt    time.Time
}

// DefaultSettings mirrors the statutory defaults for companies that have not
// customised calculation behaviour: fixed 30-day month, flat absence
// deduction, overtime on basic at 1.5x, 50% deduction ceiling.
func DefaultSettings(companyID string) CalculationSettings {
	return CalculationSettings{
		CompanyID:          companyID,
		DaysInMonthMethod:  Fixed30,
		GracePeriodMinutes: 0,
		AbsenceMode:        AbsenceFlat,
		AbsenceRateFactor:  decimal.NewFromInt(1),
		OvertimeBase:       OvertimeBasicOnly,
		OvertimeMultipliers: map[string]decimal.Decimal{
			"WEEKDAY": decimal.RequireFromString("1.5"),
			"WEEKEND": decimal.NewFromInt(2),
			"HOLIDAY": decimal.NewFromInt(2),
		},
		MaxDeductionPercent: decimal.NewFromInt(50),
	}
}

// DefaultSickPayTiers follows the Saudi labor law scale: days 1-30 fully
// paid, 31-90 at 75%, 91-120 unpaid.
func DefaultSickPayTiers() []SickPayTier {
	return []SickPayTier{
		{FromDay: 1, ToDay: 30, PaymentPercent: decimal.NewFromInt(100)},
		{FromDay: 31, ToDay: 90, PaymentPercent: decimal.NewFromInt(75)},
		{FromDay: 91, ToDay: 120, PaymentPercent: decimal.Zero},
	}
}
