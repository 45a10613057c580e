package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
	PeriodStatusPaid   PeriodStatus = "PAID"
)

// Period - one calendar month payroll window. A period may own several runs
// (the normal run plus adjustment runs).
type Period struct {
	ID        string
	CompanyID string
	Year      int
	Month     int
	StartDate time.Time
	EndDate   time.Time
	Status    PeriodStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft  RunStatus = "DRAFT"
	RunStatusLocked RunStatus = "LOCKED"
	RunStatusPaid   RunStatus = "PAID"
)

// Run - a single payroll computation over a period. DRAFT runs are mutable,
// LOCKED runs are append-only via adjustment runs, PAID is terminal.
type Run struct {
	ID               string
	CompanyID        string
	PeriodID         string
	Status           RunStatus
	IsAdjustment     bool
	OriginalRunID    *string
	AdjustmentReason *string
	ProcessedBy      string
	LockedAt         *time.Time
	LockedBy         *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsLocked reports whether the run can no longer be recalculated in place.
func (r Run) IsLocked() bool {
	return r.Status == RunStatusLocked || r.Status == RunStatusPaid || r.LockedAt != nil
}

// PayslipStatus enum
type PayslipStatus string

const (
	PayslipStatusDraft  PayslipStatus = "DRAFT"
	PayslipStatusFailed PayslipStatus = "FAILED"
	PayslipStatusLocked PayslipStatus = "LOCKED"
	PayslipStatusPaid   PayslipStatus = "PAID"
)

// Payslip - one per (employee, run). Totals are always the sum of the payslip
// lines at the moment of generation, never edited independently.
type Payslip struct {
	ID               string
	CompanyID        string
	RunID            string
	PeriodID         string
	EmployeeID       string
	BaseSalary       decimal.Decimal
	GrossSalary      decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetSalary        decimal.Decimal
	Status           PayslipStatus
	FailureReason    *string
	CalculationTrace []TraceEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Lines []Line
}

// TraceEntry - one step of a statutory calculator, persisted with the payslip
// so an auditor can reproduce each figure by hand. Regeneration rewrites the
// whole trace together with the engine-owned lines.
type TraceEntry struct {
	Calculator string          `json:"calculator"`
	Step       string          `json:"step"`
	Formula    string          `json:"formula"`
	Result     decimal.Decimal `json:"result"`
}

// LineSign enum
type LineSign string

const (
	SignEarning   LineSign = "EARNING"
	SignDeduction LineSign = "DEDUCTION"
)

// LineSource enum. All sources except MANUAL are owned by the engine and
// regenerated on every recalculation of a DRAFT run; MANUAL lines survive
// regeneration untouched.
type LineSource string

const (
	SourceStructure LineSource = "STRUCTURE"
	SourceStatutory LineSource = "STATUTORY"
	SourcePolicy    LineSource = "POLICY"
	SourceAdvance   LineSource = "ADVANCE"
	SourceManual    LineSource = "MANUAL"
)

// EngineOwned reports whether lines of this source are regenerated by the
// payslip generator.
func (s LineSource) EngineOwned() bool {
	return s == SourceStructure || s == SourceStatutory || s == SourcePolicy || s == SourceAdvance
}

// Line - one signed monetary entry on a payslip. SourceRef carries enough
// provenance (policy id + execution id, or calculator name + config version)
// to make regeneration idempotent and auditable.
type Line struct {
	ID          string
	PayslipID   string
	ComponentID string
	Sign        LineSign
	Amount      decimal.Decimal
	SourceType  LineSource
	SourceRef   string
	Description string
	CreatedAt   time.Time
}

// RunTotals - per-run aggregate used by the balance check before locking.
type RunTotals struct {
	PayslipCount    int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
}
