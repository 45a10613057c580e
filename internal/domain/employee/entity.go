package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentStatus enum
type EmploymentStatus string

const (
	StatusActive     EmploymentStatus = "ACTIVE"
	StatusTerminated EmploymentStatus = "TERMINATED"
	StatusSuspended  EmploymentStatus = "SUSPENDED"
)

// Employee - the payroll-relevant view of a worker. IsSaudi drives GOSI
// eligibility when the active config is restricted to Saudi nationals.
type Employee struct {
	ID           string
	CompanyID    string
	EmployeeCode string
	FirstName    string
	LastName     string
	NationalID   *string
	Nationality  *string
	IsSaudi      bool
	HireDate     time.Time
	Status       EmploymentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Contract - an employment contract window. The pre-flight validator requires
// an active contract covering the full pay period.
type Contract struct {
	ID         string
	EmployeeID string
	CompanyID  string
	StartDate  time.Time
	EndDate    *time.Time
	IsActive   bool
}

// Covers reports whether the contract spans [periodStart, periodEnd].
func (c Contract) Covers(periodStart, periodEnd time.Time) bool {
	if c.StartDate.After(periodStart) {
		return false
	}
	if c.EndDate != nil && c.EndDate.Before(periodEnd) {
		return false
	}
	return true
}

// ComponentType enum
type ComponentType string

const (
	ComponentEarning   ComponentType = "EARNING"
	ComponentDeduction ComponentType = "DEDUCTION"
)

// SalaryComponent - master definition of a pay element. GosiEligible earnings
// feed the GOSI contribution base.
type SalaryComponent struct {
	ID           string
	CompanyID    string
	Code         string
	Name         string
	Type         ComponentType
	GosiEligible bool
	IsActive     bool
}

// StructureLine - one component inside a salary structure, either a fixed
// amount or a percentage of basic.
type StructureLine struct {
	ID          string
	StructureID string
	ComponentID string
	Component   SalaryComponent
	Amount      *decimal.Decimal
	Percentage  *decimal.Decimal
	Priority    int
}

// SalaryStructure - the fixed composition of a payslip.
type SalaryStructure struct {
	ID        string
	CompanyID string
	Name      string
	Lines     []StructureLine
}

// SalaryAssignment binds an employee to a structure with a basic salary.
// Only one assignment may be active per employee at a time.
type SalaryAssignment struct {
	ID          string
	EmployeeID  string
	StructureID string
	Structure   SalaryStructure
	BaseSalary  decimal.Decimal
	IsActive    bool
	EffectiveAt time.Time
}

// BankAccount - employee payment destination; the bank export and the
// pre-flight validator both require a structurally valid primary account.
type BankAccount struct {
	ID         string
	EmployeeID string
	BankCode   string
	IBAN       string
	IsPrimary  bool
	IsActive   bool
}
