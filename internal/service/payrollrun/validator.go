package payrollrun

import (
	"context"
	"errors"
	"fmt"

	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/validation"
	"github.com/masar-hr/payroll-engine-go/internal/service/aggregation"
)

// Severity enum. ERROR blocks locking; WARNING is surfaced but not blocking.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Exception - one pre-flight finding for one employee.
type Exception struct {
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Check        string   `json:"check"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
}

// Report - the aggregated pre-flight outcome for a run.
type Report struct {
	IsValid       bool        `json:"is_valid"`
	ErrorsCount   int         `json:"errors_count"`
	WarningsCount int         `json:"warnings_count"`
	Exceptions    []Exception `json:"exceptions"`
}

func (r *Report) add(ex Exception) {
	r.Exceptions = append(r.Exceptions, ex)
	switch ex.Severity {
	case SeverityError:
		r.ErrorsCount++
	case SeverityWarning:
		r.WarningsCount++
	}
}

// Validator runs the pre-flight checks that gate locking a run: bank account
// and IBAN shape, contract coverage, an active salary assignment, and
// attendance presence.
type Validator struct {
	employeeRepo employee.EmployeeRepository
	attendance   *aggregation.Service
}

func NewValidator(employeeRepo employee.EmployeeRepository, attendance *aggregation.Service) *Validator {
	return &Validator{employeeRepo: employeeRepo, attendance: attendance}
}

// ValidateRun checks every employee in the run. Findings never abort the
// scan; the caller decides what a non-empty error count means.
func (v *Validator) ValidateRun(ctx context.Context, employees []employee.Employee, period payroll.Period) (Report, error) {
	report := Report{Exceptions: []Exception{}}

	for _, emp := range employees {
		if err := v.validateEmployee(ctx, emp, period, &report); err != nil {
			return Report{}, err
		}
	}

	report.IsValid = report.ErrorsCount == 0
	return report, nil
}

// validateEmployee records findings only for the domain's not-found sentinels;
// any other repository error aborts the scan so an outage is never reported as
// missing employee data.
func (v *Validator) validateEmployee(ctx context.Context, emp employee.Employee, period payroll.Period, report *Report) error {
	account, err := v.employeeRepo.GetPrimaryBankAccount(ctx, emp.ID)
	switch {
	case errors.Is(err, employee.ErrNoBankAccount):
		report.add(Exception{
			EmployeeID: emp.ID, EmployeeName: emp.FullName(),
			Check: "bank_account", Severity: SeverityError,
			Message: "no primary bank account on file",
		})
	case err != nil:
		return fmt.Errorf("primary bank account for %s: %w", emp.ID, err)
	case !validation.IsValidSaudiIBAN(account.IBAN):
		report.add(Exception{
			EmployeeID: emp.ID, EmployeeName: emp.FullName(),
			Check: "bank_account", Severity: SeverityError,
			Message: fmt.Sprintf("IBAN %q is not a valid Saudi IBAN", account.IBAN),
		})
	}

	contract, err := v.employeeRepo.GetActiveContract(ctx, emp.ID, emp.CompanyID)
	switch {
	case errors.Is(err, employee.ErrNoActiveContract):
		report.add(Exception{
			EmployeeID: emp.ID, EmployeeName: emp.FullName(),
			Check: "contract", Severity: SeverityError,
			Message: "no active contract",
		})
	case err != nil:
		return fmt.Errorf("active contract for %s: %w", emp.ID, err)
	case !contract.Covers(period.StartDate, period.EndDate):
		report.add(Exception{
			EmployeeID: emp.ID, EmployeeName: emp.FullName(),
			Check: "contract", Severity: SeverityError,
			Message: "active contract does not cover the full pay period",
		})
	}

	if _, err := v.employeeRepo.GetActiveAssignment(ctx, emp.ID, emp.CompanyID); err != nil {
		if !errors.Is(err, employee.ErrNoActiveAssignment) {
			return fmt.Errorf("active assignment for %s: %w", emp.ID, err)
		}
		report.add(Exception{
			EmployeeID: emp.ID, EmployeeName: emp.FullName(),
			Check: "salary_assignment", Severity: SeverityError,
			Message: "no active salary assignment",
		})
	}

	summary, err := v.attendance.Summarize(ctx, emp.ID, emp.CompanyID, period.StartDate, period.EndDate)
	if err != nil {
		return fmt.Errorf("attendance summary for %s: %w", emp.ID, err)
	}
	if summary.RecordCount == 0 {
		report.add(Exception{
			EmployeeID: emp.ID, EmployeeName: emp.FullName(),
			Check: "attendance", Severity: SeverityWarning,
			Message: "no attendance records in the pay period",
		})
	}

	return nil
}
