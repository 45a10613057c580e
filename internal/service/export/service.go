package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/domain/export"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/validation"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Service projects locked runs into downstream formats: the double-entry
// ledger, the bank transfer file, and the GOSI contribution report. All
// projections are read-only and derived purely from persisted payslip lines,
// so exporting twice always yields the same artifact.
type Service struct {
	runRepo       payroll.RunRepository
	payslipRepo   payroll.PayslipRepository
	employeeRepo  employee.EmployeeRepository
	statutoryRepo statutory.ConfigRepository
	logger        *slog.Logger
}

func NewService(
	runRepo payroll.RunRepository,
	payslipRepo payroll.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	statutoryRepo statutory.ConfigRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		runRepo:       runRepo,
		payslipRepo:   payslipRepo,
		employeeRepo:  employeeRepo,
		statutoryRepo: statutoryRepo,
		logger:        logger,
	}
}

// lockedRunPayslips loads a run and its payslips, rejecting draft runs: only
// finalized numbers leave the system.
func (s *Service) lockedRunPayslips(ctx context.Context, companyID, runID string) (payroll.Run, []payroll.Payslip, error) {
	run, err := s.runRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return payroll.Run{}, nil, err
	}
	if !run.IsLocked() {
		return payroll.Run{}, nil, payroll.ErrRunNotLocked
	}

	slips, err := s.payslipRepo.ListPayslipsByRun(ctx, runID, companyID)
	if err != nil {
		return payroll.Run{}, nil, err
	}
	sort.Slice(slips, func(i, j int) bool { return slips[i].EmployeeID < slips[j].EmployeeID })
	return run, slips, nil
}

// LedgerProjection buckets every payslip line of a locked run into ledger
// accounts. Earnings debit expense accounts, deductions and net pay credit
// liability accounts, advance recovery credits the loan asset; the projection
// balances by construction because net equals gross minus deductions.
func (s *Service) LedgerProjection(ctx context.Context, companyID, runID string) ([]export.LedgerEntry, error) {
	run, slips, err := s.lockedRunPayslips(ctx, companyID, runID)
	if err != nil {
		return nil, err
	}

	debits := map[string]decimal.Decimal{}
	credits := map[string]decimal.Decimal{}
	add := func(m map[string]decimal.Decimal, account string, amount decimal.Decimal) {
		m[account] = m[account].Add(amount)
	}

	gosiCfg, gosiErr := s.statutoryRepo.GetGosiConfig(ctx, companyID, run.CreatedAt)

	for _, slip := range slips {
		if slip.Status == payroll.PayslipStatusFailed {
			continue
		}

		lines, err := s.payslipRepo.ListLines(ctx, slip.ID)
		if err != nil {
			return nil, err
		}

		for _, line := range lines {
			switch {
			case line.Sign == payroll.SignEarning && strings.HasPrefix(line.SourceRef, "basic:"):
				add(debits, export.AccountBasicPay, line.Amount)
			case line.Sign == payroll.SignEarning && strings.HasPrefix(line.SourceRef, "overtime:"):
				add(debits, export.AccountOvertime, line.Amount)
			case line.Sign == payroll.SignEarning:
				add(debits, export.AccountAllowances, line.Amount)
			case line.SourceType == payroll.SourceAdvance:
				add(credits, export.AccountLoanRecovery, line.Amount)
			default:
				add(credits, export.AccountDeductionsPayable, line.Amount)
			}

			// The employer GOSI burden is not a payslip line; derive it from
			// the employee share so expense and liability move together.
			if gosiErr == nil && strings.HasPrefix(line.SourceRef, "gosi:") {
				employer := employerShareFrom(line.Amount, gosiCfg)
				add(debits, export.AccountEmployerStatutory, employer)
				add(credits, export.AccountDeductionsPayable, employer)
			}
		}

		add(credits, export.AccountNetPayPayable, slip.NetSalary)
	}

	return assembleEntries(debits, credits), nil
}

// employerShareFrom back-derives the contribution base from the employee share
// and prices the employer side with the same cap-adjusted base.
func employerShareFrom(employeeShare decimal.Decimal, cfg statutory.GosiConfig) decimal.Decimal {
	employeeRate := cfg.EmployeeRate.Add(cfg.SanedRate)
	if employeeRate.IsZero() {
		return decimal.Zero
	}
	base := employeeShare.Mul(hundred).Div(employeeRate)
	return base.Mul(cfg.EmployerRate.Add(cfg.HazardRate)).Div(hundred).Round(2)
}

var accountNames = map[string]string{
	export.AccountBasicPay:          "Basic pay expense",
	export.AccountAllowances:        "Allowances expense",
	export.AccountOvertime:          "Overtime expense",
	export.AccountEmployerStatutory: "Employer statutory contributions",
	export.AccountLoanRecovery:      "Employee advances",
	export.AccountDeductionsPayable: "Payroll deductions payable",
	export.AccountNetPayPayable:     "Net pay payable",
}

func assembleEntries(debits, credits map[string]decimal.Decimal) []export.LedgerEntry {
	accounts := map[string]struct{}{}
	for a := range debits {
		accounts[a] = struct{}{}
	}
	for a := range credits {
		accounts[a] = struct{}{}
	}

	entries := make([]export.LedgerEntry, 0, len(accounts))
	for a := range accounts {
		entries = append(entries, export.LedgerEntry{
			AccountCode: a,
			AccountName: accountNames[a],
			Debit:       debits[a].Round(2),
			Credit:      credits[a].Round(2),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].AccountCode < entries[j].AccountCode })
	return entries
}

// BankTransfers builds the per-employee payment records of a locked run.
// Payslips with a non-positive net amount or a structurally invalid IBAN are
// skipped and logged rather than corrupting the file.
func (s *Service) BankTransfers(ctx context.Context, companyID, runID string) ([]export.BankTransferRecord, error) {
	_, slips, err := s.lockedRunPayslips(ctx, companyID, runID)
	if err != nil {
		return nil, err
	}

	records := make([]export.BankTransferRecord, 0, len(slips))
	for _, slip := range slips {
		if slip.Status == payroll.PayslipStatusFailed {
			continue
		}
		if !slip.NetSalary.IsPositive() {
			s.logger.Warn("skipping bank transfer with non-positive net",
				slog.String("employee_id", slip.EmployeeID),
				slog.String("net", slip.NetSalary.String()))
			continue
		}

		emp, err := s.employeeRepo.GetByID(ctx, slip.EmployeeID, companyID)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", slip.EmployeeID, err)
		}

		account, err := s.employeeRepo.GetPrimaryBankAccount(ctx, slip.EmployeeID)
		if err != nil || !validation.IsValidSaudiIBAN(account.IBAN) {
			s.logger.Warn("skipping bank transfer without a valid IBAN",
				slog.String("employee_id", slip.EmployeeID))
			continue
		}

		record, err := s.transferRecord(ctx, slip, emp, account)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (s *Service) transferRecord(ctx context.Context, slip payroll.Payslip, emp employee.Employee, account employee.BankAccount) (export.BankTransferRecord, error) {
	lines, err := s.payslipRepo.ListLines(ctx, slip.ID)
	if err != nil {
		return export.BankTransferRecord{}, err
	}

	componentCodes := map[string]string{}
	if assignment, err := s.employeeRepo.GetActiveAssignment(ctx, emp.ID, emp.CompanyID); err == nil {
		for _, sl := range assignment.Structure.Lines {
			componentCodes[sl.ComponentID] = sl.Component.Code
		}
	}

	basic, housing, other := decimal.Zero, decimal.Zero, decimal.Zero
	for _, line := range lines {
		if line.Sign != payroll.SignEarning {
			continue
		}
		switch {
		case strings.HasPrefix(line.SourceRef, "basic:"):
			basic = basic.Add(line.Amount)
		case componentCodes[line.ComponentID] == "HOUSING":
			housing = housing.Add(line.Amount)
		default:
			other = other.Add(line.Amount)
		}
	}

	identifier := emp.EmployeeCode
	if emp.NationalID != nil {
		identifier = *emp.NationalID
	}

	return export.BankTransferRecord{
		EmployeeIdentifier: identifier,
		EmployeeName:       emp.FullName(),
		BankCode:           account.BankCode,
		IBAN:               validation.NormalizeIBAN(account.IBAN),
		NetAmount:          slip.NetSalary,
		BasicAmount:        basic.Round(2),
		HousingAmount:      housing.Round(2),
		OtherAllowances:    other.Round(2),
		Deductions:         slip.TotalDeductions,
	}, nil
}

// GosiReport summarizes contributions per employee for a locked run, pricing
// the employer side from the same base the employee share was computed on.
func (s *Service) GosiReport(ctx context.Context, companyID, runID string) ([]export.GosiReportRow, error) {
	run, slips, err := s.lockedRunPayslips(ctx, companyID, runID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.statutoryRepo.GetGosiConfig(ctx, companyID, run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("gosi config: %w", err)
	}

	rows := make([]export.GosiReportRow, 0, len(slips))
	for _, slip := range slips {
		if slip.Status == payroll.PayslipStatusFailed {
			continue
		}

		lines, err := s.payslipRepo.ListLines(ctx, slip.ID)
		if err != nil {
			return nil, err
		}

		employeeShare := decimal.Zero
		for _, line := range lines {
			if strings.HasPrefix(line.SourceRef, "gosi:") {
				employeeShare = employeeShare.Add(line.Amount)
			}
		}
		if !employeeShare.IsPositive() {
			continue
		}

		emp, err := s.employeeRepo.GetByID(ctx, slip.EmployeeID, companyID)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", slip.EmployeeID, err)
		}

		employerShare := employerShareFrom(employeeShare, cfg)
		rows = append(rows, export.GosiReportRow{
			EmployeeID:    emp.ID,
			EmployeeCode:  emp.EmployeeCode,
			EmployeeName:  emp.FullName(),
			IsSaudi:       emp.IsSaudi,
			BaseSalary:    slip.BaseSalary,
			EmployeeShare: employeeShare,
			EmployerShare: employerShare,
			Total:         employeeShare.Add(employerShare),
		})
	}

	return rows, nil
}
