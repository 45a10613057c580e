package payrollrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/masar-hr/payroll-engine-go/internal/domain/advance"
	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
	"github.com/masar-hr/payroll-engine-go/internal/service/payslip"
	"github.com/shopspring/decimal"
)

// maxWorkers bounds the per-employee generation parallelism of one run.
const maxWorkers = 8

// balanceTolerance is the acceptable rounding variance between payslip totals
// and their line sums at lock time.
var balanceTolerance = decimal.RequireFromString("0.01")

// Service orchestrates the run lifecycle: compute, lock, adjust, pay.
type Service struct {
	transactor    database.Transactor
	runRepo       payroll.RunRepository
	payslipRepo   payroll.PayslipRepository
	employeeRepo  employee.EmployeeRepository
	statutoryRepo statutory.ConfigRepository
	advanceRepo   advance.AdvanceRepository
	generator     *payslip.Generator
	validator     *Validator
	logger        *slog.Logger
}

func NewService(
	transactor database.Transactor,
	runRepo payroll.RunRepository,
	payslipRepo payroll.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	statutoryRepo statutory.ConfigRepository,
	advanceRepo advance.AdvanceRepository,
	generator *payslip.Generator,
	validator *Validator,
	logger *slog.Logger,
) *Service {
	return &Service{
		transactor:    transactor,
		runRepo:       runRepo,
		payslipRepo:   payslipRepo,
		employeeRepo:  employeeRepo,
		statutoryRepo: statutoryRepo,
		advanceRepo:   advanceRepo,
		generator:     generator,
		validator:     validator,
		logger:        logger,
	}
}

// RunPayroll computes payslips for the period's draft run, creating the run
// when none exists. Employees are processed in parallel with per-employee
// failure isolation: one broken employee is reported in the outcome list and
// never aborts the rest.
func (s *Service) RunPayroll(ctx context.Context, companyID, userID string, req payroll.RunPayrollRequest) (payroll.RunResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResult{}, err
	}

	period, err := s.runRepo.GetPeriodByID(ctx, req.PeriodID, companyID)
	if err != nil {
		return payroll.RunResult{}, err
	}
	if period.Status == payroll.PeriodStatusPaid {
		return payroll.RunResult{}, payroll.ErrPeriodAlreadyPaid
	}

	run, err := s.draftRunForPeriod(ctx, period, companyID, userID)
	if err != nil {
		return payroll.RunResult{}, err
	}

	employees, err := s.resolveEmployees(ctx, companyID, req.EmployeeIDs)
	if err != nil {
		return payroll.RunResult{}, err
	}

	snap, err := s.Snapshot(ctx, companyID, period)
	if err != nil {
		return payroll.RunResult{}, err
	}

	outcomes := s.generateAll(ctx, run, period, snap, employees)

	return payroll.RunResult{
		RunID:              run.ID,
		EmployeesProcessed: len(outcomes),
		Outcomes:           outcomes,
	}, nil
}

// Snapshot captures the effective-dated configuration the whole run computes
// against. A missing GOSI config disables contributions rather than failing
// the run; leave types and settings fall back to the statutory defaults.
func (s *Service) Snapshot(ctx context.Context, companyID string, period payroll.Period) (statutory.Snapshot, error) {
	snap := statutory.Snapshot{
		LeaveTypes: map[string]statutory.LeaveTypeConfig{},
		TakenAt:    time.Now(),
	}

	gosi, err := s.statutoryRepo.GetGosiConfig(ctx, companyID, period.StartDate)
	switch {
	case err == nil:
		snap.Gosi = &gosi
	case errors.Is(err, statutory.ErrGosiConfigMissing):
		s.logger.Warn("no GOSI config for period, contributions disabled",
			slog.String("company_id", companyID),
			slog.String("period_id", period.ID))
	default:
		return statutory.Snapshot{}, fmt.Errorf("gosi config: %w", err)
	}

	leaveTypes, err := s.statutoryRepo.ListLeaveTypes(ctx, companyID)
	if err != nil && !errors.Is(err, statutory.ErrLeaveConfigMissing) {
		return statutory.Snapshot{}, fmt.Errorf("leave types: %w", err)
	}
	for _, lt := range leaveTypes {
		snap.LeaveTypes[lt.Code] = lt
	}

	settings, err := s.statutoryRepo.GetCalculationSettings(ctx, companyID)
	if err != nil {
		settings = statutory.DefaultSettings(companyID)
	}
	snap.Settings = settings

	return snap, nil
}

func (s *Service) draftRunForPeriod(ctx context.Context, period payroll.Period, companyID, userID string) (payroll.Run, error) {
	runs, err := s.runRepo.ListRunsByPeriod(ctx, period.ID, companyID)
	if err != nil {
		return payroll.Run{}, err
	}
	for _, r := range runs {
		if r.Status == payroll.RunStatusDraft && !r.IsAdjustment {
			return r, nil
		}
	}

	return s.runRepo.CreateRun(ctx, payroll.Run{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		PeriodID:    period.ID,
		Status:      payroll.RunStatusDraft,
		ProcessedBy: userID,
	})
}

func (s *Service) resolveEmployees(ctx context.Context, companyID string, ids []string) ([]employee.Employee, error) {
	if len(ids) > 0 {
		return s.employeeRepo.GetByIDs(ctx, ids, companyID)
	}
	return s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
}

func (s *Service) generateAll(
	ctx context.Context,
	run payroll.Run,
	period payroll.Period,
	snap statutory.Snapshot,
	employees []employee.Employee,
) []payroll.EmployeeOutcome {
	outcomes := make([]payroll.EmployeeOutcome, len(employees))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxWorkers)

	for i, emp := range employees {
		wg.Add(1)
		go func(i int, emp employee.Employee) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome := payroll.EmployeeOutcome{EmployeeID: emp.ID, Success: true}
			if _, err := s.generator.Generate(ctx, run.ID, emp, period, snap); err != nil {
				outcome.Success = false
				outcome.Error = err.Error()
				s.recordFailure(ctx, run, period, emp, err)
			}
			outcomes[i] = outcome
		}(i, emp)
	}
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].EmployeeID < outcomes[j].EmployeeID })
	return outcomes
}

// recordFailure leaves a FAILED payslip shell behind so the run overview shows
// who could not be computed and why.
func (s *Service) recordFailure(ctx context.Context, run payroll.Run, period payroll.Period, emp employee.Employee, cause error) {
	s.logger.Error("payslip generation failed",
		slog.String("run_id", run.ID),
		slog.String("employee_id", emp.ID),
		slog.String("error", cause.Error()))

	slip, err := s.payslipRepo.GetPayslip(ctx, run.ID, emp.ID, emp.CompanyID)
	if errors.Is(err, payroll.ErrPayslipNotFound) {
		slip, err = s.payslipRepo.UpsertPayslip(ctx, payroll.Payslip{
			ID:         uuid.NewString(),
			CompanyID:  emp.CompanyID,
			RunID:      run.ID,
			PeriodID:   period.ID,
			EmployeeID: emp.ID,
			Status:     payroll.PayslipStatusFailed,
		})
	}
	if err != nil {
		s.logger.Error("could not record payslip failure", slog.String("error", err.Error()))
		return
	}

	if err := s.payslipRepo.MarkPayslipFailed(ctx, slip.ID, emp.CompanyID, cause.Error()); err != nil {
		s.logger.Error("could not mark payslip failed", slog.String("error", err.Error()))
	}
}

// LockRun finalizes a draft run: pre-flight validation must report zero
// errors, totals must balance against line sums, and the DRAFT->LOCKED flip is
// atomic so two concurrent locks cannot both succeed. Advance recovery
// payments are recorded in the same transaction the lock commits in.
func (s *Service) LockRun(ctx context.Context, companyID, userID string, req payroll.LockRunRequest) (payroll.Run, Report, error) {
	if err := req.Validate(); err != nil {
		return payroll.Run{}, Report{}, err
	}

	var (
		locked payroll.Run
		report Report
	)

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		run, err := s.runRepo.GetRunForUpdate(ctx, req.RunID, companyID)
		if err != nil {
			return err
		}
		if run.IsLocked() {
			return payroll.ErrRunAlreadyLocked
		}

		period, err := s.runRepo.GetPeriodByID(ctx, run.PeriodID, companyID)
		if err != nil {
			return err
		}

		slips, err := s.payslipRepo.ListPayslipsByRun(ctx, run.ID, companyID)
		if err != nil {
			return err
		}

		employees, err := s.runEmployees(ctx, companyID, slips)
		if err != nil {
			return err
		}

		report, err = s.validator.ValidateRun(ctx, employees, period)
		if err != nil {
			return err
		}
		if !report.IsValid {
			return payroll.ErrValidationFailed
		}

		if err := s.checkBalance(ctx, slips); err != nil {
			return err
		}

		locked, err = s.runRepo.LockRun(ctx, run.ID, companyID, userID)
		if err != nil {
			return err
		}

		return s.settleAdvances(ctx, locked, slips)
	})
	if err != nil {
		return payroll.Run{}, report, err
	}

	return locked, report, nil
}

func (s *Service) runEmployees(ctx context.Context, companyID string, slips []payroll.Payslip) ([]employee.Employee, error) {
	ids := make([]string, 0, len(slips))
	for _, slip := range slips {
		if slip.Status != payroll.PayslipStatusFailed {
			ids = append(ids, slip.EmployeeID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.employeeRepo.GetByIDs(ctx, ids, companyID)
}

// checkBalance verifies every payslip's stored totals against the sum of its
// lines within the rounding tolerance.
func (s *Service) checkBalance(ctx context.Context, slips []payroll.Payslip) error {
	for _, slip := range slips {
		if slip.Status == payroll.PayslipStatusFailed {
			return fmt.Errorf("%w: payslip for employee %s failed generation", payroll.ErrRunNotBalanced, slip.EmployeeID)
		}

		lines, err := s.payslipRepo.ListLines(ctx, slip.ID)
		if err != nil {
			return err
		}

		gross, deductions := decimal.Zero, decimal.Zero
		for _, l := range lines {
			switch l.Sign {
			case payroll.SignEarning:
				gross = gross.Add(l.Amount)
			case payroll.SignDeduction:
				deductions = deductions.Add(l.Amount)
			}
		}

		if gross.Sub(slip.GrossSalary).Abs().GreaterThan(balanceTolerance) ||
			deductions.Sub(slip.TotalDeductions).Abs().GreaterThan(balanceTolerance) ||
			gross.Sub(deductions).Sub(slip.NetSalary).Abs().GreaterThan(balanceTolerance) {
			return fmt.Errorf("%w: payslip %s totals diverge from line sums", payroll.ErrRunNotBalanced, slip.ID)
		}
	}
	return nil
}

// settleAdvances records one recovery payment per ADVANCE line and flips the
// advance to FULLY_PAID when its balance reaches zero. The remaining balance
// is re-read here because manual payments may have landed between draft
// generation and the lock; the installment is clipped to that balance so the
// total recovered never exceeds the approved amount.
func (s *Service) settleAdvances(ctx context.Context, run payroll.Run, slips []payroll.Payslip) error {
	for _, slip := range slips {
		lines, err := s.payslipRepo.ListLines(ctx, slip.ID)
		if err != nil {
			return err
		}

		for _, line := range lines {
			if line.SourceType != payroll.SourceAdvance {
				continue
			}
			advanceID := strings.TrimPrefix(line.SourceRef, "advance:")

			adv, err := s.advanceRepo.GetByID(ctx, advanceID, run.CompanyID)
			if err != nil {
				return err
			}
			payments, err := s.advanceRepo.ListPayments(ctx, advanceID)
			if err != nil {
				return err
			}

			remaining := adv.Remaining(payments)
			if !remaining.IsPositive() {
				if adv.Status != advance.StatusFullyPaid {
					if err := s.advanceRepo.UpdateStatus(ctx, advanceID, run.CompanyID, advance.StatusFullyPaid); err != nil {
						return err
					}
				}
				continue
			}

			amount := decimal.Min(line.Amount, remaining)
			runID := run.ID
			if _, err := s.advanceRepo.CreatePayment(ctx, advance.Payment{
				ID:        uuid.NewString(),
				AdvanceID: advanceID,
				RunID:     &runID,
				Amount:    amount,
				PaidAt:    time.Now(),
			}); err != nil {
				return fmt.Errorf("record advance payment: %w", err)
			}

			if !remaining.Sub(amount).IsPositive() {
				if err := s.advanceRepo.UpdateStatus(ctx, advanceID, run.CompanyID, advance.StatusFullyPaid); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// CreateAdjustmentRun opens a correction run against a locked run. The
// original stays immutable; corrections land on the new draft.
func (s *Service) CreateAdjustmentRun(ctx context.Context, companyID, userID string, req payroll.CreateAdjustmentRunRequest) (payroll.Run, error) {
	if err := req.Validate(); err != nil {
		return payroll.Run{}, err
	}

	original, err := s.runRepo.GetRunByID(ctx, req.OriginalRunID, companyID)
	if err != nil {
		return payroll.Run{}, err
	}
	if !original.IsLocked() {
		return payroll.Run{}, payroll.ErrRunNotLocked
	}

	reason := req.Reason
	return s.runRepo.CreateRun(ctx, payroll.Run{
		ID:               uuid.NewString(),
		CompanyID:        companyID,
		PeriodID:         original.PeriodID,
		Status:           payroll.RunStatusDraft,
		IsAdjustment:     true,
		OriginalRunID:    &original.ID,
		AdjustmentReason: &reason,
		ProcessedBy:      userID,
	})
}

// ValidateRun runs pre-flight for a run without locking it, for the review
// screen ahead of the lock action.
func (s *Service) ValidateRun(ctx context.Context, companyID, runID string) (Report, error) {
	run, err := s.runRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return Report{}, err
	}

	period, err := s.runRepo.GetPeriodByID(ctx, run.PeriodID, companyID)
	if err != nil {
		return Report{}, err
	}

	slips, err := s.payslipRepo.ListPayslipsByRun(ctx, run.ID, companyID)
	if err != nil {
		return Report{}, err
	}

	var employees []employee.Employee
	if len(slips) > 0 {
		employees, err = s.runEmployees(ctx, companyID, slips)
	} else {
		employees, err = s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	}
	if err != nil {
		return Report{}, err
	}

	return s.validator.ValidateRun(ctx, employees, period)
}

// MarkRunPaid transitions a locked run to PAID, the terminal state.
func (s *Service) MarkRunPaid(ctx context.Context, companyID, runID string) error {
	run, err := s.runRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return err
	}
	if run.Status != payroll.RunStatusLocked {
		return payroll.ErrRunNotLocked
	}
	return s.runRepo.MarkRunPaid(ctx, runID, companyID)
}

// GetRun returns a run with its payslips for the review screen.
func (s *Service) GetRun(ctx context.Context, companyID, runID string) (payroll.Run, []payroll.Payslip, error) {
	run, err := s.runRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return payroll.Run{}, nil, err
	}

	slips, err := s.payslipRepo.ListPayslipsByRun(ctx, runID, companyID)
	if err != nil {
		return payroll.Run{}, nil, err
	}
	sort.Slice(slips, func(i, j int) bool { return slips[i].EmployeeID < slips[j].EmployeeID })

	return run, slips, nil
}

// GetPayslip returns one payslip with its lines.
func (s *Service) GetPayslip(ctx context.Context, companyID, payslipID string) (payroll.Payslip, error) {
	slip, err := s.payslipRepo.GetPayslipByID(ctx, payslipID, companyID)
	if err != nil {
		return payroll.Payslip{}, err
	}

	lines, err := s.payslipRepo.ListLines(ctx, slip.ID)
	if err != nil {
		return payroll.Payslip{}, err
	}
	slip.Lines = lines
	return slip, nil
}
