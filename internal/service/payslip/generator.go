package payslip

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/masar-hr/payroll-engine-go/internal/domain/advance"
	"github.com/masar-hr/payroll-engine-go/internal/domain/attendance"
	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/domain/policy"
	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
	"github.com/masar-hr/payroll-engine-go/internal/service/aggregation"
	"github.com/masar-hr/payroll-engine-go/internal/service/calculation"
	"github.com/shopspring/decimal"
)

// Generator rebuilds one employee's payslip from its inputs. Regeneration is
// idempotent: engine-owned lines are deleted and rebuilt from the same
// deterministic sources, MANUAL lines survive untouched, and running it twice
// against unchanged inputs yields byte-equal line sets.
type Generator struct {
	transactor   database.Transactor
	runRepo      payroll.RunRepository
	payslipRepo  payroll.PayslipRepository
	employeeRepo employee.EmployeeRepository
	policyRepo   policy.PolicyRepository
	advanceRepo  advance.AdvanceRepository
	attendance   *aggregation.Service
	logger       *slog.Logger
}

func NewGenerator(
	transactor database.Transactor,
	runRepo payroll.RunRepository,
	payslipRepo payroll.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	policyRepo policy.PolicyRepository,
	advanceRepo advance.AdvanceRepository,
	attendance *aggregation.Service,
	logger *slog.Logger,
) *Generator {
	return &Generator{
		transactor:   transactor,
		runRepo:      runRepo,
		payslipRepo:  payslipRepo,
		employeeRepo: employeeRepo,
		policyRepo:   policyRepo,
		advanceRepo:  advanceRepo,
		attendance:   attendance,
		logger:       logger,
	}
}

// Generate computes the payslip for one employee inside a single transaction.
// The run row is share-locked first, so generators for different employees
// proceed in parallel while a concurrent LockRun either waits for them or
// makes this call fail with ErrLockedRunViolation; a payslip can never be
// half-written into a locked run.
func (g *Generator) Generate(
	ctx context.Context,
	runID string,
	emp employee.Employee,
	period payroll.Period,
	snap statutory.Snapshot,
) (payroll.Payslip, error) {
	var result payroll.Payslip

	err := g.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		run, err := g.runRepo.GetRunForShare(ctx, runID, emp.CompanyID)
		if err != nil {
			return err
		}
		if run.IsLocked() {
			return payroll.ErrLockedRunViolation
		}

		slip, err := g.regenerate(ctx, run, emp, period, snap)
		if err != nil {
			return err
		}
		result = slip
		return nil
	})

	return result, err
}

func (g *Generator) regenerate(
	ctx context.Context,
	run payroll.Run,
	emp employee.Employee,
	period payroll.Period,
	snap statutory.Snapshot,
) (payroll.Payslip, error) {
	assignment, err := g.employeeRepo.GetActiveAssignment(ctx, emp.ID, emp.CompanyID)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("active assignment: %w", err)
	}

	summary, err := g.attendance.Summarize(ctx, emp.ID, emp.CompanyID, period.StartDate, period.EndDate)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("attendance summary: %w", err)
	}

	slip, err := g.payslipRepo.UpsertPayslip(ctx, payroll.Payslip{
		ID:         uuid.NewString(),
		CompanyID:  emp.CompanyID,
		RunID:      run.ID,
		PeriodID:   period.ID,
		EmployeeID: emp.ID,
		BaseSalary: assignment.BaseSalary,
		Status:     payroll.PayslipStatusDraft,
	})
	if err != nil {
		return payroll.Payslip{}, err
	}

	if _, err := g.payslipRepo.GetPayslipForUpdate(ctx, slip.ID, emp.CompanyID); err != nil {
		return payroll.Payslip{}, err
	}
	if err := g.payslipRepo.DeleteEngineLines(ctx, slip.ID); err != nil {
		return payroll.Payslip{}, err
	}

	lines, trace, err := g.buildLines(ctx, buildInput{
		run:        run,
		emp:        emp,
		period:     period,
		snap:       snap,
		assignment: assignment,
		summary:    summary,
		payslipID:  slip.ID,
	})
	if err != nil {
		return payroll.Payslip{}, err
	}

	if err := g.payslipRepo.InsertLines(ctx, lines); err != nil {
		return payroll.Payslip{}, err
	}

	manual, err := g.payslipRepo.ListLines(ctx, slip.ID)
	if err != nil {
		return payroll.Payslip{}, err
	}

	slip = applyTotals(slip, manual)
	slip.CalculationTrace = trace
	if err := g.payslipRepo.UpdateTotals(ctx, slip); err != nil {
		return payroll.Payslip{}, err
	}

	slip.Lines = manual
	return slip, nil
}

type buildInput struct {
	run        payroll.Run
	emp        employee.Employee
	period     payroll.Period
	snap       statutory.Snapshot
	assignment employee.SalaryAssignment
	summary    attendance.PeriodSummary
	payslipID  string
}

// buildLines assembles the engine-owned lines together with the calculation
// trace recorded by the statutory calculators along the way.
func (g *Generator) buildLines(ctx context.Context, in buildInput) ([]payroll.Line, []payroll.TraceEntry, error) {
	var lines []payroll.Line

	structureLines, gosiBase, structureGross := structureLines(in)
	lines = append(lines, structureLines...)

	statutoryLines, trace, err := g.statutoryLines(ctx, in, gosiBase, structureGross)
	if err != nil {
		return nil, nil, err
	}
	lines = append(lines, statutoryLines...)

	policyLines, err := g.policyLines(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	lines = append(lines, policyLines...)

	advanceLines, err := g.advanceLines(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	lines = append(lines, advanceLines...)

	// The deduction ceiling is applied last, over everything above.
	capLines, capTrace := capLines(in, lines)
	lines = append(lines, capLines...)
	trace = append(trace, capTrace...)

	for i := range lines {
		lines[i].PayslipID = in.payslipID
	}
	return lines, trace, nil
}

// appendTrace labels a calculator's steps and folds them into the payslip
// trace.
func appendTrace(entries []payroll.TraceEntry, calculator string, trace calculation.Trace) []payroll.TraceEntry {
	for _, step := range trace {
		entries = append(entries, payroll.TraceEntry{
			Calculator: calculator,
			Step:       step.Step,
			Formula:    step.Formula,
			Result:     step.Result,
		})
	}
	return entries
}

// structureLines materializes the fixed salary composition: the basic salary
// line plus each structure component, percentage components resolved against
// basic. Returns the lines, the GOSI-eligible earning base, and the structure
// gross used as the percentage/overtime base.
func structureLines(in buildInput) ([]payroll.Line, decimal.Decimal, decimal.Decimal) {
	basic := in.assignment.BaseSalary.Round(2)

	lines := []payroll.Line{{
		ID:          uuid.NewString(),
		Sign:        payroll.SignEarning,
		Amount:      basic,
		SourceType:  payroll.SourceStructure,
		SourceRef:   "basic:" + in.assignment.ID,
		Description: "Basic salary",
	}}

	gosiBase := basic
	gross := basic

	structure := in.assignment.Structure.Lines
	sort.SliceStable(structure, func(i, j int) bool {
		if structure[i].Priority != structure[j].Priority {
			return structure[i].Priority < structure[j].Priority
		}
		return structure[i].ID < structure[j].ID
	})

	for _, sl := range structure {
		amount := decimal.Zero
		switch {
		case sl.Amount != nil:
			amount = sl.Amount.Round(2)
		case sl.Percentage != nil:
			amount = basic.Mul(*sl.Percentage).Div(decimal.NewFromInt(100)).Round(2)
		}
		if amount.IsZero() {
			continue
		}

		sign := payroll.SignEarning
		if sl.Component.Type == employee.ComponentDeduction {
			sign = payroll.SignDeduction
		}

		lines = append(lines, payroll.Line{
			ID:          uuid.NewString(),
			ComponentID: sl.ComponentID,
			Sign:        sign,
			Amount:      amount,
			SourceType:  payroll.SourceStructure,
			SourceRef:   "structure:" + sl.ID,
			Description: sl.Component.Name,
		})

		if sign == payroll.SignEarning {
			gross = gross.Add(amount)
			if sl.Component.GosiEligible {
				gosiBase = gosiBase.Add(amount)
			}
		}
	}

	return lines, gosiBase, gross
}

func (g *Generator) statutoryLines(_ context.Context, in buildInput, gosiBase, structureGross decimal.Decimal) ([]payroll.Line, []payroll.TraceEntry, error) {
	var (
		lines []payroll.Line
		trace []payroll.TraceEntry
	)

	settings := in.snap.Settings
	daysInMonth := calculation.DaysInMonth(in.period.Year, in.period.Month, settings.DaysInMonthMethod)
	dailyRate := calculation.DailyRate(in.assignment.BaseSalary, daysInMonth)
	hourlyRate := calculation.HourlyRate(dailyRate)

	if in.snap.Gosi != nil {
		res, steps := calculation.Gosi(calculation.GosiInput{
			BasicSalary:  in.assignment.BaseSalary,
			EligibleBase: gosiBase,
			IsSaudi:      in.emp.IsSaudi,
		}, *in.snap.Gosi)
		trace = appendTrace(trace, "gosi", steps)
		if res.Applies && res.EmployeeShare.IsPositive() {
			lines = append(lines, payroll.Line{
				ID:          uuid.NewString(),
				Sign:        payroll.SignDeduction,
				Amount:      res.EmployeeShare,
				SourceType:  payroll.SourceStatutory,
				SourceRef:   "gosi:" + in.snap.Gosi.ID,
				Description: "GOSI employee contribution",
			})
		}
	}

	if in.summary.AbsentDays > 0 {
		amount, steps := calculation.Absence(in.summary.AbsentDays, dailyRate, settings)
		trace = appendTrace(trace, "absence", steps)
		lines = append(lines, payroll.Line{
			ID:          uuid.NewString(),
			Sign:        payroll.SignDeduction,
			Amount:      amount,
			SourceType:  payroll.SourceStatutory,
			SourceRef:   fmt.Sprintf("absence:%s:%d", settings.AbsenceMode, in.summary.AbsentDays),
			Description: fmt.Sprintf("Absence deduction (%d days)", in.summary.AbsentDays),
		})
	}

	if in.summary.LateMinutesTotal > 0 {
		amount, steps := calculation.LateDeduction(in.summary.LateMinutesTotal, hourlyRate, settings)
		trace = appendTrace(trace, "late", steps)
		if amount.IsPositive() {
			lines = append(lines, payroll.Line{
				ID:          uuid.NewString(),
				Sign:        payroll.SignDeduction,
				Amount:      amount,
				SourceType:  payroll.SourceStatutory,
				SourceRef:   fmt.Sprintf("late:%d", in.summary.LateMinutesTotal),
				Description: fmt.Sprintf("Late arrival deduction (%d minutes)", in.summary.LateMinutesTotal),
			})
		}
	}

	leaveLines, leaveTrace, err := g.leaveLines(in, dailyRate)
	if err != nil {
		return nil, nil, err
	}
	lines = append(lines, leaveLines...)
	trace = append(trace, leaveTrace...)

	if in.summary.TotalOvertimeHours().IsPositive() {
		amount, steps := calculation.Overtime(calculation.OvertimeInput{
			HoursByType: in.summary.OvertimeHoursByType,
			BasicSalary: in.assignment.BaseSalary,
			GrossSalary: structureGross,
			DaysInMonth: daysInMonth,
		}, settings)
		trace = appendTrace(trace, "overtime", steps)
		if amount.IsPositive() {
			lines = append(lines, payroll.Line{
				ID:          uuid.NewString(),
				Sign:        payroll.SignEarning,
				Amount:      amount,
				SourceType:  payroll.SourceStatutory,
				SourceRef:   "overtime:" + string(settings.OvertimeBase),
				Description: fmt.Sprintf("Overtime (%s hours)", in.summary.TotalOvertimeHours()),
			})
		}
	}

	return lines, trace, nil
}

// leaveLines prices approved leave: sick leave through the tiered scale
// positioned by the employee's cumulative sick days this year, unpaid leave
// types at full daily rate.
func (g *Generator) leaveLines(in buildInput, dailyRate decimal.Decimal) ([]payroll.Line, []payroll.TraceEntry, error) {
	var (
		lines []payroll.Line
		trace []payroll.TraceEntry
	)

	codes := make([]string, 0, len(in.summary.LeaveDaysByType))
	for code := range in.summary.LeaveDaysByType {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		days := in.summary.LeaveDaysByType[code]
		if days <= 0 {
			continue
		}

		cfg, known := in.snap.LeaveTypes[code]
		switch {
		case known && len(cfg.SickPayTiers) > 0:
			res, steps, err := calculation.SickLeave(days, in.summary.PriorSickDaysThisYear, dailyRate, cfg.SickPayTiers)
			if err != nil {
				return nil, nil, fmt.Errorf("sick leave for %s: %w", code, err)
			}
			trace = appendTrace(trace, "sickLeave", steps)
			if res.TotalDeduction.IsPositive() {
				lines = append(lines, payroll.Line{
					ID:          uuid.NewString(),
					Sign:        payroll.SignDeduction,
					Amount:      res.TotalDeduction,
					SourceType:  payroll.SourceStatutory,
					SourceRef:   fmt.Sprintf("sick:%s:%d", cfg.ID, days),
					Description: fmt.Sprintf("Sick leave adjustment (%d full, %d partial, %d unpaid days)", res.FullPayDays, res.PartialPayDays, res.UnpaidDays),
				})
			}

		case known && !cfg.IsPaid:
			amount := dailyRate.Mul(decimal.NewFromInt(int64(days))).Round(2)
			lines = append(lines, payroll.Line{
				ID:          uuid.NewString(),
				Sign:        payroll.SignDeduction,
				Amount:      amount,
				SourceType:  payroll.SourceStatutory,
				SourceRef:   fmt.Sprintf("unpaid-leave:%s:%d", cfg.ID, days),
				Description: fmt.Sprintf("Unpaid leave (%d days)", days),
			})
		}
		// Paid non-sick leave carries no line: the employee earns normally.
	}

	return lines, trace, nil
}

// policyLines materializes pending policy executions. The repository returns
// executions not yet absorbed by any period plus those already absorbed by
// this one, so regenerating a draft run reproduces the identical set.
func (g *Generator) policyLines(ctx context.Context, in buildInput) ([]payroll.Line, error) {
	execs, err := g.policyRepo.ListPendingForPeriod(ctx, in.emp.ID, in.emp.CompanyID, in.period.ID)
	if err != nil {
		return nil, fmt.Errorf("pending policy executions: %w", err)
	}

	sort.Slice(execs, func(i, j int) bool {
		if !execs[i].ExecutedAt.Equal(execs[j].ExecutedAt) {
			return execs[i].ExecutedAt.Before(execs[j].ExecutedAt)
		}
		return execs[i].ID < execs[j].ID
	})

	var lines []payroll.Line
	consumed := make([]string, 0, len(execs))
	for _, exec := range execs {
		sign := payroll.SignEarning
		if exec.ActionType == policy.ActionDeductFromPayroll {
			sign = payroll.SignDeduction
		}

		lines = append(lines, payroll.Line{
			ID:          uuid.NewString(),
			Sign:        sign,
			Amount:      exec.ActionValue.Round(2),
			SourceType:  payroll.SourcePolicy,
			SourceRef:   fmt.Sprintf("policy:%s:%s", exec.PolicyID, exec.ID),
			Description: fmt.Sprintf("Policy %s (%s)", exec.PolicyID, exec.TriggerEvent),
		})
		consumed = append(consumed, exec.ID)
	}

	if len(consumed) > 0 {
		if err := g.policyRepo.MarkConsumed(ctx, consumed, in.period.ID); err != nil {
			return nil, fmt.Errorf("mark executions consumed: %w", err)
		}
	}

	return lines, nil
}

// advanceLines schedules loan recovery installments: the monthly deduction,
// clipped to the remaining balance so the final installment never overshoots.
// The actual Payment rows are recorded at lock time, so a draft regeneration
// keeps seeing the same remaining balance.
func (g *Generator) advanceLines(ctx context.Context, in buildInput) ([]payroll.Line, error) {
	advances, err := g.advanceRepo.ListActiveForPeriod(ctx, in.emp.ID, in.emp.CompanyID, in.period.StartDate, in.period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("active advances: %w", err)
	}

	sort.Slice(advances, func(i, j int) bool { return advances[i].ID < advances[j].ID })

	var lines []payroll.Line
	for _, adv := range advances {
		if adv.Status != advance.StatusApproved {
			continue
		}

		payments, err := g.advanceRepo.ListPayments(ctx, adv.ID)
		if err != nil {
			return nil, err
		}
		remaining := adv.Remaining(payments)
		if !remaining.IsPositive() {
			continue
		}

		installment := decimal.Min(adv.MonthlyDeduction, remaining).Round(2)
		lines = append(lines, payroll.Line{
			ID:          uuid.NewString(),
			Sign:        payroll.SignDeduction,
			Amount:      installment,
			SourceType:  payroll.SourceAdvance,
			SourceRef:   "advance:" + adv.ID,
			Description: "Salary advance recovery",
		})
	}

	return lines, nil
}

// capLines enforces the deduction ceiling over the full line set. When the raw
// deduction total exceeds the configured share of gross, a relief entry brings
// the deduction sum back to the ceiling, keeping totals equal to line sums.
func capLines(in buildInput, lines []payroll.Line) ([]payroll.Line, []payroll.TraceEntry) {
	gross, deductions := sumBySign(lines)

	res, steps := calculation.DeductionCap(deductions, gross, in.snap.Settings.MaxDeductionPercent)
	trace := appendTrace(nil, "deductionCap", steps)
	if !res.Clipped {
		return nil, trace
	}

	return []payroll.Line{{
		ID:          uuid.NewString(),
		Sign:        payroll.SignDeduction,
		Amount:      res.ClippedBy.Neg(),
		SourceType:  payroll.SourceStatutory,
		SourceRef:   "cap:" + in.snap.Settings.MaxDeductionPercent.String(),
		Description: fmt.Sprintf("Deduction cap relief (%s%% of gross)", in.snap.Settings.MaxDeductionPercent),
	}}, trace
}

func sumBySign(lines []payroll.Line) (gross, deductions decimal.Decimal) {
	for _, l := range lines {
		switch l.Sign {
		case payroll.SignEarning:
			gross = gross.Add(l.Amount)
		case payroll.SignDeduction:
			deductions = deductions.Add(l.Amount)
		}
	}
	return gross, deductions
}

// applyTotals recomputes payslip totals from the full persisted line set,
// MANUAL lines included.
func applyTotals(slip payroll.Payslip, lines []payroll.Line) payroll.Payslip {
	gross, deductions := sumBySign(lines)
	slip.GrossSalary = gross.Round(2)
	slip.TotalDeductions = deductions.Round(2)
	slip.NetSalary = gross.Sub(deductions).Round(2)
	slip.Status = payroll.PayslipStatusDraft
	slip.FailureReason = nil
	return slip
}
