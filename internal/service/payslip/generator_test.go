package payslip

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/masar-hr/payroll-engine-go/internal/domain/advance"
	"github.com/masar-hr/payroll-engine-go/internal/domain/attendance"
	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/domain/policy"
	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/masar-hr/payroll-engine-go/internal/service/aggregation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passThroughTx struct{}

func (passThroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRunRepo struct {
	run payroll.Run

	shareLocks     int
	exclusiveLocks int
}

func (f *fakeRunRepo) GetPeriodByID(context.Context, string, string) (payroll.Period, error) {
	return payroll.Period{}, payroll.ErrPeriodNotFound
}
func (f *fakeRunRepo) CreateRun(_ context.Context, run payroll.Run) (payroll.Run, error) {
	return run, nil
}
func (f *fakeRunRepo) GetRunByID(context.Context, string, string) (payroll.Run, error) {
	return f.run, nil
}
func (f *fakeRunRepo) ListRunsByPeriod(context.Context, string, string) ([]payroll.Run, error) {
	return []payroll.Run{f.run}, nil
}
func (f *fakeRunRepo) GetRunForShare(context.Context, string, string) (payroll.Run, error) {
	f.shareLocks++
	return f.run, nil
}
func (f *fakeRunRepo) GetRunForUpdate(context.Context, string, string) (payroll.Run, error) {
	f.exclusiveLocks++
	return f.run, nil
}
func (f *fakeRunRepo) LockRun(context.Context, string, string, string) (payroll.Run, error) {
	return f.run, nil
}
func (f *fakeRunRepo) MarkRunPaid(context.Context, string, string) error { return nil }
func (f *fakeRunRepo) GetRunTotals(context.Context, string, string) (payroll.RunTotals, error) {
	return payroll.RunTotals{}, nil
}

type fakePayslipRepo struct {
	slips map[string]payroll.Payslip // keyed runID+employeeID
	lines map[string][]payroll.Line  // keyed payslipID
}

func newFakePayslipRepo() *fakePayslipRepo {
	return &fakePayslipRepo{slips: map[string]payroll.Payslip{}, lines: map[string][]payroll.Line{}}
}

func slipKey(runID, employeeID string) string { return runID + "/" + employeeID }

func (f *fakePayslipRepo) UpsertPayslip(_ context.Context, slip payroll.Payslip) (payroll.Payslip, error) {
	key := slipKey(slip.RunID, slip.EmployeeID)
	if existing, ok := f.slips[key]; ok {
		slip.ID = existing.ID
	}
	f.slips[key] = slip
	return slip, nil
}

func (f *fakePayslipRepo) GetPayslip(_ context.Context, runID, employeeID, _ string) (payroll.Payslip, error) {
	slip, ok := f.slips[slipKey(runID, employeeID)]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return slip, nil
}

func (f *fakePayslipRepo) GetPayslipByID(_ context.Context, id, _ string) (payroll.Payslip, error) {
	for _, s := range f.slips {
		if s.ID == id {
			return s, nil
		}
	}
	return payroll.Payslip{}, payroll.ErrPayslipNotFound
}

func (f *fakePayslipRepo) ListPayslipsByRun(_ context.Context, runID, _ string) ([]payroll.Payslip, error) {
	var out []payroll.Payslip
	for _, s := range f.slips {
		if s.RunID == runID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakePayslipRepo) GetPayslipForUpdate(ctx context.Context, id, companyID string) (payroll.Payslip, error) {
	return f.GetPayslipByID(ctx, id, companyID)
}

func (f *fakePayslipRepo) ListLines(_ context.Context, payslipID string) ([]payroll.Line, error) {
	return f.lines[payslipID], nil
}

func (f *fakePayslipRepo) DeleteEngineLines(_ context.Context, payslipID string) error {
	kept := f.lines[payslipID][:0]
	for _, l := range f.lines[payslipID] {
		if !l.SourceType.EngineOwned() {
			kept = append(kept, l)
		}
	}
	f.lines[payslipID] = kept
	return nil
}

func (f *fakePayslipRepo) InsertLines(_ context.Context, lines []payroll.Line) error {
	for _, l := range lines {
		f.lines[l.PayslipID] = append(f.lines[l.PayslipID], l)
	}
	return nil
}

func (f *fakePayslipRepo) UpdateTotals(_ context.Context, slip payroll.Payslip) error {
	f.slips[slipKey(slip.RunID, slip.EmployeeID)] = slip
	return nil
}

func (f *fakePayslipRepo) MarkPayslipFailed(_ context.Context, id, _ string, reason string) error {
	for key, s := range f.slips {
		if s.ID == id {
			s.Status = payroll.PayslipStatusFailed
			s.FailureReason = &reason
			f.slips[key] = s
		}
	}
	return nil
}

type fakeEmployeeRepo struct {
	assignment employee.SalaryAssignment
}

func (f *fakeEmployeeRepo) GetByID(context.Context, string, string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}
func (f *fakeEmployeeRepo) GetActiveByCompanyID(context.Context, string) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) GetByIDs(context.Context, []string, string) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) GetActiveContract(context.Context, string, string) (employee.Contract, error) {
	return employee.Contract{}, employee.ErrNoActiveContract
}
func (f *fakeEmployeeRepo) GetActiveAssignment(context.Context, string, string) (employee.SalaryAssignment, error) {
	return f.assignment, nil
}
func (f *fakeEmployeeRepo) GetPrimaryBankAccount(context.Context, string) (employee.BankAccount, error) {
	return employee.BankAccount{}, employee.ErrNoBankAccount
}

type fakePolicyRepo struct {
	executions []policy.Execution
}

func (f *fakePolicyRepo) GetByID(context.Context, string, string) (policy.SmartPolicy, error) {
	return policy.SmartPolicy{}, policy.ErrPolicyNotFound
}
func (f *fakePolicyRepo) ListActiveByEvent(context.Context, string, string) ([]policy.SmartPolicy, error) {
	return nil, nil
}
func (f *fakePolicyRepo) UpdateStatus(context.Context, string, string, policy.Status) error {
	return nil
}
func (f *fakePolicyRepo) CreateExecution(_ context.Context, exec policy.Execution) (policy.Execution, error) {
	f.executions = append(f.executions, exec)
	return exec, nil
}

func (f *fakePolicyRepo) ListPendingForPeriod(_ context.Context, employeeID, companyID, payrollPeriod string) ([]policy.Execution, error) {
	var out []policy.Execution
	for _, e := range f.executions {
		if e.EmployeeID != employeeID || e.CompanyID != companyID || !e.IsSuccess || !e.ConditionsMet {
			continue
		}
		if e.PayrollPeriod == nil || *e.PayrollPeriod == payrollPeriod {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakePolicyRepo) MarkConsumed(_ context.Context, executionIDs []string, payrollPeriod string) error {
	for i := range f.executions {
		for _, id := range executionIDs {
			if f.executions[i].ID == id {
				p := payrollPeriod
				f.executions[i].PayrollPeriod = &p
			}
		}
	}
	return nil
}

type fakeAdvanceRepo struct {
	advances []advance.Request
	payments map[string][]advance.Payment
}

func (f *fakeAdvanceRepo) GetByID(context.Context, string, string) (advance.Request, error) {
	return advance.Request{}, advance.ErrAdvanceNotFound
}
func (f *fakeAdvanceRepo) ListActiveForPeriod(context.Context, string, string, time.Time, time.Time) ([]advance.Request, error) {
	return f.advances, nil
}
func (f *fakeAdvanceRepo) ListPayments(_ context.Context, advanceID string) ([]advance.Payment, error) {
	return f.payments[advanceID], nil
}
func (f *fakeAdvanceRepo) CreatePayment(_ context.Context, p advance.Payment) (advance.Payment, error) {
	if f.payments == nil {
		f.payments = map[string][]advance.Payment{}
	}
	f.payments[p.AdvanceID] = append(f.payments[p.AdvanceID], p)
	return p, nil
}
func (f *fakeAdvanceRepo) UpdateStatus(context.Context, string, string, advance.RequestStatus) error {
	return nil
}

type fakeAttendanceRepo struct {
	records []attendance.Record
	leaves  []attendance.LeaveRecord
	prior   int
}

func (f *fakeAttendanceRepo) ListRecords(context.Context, string, string, time.Time, time.Time) ([]attendance.Record, error) {
	return f.records, nil
}
func (f *fakeAttendanceRepo) ListApprovedLeave(context.Context, string, string, time.Time, time.Time) ([]attendance.LeaveRecord, error) {
	return f.leaves, nil
}
func (f *fakeAttendanceRepo) CountSickDaysTakenBefore(context.Context, string, string, int, time.Time) (int, error) {
	return f.prior, nil
}

const (
	companyID  = "8a7e9a10-61a4-4a55-8f2f-b7d7c1e40001"
	employeeID = "8a7e9a10-61a4-4a55-8f2f-b7d7c1e40002"
	periodID   = "8a7e9a10-61a4-4a55-8f2f-b7d7c1e40003"
	runID      = "8a7e9a10-61a4-4a55-8f2f-b7d7c1e40004"
)

func testEmployee() employee.Employee {
	return employee.Employee{
		ID:        employeeID,
		CompanyID: companyID,
		FirstName: "Omar",
		LastName:  "Al-Qahtani",
		IsSaudi:   true,
		Status:    employee.StatusActive,
	}
}

func testPeriod() payroll.Period {
	return payroll.Period{
		ID:        periodID,
		CompanyID: companyID,
		Year:      2025,
		Month:     3,
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:    payroll.PeriodStatusOpen,
	}
}

func testAssignment(basic int64) employee.SalaryAssignment {
	housing := decimal.NewFromInt(25)
	transport := decimal.NewFromInt(500)
	return employee.SalaryAssignment{
		ID:         "assign-1",
		EmployeeID: employeeID,
		BaseSalary: decimal.NewFromInt(basic),
		IsActive:   true,
		Structure: employee.SalaryStructure{
			ID:        "struct-1",
			CompanyID: companyID,
			Name:      "Standard",
			Lines: []employee.StructureLine{
				{
					ID:          "sl-housing",
					ComponentID: "comp-housing",
					Component:   employee.SalaryComponent{ID: "comp-housing", Code: "HOUSING", Name: "Housing allowance", Type: employee.ComponentEarning, GosiEligible: true},
					Percentage:  &housing,
					Priority:    1,
				},
				{
					ID:          "sl-transport",
					ComponentID: "comp-transport",
					Component:   employee.SalaryComponent{ID: "comp-transport", Code: "TRANSPORT", Name: "Transport allowance", Type: employee.ComponentEarning},
					Amount:      &transport,
					Priority:    2,
				},
			},
		},
	}
}

func testSnapshot() statutory.Snapshot {
	return statutory.Snapshot{
		Gosi: &statutory.GosiConfig{
			ID:            "gosi-v1",
			CompanyID:     companyID,
			EmployeeRate:  decimal.NewFromInt(9),
			SanedRate:     decimal.RequireFromString("0.75"),
			EmployerRate:  decimal.RequireFromString("9.75"),
			HazardRate:    decimal.NewFromInt(2),
			MinBaseSalary: decimal.NewFromInt(1500),
			MaxCapAmount:  decimal.NewFromInt(45000),
			IsSaudiOnly:   true,
			EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		LeaveTypes: map[string]statutory.LeaveTypeConfig{
			"SICK":   {ID: "lt-sick", Code: "SICK", IsPaid: true, SickPayTiers: statutory.DefaultSickPayTiers()},
			"UNPAID": {ID: "lt-unpaid", Code: "UNPAID", IsPaid: false},
			"ANNUAL": {ID: "lt-annual", Code: "ANNUAL", IsPaid: true},
		},
		Settings: statutory.DefaultSettings(companyID),
		TakenAt:  time.Now(),
	}
}

type harness struct {
	gen      *Generator
	runs     *fakeRunRepo
	slips    *fakePayslipRepo
	policies *fakePolicyRepo
	advances *fakeAdvanceRepo
	att      *fakeAttendanceRepo
}

func newHarness(basic int64) *harness {
	h := &harness{
		runs:     &fakeRunRepo{run: payroll.Run{ID: runID, CompanyID: companyID, PeriodID: periodID, Status: payroll.RunStatusDraft}},
		slips:    newFakePayslipRepo(),
		policies: &fakePolicyRepo{},
		advances: &fakeAdvanceRepo{},
		att:      &fakeAttendanceRepo{},
	}
	h.gen = NewGenerator(
		passThroughTx{},
		h.runs,
		h.slips,
		&fakeEmployeeRepo{assignment: testAssignment(basic)},
		h.policies,
		h.advances,
		aggregation.NewService(h.att),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return h
}

func (h *harness) generate(t *testing.T) payroll.Payslip {
	t.Helper()
	slip, err := h.gen.Generate(context.Background(), runID, testEmployee(), testPeriod(), testSnapshot())
	require.NoError(t, err)
	return slip
}

func lineByRef(t *testing.T, lines []payroll.Line, prefix string) payroll.Line {
	t.Helper()
	for _, l := range lines {
		if len(l.SourceRef) >= len(prefix) && l.SourceRef[:len(prefix)] == prefix {
			return l
		}
	}
	t.Fatalf("no line with sourceRef prefix %q", prefix)
	return payroll.Line{}
}

func TestGenerateStructureAndGosi(t *testing.T) {
	h := newHarness(10000)
	slip := h.generate(t)

	// basic 10000 + housing 25% (2500) + transport 500
	assert.True(t, slip.GrossSalary.Equal(decimal.NewFromInt(13000)), "gross = %s", slip.GrossSalary)

	// GOSI base = basic + eligible housing = 12500; employee 9.75%
	gosi := lineByRef(t, slip.Lines, "gosi:")
	assert.True(t, gosi.Amount.Equal(decimal.RequireFromString("1218.75")), "gosi = %s", gosi.Amount)
	assert.Equal(t, payroll.SignDeduction, gosi.Sign)

	assert.True(t, slip.NetSalary.Equal(slip.GrossSalary.Sub(slip.TotalDeductions)))
}

func TestGenerateIdempotent(t *testing.T) {
	h := newHarness(9000)
	h.att.records = []attendance.Record{
		{Status: attendance.StatusAbsent, DayType: attendance.DayTypeWeekday},
		{Status: attendance.StatusLate, LateMinutes: 40, DayType: attendance.DayTypeWeekday},
		{Status: attendance.StatusPresent, OvertimeMinutes: 120, DayType: attendance.DayTypeWeekend},
	}
	h.policies.executions = []policy.Execution{{
		ID: "exec-1", PolicyID: "pol-1", CompanyID: companyID, EmployeeID: employeeID,
		EventRef: "evt-1", ConditionsMet: true, IsSuccess: true,
		ActionType: policy.ActionDeductFromPayroll, ActionValue: decimal.NewFromInt(50),
		ExecutedAt: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC),
	}}

	first := h.generate(t)

	// A manual line added between generations must survive regeneration.
	manual := payroll.Line{
		ID:         uuid.NewString(),
		PayslipID:  first.ID,
		Sign:       payroll.SignEarning,
		Amount:     decimal.NewFromInt(300),
		SourceType: payroll.SourceManual,
		SourceRef:  "manual:bonus",
	}
	require.NoError(t, h.slips.InsertLines(context.Background(), []payroll.Line{manual}))

	second := h.generate(t)

	assert.Equal(t, first.ID, second.ID, "regeneration reuses the payslip row")
	assert.Equal(t, fingerprint(engineLines(first.Lines)), fingerprint(engineLines(second.Lines)),
		"engine lines must be identical across regenerations")

	var manualSurvived bool
	for _, l := range second.Lines {
		if l.SourceRef == "manual:bonus" {
			manualSurvived = true
		}
	}
	assert.True(t, manualSurvived)
	assert.True(t, second.GrossSalary.Equal(first.GrossSalary.Add(decimal.NewFromInt(300))))
}

func engineLines(lines []payroll.Line) []payroll.Line {
	var out []payroll.Line
	for _, l := range lines {
		if l.SourceType.EngineOwned() {
			out = append(out, l)
		}
	}
	return out
}

func fingerprint(lines []payroll.Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, string(l.SourceType)+"|"+l.SourceRef+"|"+string(l.Sign)+"|"+l.Amount.String())
	}
	sort.Strings(out)
	return out
}

func TestGenerateLockedRunRejected(t *testing.T) {
	h := newHarness(9000)
	now := time.Now()
	h.runs.run.Status = payroll.RunStatusLocked
	h.runs.run.LockedAt = &now

	_, err := h.gen.Generate(context.Background(), runID, testEmployee(), testPeriod(), testSnapshot())
	assert.ErrorIs(t, err, payroll.ErrLockedRunViolation)
}

func TestGenerateDeductionCap(t *testing.T) {
	h := newHarness(3000)
	// 25 absent days on a 3000 basic: flat absence = 25 × 100 = 2500, plus
	// GOSI, far beyond 50% of gross.
	for i := 0; i < 25; i++ {
		h.att.records = append(h.att.records, attendance.Record{Status: attendance.StatusAbsent, DayType: attendance.DayTypeWeekday})
	}

	slip := h.generate(t)

	ceiling := slip.GrossSalary.Div(decimal.NewFromInt(2)).Round(2)
	assert.True(t, slip.TotalDeductions.Equal(ceiling),
		"deductions %s must be capped to %s", slip.TotalDeductions, ceiling)

	relief := lineByRef(t, slip.Lines, "cap:")
	assert.True(t, relief.Amount.IsNegative(), "cap relief offsets the overshoot")
}

func TestGenerateHoldsSharedRunLock(t *testing.T) {
	h := newHarness(9000)
	h.generate(t)

	assert.Positive(t, h.runs.shareLocks)
	assert.Zero(t, h.runs.exclusiveLocks,
		"generation must not take the exclusive run lock, or concurrent workers serialize")
}

func TestGeneratePersistsCalculationTrace(t *testing.T) {
	h := newHarness(3000)
	for i := 0; i < 25; i++ {
		h.att.records = append(h.att.records, attendance.Record{Status: attendance.StatusAbsent, DayType: attendance.DayTypeWeekday})
	}

	slip := h.generate(t)
	require.NotEmpty(t, slip.CalculationTrace)

	stored, err := h.slips.GetPayslipByID(context.Background(), slip.ID, companyID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.CalculationTrace, "the trace is stored with the payslip")

	byCalculator := map[string]bool{}
	for _, entry := range stored.CalculationTrace {
		byCalculator[entry.Calculator] = true
		assert.NotEmpty(t, entry.Step)
		assert.NotEmpty(t, entry.Formula)
	}
	assert.True(t, byCalculator["gosi"])
	assert.True(t, byCalculator["absence"])
	assert.True(t, byCalculator["deductionCap"], "the cap clip must be auditable from the trace")
}

func TestGeneratePolicyConsumption(t *testing.T) {
	h := newHarness(8000)
	h.policies.executions = []policy.Execution{{
		ID: "exec-9", PolicyID: "pol-9", CompanyID: companyID, EmployeeID: employeeID,
		EventRef: "evt-9", ConditionsMet: true, IsSuccess: true,
		ActionType: policy.ActionAddToPayroll, ActionValue: decimal.NewFromInt(250),
		ExecutedAt: time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC),
	}}

	slip := h.generate(t)

	line := lineByRef(t, slip.Lines, "policy:pol-9:exec-9")
	assert.Equal(t, payroll.SignEarning, line.Sign)
	assert.True(t, line.Amount.Equal(decimal.NewFromInt(250)))

	require.NotNil(t, h.policies.executions[0].PayrollPeriod)
	assert.Equal(t, periodID, *h.policies.executions[0].PayrollPeriod)

	// Regenerating the same period sees the consumed execution again.
	slip = h.generate(t)
	lineByRef(t, slip.Lines, "policy:pol-9:exec-9")
}

func TestGenerateAdjustmentRunReappliesPolicyLines(t *testing.T) {
	h := newHarness(8000)
	h.policies.executions = []policy.Execution{{
		ID: "exec-7", PolicyID: "pol-7", CompanyID: companyID, EmployeeID: employeeID,
		EventRef: "evt-7", ConditionsMet: true, IsSuccess: true,
		ActionType: policy.ActionAddToPayroll, ActionValue: decimal.NewFromInt(150),
		ExecutedAt: time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
	}}

	h.generate(t) // absorbs the execution into the period

	// An adjustment run rebuilds a full replacement payslip for the same
	// period, so the absorbed execution materializes again instead of
	// vanishing from the corrected pay.
	adjustmentRunID := "8a7e9a10-61a4-4a55-8f2f-b7d7c1e40005"
	original := runID
	h.runs.run = payroll.Run{
		ID: adjustmentRunID, CompanyID: companyID, PeriodID: periodID,
		Status: payroll.RunStatusDraft, IsAdjustment: true, OriginalRunID: &original,
	}

	slip, err := h.gen.Generate(context.Background(), adjustmentRunID, testEmployee(), testPeriod(), testSnapshot())
	require.NoError(t, err)

	line := lineByRef(t, slip.Lines, "policy:pol-7:exec-7")
	assert.True(t, line.Amount.Equal(decimal.NewFromInt(150)))

	require.NotNil(t, h.policies.executions[0].PayrollPeriod)
	assert.Equal(t, periodID, *h.policies.executions[0].PayrollPeriod,
		"the execution stays stamped with its period")
}

func TestGenerateAdvanceRecovery(t *testing.T) {
	h := newHarness(8000)
	h.advances.advances = []advance.Request{{
		ID: "adv-1", EmployeeID: employeeID, CompanyID: companyID,
		ApprovedAmount:   decimal.NewFromInt(5000),
		MonthlyDeduction: decimal.NewFromInt(2000),
		Status:           advance.StatusApproved,
	}}
	h.advances.payments = map[string][]advance.Payment{
		"adv-1": {{ID: "pay-1", AdvanceID: "adv-1", Amount: decimal.NewFromInt(4000)}},
	}

	slip := h.generate(t)

	// Remaining 1000 < monthly 2000: the installment clips to the balance.
	line := lineByRef(t, slip.Lines, "advance:adv-1")
	assert.True(t, line.Amount.Equal(decimal.NewFromInt(1000)), "installment = %s", line.Amount)
	assert.Equal(t, payroll.SourceAdvance, line.SourceType)
}

func TestGenerateUnpaidLeaveAndSickTiers(t *testing.T) {
	h := newHarness(6000)
	h.att.prior = 28 // two sick days fall in the 100% tier, three in the 75% tier
	h.att.leaves = []attendance.LeaveRecord{
		{
			LeaveTypeCode: "SICK",
			StartDate:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			EndDate:       time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			LeaveTypeCode: "UNPAID",
			StartDate:     time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
			EndDate:       time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC),
		},
	}

	slip := h.generate(t)

	// daily rate 6000/30 = 200; sick deduction = 3 × 200 × 25% = 150
	sick := lineByRef(t, slip.Lines, "sick:lt-sick")
	assert.True(t, sick.Amount.Equal(decimal.NewFromInt(150)), "sick = %s", sick.Amount)

	unpaid := lineByRef(t, slip.Lines, "unpaid-leave:lt-unpaid")
	assert.True(t, unpaid.Amount.Equal(decimal.NewFromInt(400)), "unpaid = %s", unpaid.Amount)
}
