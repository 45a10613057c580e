package payrollrun

import (
	"context"
	"io"
	"log/slog"
	"sync"
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
	"github.com/masar-hr/payroll-engine-go/internal/service/payslip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passThroughTx struct{}

func (passThroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRunRepo struct {
	mu      sync.Mutex
	periods map[string]payroll.Period
	runs    map[string]payroll.Run
}

func newMemRunRepo(period payroll.Period) *memRunRepo {
	return &memRunRepo{
		periods: map[string]payroll.Period{period.ID: period},
		runs:    map[string]payroll.Run{},
	}
}

func (m *memRunRepo) GetPeriodByID(_ context.Context, id, _ string) (payroll.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[id]
	if !ok {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (m *memRunRepo) CreateRun(_ context.Context, run payroll.Run) (payroll.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return run, nil
}

func (m *memRunRepo) GetRunByID(_ context.Context, id, _ string) (payroll.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return r, nil
}

func (m *memRunRepo) ListRunsByPeriod(_ context.Context, periodID, _ string) ([]payroll.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.Run
	for _, r := range m.runs {
		if r.PeriodID == periodID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRunRepo) GetRunForShare(ctx context.Context, id, companyID string) (payroll.Run, error) {
	return m.GetRunByID(ctx, id, companyID)
}

func (m *memRunRepo) GetRunForUpdate(ctx context.Context, id, companyID string) (payroll.Run, error) {
	return m.GetRunByID(ctx, id, companyID)
}

func (m *memRunRepo) LockRun(_ context.Context, id, _, lockedBy string) (payroll.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	if r.Status != payroll.RunStatusDraft {
		return payroll.Run{}, payroll.ErrRunAlreadyLocked
	}
	now := time.Now()
	r.Status = payroll.RunStatusLocked
	r.LockedAt = &now
	r.LockedBy = &lockedBy
	m.runs[id] = r
	return r, nil
}

func (m *memRunRepo) MarkRunPaid(_ context.Context, id, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.runs[id]
	r.Status = payroll.RunStatusPaid
	m.runs[id] = r
	return nil
}

func (m *memRunRepo) GetRunTotals(context.Context, string, string) (payroll.RunTotals, error) {
	return payroll.RunTotals{}, nil
}

type memPayslipRepo struct {
	mu    sync.Mutex
	slips map[string]payroll.Payslip
	lines map[string][]payroll.Line
}

func newMemPayslipRepo() *memPayslipRepo {
	return &memPayslipRepo{slips: map[string]payroll.Payslip{}, lines: map[string][]payroll.Line{}}
}

func slipKey(runID, employeeID string) string { return runID + "/" + employeeID }

func (m *memPayslipRepo) UpsertPayslip(_ context.Context, slip payroll.Payslip) (payroll.Payslip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := slipKey(slip.RunID, slip.EmployeeID)
	if existing, ok := m.slips[key]; ok {
		slip.ID = existing.ID
	}
	m.slips[key] = slip
	return slip, nil
}

func (m *memPayslipRepo) GetPayslip(_ context.Context, runID, employeeID, _ string) (payroll.Payslip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slip, ok := m.slips[slipKey(runID, employeeID)]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return slip, nil
}

func (m *memPayslipRepo) GetPayslipByID(_ context.Context, id, _ string) (payroll.Payslip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slips {
		if s.ID == id {
			return s, nil
		}
	}
	return payroll.Payslip{}, payroll.ErrPayslipNotFound
}

func (m *memPayslipRepo) ListPayslipsByRun(_ context.Context, runID, _ string) ([]payroll.Payslip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.Payslip
	for _, s := range m.slips {
		if s.RunID == runID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memPayslipRepo) GetPayslipForUpdate(ctx context.Context, id, companyID string) (payroll.Payslip, error) {
	return m.GetPayslipByID(ctx, id, companyID)
}

func (m *memPayslipRepo) ListLines(_ context.Context, payslipID string) ([]payroll.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payroll.Line(nil), m.lines[payslipID]...), nil
}

func (m *memPayslipRepo) DeleteEngineLines(_ context.Context, payslipID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []payroll.Line
	for _, l := range m.lines[payslipID] {
		if !l.SourceType.EngineOwned() {
			kept = append(kept, l)
		}
	}
	m.lines[payslipID] = kept
	return nil
}

func (m *memPayslipRepo) InsertLines(_ context.Context, lines []payroll.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		m.lines[l.PayslipID] = append(m.lines[l.PayslipID], l)
	}
	return nil
}

func (m *memPayslipRepo) UpdateTotals(_ context.Context, slip payroll.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slips[slipKey(slip.RunID, slip.EmployeeID)] = slip
	return nil
}

func (m *memPayslipRepo) MarkPayslipFailed(_ context.Context, id, _ string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, s := range m.slips {
		if s.ID == id {
			s.Status = payroll.PayslipStatusFailed
			s.FailureReason = &reason
			m.slips[key] = s
		}
	}
	return nil
}

type memEmployeeRepo struct {
	employees   map[string]employee.Employee
	contracts   map[string]employee.Contract
	assignments map[string]employee.SalaryAssignment
	accounts    map[string]employee.BankAccount
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{
		employees:   map[string]employee.Employee{},
		contracts:   map[string]employee.Contract{},
		assignments: map[string]employee.SalaryAssignment{},
		accounts:    map[string]employee.BankAccount{},
	}
}

func (m *memEmployeeRepo) GetByID(_ context.Context, id, _ string) (employee.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memEmployeeRepo) GetActiveByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range m.employees {
		if e.CompanyID == companyID && e.Status == employee.StatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEmployeeRepo) GetByIDs(_ context.Context, ids []string, _ string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, id := range ids {
		if e, ok := m.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEmployeeRepo) GetActiveContract(_ context.Context, employeeID, _ string) (employee.Contract, error) {
	c, ok := m.contracts[employeeID]
	if !ok {
		return employee.Contract{}, employee.ErrNoActiveContract
	}
	return c, nil
}

func (m *memEmployeeRepo) GetActiveAssignment(_ context.Context, employeeID, _ string) (employee.SalaryAssignment, error) {
	a, ok := m.assignments[employeeID]
	if !ok {
		return employee.SalaryAssignment{}, employee.ErrNoActiveAssignment
	}
	return a, nil
}

func (m *memEmployeeRepo) GetPrimaryBankAccount(_ context.Context, employeeID string) (employee.BankAccount, error) {
	a, ok := m.accounts[employeeID]
	if !ok {
		return employee.BankAccount{}, employee.ErrNoBankAccount
	}
	return a, nil
}

type memStatutoryRepo struct{}

func (memStatutoryRepo) GetGosiConfig(_ context.Context, companyID string, _ time.Time) (statutory.GosiConfig, error) {
	return statutory.GosiConfig{
		ID:            "gosi-v1",
		CompanyID:     companyID,
		EmployeeRate:  decimal.NewFromInt(9),
		SanedRate:     decimal.RequireFromString("0.75"),
		EmployerRate:  decimal.RequireFromString("9.75"),
		HazardRate:    decimal.NewFromInt(2),
		MinBaseSalary: decimal.NewFromInt(1500),
		MaxCapAmount:  decimal.NewFromInt(45000),
		IsSaudiOnly:   true,
	}, nil
}

func (memStatutoryRepo) ListLeaveTypes(_ context.Context, companyID string) ([]statutory.LeaveTypeConfig, error) {
	return []statutory.LeaveTypeConfig{
		{ID: "lt-sick", CompanyID: companyID, Code: "SICK", IsPaid: true, SickPayTiers: statutory.DefaultSickPayTiers()},
	}, nil
}

func (memStatutoryRepo) GetCalculationSettings(_ context.Context, companyID string) (statutory.CalculationSettings, error) {
	return statutory.DefaultSettings(companyID), nil
}

type memPolicyRepo struct{}

func (memPolicyRepo) GetByID(context.Context, string, string) (policy.SmartPolicy, error) {
	return policy.SmartPolicy{}, policy.ErrPolicyNotFound
}
func (memPolicyRepo) ListActiveByEvent(context.Context, string, string) ([]policy.SmartPolicy, error) {
	return nil, nil
}
func (memPolicyRepo) UpdateStatus(context.Context, string, string, policy.Status) error { return nil }
func (memPolicyRepo) CreateExecution(_ context.Context, e policy.Execution) (policy.Execution, error) {
	return e, nil
}
func (memPolicyRepo) ListPendingForPeriod(context.Context, string, string, string) ([]policy.Execution, error) {
	return nil, nil
}
func (memPolicyRepo) MarkConsumed(context.Context, []string, string) error { return nil }

type memAdvanceRepo struct {
	mu       sync.Mutex
	advances map[string]advance.Request
	payments map[string][]advance.Payment
}

func newMemAdvanceRepo() *memAdvanceRepo {
	return &memAdvanceRepo{advances: map[string]advance.Request{}, payments: map[string][]advance.Payment{}}
}

func (m *memAdvanceRepo) GetByID(_ context.Context, id, _ string) (advance.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.advances[id]
	if !ok {
		return advance.Request{}, advance.ErrAdvanceNotFound
	}
	return a, nil
}

func (m *memAdvanceRepo) ListActiveForPeriod(_ context.Context, employeeID, _ string, _, _ time.Time) ([]advance.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []advance.Request
	for _, a := range m.advances {
		if a.EmployeeID == employeeID && a.Status == advance.StatusApproved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAdvanceRepo) ListPayments(_ context.Context, advanceID string) ([]advance.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]advance.Payment(nil), m.payments[advanceID]...), nil
}

func (m *memAdvanceRepo) CreatePayment(_ context.Context, p advance.Payment) (advance.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.AdvanceID] = append(m.payments[p.AdvanceID], p)
	return p, nil
}

func (m *memAdvanceRepo) UpdateStatus(_ context.Context, id, _ string, status advance.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.advances[id]
	a.Status = status
	m.advances[id] = a
	return nil
}

type memAttendanceRepo struct {
	records map[string][]attendance.Record
}

func (m *memAttendanceRepo) ListRecords(_ context.Context, employeeID, _ string, _, _ time.Time) ([]attendance.Record, error) {
	return m.records[employeeID], nil
}
func (m *memAttendanceRepo) ListApprovedLeave(context.Context, string, string, time.Time, time.Time) ([]attendance.LeaveRecord, error) {
	return nil, nil
}
func (m *memAttendanceRepo) CountSickDaysTakenBefore(context.Context, string, string, int, time.Time) (int, error) {
	return 0, nil
}

const (
	companyID = "55c1b7a0-2e8d-4e09-93e4-aa8f6d100001"
	userID    = "55c1b7a0-2e8d-4e09-93e4-aa8f6d100002"
	periodID  = "55c1b7a0-2e8d-4e09-93e4-aa8f6d100003"
)

type fixture struct {
	svc      *Service
	runs     *memRunRepo
	slips    *memPayslipRepo
	emps     *memEmployeeRepo
	advances *memAdvanceRepo
	att      *memAttendanceRepo
}

func newFixture() *fixture {
	period := payroll.Period{
		ID:        periodID,
		CompanyID: companyID,
		Year:      2025,
		Month:     4,
		StartDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		Status:    payroll.PeriodStatusOpen,
	}

	f := &fixture{
		runs:     newMemRunRepo(period),
		slips:    newMemPayslipRepo(),
		emps:     newMemEmployeeRepo(),
		advances: newMemAdvanceRepo(),
		att:      &memAttendanceRepo{records: map[string][]attendance.Record{}},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	agg := aggregation.NewService(f.att)
	gen := payslip.NewGenerator(passThroughTx{}, f.runs, f.slips, f.emps, memPolicyRepo{}, f.advances, agg, logger)

	f.svc = NewService(
		passThroughTx{}, f.runs, f.slips, f.emps, memStatutoryRepo{}, f.advances,
		gen, NewValidator(f.emps, agg), logger,
	)
	return f
}

// addEmployee seeds a fully valid employee: contract covering the period,
// active assignment, valid IBAN, one attendance record.
func (f *fixture) addEmployee(basic int64) employee.Employee {
	id := uuid.NewString()
	emp := employee.Employee{
		ID: id, CompanyID: companyID,
		FirstName: "Noura", LastName: "Al-Dossari",
		IsSaudi: true, Status: employee.StatusActive,
	}
	f.emps.employees[id] = emp
	f.emps.contracts[id] = employee.Contract{
		EmployeeID: id, CompanyID: companyID,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	f.emps.assignments[id] = employee.SalaryAssignment{
		ID: "assign-" + id, EmployeeID: id,
		BaseSalary: decimal.NewFromInt(basic),
		IsActive:   true,
	}
	f.emps.accounts[id] = employee.BankAccount{
		EmployeeID: id, BankCode: "RJHI",
		IBAN: "SA0380000000608010167519", IsPrimary: true, IsActive: true,
	}
	f.att.records[id] = []attendance.Record{{EmployeeID: id, Status: attendance.StatusPresent, DayType: attendance.DayTypeWeekday}}
	return emp
}

func (f *fixture) runPayroll(t *testing.T) payroll.RunResult {
	t.Helper()
	result, err := f.svc.RunPayroll(context.Background(), companyID, userID, payroll.RunPayrollRequest{PeriodID: periodID})
	require.NoError(t, err)
	return result
}

func TestRunPayrollProcessesWorkforce(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)
	f.addEmployee(12000)

	result := f.runPayroll(t)

	assert.Equal(t, 2, result.EmployeesProcessed)
	for _, o := range result.Outcomes {
		assert.True(t, o.Success, "employee %s: %s", o.EmployeeID, o.Error)
	}

	slips, err := f.slips.ListPayslipsByRun(context.Background(), result.RunID, companyID)
	require.NoError(t, err)
	assert.Len(t, slips, 2)
}

func TestRunPayrollReusesDraftRun(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)

	first := f.runPayroll(t)
	second := f.runPayroll(t)

	assert.Equal(t, first.RunID, second.RunID, "recomputing a draft period must not fork a new run")
}

func TestRunPayrollFailureIsolation(t *testing.T) {
	f := newFixture()
	healthy := f.addEmployee(8000)
	broken := f.addEmployee(9000)
	delete(f.emps.assignments, broken.ID) // generation cannot price this employee

	result := f.runPayroll(t)

	byID := map[string]payroll.EmployeeOutcome{}
	for _, o := range result.Outcomes {
		byID[o.EmployeeID] = o
	}
	assert.True(t, byID[healthy.ID].Success)
	assert.False(t, byID[broken.ID].Success)
	assert.NotEmpty(t, byID[broken.ID].Error)

	slip, err := f.slips.GetPayslip(context.Background(), result.RunID, broken.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayslipStatusFailed, slip.Status)
}

func TestRunPayrollPaidPeriodRejected(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)
	p := f.runs.periods[periodID]
	p.Status = payroll.PeriodStatusPaid
	f.runs.periods[periodID] = p

	_, err := f.svc.RunPayroll(context.Background(), companyID, userID, payroll.RunPayrollRequest{PeriodID: periodID})
	assert.ErrorIs(t, err, payroll.ErrPeriodAlreadyPaid)
}

func TestLockRunHappyPath(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)
	result := f.runPayroll(t)

	locked, report, err := f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	require.NoError(t, err)
	assert.True(t, report.IsValid)
	assert.Equal(t, payroll.RunStatusLocked, locked.Status)
	require.NotNil(t, locked.LockedBy)
	assert.Equal(t, userID, *locked.LockedBy)
}

func TestLockRunTwiceRejected(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)
	result := f.runPayroll(t)

	_, _, err := f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	require.NoError(t, err)

	_, _, err = f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	assert.ErrorIs(t, err, payroll.ErrRunAlreadyLocked)
}

func TestLockedRunRejectsRecalculation(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)
	result := f.runPayroll(t)

	_, _, err := f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	require.NoError(t, err)

	runResult, err := f.svc.RunPayroll(context.Background(), companyID, userID, payroll.RunPayrollRequest{PeriodID: periodID})
	require.NoError(t, err)

	// A new draft run is opened; the locked one is never touched.
	assert.NotEqual(t, result.RunID, runResult.RunID)
	locked, err := f.runs.GetRunByID(context.Background(), result.RunID, companyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusLocked, locked.Status)
}

func TestLockRunBlockedByInvalidIBAN(t *testing.T) {
	f := newFixture()
	emp := f.addEmployee(8000)
	account := f.emps.accounts[emp.ID]
	account.IBAN = "DE44500105175407324931"
	f.emps.accounts[emp.ID] = account

	result := f.runPayroll(t)

	_, report, err := f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	assert.ErrorIs(t, err, payroll.ErrValidationFailed)
	assert.False(t, report.IsValid)
	assert.Positive(t, report.ErrorsCount)

	run, err := f.runs.GetRunByID(context.Background(), result.RunID, companyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusDraft, run.Status, "a failed lock leaves the run draft")
}

func TestLockRunBlockedByFailedPayslip(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)
	broken := f.addEmployee(9000)
	delete(f.emps.assignments, broken.ID)

	result := f.runPayroll(t)

	_, _, err := f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	assert.Error(t, err)
}

func TestLockRunSettlesAdvances(t *testing.T) {
	f := newFixture()
	emp := f.addEmployee(8000)
	f.advances.advances["adv-1"] = advance.Request{
		ID: "adv-1", EmployeeID: emp.ID, CompanyID: companyID,
		ApprovedAmount:   decimal.NewFromInt(1000),
		MonthlyDeduction: decimal.NewFromInt(1000),
		Status:           advance.StatusApproved,
	}

	result := f.runPayroll(t)
	locked, _, err := f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	require.NoError(t, err)

	payments, err := f.advances.ListPayments(context.Background(), "adv-1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, payments[0].RunID)
	assert.Equal(t, locked.ID, *payments[0].RunID)

	adv, err := f.advances.GetByID(context.Background(), "adv-1", companyID)
	require.NoError(t, err)
	assert.Equal(t, advance.StatusFullyPaid, adv.Status)
}

func TestLockRunClipsAdvanceSettlementToBalance(t *testing.T) {
	f := newFixture()
	emp := f.addEmployee(8000)
	f.advances.advances["adv-1"] = advance.Request{
		ID: "adv-1", EmployeeID: emp.ID, CompanyID: companyID,
		ApprovedAmount:   decimal.NewFromInt(1000),
		MonthlyDeduction: decimal.NewFromInt(1000),
		Status:           advance.StatusApproved,
	}

	result := f.runPayroll(t)

	// A manual repayment lands between draft generation and the lock.
	_, err := f.advances.CreatePayment(context.Background(), advance.Payment{
		ID: "pay-manual", AdvanceID: "adv-1", Amount: decimal.NewFromInt(600), PaidAt: time.Now(),
	})
	require.NoError(t, err)

	_, _, err = f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	require.NoError(t, err)

	payments, err := f.advances.ListPayments(context.Background(), "adv-1")
	require.NoError(t, err)
	require.Len(t, payments, 2)

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(1000)),
		"total recovered %s must never exceed the approved amount", total)

	adv, err := f.advances.GetByID(context.Background(), "adv-1", companyID)
	require.NoError(t, err)
	assert.Equal(t, advance.StatusFullyPaid, adv.Status)
}

func TestLockRunSkipsManuallySettledAdvance(t *testing.T) {
	f := newFixture()
	emp := f.addEmployee(8000)
	f.advances.advances["adv-1"] = advance.Request{
		ID: "adv-1", EmployeeID: emp.ID, CompanyID: companyID,
		ApprovedAmount:   decimal.NewFromInt(1000),
		MonthlyDeduction: decimal.NewFromInt(1000),
		Status:           advance.StatusApproved,
	}

	result := f.runPayroll(t)

	// The whole balance is repaid manually while the run is still a draft.
	_, err := f.advances.CreatePayment(context.Background(), advance.Payment{
		ID: "pay-manual", AdvanceID: "adv-1", Amount: decimal.NewFromInt(1000), PaidAt: time.Now(),
	})
	require.NoError(t, err)

	_, _, err = f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	require.NoError(t, err)

	payments, err := f.advances.ListPayments(context.Background(), "adv-1")
	require.NoError(t, err)
	assert.Len(t, payments, 1, "the lock records nothing against a settled advance")

	adv, err := f.advances.GetByID(context.Background(), "adv-1", companyID)
	require.NoError(t, err)
	assert.Equal(t, advance.StatusFullyPaid, adv.Status)
}

func TestCreateAdjustmentRun(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)
	result := f.runPayroll(t)

	_, err := f.svc.CreateAdjustmentRun(context.Background(), companyID, userID, payroll.CreateAdjustmentRunRequest{
		OriginalRunID: result.RunID,
		Reason:        "missed overtime for two employees",
	})
	assert.ErrorIs(t, err, payroll.ErrRunNotLocked, "adjustments only apply to locked runs")

	_, _, err = f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	require.NoError(t, err)

	adj, err := f.svc.CreateAdjustmentRun(context.Background(), companyID, userID, payroll.CreateAdjustmentRunRequest{
		OriginalRunID: result.RunID,
		Reason:        "missed overtime for two employees",
	})
	require.NoError(t, err)
	assert.True(t, adj.IsAdjustment)
	assert.Equal(t, payroll.RunStatusDraft, adj.Status)
	require.NotNil(t, adj.OriginalRunID)
	assert.Equal(t, result.RunID, *adj.OriginalRunID)
	require.NotNil(t, adj.AdjustmentReason)
}

func TestCreateAdjustmentRunRequiresReason(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)
	result := f.runPayroll(t)
	_, _, err := f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	require.NoError(t, err)

	_, err = f.svc.CreateAdjustmentRun(context.Background(), companyID, userID, payroll.CreateAdjustmentRunRequest{
		OriginalRunID: result.RunID,
	})
	assert.Error(t, err)
}

func TestMarkRunPaid(t *testing.T) {
	f := newFixture()
	f.addEmployee(8000)
	result := f.runPayroll(t)

	err := f.svc.MarkRunPaid(context.Background(), companyID, result.RunID)
	assert.ErrorIs(t, err, payroll.ErrRunNotLocked)

	_, _, err = f.svc.LockRun(context.Background(), companyID, userID, payroll.LockRunRequest{RunID: result.RunID})
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkRunPaid(context.Background(), companyID, result.RunID))
	run, err := f.runs.GetRunByID(context.Background(), result.RunID, companyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusPaid, run.Status)
}
