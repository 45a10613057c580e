package payrollrun

import (
	"context"
	"errors"
	"testing"

	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/service/aggregation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyBankRepo simulates an employee repository whose bank account lookup
// fails with something other than the not-found sentinel.
type faultyBankRepo struct {
	*memEmployeeRepo
	err error
}

func (f *faultyBankRepo) GetPrimaryBankAccount(context.Context, string) (employee.BankAccount, error) {
	return employee.BankAccount{}, f.err
}

func TestValidateRunMissingBankAccountIsFinding(t *testing.T) {
	f := newFixture()
	emp := f.addEmployee(8000)
	delete(f.emps.accounts, emp.ID)

	v := NewValidator(f.emps, aggregation.NewService(f.att))
	report, err := v.ValidateRun(context.Background(), []employee.Employee{emp}, f.runs.periods[periodID])
	require.NoError(t, err)

	assert.False(t, report.IsValid)
	require.Len(t, report.Exceptions, 1)
	assert.Equal(t, "bank_account", report.Exceptions[0].Check)
	assert.Equal(t, SeverityError, report.Exceptions[0].Severity)
}

func TestValidateRunPropagatesRepositoryFailure(t *testing.T) {
	f := newFixture()
	emp := f.addEmployee(8000)

	repoErr := errors.New("connection reset by peer")
	v := NewValidator(&faultyBankRepo{memEmployeeRepo: f.emps, err: repoErr}, aggregation.NewService(f.att))

	_, err := v.ValidateRun(context.Background(), []employee.Employee{emp}, f.runs.periods[periodID])
	require.Error(t, err)
	assert.ErrorIs(t, err, repoErr, "an infrastructure failure must not read as a missing bank account")
}
