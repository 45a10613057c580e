package employee

import "context"

// EmployeeRepository defines the read surface the engine needs; employee CRUD
// lives outside the core.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	GetByIDs(ctx context.Context, ids []string, companyID string) ([]Employee, error)

	GetActiveContract(ctx context.Context, employeeID string, companyID string) (Contract, error)
	GetActiveAssignment(ctx context.Context, employeeID string, companyID string) (SalaryAssignment, error)
	GetPrimaryBankAccount(ctx context.Context, employeeID string) (BankAccount, error)
}
