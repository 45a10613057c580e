package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, company_id, employee_code, first_name, last_name,
	   national_id, nationality, is_saudi, hire_date, status, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeCode, &e.FirstName, &e.LastName,
		&e.NationalID, &e.Nationality, &e.IsSaudi, &e.HireDate, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := r.db.QuerierFor(ctx)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND company_id = $2`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

// GetActiveByCompanyID implements employee.EmployeeRepository.
func (r *employeeRepository) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1 AND status = $2
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, companyID, employee.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	return collectEmployees(rows)
}

// GetByIDs implements employee.EmployeeRepository.
func (r *employeeRepository) GetByIDs(ctx context.Context, ids []string, companyID string) ([]employee.Employee, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = ANY($1) AND company_id = $2
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, ids, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by ids: %w", err)
	}
	defer rows.Close()

	return collectEmployees(rows)
}

func collectEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// GetActiveContract implements employee.EmployeeRepository.
func (r *employeeRepository) GetActiveContract(ctx context.Context, employeeID string, companyID string) (employee.Contract, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT id, employee_id, company_id, start_date, end_date, is_active
		FROM employment_contracts
		WHERE employee_id = $1 AND company_id = $2 AND is_active = TRUE
		ORDER BY start_date DESC
		LIMIT 1
	`

	var c employee.Contract
	err := q.QueryRow(ctx, query, employeeID, companyID).Scan(
		&c.ID, &c.EmployeeID, &c.CompanyID, &c.StartDate, &c.EndDate, &c.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Contract{}, employee.ErrNoActiveContract
		}
		return employee.Contract{}, fmt.Errorf("failed to get active contract: %w", err)
	}

	return c, nil
}

// GetActiveAssignment implements employee.EmployeeRepository. The structure
// and its lines are loaded in one pass so the generator has the full salary
// composition without further queries.
func (r *employeeRepository) GetActiveAssignment(ctx context.Context, employeeID string, companyID string) (employee.SalaryAssignment, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT a.id, a.employee_id, a.structure_id, a.base_salary, a.is_active, a.effective_at,
			   s.id, s.company_id, s.name
		FROM salary_assignments a
		JOIN salary_structures s ON s.id = a.structure_id
		WHERE a.employee_id = $1 AND s.company_id = $2 AND a.is_active = TRUE
		ORDER BY a.effective_at DESC
		LIMIT 1
	`

	var a employee.SalaryAssignment
	err := q.QueryRow(ctx, query, employeeID, companyID).Scan(
		&a.ID, &a.EmployeeID, &a.StructureID, &a.BaseSalary, &a.IsActive, &a.EffectiveAt,
		&a.Structure.ID, &a.Structure.CompanyID, &a.Structure.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.SalaryAssignment{}, employee.ErrNoActiveAssignment
		}
		return employee.SalaryAssignment{}, fmt.Errorf("failed to get active assignment: %w", err)
	}

	lines, err := r.structureLines(ctx, a.StructureID)
	if err != nil {
		return employee.SalaryAssignment{}, err
	}
	a.Structure.Lines = lines

	return a, nil
}

func (r *employeeRepository) structureLines(ctx context.Context, structureID string) ([]employee.StructureLine, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT l.id, l.structure_id, l.component_id, l.amount, l.percentage, l.priority,
			   c.id, c.company_id, c.code, c.name, c.type, c.gosi_eligible, c.is_active
		FROM salary_structure_lines l
		JOIN salary_components c ON c.id = l.component_id
		WHERE l.structure_id = $1
		ORDER BY l.priority, l.id
	`

	rows, err := q.Query(ctx, query, structureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list structure lines: %w", err)
	}
	defer rows.Close()

	var lines []employee.StructureLine
	for rows.Next() {
		var l employee.StructureLine
		if err := rows.Scan(
			&l.ID, &l.StructureID, &l.ComponentID, &l.Amount, &l.Percentage, &l.Priority,
			&l.Component.ID, &l.Component.CompanyID, &l.Component.Code, &l.Component.Name,
			&l.Component.Type, &l.Component.GosiEligible, &l.Component.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan structure line: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

// GetPrimaryBankAccount implements employee.EmployeeRepository.
func (r *employeeRepository) GetPrimaryBankAccount(ctx context.Context, employeeID string) (employee.BankAccount, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT id, employee_id, bank_code, iban, is_primary, is_active
		FROM employee_bank_accounts
		WHERE employee_id = $1 AND is_primary = TRUE AND is_active = TRUE
		LIMIT 1
	`

	var a employee.BankAccount
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&a.ID, &a.EmployeeID, &a.BankCode, &a.IBAN, &a.IsPrimary, &a.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.BankAccount{}, employee.ErrNoBankAccount
		}
		return employee.BankAccount{}, fmt.Errorf("failed to get bank account: %w", err)
	}

	return a, nil
}
