package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
)

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepository{db: db}
}

const payslipColumns = `id, company_id, run_id, period_id, employee_id, base_salary,
	   gross_salary, total_deductions, net_salary, status, failure_reason, calculation_trace,
	   created_at, updated_at`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var (
		p     payroll.Payslip
		trace []byte
	)
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.RunID, &p.PeriodID, &p.EmployeeID, &p.BaseSalary,
		&p.GrossSalary, &p.TotalDeductions, &p.NetSalary, &p.Status, &p.FailureReason,
		&trace, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payroll.Payslip{}, err
	}

	if len(trace) > 0 {
		if err := json.Unmarshal(trace, &p.CalculationTrace); err != nil {
			return payroll.Payslip{}, fmt.Errorf("decode calculation trace: %w", err)
		}
	}

	return p, nil
}

func encodeTrace(entries []payroll.TraceEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	return json.Marshal(entries)
}

// UpsertPayslip implements payroll.PayslipRepository. One payslip exists per
// (run, employee); recomputation reuses the row.
func (r *payslipRepository) UpsertPayslip(ctx context.Context, payslip payroll.Payslip) (payroll.Payslip, error) {
	q := r.db.QuerierFor(ctx)

	trace, err := encodeTrace(payslip.CalculationTrace)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("encode calculation trace: %w", err)
	}

	query := `
		INSERT INTO payslips (
			id, company_id, run_id, period_id, employee_id, base_salary,
			gross_salary, total_deductions, net_salary, status, failure_reason, calculation_trace
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (run_id, employee_id) DO UPDATE
		SET base_salary = EXCLUDED.base_salary,
			status = EXCLUDED.status,
			failure_reason = EXCLUDED.failure_reason,
			calculation_trace = EXCLUDED.calculation_trace,
			updated_at = NOW()
		RETURNING ` + payslipColumns

	slip, err := scanPayslip(q.QueryRow(ctx, query,
		payslip.ID, payslip.CompanyID, payslip.RunID, payslip.PeriodID, payslip.EmployeeID,
		payslip.BaseSalary, payslip.GrossSalary, payslip.TotalDeductions, payslip.NetSalary,
		payslip.Status, payslip.FailureReason, trace,
	))
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to upsert payslip: %w", err)
	}

	return slip, nil
}

// GetPayslip implements payroll.PayslipRepository.
func (r *payslipRepository) GetPayslip(ctx context.Context, runID, employeeID, companyID string) (payroll.Payslip, error) {
	q := r.db.QuerierFor(ctx)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE run_id = $1 AND employee_id = $2 AND company_id = $3`

	slip, err := scanPayslip(q.QueryRow(ctx, query, runID, employeeID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return slip, nil
}

// GetPayslipByID implements payroll.PayslipRepository.
func (r *payslipRepository) GetPayslipByID(ctx context.Context, id string, companyID string) (payroll.Payslip, error) {
	q := r.db.QuerierFor(ctx)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE id = $1 AND company_id = $2`

	slip, err := scanPayslip(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return slip, nil
}

// ListPayslipsByRun implements payroll.PayslipRepository.
func (r *payslipRepository) ListPayslipsByRun(ctx context.Context, runID string, companyID string) ([]payroll.Payslip, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips
		WHERE run_id = $1 AND company_id = $2
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, runID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var slips []payroll.Payslip
	for rows.Next() {
		slip, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		slips = append(slips, slip)
	}

	return slips, rows.Err()
}

// GetPayslipForUpdate implements payroll.PayslipRepository.
func (r *payslipRepository) GetPayslipForUpdate(ctx context.Context, id string, companyID string) (payroll.Payslip, error) {
	q := r.db.QuerierFor(ctx)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE id = $1 AND company_id = $2 FOR UPDATE`

	slip, err := scanPayslip(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to lock payslip row: %w", err)
	}

	return slip, nil
}

// ListLines implements payroll.PayslipRepository.
func (r *payslipRepository) ListLines(ctx context.Context, payslipID string) ([]payroll.Line, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT id, payslip_id, COALESCE(component_id::text, ''), sign, amount, source_type, source_ref, description, created_at
		FROM payslip_lines
		WHERE payslip_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, payslipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip lines: %w", err)
	}
	defer rows.Close()

	var lines []payroll.Line
	for rows.Next() {
		var l payroll.Line
		if err := rows.Scan(
			&l.ID, &l.PayslipID, &l.ComponentID, &l.Sign, &l.Amount,
			&l.SourceType, &l.SourceRef, &l.Description, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payslip line: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

// DeleteEngineLines implements payroll.PayslipRepository.
func (r *payslipRepository) DeleteEngineLines(ctx context.Context, payslipID string) error {
	q := r.db.QuerierFor(ctx)

	query := `DELETE FROM payslip_lines WHERE payslip_id = $1 AND source_type != $2`

	if _, err := q.Exec(ctx, query, payslipID, payroll.SourceManual); err != nil {
		return fmt.Errorf("failed to delete engine lines: %w", err)
	}

	return nil
}

// InsertLines implements payroll.PayslipRepository.
func (r *payslipRepository) InsertLines(ctx context.Context, lines []payroll.Line) error {
	q := r.db.QuerierFor(ctx)

	query := `
		INSERT INTO payslip_lines (
			id, payslip_id, component_id, sign, amount, source_type, source_ref, description
		) VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
	`

	for _, l := range lines {
		if _, err := q.Exec(ctx, query,
			l.ID, l.PayslipID, l.ComponentID, l.Sign, l.Amount, l.SourceType, l.SourceRef, l.Description,
		); err != nil {
			return fmt.Errorf("failed to insert payslip line: %w", err)
		}
	}

	return nil
}

// UpdateTotals implements payroll.PayslipRepository. The calculation trace is
// rewritten together with the totals it explains.
func (r *payslipRepository) UpdateTotals(ctx context.Context, payslip payroll.Payslip) error {
	q := r.db.QuerierFor(ctx)

	trace, err := encodeTrace(payslip.CalculationTrace)
	if err != nil {
		return fmt.Errorf("encode calculation trace: %w", err)
	}

	query := `
		UPDATE payslips
		SET gross_salary = $1, total_deductions = $2, net_salary = $3,
			status = $4, failure_reason = $5, calculation_trace = $6, updated_at = NOW()
		WHERE id = $7 AND company_id = $8
	`

	tag, err := q.Exec(ctx, query,
		payslip.GrossSalary, payslip.TotalDeductions, payslip.NetSalary,
		payslip.Status, payslip.FailureReason, trace, payslip.ID, payslip.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payslip totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipNotFound
	}

	return nil
}

// MarkPayslipFailed implements payroll.PayslipRepository.
func (r *payslipRepository) MarkPayslipFailed(ctx context.Context, id string, companyID string, reason string) error {
	q := r.db.QuerierFor(ctx)

	query := `
		UPDATE payslips
		SET status = $1, failure_reason = $2, updated_at = NOW()
		WHERE id = $3 AND company_id = $4
	`

	if _, err := q.Exec(ctx, query, payroll.PayslipStatusFailed, reason, id, companyID); err != nil {
		return fmt.Errorf("failed to mark payslip failed: %w", err)
	}

	return nil
}
