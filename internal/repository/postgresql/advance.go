package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hr/payroll-engine-go/internal/domain/advance"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
)

type advanceRepository struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) advance.AdvanceRepository {
	return &advanceRepository{db: db}
}

const advanceColumns = `
	id, employee_id, company_id, approved_amount, monthly_deduction,
	start_date, end_date, status, created_at, updated_at
`

func scanAdvance(row pgx.Row) (advance.Request, error) {
	var a advance.Request
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.CompanyID, &a.ApprovedAmount, &a.MonthlyDeduction,
		&a.StartDate, &a.EndDate, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// GetByID implements advance.AdvanceRepository.
func (r *advanceRepository) GetByID(ctx context.Context, id string, companyID string) (advance.Request, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT ` + advanceColumns + `
		FROM salary_advances
		WHERE id = $1 AND company_id = $2
	`

	a, err := scanAdvance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return advance.Request{}, advance.ErrAdvanceNotFound
		}
		return advance.Request{}, fmt.Errorf("failed to get advance: %w", err)
	}

	return a, nil
}

// ListActiveForPeriod implements advance.AdvanceRepository.
func (r *advanceRepository) ListActiveForPeriod(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]advance.Request, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT ` + advanceColumns + `
		FROM salary_advances
		WHERE employee_id = $1 AND company_id = $2
		  AND status = 'APPROVED'
		  AND start_date <= $4 AND end_date >= $3
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	defer rows.Close()

	var advances []advance.Request
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance: %w", err)
		}
		advances = append(advances, a)
	}

	return advances, rows.Err()
}

// ListPayments implements advance.AdvanceRepository.
func (r *advanceRepository) ListPayments(ctx context.Context, advanceID string) ([]advance.Payment, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT id, advance_id, run_id, amount, paid_at
		FROM advance_payments
		WHERE advance_id = $1
		ORDER BY paid_at, id
	`

	rows, err := q.Query(ctx, query, advanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list advance payments: %w", err)
	}
	defer rows.Close()

	var payments []advance.Payment
	for rows.Next() {
		var p advance.Payment
		if err := rows.Scan(&p.ID, &p.AdvanceID, &p.RunID, &p.Amount, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan advance payment: %w", err)
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

// CreatePayment implements advance.AdvanceRepository.
func (r *advanceRepository) CreatePayment(ctx context.Context, payment advance.Payment) (advance.Payment, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		INSERT INTO advance_payments (id, advance_id, run_id, amount, paid_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.Exec(ctx, query, payment.ID, payment.AdvanceID, payment.RunID, payment.Amount, payment.PaidAt)
	if err != nil {
		return advance.Payment{}, fmt.Errorf("failed to create advance payment: %w", err)
	}

	return payment, nil
}

// UpdateStatus implements advance.AdvanceRepository.
func (r *advanceRepository) UpdateStatus(ctx context.Context, id string, companyID string, status advance.RequestStatus) error {
	q := r.db.QuerierFor(ctx)

	query := `
		UPDATE salary_advances
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, id, companyID, status)
	if err != nil {
		return fmt.Errorf("failed to update advance status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return advance.ErrAdvanceNotFound
	}

	return nil
}
