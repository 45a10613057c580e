package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
)

type runRepository struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) payroll.RunRepository {
	return &runRepository{db: db}
}

const runColumns = `id, company_id, period_id, status, is_adjustment, original_run_id,
	   adjustment_reason, processed_by, locked_at, locked_by, created_at, updated_at`

func scanRun(row pgx.Row) (payroll.Run, error) {
	var r payroll.Run
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.PeriodID, &r.Status, &r.IsAdjustment, &r.OriginalRunID,
		&r.AdjustmentReason, &r.ProcessedBy, &r.LockedAt, &r.LockedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// GetPeriodByID implements payroll.RunRepository.
func (r *runRepository) GetPeriodByID(ctx context.Context, id string, companyID string) (payroll.Period, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT id, company_id, year, month, start_date, end_date, status, created_at, updated_at
		FROM payroll_periods
		WHERE id = $1 AND company_id = $2
	`

	var p payroll.Period
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&p.ID, &p.CompanyID, &p.Year, &p.Month, &p.StartDate, &p.EndDate,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

// CreateRun implements payroll.RunRepository.
func (r *runRepository) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		INSERT INTO payroll_runs (
			id, company_id, period_id, status, is_adjustment, original_run_id,
			adjustment_reason, processed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		run.ID, run.CompanyID, run.PeriodID, run.Status, run.IsAdjustment,
		run.OriginalRunID, run.AdjustmentReason, run.ProcessedBy,
	).Scan(&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return run, nil
}

// GetRunByID implements payroll.RunRepository.
func (r *runRepository) GetRunByID(ctx context.Context, id string, companyID string) (payroll.Run, error) {
	q := r.db.QuerierFor(ctx)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

// ListRunsByPeriod implements payroll.RunRepository.
func (r *runRepository) ListRunsByPeriod(ctx context.Context, periodID string, companyID string) ([]payroll.Run, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE period_id = $1 AND company_id = $2
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, periodID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRunForShare implements payroll.RunRepository.
func (r *runRepository) GetRunForShare(ctx context.Context, id string, companyID string) (payroll.Run, error) {
	q := r.db.QuerierFor(ctx)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2 FOR SHARE`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to share-lock payroll run row: %w", err)
	}

	return run, nil
}

// GetRunForUpdate implements payroll.RunRepository.
func (r *runRepository) GetRunForUpdate(ctx context.Context, id string, companyID string) (payroll.Run, error) {
	q := r.db.QuerierFor(ctx)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2 FOR UPDATE`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to lock payroll run row: %w", err)
	}

	return run, nil
}

// LockRun implements payroll.RunRepository. The WHERE clause makes the
// DRAFT -> LOCKED flip atomic: of two concurrent locks only one matches a row.
func (r *runRepository) LockRun(ctx context.Context, id string, companyID string, lockedBy string) (payroll.Run, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		UPDATE payroll_runs
		SET status = $1, locked_at = NOW(), locked_by = $2, updated_at = NOW()
		WHERE id = $3 AND company_id = $4 AND status = $5 AND locked_at IS NULL
		RETURNING ` + runColumns

	run, err := scanRun(q.QueryRow(ctx, query,
		payroll.RunStatusLocked, lockedBy, id, companyID, payroll.RunStatusDraft,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunAlreadyLocked
		}
		return payroll.Run{}, fmt.Errorf("failed to lock payroll run: %w", err)
	}

	return run, nil
}

// MarkRunPaid implements payroll.RunRepository.
func (r *runRepository) MarkRunPaid(ctx context.Context, id string, companyID string) error {
	q := r.db.QuerierFor(ctx)

	query := `
		UPDATE payroll_runs
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND company_id = $3 AND status = $4
	`

	tag, err := q.Exec(ctx, query, payroll.RunStatusPaid, id, companyID, payroll.RunStatusLocked)
	if err != nil {
		return fmt.Errorf("failed to mark run paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotLocked
	}

	return nil
}

// GetRunTotals implements payroll.RunRepository.
func (r *runRepository) GetRunTotals(ctx context.Context, runID string, companyID string) (payroll.RunTotals, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT COUNT(*),
			   COALESCE(SUM(gross_salary), 0),
			   COALESCE(SUM(total_deductions), 0),
			   COALESCE(SUM(net_salary), 0)
		FROM payslips
		WHERE run_id = $1 AND company_id = $2 AND status != $3
	`

	var t payroll.RunTotals
	err := q.QueryRow(ctx, query, runID, companyID, payroll.PayslipStatusFailed).Scan(
		&t.PayslipCount, &t.TotalGross, &t.TotalDeductions, &t.TotalNet,
	)
	if err != nil {
		return payroll.RunTotals{}, fmt.Errorf("failed to get run totals: %w", err)
	}

	return t, nil
}
