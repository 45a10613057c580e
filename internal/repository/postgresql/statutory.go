package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/cache"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

// configCacheTTL bounds how stale a cached statutory config may get. Runs
// snapshot their config once, so staleness only delays when a new config
// becomes visible, never changes a run mid-flight.
const configCacheTTL = 5 * time.Minute

type statutoryRepository struct {
	db         *database.DB
	settings   *cache.Cache[statutory.CalculationSettings]
	leaveTypes *cache.Cache[[]statutory.LeaveTypeConfig]
}

func NewStatutoryRepository(db *database.DB) statutory.ConfigRepository {
	return &statutoryRepository{
		db:         db,
		settings:   cache.New[statutory.CalculationSettings](configCacheTTL, 256),
		leaveTypes: cache.New[[]statutory.LeaveTypeConfig](configCacheTTL, 256),
	}
}

// GetGosiConfig implements statutory.ConfigRepository. Configs are
// effective-dated; the active one for asOf is the latest whose effective date
// is on or before it.
func (r *statutoryRepository) GetGosiConfig(ctx context.Context, companyID string, asOf time.Time) (statutory.GosiConfig, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT id, company_id, employee_rate, employer_rate, saned_rate, hazard_rate,
			   min_base_salary, max_cap_amount, is_saudi_only, effective_date, is_active
		FROM gosi_configs
		WHERE company_id = $1 AND is_active = TRUE AND effective_date <= $2
		ORDER BY effective_date DESC
		LIMIT 1
	`

	var c statutory.GosiConfig
	err := q.QueryRow(ctx, query, companyID, asOf).Scan(
		&c.ID, &c.CompanyID, &c.EmployeeRate, &c.EmployerRate, &c.SanedRate, &c.HazardRate,
		&c.MinBaseSalary, &c.MaxCapAmount, &c.IsSaudiOnly, &c.EffectiveDate, &c.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return statutory.GosiConfig{}, statutory.ErrGosiConfigMissing
		}
		return statutory.GosiConfig{}, fmt.Errorf("failed to get gosi config: %w", err)
	}

	return c, nil
}

// ListLeaveTypes implements statutory.ConfigRepository.
func (r *statutoryRepository) ListLeaveTypes(ctx context.Context, companyID string) ([]statutory.LeaveTypeConfig, error) {
	if cached, ok := r.leaveTypes.Get(companyID); ok {
		return cached, nil
	}

	q := r.db.QuerierFor(ctx)

	query := `
		SELECT id, company_id, code, name, is_paid
		FROM leave_type_configs
		WHERE company_id = $1
		ORDER BY code
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	var types []statutory.LeaveTypeConfig
	for rows.Next() {
		var lt statutory.LeaveTypeConfig
		if err := rows.Scan(&lt.ID, &lt.CompanyID, &lt.Code, &lt.Name, &lt.IsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan leave type: %w", err)
		}
		types = append(types, lt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range types {
		tiers, err := r.sickPayTiers(ctx, types[i].ID)
		if err != nil {
			return nil, err
		}
		types[i].SickPayTiers = tiers
	}

	r.leaveTypes.Set(companyID, types)
	return types, nil
}

func (r *statutoryRepository) sickPayTiers(ctx context.Context, leaveTypeID string) ([]statutory.SickPayTier, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT from_day, to_day, payment_percent
		FROM sick_pay_tiers
		WHERE leave_type_id = $1
		ORDER BY from_day
	`

	rows, err := q.Query(ctx, query, leaveTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sick pay tiers: %w", err)
	}
	defer rows.Close()

	var tiers []statutory.SickPayTier
	for rows.Next() {
		var t statutory.SickPayTier
		if err := rows.Scan(&t.FromDay, &t.ToDay, &t.PaymentPercent); err != nil {
			return nil, fmt.Errorf("failed to scan sick pay tier: %w", err)
		}
		tiers = append(tiers, t)
	}

	return tiers, rows.Err()
}

// GetCalculationSettings implements statutory.ConfigRepository. Companies
// without a row fall back to the statutory defaults.
func (r *statutoryRepository) GetCalculationSettings(ctx context.Context, companyID string) (statutory.CalculationSettings, error) {
	if cached, ok := r.settings.Get(companyID); ok {
		return cached, nil
	}

	q := r.db.QuerierFor(ctx)

	query := `
		SELECT days_in_month_method, grace_period_minutes, absence_mode, absence_rate_factor,
			   overtime_base, overtime_weekday_rate, overtime_weekend_rate, overtime_holiday_rate,
			   max_deduction_percent
		FROM calculation_settings
		WHERE company_id = $1
	`

	s := statutory.CalculationSettings{CompanyID: companyID}
	var weekday, weekend, holiday decimal.Decimal
	err := q.QueryRow(ctx, query, companyID).Scan(
		&s.DaysInMonthMethod, &s.GracePeriodMinutes, &s.AbsenceMode, &s.AbsenceRateFactor,
		&s.OvertimeBase, &weekday, &weekend, &holiday,
		&s.MaxDeductionPercent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return statutory.DefaultSettings(companyID), nil
		}
		return statutory.CalculationSettings{}, fmt.Errorf("failed to get calculation settings: %w", err)
	}

	s.OvertimeMultipliers = map[string]decimal.Decimal{
		"WEEKDAY": weekday,
		"WEEKEND": weekend,
		"HOLIDAY": holiday,
	}

	r.settings.Set(companyID, s)
	return s, nil
}
