package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/masar-hr/payroll-engine-go/internal/domain/policy"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) policy.PolicyRepository {
	return &policyRepository{db: db}
}

const policyColumns = `id, company_id, name, trigger_event, trigger_sub_event,
	   conditions, actions, status, created_at, updated_at`

func scanPolicy(row pgx.Row) (policy.SmartPolicy, error) {
	var (
		p          policy.SmartPolicy
		conditions []byte
		actions    []byte
	)
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.TriggerEvent, &p.TriggerSubEvent,
		&conditions, &actions, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return policy.SmartPolicy{}, err
	}

	p.Conditions, err = policy.UnmarshalConditions(conditions)
	if err != nil {
		return policy.SmartPolicy{}, fmt.Errorf("decode policy conditions: %w", err)
	}
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &p.Actions); err != nil {
			return policy.SmartPolicy{}, fmt.Errorf("decode policy actions: %w", err)
		}
	}

	return p, nil
}

// GetByID implements policy.PolicyRepository.
func (r *policyRepository) GetByID(ctx context.Context, id string, companyID string) (policy.SmartPolicy, error) {
	q := r.db.QuerierFor(ctx)

	query := `SELECT ` + policyColumns + ` FROM smart_policies WHERE id = $1 AND company_id = $2`

	p, err := scanPolicy(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.SmartPolicy{}, policy.ErrPolicyNotFound
		}
		return policy.SmartPolicy{}, fmt.Errorf("failed to get policy: %w", err)
	}

	return p, nil
}

// ListActiveByEvent implements policy.PolicyRepository.
func (r *policyRepository) ListActiveByEvent(ctx context.Context, companyID string, event string) ([]policy.SmartPolicy, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT ` + policyColumns + `
		FROM smart_policies
		WHERE company_id = $1 AND trigger_event = $2 AND status = $3
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, companyID, event, policy.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active policies: %w", err)
	}
	defer rows.Close()

	var policies []policy.SmartPolicy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		policies = append(policies, p)
	}

	return policies, rows.Err()
}

// UpdateStatus implements policy.PolicyRepository.
func (r *policyRepository) UpdateStatus(ctx context.Context, id string, companyID string, status policy.Status) error {
	q := r.db.QuerierFor(ctx)

	query := `UPDATE smart_policies SET status = $1, updated_at = NOW() WHERE id = $2 AND company_id = $3`

	tag, err := q.Exec(ctx, query, status, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to update policy status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return policy.ErrPolicyNotFound
	}

	return nil
}

// CreateExecution implements policy.PolicyRepository. The unique index on
// (policy_id, event_ref) turns redelivered events into
// ErrExecutionAlreadyExists instead of duplicate facts.
func (r *policyRepository) CreateExecution(ctx context.Context, exec policy.Execution) (policy.Execution, error) {
	q := r.db.QuerierFor(ctx)

	conditionsLog, err := json.Marshal(exec.ConditionsLog)
	if err != nil {
		return policy.Execution{}, fmt.Errorf("encode conditions log: %w", err)
	}

	query := `
		INSERT INTO policy_executions (
			id, policy_id, company_id, employee_id, employee_name,
			trigger_event, trigger_sub_event, event_ref, conditions_met, conditions_log,
			action_type, action_value, is_success, failure_reason, payroll_period, executed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = q.Exec(ctx, query,
		exec.ID, exec.PolicyID, exec.CompanyID, exec.EmployeeID, exec.EmployeeName,
		exec.TriggerEvent, exec.TriggerSubEvent, exec.EventRef, exec.ConditionsMet, conditionsLog,
		exec.ActionType, exec.ActionValue, exec.IsSuccess, exec.FailureReason,
		exec.PayrollPeriod, exec.ExecutedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return policy.Execution{}, policy.ErrExecutionAlreadyExists
		}
		return policy.Execution{}, fmt.Errorf("failed to create policy execution: %w", err)
	}

	return exec, nil
}

const executionColumns = `id, policy_id, company_id, employee_id, employee_name,
	   trigger_event, trigger_sub_event, event_ref, conditions_met, conditions_log,
	   action_type, action_value, is_success, failure_reason, payroll_period, executed_at`

func scanExecution(row pgx.Row) (policy.Execution, error) {
	var (
		e             policy.Execution
		conditionsLog []byte
	)
	err := row.Scan(
		&e.ID, &e.PolicyID, &e.CompanyID, &e.EmployeeID, &e.EmployeeName,
		&e.TriggerEvent, &e.TriggerSubEvent, &e.EventRef, &e.ConditionsMet, &conditionsLog,
		&e.ActionType, &e.ActionValue, &e.IsSuccess, &e.FailureReason,
		&e.PayrollPeriod, &e.ExecutedAt,
	)
	if err != nil {
		return policy.Execution{}, err
	}

	if len(conditionsLog) > 0 {
		if err := json.Unmarshal(conditionsLog, &e.ConditionsLog); err != nil {
			return policy.Execution{}, fmt.Errorf("decode conditions log: %w", err)
		}
	}

	return e, nil
}

// ListPendingForPeriod implements policy.PolicyRepository. The payroll_period
// match deliberately includes executions already stamped with this period:
// every run of the period, adjustment runs included, rebuilds a full
// replacement payslip from the same execution set.
func (r *policyRepository) ListPendingForPeriod(ctx context.Context, employeeID string, companyID string, payrollPeriod string) ([]policy.Execution, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT ` + executionColumns + `
		FROM policy_executions
		WHERE employee_id = $1 AND company_id = $2
		  AND conditions_met = TRUE AND is_success = TRUE
		  AND (payroll_period IS NULL OR payroll_period = $3)
		ORDER BY executed_at, id
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, payrollPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending executions: %w", err)
	}
	defer rows.Close()

	var execs []policy.Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy execution: %w", err)
		}
		execs = append(execs, e)
	}

	return execs, rows.Err()
}

// MarkConsumed implements policy.PolicyRepository.
func (r *policyRepository) MarkConsumed(ctx context.Context, executionIDs []string, payrollPeriod string) error {
	if len(executionIDs) == 0 {
		return nil
	}
	q := r.db.QuerierFor(ctx)

	query := `UPDATE policy_executions SET payroll_period = $1 WHERE id = ANY($2)`

	if _, err := q.Exec(ctx, query, payrollPeriod, executionIDs); err != nil {
		return fmt.Errorf("failed to mark executions consumed: %w", err)
	}

	return nil
}
