package policyengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/domain/policy"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/validation"
	"github.com/shopspring/decimal"
)

// Engine matches trigger events against active policies and records immutable
// execution facts. It never mutates payslips; materialization happens later
// when a run is calculated, so evaluation can happen at event time (e.g. a
// late check-in) without assuming a payroll run exists yet.
type Engine struct {
	policyRepo   policy.PolicyRepository
	employeeRepo employee.EmployeeRepository
	logger       *slog.Logger
	now          func() time.Time
}

func NewEngine(policyRepo policy.PolicyRepository, employeeRepo employee.EmployeeRepository, logger *slog.Logger) *Engine {
	return &Engine{
		policyRepo:   policyRepo,
		employeeRepo: employeeRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// HandleTrigger evaluates every matching active policy against the event.
// Failures are isolated per policy: a broken rule is logged and skipped so the
// triggering operation (check-in, leave submission) is never held hostage.
func (e *Engine) HandleTrigger(ctx context.Context, event policy.TriggerEvent) error {
	if err := validation.Struct(event); err != nil {
		return err
	}

	candidates, err := e.policyRepo.ListActiveByEvent(ctx, event.CompanyID, event.Event)
	if err != nil {
		return fmt.Errorf("list active policies: %w", err)
	}

	for _, pol := range candidates {
		if !pol.Matches(event.Event, event.SubEvent) {
			continue
		}

		if err := e.evaluateAndRecord(ctx, pol, event); err != nil {
			e.logger.Error("policy evaluation failed",
				slog.String("policy_id", pol.ID),
				slog.String("event", event.Event),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

func (e *Engine) evaluateAndRecord(ctx context.Context, pol policy.SmartPolicy, event policy.TriggerEvent) error {
	met, log, err := e.evaluateConditions(pol.Conditions, event.EventData)
	if err != nil {
		return err
	}
	if !met {
		return nil
	}

	if len(pol.Actions) == 0 {
		return nil
	}
	action := pol.Actions[0]

	value, err := e.resolveActionValue(ctx, action, event.EmployeeID, event.CompanyID)
	if err != nil {
		return fmt.Errorf("resolve action value: %w", err)
	}

	exec := policy.Execution{
		ID:              uuid.NewString(),
		PolicyID:        pol.ID,
		CompanyID:       event.CompanyID,
		EmployeeID:      event.EmployeeID,
		EmployeeName:    event.EmployeeName,
		TriggerEvent:    event.Event,
		TriggerSubEvent: event.SubEvent,
		EventRef:        event.IdempotencyKey,
		ConditionsMet:   true,
		ConditionsLog:   log,
		ActionType:      action.Type,
		ActionValue:     value,
		IsSuccess:       true,
		ExecutedAt:      e.now(),
	}

	_, err = e.policyRepo.CreateExecution(ctx, exec)
	if errors.Is(err, policy.ErrExecutionAlreadyExists) {
		// Redelivered event; the fact is already on record.
		return nil
	}
	return err
}

// resolveActionValue converts the action into a money amount. Percentage
// actions are resolved against the employee's current basic salary from the
// active assignment at evaluation time, never from a cached figure.
func (e *Engine) resolveActionValue(ctx context.Context, action policy.Action, employeeID, companyID string) (decimal.Decimal, error) {
	if action.ValueType == policy.ValueFixed {
		return action.Value.Round(2), nil
	}

	assignment, err := e.employeeRepo.GetActiveAssignment(ctx, employeeID, companyID)
	if err != nil {
		return decimal.Zero, err
	}

	return assignment.BaseSalary.Mul(action.Value).Div(decimal.NewFromInt(100)).Round(2), nil
}

// ChangeStatus applies the DRAFT -> PENDING_APPROVAL -> ACTIVE <-> INACTIVE
// state machine.
func (e *Engine) ChangeStatus(ctx context.Context, id, companyID string, next policy.Status) error {
	pol, err := e.policyRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return err
	}

	if !pol.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", policy.ErrInvalidStatusChange, pol.Status, next)
	}

	return e.policyRepo.UpdateStatus(ctx, id, companyID, next)
}
