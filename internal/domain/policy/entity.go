package policy

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enum. Lifecycle: DRAFT -> PENDING_APPROVAL -> ACTIVE <-> INACTIVE.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusActive          Status = "ACTIVE"
	StatusInactive        Status = "INACTIVE"
)

// CanTransition reports whether the status machine allows moving to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusPendingApproval
	case StatusPendingApproval:
		return next == StatusActive || next == StatusDraft
	case StatusActive:
		return next == StatusInactive
	case StatusInactive:
		return next == StatusActive
	}
	return false
}

// ActionType enum
type ActionType string

const (
	ActionAddToPayroll      ActionType = "ADD_TO_PAYROLL"
	ActionDeductFromPayroll ActionType = "DEDUCT_FROM_PAYROLL"
)

// ValueType enum
type ValueType string

const (
	ValueFixed          ValueType = "FIXED"
	ValuePercentOfBasic ValueType = "PERCENT_OF_BASIC"
)

// Action - what a matched policy does. Percentage actions are resolved against
// the employee's current basic salary at evaluation time, not cached.
type Action struct {
	Type      ActionType      `json:"type"`
	ValueType ValueType       `json:"value_type"`
	Value     decimal.Decimal `json:"value"`
}

// SmartPolicy - a persisted, already-parsed tenant rule. Natural-language
// parsing happens upstream; the engine only sees condition/action trees.
type SmartPolicy struct {
	ID              string
	CompanyID       string
	Name            string
	TriggerEvent    string
	TriggerSubEvent *string
	Conditions      []Condition
	Actions         []Action
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Matches reports whether the policy subscribes to the event/subEvent pair. A
// policy with no subEvent matches any subEvent of its event.
func (p SmartPolicy) Matches(event string, subEvent *string) bool {
	if p.TriggerEvent != event {
		return false
	}
	if p.TriggerSubEvent == nil {
		return true
	}
	return subEvent != nil && *p.TriggerSubEvent == *subEvent
}

// Execution - an immutable fact recorded once per matched trigger occurrence,
// forming the policy audit trail. It never mutates a payslip itself; payslip
// materialization consumes executions later, when the run is calculated.
type Execution struct {
	ID              string
	PolicyID        string
	CompanyID       string
	EmployeeID      string
	EmployeeName    string
	TriggerEvent    string
	TriggerSubEvent *string
	EventRef        string
	ConditionsMet   bool
	ConditionsLog   []string
	ActionType      ActionType
	ActionValue     decimal.Decimal
	IsSuccess       bool
	FailureReason   *string
	PayrollPeriod   *string // set once consumed into a payslip line
	ExecutedAt      time.Time
}

// TriggerEvent - the inbound boundary contract delivered by external
// collaborators (attendance check-in, leave submission, payroll run start).
type TriggerEvent struct {
	Event          string                 `json:"event" validate:"required"`
	SubEvent       *string                `json:"sub_event,omitempty"`
	CompanyID      string                 `json:"company_id" validate:"required,uuid"`
	EmployeeID     string                 `json:"employee_id" validate:"required,uuid"`
	EmployeeName   string                 `json:"employee_name"`
	EventData      map[string]interface{} `json:"event_data"`
	IdempotencyKey string                 `json:"idempotency_key" validate:"required"`
	OccurredAt     time.Time              `json:"occurred_at"`
}
