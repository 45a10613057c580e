package policy

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Condition is a closed set of comparison variants. Evaluation happens in the
// policy engine via an exhaustive type switch, so an unhandled variant is a
// compile-time visible gap rather than silent string dispatch.
type Condition interface {
	conditionKind() string
}

// Equals - exact match against an event data field.
type Equals struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// GreaterThan - numeric threshold, strict.
type GreaterThan struct {
	Field     string          `json:"field"`
	Threshold decimal.Decimal `json:"threshold"`
}

// LessThan - numeric threshold, strict.
type LessThan struct {
	Field     string          `json:"field"`
	Threshold decimal.Decimal `json:"threshold"`
}

// DateBefore - the event date field must fall before a reference date. When
// Year is zero the condition recurs annually: the reference is Month/Day in
// the same year as the compared value.
type DateBefore struct {
	Field string     `json:"field"`
	Year  int        `json:"year,omitempty"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

func (Equals) conditionKind() string      { return "EQUALS" }
func (GreaterThan) conditionKind() string { return "GREATER_THAN" }
func (LessThan) conditionKind() string    { return "LESS_THAN" }
func (DateBefore) conditionKind() string  { return "DATE_BEFORE" }

type conditionEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalConditions encodes the condition list as tagged JSON for storage.
func MarshalConditions(conds []Condition) ([]byte, error) {
	envelopes := make([]conditionEnvelope, 0, len(conds))
	for _, c := range conds {
		payload, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("marshal condition payload: %w", err)
		}
		envelopes = append(envelopes, conditionEnvelope{Kind: c.conditionKind(), Payload: payload})
	}
	return json.Marshal(envelopes)
}

// UnmarshalConditions decodes tagged JSON back into condition variants.
func UnmarshalConditions(data []byte) ([]Condition, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var envelopes []conditionEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, fmt.Errorf("unmarshal condition envelopes: %w", err)
	}

	conds := make([]Condition, 0, len(envelopes))
	for _, env := range envelopes {
		var c Condition
		switch env.Kind {
		case "EQUALS":
			var v Equals
			if err := json.Unmarshal(env.Payload, &v); err != nil {
				return nil, fmt.Errorf("unmarshal EQUALS condition: %w", err)
			}
			c = v
		case "GREATER_THAN":
			var v GreaterThan
			if err := json.Unmarshal(env.Payload, &v); err != nil {
				return nil, fmt.Errorf("unmarshal GREATER_THAN condition: %w", err)
			}
			c = v
		case "LESS_THAN":
			var v LessThan
			if err := json.Unmarshal(env.Payload, &v); err != nil {
				return nil, fmt.Errorf("unmarshal LESS_THAN condition: %w", err)
			}
			c = v
		case "DATE_BEFORE":
			var v DateBefore
			if err := json.Unmarshal(env.Payload, &v); err != nil {
				return nil, fmt.Errorf("unmarshal DATE_BEFORE condition: %w", err)
			}
			c = v
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownConditionKind, env.Kind)
		}
		conds = append(conds, c)
	}
	return conds, nil
}
