package policyengine

import (
	"fmt"
	"time"

	"github.com/masar-hr/payroll-engine-go/internal/domain/policy"
	"github.com/shopspring/decimal"
)

// evaluateConditions ANDs all conditions against the event payload, producing
// a human-readable log line per condition for the execution audit trail.
func (e *Engine) evaluateConditions(conds []policy.Condition, data map[string]interface{}) (bool, []string, error) {
	log := make([]string, 0, len(conds))
	met := true

	for _, cond := range conds {
		ok, line, err := evaluateCondition(cond, data, e.now())
		if err != nil {
			return false, nil, err
		}
		log = append(log, line)
		if !ok {
			met = false
		}
	}

	return met, log, nil
}

func evaluateCondition(cond policy.Condition, data map[string]interface{}, now time.Time) (bool, string, error) {
	switch c := cond.(type) {
	case policy.Equals:
		got, ok := stringField(data, c.Field)
		result := ok && got == c.Value
		return result, fmt.Sprintf("%s == %q: %s (got %q)", c.Field, c.Value, verdict(result), got), nil

	case policy.GreaterThan:
		got, ok, err := decimalField(data, c.Field)
		if err != nil {
			return false, "", err
		}
		result := ok && got.GreaterThan(c.Threshold)
		return result, fmt.Sprintf("%s > %s: %s (got %s)", c.Field, c.Threshold, verdict(result), got), nil

	case policy.LessThan:
		got, ok, err := decimalField(data, c.Field)
		if err != nil {
			return false, "", err
		}
		result := ok && got.LessThan(c.Threshold)
		return result, fmt.Sprintf("%s < %s: %s (got %s)", c.Field, c.Threshold, verdict(result), got), nil

	case policy.DateBefore:
		got, ok, err := timeField(data, c.Field)
		if err != nil {
			return false, "", err
		}
		if !ok {
			got = now
		}
		ref := referenceDate(c, got)
		result := got.Before(ref)
		return result, fmt.Sprintf("%s before %s: %s (got %s)",
			c.Field, ref.Format("2006-01-02"), verdict(result), got.Format("2006-01-02")), nil

	default:
		return false, "", fmt.Errorf("%w: %T", policy.ErrUnknownConditionKind, cond)
	}
}

// referenceDate builds the DATE_BEFORE boundary. A zero Year means the rule
// recurs annually, anchored to the year of the compared value.
func referenceDate(c policy.DateBefore, got time.Time) time.Time {
	year := c.Year
	if year == 0 {
		year = got.Year()
	}
	return time.Date(year, c.Month, c.Day, 0, 0, 0, 0, got.Location())
}

func verdict(ok bool) string {
	if ok {
		return "met"
	}
	return "not met"
}

func stringField(data map[string]interface{}, field string) (string, bool) {
	raw, ok := data[field]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func decimalField(data map[string]interface{}, field string) (decimal.Decimal, bool, error) {
	raw, ok := data[field]
	if !ok {
		return decimal.Zero, false, nil
	}

	switch v := raw.(type) {
	case float64: // encoding/json default for numbers
		return decimal.NewFromFloat(v), true, nil
	case int:
		return decimal.NewFromInt(int64(v)), true, nil
	case int64:
		return decimal.NewFromInt(v), true, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("field %s is not numeric: %w", field, err)
		}
		return d, true, nil
	case decimal.Decimal:
		return v, true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("field %s has unsupported type %T", field, raw)
	}
}

func timeField(data map[string]interface{}, field string) (time.Time, bool, error) {
	raw, ok := data[field]
	if !ok {
		return time.Time{}, false, nil
	}

	switch v := raw.(type) {
	case time.Time:
		return v, true, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			t, err = time.Parse("2006-01-02", v)
		}
		if err != nil {
			return time.Time{}, false, fmt.Errorf("field %s is not a date: %w", field, err)
		}
		return t, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("field %s has unsupported type %T", field, raw)
	}
}
