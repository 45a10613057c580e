package calculation

import "github.com/shopspring/decimal"

// TraceStep - one human-auditable calculation entry. The formula string lets
// an auditor reproduce the number by hand; the result stays exact decimal so
// repeated recomputation cannot drift.
type TraceStep struct {
	Step    string          `json:"step"`
	Formula string          `json:"formula"`
	Result  decimal.Decimal `json:"result"`
}

// Trace collects the steps of one calculator invocation.
type Trace []TraceStep

func (t *Trace) Add(step, formula string, result decimal.Decimal) {
	*t = append(*t, TraceStep{Step: step, Formula: formula, Result: result})
}

// money rounds to 2 decimal places, the precision every persisted amount and
// trace value carries.
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
