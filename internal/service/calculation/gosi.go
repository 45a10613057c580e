package calculation

import (
	"fmt"

	"github.com/masar-hr/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// GosiInput - what the contribution calculation needs, assembled by the
// payslip generator from the structure lines.
type GosiInput struct {
	BasicSalary  decimal.Decimal
	EligibleBase decimal.Decimal // sum of gosiEligible EARNING amounts, basic included
	IsSaudi      bool
}

// GosiResult - employee and employer shares plus the capped base they were
// derived from.
type GosiResult struct {
	Applies       bool
	Base          decimal.Decimal
	EmployeeShare decimal.Decimal
	EmployerShare decimal.Decimal
}

// Gosi computes the social-insurance contribution. The base is the eligible
// earnings floored to the configured minimum and capped at maxCapAmount;
// employee share applies pension+SANED rates, employer share pension+hazard.
func Gosi(input GosiInput, cfg statutory.GosiConfig) (GosiResult, Trace) {
	var trace Trace

	if cfg.IsSaudiOnly && !input.IsSaudi {
		trace.Add("gosiEligibility",
			fmt.Sprintf("isSaudi=%t, isSaudiOnly=%t", input.IsSaudi, cfg.IsSaudiOnly),
			decimal.Zero)
		return GosiResult{Applies: false}, trace
	}

	base := input.EligibleBase
	if base.IsZero() {
		base = input.BasicSalary
	}
	if base.LessThan(cfg.MinBaseSalary) {
		base = cfg.MinBaseSalary
	}
	if base.GreaterThan(cfg.MaxCapAmount) {
		base = cfg.MaxCapAmount
	}
	base = money(base)

	trace.Add("gosiBase",
		fmt.Sprintf("min(max(%s, %s), %s) = %s",
			input.EligibleBase, cfg.MinBaseSalary, cfg.MaxCapAmount, base),
		base)

	employeeRate := cfg.EmployeeRate.Add(cfg.SanedRate)
	employeeShare := money(base.Mul(employeeRate).Div(hundred))
	trace.Add("gosiEmployee",
		fmt.Sprintf("%s × (%s%% + %s%%) = %s", base, cfg.EmployeeRate, cfg.SanedRate, employeeShare),
		employeeShare)

	employerRate := cfg.EmployerRate.Add(cfg.HazardRate)
	employerShare := money(base.Mul(employerRate).Div(hundred))
	trace.Add("gosiEmployer",
		fmt.Sprintf("%s × (%s%% + %s%%) = %s", base, cfg.EmployerRate, cfg.HazardRate, employerShare),
		employerShare)

	return GosiResult{
		Applies:       true,
		Base:          base,
		EmployeeShare: employeeShare,
		EmployerShare: employerShare,
	}, trace
}
