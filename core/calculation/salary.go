package calculation

import "github.com/shopspring/decimal"

// DefaultEvaluationRate is the amount paid per evaluated paper unless configured otherwise.
var DefaultEvaluationRate = decimal.NewFromInt(20)

// Totals are the figures derived from a calculation's evaluation days.
type Totals struct {
	Staff  int
	Papers int
	Days   int
}

// ComputeSalary returns the base salary (papers × rate) and the final amount (base + incentive).
func ComputeSalary(papers int, rate, incentive decimal.Decimal) (base, final decimal.Decimal) {
	base = decimal.NewFromInt(int64(papers)).Mul(rate).Round(2)
	final = base.Add(incentive).Round(2)
	return base, final
}

// ComputeTotals counts staff entries, papers and distinct dates of nc.
// Calculations without evaluation days keep their explicit totals.
func ComputeTotals(nc NewCalculation) Totals {
	if len(nc.EvaluationDays) == 0 {
		return Totals{Staff: nc.TotalStaff, Papers: nc.TotalPapers}
	}
	var t Totals
	for _, day := range nc.EvaluationDays {
		for _, se := range day.StaffEvaluations {
			t.Staff++
			t.Papers += se.PapersEvaluated
		}
	}
	t.Days = len(nc.Dates())
	return t
}
