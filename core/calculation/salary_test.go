package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeSalary(t *testing.T) {
	tests := []struct {
		name      string
		papers    int
		rate      string
		incentive string
		wantBase  string
		wantFinal string
	}{
		{name: "default rate", papers: 115, rate: "20", incentive: "0", wantBase: "2300", wantFinal: "2300"},
		{name: "with incentive", papers: 100, rate: "20", incentive: "500", wantBase: "2000", wantFinal: "2500"},
		{name: "fractional rate", papers: 3, rate: "12.335", incentive: "0.5", wantBase: "37.01", wantFinal: "37.51"},
		{name: "no papers", papers: 0, rate: "20", incentive: "100", wantBase: "0", wantFinal: "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, final := ComputeSalary(tt.papers, decimal.RequireFromString(tt.rate), decimal.RequireFromString(tt.incentive))
			assert.True(t, base.Equal(decimal.RequireFromString(tt.wantBase)), "base = %s", base)
			assert.True(t, final.Equal(decimal.RequireFromString(tt.wantFinal)), "final = %s", final)
		})
	}
}

func TestComputeTotals(t *testing.T) {
	nc := NewCalculation{
		EvaluationDays: []NewEvaluationDay{
			{Date: "2024-01-10", StaffEvaluations: []NewStaffEvaluation{{StaffName: "A", PapersEvaluated: 10}, {StaffName: "B", PapersEvaluated: 5}}},
			{Date: "2024-01-11", StaffEvaluations: []NewStaffEvaluation{{StaffName: "A", PapersEvaluated: 7}}},
			// same date entered twice counts once
			{Date: "2024-01-10", StaffEvaluations: []NewStaffEvaluation{{StaffName: "C", PapersEvaluated: 3}}},
		},
		TotalStaff:  99,
		TotalPapers: 99,
	}
	assert.Equal(t, Totals{Staff: 4, Papers: 25, Days: 2}, ComputeTotals(nc))

	quick := NewCalculation{TotalStaff: 10, TotalPapers: 100}
	assert.Equal(t, Totals{Staff: 10, Papers: 100}, ComputeTotals(quick))
}

func TestEvaluationDaysCount(t *testing.T) {
	day := EvaluationDay{Date: time.Now()}
	tests := []struct {
		name string
		calc Calculation
		want int
	}{
		{name: "total days", calc: Calculation{TotalDays: 4, TotalStaff: 9, CalculationDays: []CalculationDay{{}}}, want: 4},
		{name: "calculation days", calc: Calculation{TotalStaff: 9, CalculationDays: []CalculationDay{{}, {}}}, want: 2},
		{name: "staff fallback", calc: Calculation{TotalStaff: 5}, want: 5},
		{name: "nothing", calc: Calculation{}, want: 0},
		{name: "nested days", calc: Calculation{CalculationDays: []CalculationDay{{EvaluationDays: []EvaluationDay{day, day, day}}}}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.calc.EvaluationDaysCount())
		})
	}
}
