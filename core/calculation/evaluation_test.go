package calculation

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributePapers(t *testing.T) {
	for staff := 1; staff <= 12; staff++ {
		for papers := 0; papers <= 150; papers += 7 {
			shares := DistributePapers(papers, staff)
			require.Len(t, shares, staff)
			sum := 0
			for i, s := range shares {
				sum += s
				if i > 0 {
					assert.LessOrEqual(t, s, shares[i-1])
				}
				assert.LessOrEqual(t, shares[0]-s, 1)
			}
			assert.Equal(t, papers, sum, "papers=%d staff=%d", papers, staff)
		}
	}
	assert.Nil(t, DistributePapers(10, 0))
	assert.Equal(t, []int{4, 3, 3}, DistributePapers(10, 3))
}

func TestExtractEvaluationData(t *testing.T) {
	d1 := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("breakdown", func(t *testing.T) {
		calc := Calculation{
			TotalStaff:  3,
			TotalPapers: 60,
			CalculationDays: []CalculationDay{
				{EvaluationDays: []EvaluationDay{{Date: d1, StaffEvaluations: []StaffEvaluation{{StaffName: "A", PapersEvaluated: 10}}}}},
				{EvaluationDays: []EvaluationDay{{Date: d2, StaffEvaluations: []StaffEvaluation{
					{StaffName: "B", PapersEvaluated: 20}, {StaffName: "C", PapersEvaluated: 30},
				}}}},
			},
		}
		data := ExtractEvaluationData(calc)
		assert.False(t, data.Synthetic)
		assert.Len(t, data.EvaluationDays, 2)
		require.Len(t, data.StaffDetails, 3)
		assert.Equal(t, StaffDetail{Date: d1, StaffName: "A", PapersEvaluated: 10}, data.StaffDetails[0])
		assert.Equal(t, []DaySummary{
			{Date: d2, StaffCount: 2, TotalPapers: 50},
			{Date: d1, StaffCount: 1, TotalPapers: 10},
		}, data.Summary)
	})

	t.Run("totals only", func(t *testing.T) {
		calc := Calculation{ID: "c1", TotalStaff: 10, TotalPapers: 100, CreatedAt: created}
		data := ExtractEvaluationData(calc)
		assert.True(t, data.Synthetic)
		require.Len(t, data.EvaluationDays, 1)
		require.Len(t, data.StaffDetails, 10)
		sum := 0
		for i, sd := range data.StaffDetails {
			assert.True(t, sd.Synthetic)
			assert.Equal(t, created, sd.Date)
			assert.Equal(t, "Staff "+strconv.Itoa(i+1), sd.StaffName)
			sum += sd.PapersEvaluated
		}
		assert.Equal(t, 100, sum)
		assert.Equal(t, []DaySummary{{Date: created, StaffCount: 10, TotalPapers: 100}}, data.Summary)
	})

	t.Run("nothing", func(t *testing.T) {
		for _, calc := range []Calculation{{}, {TotalStaff: 3}, {TotalPapers: 30}} {
			data := ExtractEvaluationData(calc)
			assert.False(t, data.Synthetic)
			assert.Empty(t, data.EvaluationDays)
			assert.Empty(t, data.StaffDetails)
			assert.Empty(t, data.Summary)
			assert.NotNil(t, data.StaffDetails)
		}
	})

	t.Run("days without staff", func(t *testing.T) {
		calc := Calculation{
			TotalStaff: 2, TotalPapers: 4, CreatedAt: created,
			CalculationDays: []CalculationDay{{EvaluationDays: []EvaluationDay{{Date: d1}}}},
		}
		data := ExtractEvaluationData(calc)
		assert.True(t, data.Synthetic)
		assert.Len(t, data.StaffDetails, 2)
	})
}
