package calculation

import (
	"sort"
	"strconv"
	"time"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

type (
	// EvaluationData holds the three views of a calculation used by reports.
	EvaluationData struct {
		EvaluationDays []EvaluationDay `json:"evaluation_days"`
		StaffDetails   []StaffDetail   `json:"staff_details"`
		Summary        []DaySummary    `json:"summary"`
		Synthetic      bool            `json:"synthetic"`
	}

	StaffDetail struct {
		Date            time.Time `json:"date"`
		StaffName       string    `json:"staff_name"`
		PapersEvaluated int       `json:"papers_evaluated"`
		Synthetic       bool      `json:"synthetic,omitempty"`
	}

	DaySummary struct {
		Date        time.Time `json:"date"`
		StaffCount  int       `json:"staff_count"`
		TotalPapers int       `json:"total_papers"`
	}
)

// ExtractEvaluationData flattens the calculation days of calc.
// Calculations carrying only totals get one estimated day, dated at calc.CreatedAt,
// with the papers spread evenly over "Staff 1..N" (the remainder goes to the first staff).
func ExtractEvaluationData(calc Calculation) EvaluationData {
	data := EvaluationData{
		EvaluationDays: calc.EvaluationDays(),
	}
	if !calc.HasBreakdown() && calc.TotalStaff > 0 && calc.TotalPapers > 0 {
		data.EvaluationDays = []EvaluationDay{syntheticDay(calc)}
		data.Synthetic = true
	}
	if data.EvaluationDays == nil {
		data.EvaluationDays = []EvaluationDay{}
	}

	summaries := make(map[string]*DaySummary)
	data.StaffDetails = make([]StaffDetail, 0)
	for _, day := range data.EvaluationDays {
		key := format.DateKey(day.Date)
		sum, ok := summaries[key]
		if !ok {
			sum = &DaySummary{Date: day.Date}
			summaries[key] = sum
		}
		for _, se := range day.StaffEvaluations {
			data.StaffDetails = append(data.StaffDetails, StaffDetail{
				Date:            day.Date,
				StaffName:       se.StaffName,
				PapersEvaluated: se.PapersEvaluated,
				Synthetic:       data.Synthetic,
			})
			sum.StaffCount++
			sum.TotalPapers += se.PapersEvaluated
		}
	}

	data.Summary = make([]DaySummary, 0, len(summaries))
	for _, sum := range summaries {
		data.Summary = append(data.Summary, *sum)
	}
	sort.Slice(data.Summary, func(i, j int) bool { return data.Summary[i].Date.Before(data.Summary[j].Date) })
	return data
}

// DistributePapers splits papers over staff entries: each gets papers/staff,
// and the first papers%staff entries get one more.
func DistributePapers(papers, staff int) []int {
	if staff <= 0 {
		return nil
	}
	shares := make([]int, staff)
	share, rem := papers/staff, papers%staff
	for i := range shares {
		shares[i] = share
		if i < rem {
			shares[i]++
		}
	}
	return shares
}

func syntheticDay(calc Calculation) EvaluationDay {
	shares := DistributePapers(calc.TotalPapers, calc.TotalStaff)
	day := EvaluationDay{
		ID:               calc.ID + "-estimated",
		Date:             calc.CreatedAt,
		StaffEvaluations: make([]StaffEvaluation, 0, len(shares)),
	}
	for i, papers := range shares {
		day.StaffEvaluations = append(day.StaffEvaluations, StaffEvaluation{
			ID:              day.ID + "-" + strconv.Itoa(i+1),
			StaffName:       "Staff " + strconv.Itoa(i+1),
			PapersEvaluated: papers,
		})
	}
	return day
}
