package calculation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

type (
	Calculation struct {
		ID              string           `json:"id"`
		ExaminerID      string           `json:"examiner_id"`
		CustomID        string           `json:"custom_id,omitempty"`
		TotalStaff      int              `json:"total_staff"`
		TotalPapers     int              `json:"total_papers"`
		TotalDays       int              `json:"total_days"`
		EvaluationRate  decimal.Decimal  `json:"evaluation_rate"`
		BaseSalary      decimal.Decimal  `json:"base_salary"`
		Incentive       decimal.Decimal  `json:"incentive"`
		FinalAmount     decimal.Decimal  `json:"final_amount"`
		CreatedAt       time.Time        `json:"created_at"`
		CalculationDays []CalculationDay `json:"calculation_days"`
		Legacy          bool             `json:"legacy,omitempty"` // decoded from a legacy document
	}

	CalculationDay struct {
		ID             string          `json:"id"`
		EvaluationDays []EvaluationDay `json:"evaluation_days"`
	}

	// EvaluationDay holds what was evaluated on a given date.
	EvaluationDay struct {
		ID               string            `json:"id"`
		Date             time.Time         `json:"date"`
		StaffEvaluations []StaffEvaluation `json:"staff_evaluations"`
	}

	StaffEvaluation struct {
		ID              string `json:"id"`
		StaffName       string `json:"staff_name"`
		PapersEvaluated int    `json:"papers_evaluated"`
	}

	NewCalculation struct {
		ExaminerID     string             `json:"examiner_id" validate:"required,uuid"`
		CustomID       string             `json:"custom_id" validate:"omitempty,max=64"`
		EvaluationRate *decimal.Decimal   `json:"evaluation_rate"`
		Incentive      decimal.Decimal    `json:"incentive"`
		EvaluationDays []NewEvaluationDay `json:"evaluation_days" validate:"omitempty,dive"`

		// quick calculations carry totals only
		TotalStaff  int `json:"total_staff" validate:"min=0"`
		TotalPapers int `json:"total_papers" validate:"min=0"`
	}

	NewEvaluationDay struct {
		Date             string               `json:"date" validate:"required,datetime=2006-01-02"`
		StaffEvaluations []NewStaffEvaluation `json:"staff_evaluations" validate:"required,min=1,dive"`
	}

	NewStaffEvaluation struct {
		StaffName       string `json:"staff_name" validate:"required,notblank,max=100"`
		PapersEvaluated int    `json:"papers_evaluated" validate:"min=0"`
	}

	// LegacyDocument is a stored calculation in its historical JSON shape.
	LegacyDocument struct {
		ID         string    `json:"id"`
		ExaminerID string    `json:"examiner_id"`
		Document   []byte    `json:"-"`
		CreatedAt  time.Time `json:"created_at"`
	}
)

// EvaluationDays returns the evaluation days of all calculation days, in order.
func (c Calculation) EvaluationDays() []EvaluationDay {
	var days []EvaluationDay
	for _, cd := range c.CalculationDays {
		days = append(days, cd.EvaluationDays...)
	}
	return days
}

// EvaluationDaysCount is the number of evaluation days displayed for c.
// Sources by priority: TotalDays, calculation days, evaluation days, then TotalStaff.
func (c Calculation) EvaluationDaysCount() int {
	if c.TotalDays > 0 {
		return c.TotalDays
	}
	if n := len(c.CalculationDays); n > 0 {
		return n
	}
	if n := len(c.EvaluationDays()); n > 0 {
		return n
	}
	if c.TotalStaff > 0 {
		return c.TotalStaff
	}
	return 0
}

// HasBreakdown reports whether c carries per-staff details.
func (c Calculation) HasBreakdown() bool {
	for _, day := range c.EvaluationDays() {
		if len(day.StaffEvaluations) > 0 {
			return true
		}
	}
	return false
}

// SortByCreatedAt sorts calcs chronologically (oldest first).
func SortByCreatedAt(calcs []Calculation) {
	sort.SliceStable(calcs, func(i, j int) bool { return calcs[i].CreatedAt.Before(calcs[j].CreatedAt) })
}

// Dates returns the distinct dates of the evaluation days, sorted.
func (nc NewCalculation) Dates() []time.Time {
	seen := make(map[string]bool, len(nc.EvaluationDays))
	dates := make([]time.Time, 0, len(nc.EvaluationDays))
	for _, day := range nc.EvaluationDays {
		t, ok := format.ParseDate(day.Date)
		if !ok || seen[format.DateKey(t)] {
			continue
		}
		seen[format.DateKey(t)] = true
		dates = append(dates, t)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
