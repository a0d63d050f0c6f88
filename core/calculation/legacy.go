package calculation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

// historical field names, in lookup order
var (
	staffNameKeys        = []string{"staff_name", "staffName", "name", "evaluator_name", "evaluatorName", "staff"}
	papersKeys           = []string{"papers_evaluated", "papersEvaluated", "papers", "paper_count", "paperCount", "count"}
	dateKeys             = []string{"evaluation_date", "evaluationDate", "date", "day"}
	calculationDaysKeys  = []string{"calculation_days", "calculationDays"}
	evaluationDaysKeys   = []string{"evaluation_days", "evaluationDays"}
	staffEvaluationsKeys = []string{"staff_evaluations", "staffEvaluations", "staff"}
	totalStaffKeys       = []string{"total_staff", "totalStaff"}
	totalPapersKeys      = []string{"total_papers", "totalPapers"}
	totalDaysKeys        = []string{"total_days", "totalDays"}
	daysKeys             = []string{"days"}
	baseSalaryKeys       = []string{"base_salary", "baseSalary"}
	incentiveKeys        = []string{"incentive", "incentive_amount", "incentiveAmount"}
	finalAmountKeys      = []string{"final_amount", "finalAmount", "total_amount"}
	rateKeys             = []string{"evaluation_rate", "evaluationRate", "rate"}
	createdAtKeys        = []string{"created_at", "createdAt"}
	customIDKeys         = []string{"custom_id", "customId"}
	examinerIDKeys       = []string{"examiner_id", "examinerId"}
	examinerNameKeys     = []string{"examiner_name", "examinerName", "examiner"}
	idKeys               = []string{"id", "_id"}
)

var ErrInvalidDocument = errors.New("legacy document must be a JSON object")

// DecodeLegacy decodes a legacy calculation document.
// Only a malformed or non-object document is an error; missing or odd fields degrade to zero values.
func DecodeLegacy(raw []byte) (Calculation, error) {
	doc, err := unmarshalDocument(raw)
	if err != nil {
		return Calculation{}, err
	}
	return NormalizeLegacy(doc), nil
}

func unmarshalDocument(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return nil, ErrInvalidDocument
	}
	return doc, nil
}

// NormalizeLegacy maps a decoded legacy document onto a Calculation.
func NormalizeLegacy(doc map[string]interface{}) Calculation {
	calc := Calculation{
		ID:          stringOf(lookup(doc, idKeys)),
		ExaminerID:  stringOf(lookup(doc, examinerIDKeys)),
		CustomID:    stringOf(lookup(doc, customIDKeys)),
		TotalStaff:  intOf(lookup(doc, totalStaffKeys)),
		TotalPapers: intOf(lookup(doc, totalPapersKeys)),
		BaseSalary:  decimalOf(lookup(doc, baseSalaryKeys)),
		Incentive:   decimalOf(lookup(doc, incentiveKeys)),
		FinalAmount: decimalOf(lookup(doc, finalAmountKeys)),
		CreatedAt:   timeOf(lookup(doc, createdAtKeys)),
		Legacy:      true,
	}

	calc.EvaluationRate = decimalOf(lookup(doc, rateKeys))
	if calc.EvaluationRate.IsZero() {
		calc.EvaluationRate = DefaultEvaluationRate
	}

	calcDays := listOf(lookup(doc, calculationDaysKeys))
	evalDays := listOf(lookup(doc, evaluationDaysKeys))
	for _, item := range calcDays {
		if m, ok := item.(map[string]interface{}); ok {
			calc.CalculationDays = append(calc.CalculationDays, normalizeCalculationDay(m))
		}
	}
	if len(calc.CalculationDays) == 0 && len(evalDays) > 0 {
		cd := CalculationDay{}
		for _, item := range evalDays {
			if m, ok := item.(map[string]interface{}); ok {
				cd.EvaluationDays = append(cd.EvaluationDays, normalizeEvaluationDay(m))
			}
		}
		if len(cd.EvaluationDays) > 0 {
			calc.CalculationDays = []CalculationDay{cd}
		}
	}

	// totals missing from the document are derived from the breakdown
	if calc.TotalStaff == 0 || calc.TotalPapers == 0 {
		var staff, papers int
		for _, day := range calc.EvaluationDays() {
			for _, se := range day.StaffEvaluations {
				staff++
				papers += se.PapersEvaluated
			}
		}
		if calc.TotalStaff == 0 {
			calc.TotalStaff = staff
		}
		if calc.TotalPapers == 0 {
			calc.TotalPapers = papers
		}
	}

	calc.TotalDays = legacyDaysCount(doc, calcDays, evalDays, calc.TotalStaff)

	if calc.BaseSalary.IsZero() && calc.TotalPapers > 0 {
		calc.BaseSalary, _ = ComputeSalary(calc.TotalPapers, calc.EvaluationRate, calc.Incentive)
	}
	if calc.FinalAmount.IsZero() {
		calc.FinalAmount = calc.BaseSalary.Add(calc.Incentive)
	}
	return calc
}

// legacyDaysCount resolves the evaluation days count of a raw document.
// Sources by priority: total_days, calculation_days, evaluation_days, days, then total_staff.
func legacyDaysCount(doc map[string]interface{}, calcDays, evalDays []interface{}, totalStaff int) int {
	if n := intOf(lookup(doc, totalDaysKeys)); n > 0 {
		return n
	}
	if len(calcDays) > 0 {
		return len(calcDays)
	}
	if len(evalDays) > 0 {
		return len(evalDays)
	}
	days := lookup(doc, daysKeys)
	if l, ok := days.([]interface{}); ok && len(l) > 0 {
		return len(l)
	}
	if n := intOf(days); n > 0 {
		return n
	}
	if totalStaff > 0 {
		return totalStaff
	}
	return 0
}

func normalizeCalculationDay(m map[string]interface{}) CalculationDay {
	cd := CalculationDay{ID: stringOf(lookup(m, idKeys))}
	evalDays := listOf(lookup(m, evaluationDaysKeys))
	if len(evalDays) == 0 {
		// older documents store the evaluation day itself
		if lookup(m, dateKeys) != nil || lookup(m, staffEvaluationsKeys) != nil {
			cd.EvaluationDays = []EvaluationDay{normalizeEvaluationDay(m)}
		}
		return cd
	}
	for _, item := range evalDays {
		if em, ok := item.(map[string]interface{}); ok {
			cd.EvaluationDays = append(cd.EvaluationDays, normalizeEvaluationDay(em))
		}
	}
	return cd
}

func normalizeEvaluationDay(m map[string]interface{}) EvaluationDay {
	day := EvaluationDay{
		ID:   stringOf(lookup(m, idKeys)),
		Date: timeOf(lookup(m, dateKeys)),
	}
	for _, item := range listOf(lookup(m, staffEvaluationsKeys)) {
		if sm, ok := item.(map[string]interface{}); ok {
			day.StaffEvaluations = append(day.StaffEvaluations, StaffEvaluation{
				ID:              stringOf(lookup(sm, idKeys)),
				StaffName:       stringOf(lookup(sm, staffNameKeys)),
				PapersEvaluated: intOf(lookup(sm, papersKeys)),
			})
		}
	}
	return day
}

// LegacyExaminerName returns the examiner name a legacy document refers to, if any.
func LegacyExaminerName(raw []byte) string {
	doc, err := unmarshalDocument(raw)
	if err != nil {
		return ""
	}
	v := lookup(doc, examinerNameKeys)
	if m, ok := v.(map[string]interface{}); ok {
		v = m["name"]
	}
	return strings.TrimSpace(stringOf(v))
}

// lookup returns the value of the first key present in m.
func lookup(m map[string]interface{}, keys []string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func listOf(v interface{}) []interface{} {
	l, _ := v.([]interface{})
	return l
}

func stringOf(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case nil:
		return ""
	case map[string]interface{}, []interface{}:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// intOf returns 0 for values outside the int32 range; LegacyRangeWarnings reports them.
func intOf(v interface{}) int {
	d := decimalOf(v)
	if d.IsZero() || outOfRange(d) {
		return 0
	}
	return int(d.IntPart())
}

func outOfRange(d decimal.Decimal) bool {
	f := d.InexactFloat64()
	return f > math.MaxInt32 || f < math.MinInt32
}

// LegacyRangeWarnings lists the count fields of a legacy document whose values do not fit
// an int32. Such values decode as 0.
func LegacyRangeWarnings(raw []byte) []string {
	doc, err := unmarshalDocument(raw)
	if err != nil {
		return nil
	}
	var countKeys []string
	for _, keys := range [][]string{totalStaffKeys, totalPapersKeys, totalDaysKeys, daysKeys, papersKeys} {
		countKeys = append(countKeys, keys...)
	}

	var warnings []string
	var walk func(path string, v interface{})
	walk = func(path string, v interface{}) {
		switch val := v.(type) {
		case map[string]interface{}:
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				p := k
				if path != "" {
					p = path + "." + k
				}
				if contains(countKeys, k) {
					if _, isList := val[k].([]interface{}); !isList && outOfRange(decimalOf(val[k])) {
						warnings = append(warnings, fmt.Sprintf("%s out of range: %v", p, val[k]))
						continue
					}
				}
				walk(p, val[k])
			}
		case []interface{}:
			for i, item := range val {
				walk(fmt.Sprintf("%s[%d]", path, i), item)
			}
		}
	}
	walk("", doc)
	return warnings
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func decimalOf(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(val.String()); err == nil {
			return d
		}
	case string:
		s := strings.NewReplacer(",", "", "₹", "", "Rs.", "").Replace(strings.TrimSpace(val))
		if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	}
	return decimal.Zero
}

func timeOf(v interface{}) time.Time {
	switch val := v.(type) {
	case string:
		if t, ok := format.ParseDate(val); ok {
			return t
		}
	case time.Time:
		return val
	}
	return time.Time{}
}
