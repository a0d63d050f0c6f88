package report

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func staffDay(d string, entries ...interface{}) calculation.EvaluationDay {
	day := calculation.EvaluationDay{ID: "day-" + d, Date: date(d)}
	for i := 0; i+1 < len(entries); i += 2 {
		day.StaffEvaluations = append(day.StaffEvaluations, calculation.StaffEvaluation{
			ID:              d + "-" + strconv.Itoa(i),
			StaffName:       entries[i].(string),
			PapersEvaluated: entries[i+1].(int),
		})
	}
	return day
}

func newCalc(id string, createdAt time.Time, staff, papers int, incentive int64, days ...calculation.EvaluationDay) calculation.Calculation {
	rate := calculation.DefaultEvaluationRate
	base, final := calculation.ComputeSalary(papers, rate, decimal.NewFromInt(incentive))
	calc := calculation.Calculation{
		ID:             id,
		ExaminerID:     "examiner-1",
		TotalStaff:     staff,
		TotalPapers:    papers,
		EvaluationRate: rate,
		BaseSalary:     base,
		Incentive:      decimal.NewFromInt(incentive),
		FinalAmount:    final,
		CreatedAt:      createdAt,
	}
	for _, d := range days {
		calc.CalculationDays = append(calc.CalculationDays, calculation.CalculationDay{
			ID:             "cd-" + d.ID,
			EvaluationDays: []calculation.EvaluationDay{d},
		})
	}
	if len(days) > 0 {
		calc.TotalDays = len(days)
	}
	return calc
}

func historyFixture() (examiner.Examiner, []calculation.Calculation) {
	ex := examiner.Examiner{
		ID:         "examiner-1",
		Name:       "Anita Raman",
		ExaminerID: "EX-101",
		Department: "Physics",
		Email:      "anita@example.com",
	}
	withDays := newCalc("calc-1", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), 4, 115, 0,
		staffDay("2024-01-10", "Kumar", 30, "Devi", 20),
		staffDay("2024-01-11", "Kumar", 25),
		staffDay("2024-01-12", "Selvi", 40),
	)
	totalsOnly := newCalc("calc-2", time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), 10, 100, 500)
	// newest first to check the chronological ordering
	return ex, []calculation.Calculation{totalsOnly, withDays}
}

func staffTablesOf(doc *Document) []*Table {
	var tables []*Table
	for _, t := range doc.Tables() {
		if strings.HasPrefix(t.Title, "Staff Evaluations") {
			tables = append(tables, t)
		}
	}
	return tables
}

func TestExaminerHistory(t *testing.T) {
	ex, calcs := historyFixture()
	opts := Options{MarkEstimated: true, GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	doc := ExaminerHistory(ex, calcs, opts)

	assert.Equal(t, KindHistory, doc.Kind)
	assert.Equal(t, "Examiner_Report_EX-101.pdf", doc.Filename)

	section, ok := doc.Section(CalculationsTitle)
	require.True(t, ok)
	require.Len(t, section.Blocks, 1)
	table := section.Blocks[0].(*Table)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "15 Jan 2024", table.Rows[0].Cells[1])
	assert.Equal(t, "1 Feb 2024", table.Rows[1].Cells[1])
	assert.Equal(t, format.PDFCurrency(decimal.NewFromInt(4800)), table.Footer[len(table.Footer)-1])
	assert.Equal(t, "215", table.Footer[5])

	staff := staffTablesOf(doc)
	// three dated tables for the first calculation and two chunks of five for the second
	require.Len(t, staff, 5)
	assert.Equal(t, "Staff Evaluations, 10 Jan 2024", staff[0].Title)
	assert.Len(t, staff[0].Rows, 2)
	assert.False(t, staff[0].Rows[0].Italic)

	synthetic := staff[3:]
	assert.Equal(t, "Staff Evaluations, 1 Feb 2024", synthetic[0].Title)
	assert.Equal(t, "Staff Evaluations, 1 Feb 2024 (continued)", synthetic[1].Title)
	var rows, papers int
	for _, tbl := range synthetic {
		assert.True(t, tbl.KeepTogether)
		for _, row := range tbl.Rows {
			assert.True(t, row.Italic)
			n, err := strconv.Atoi(row.Cells[2])
			require.NoError(t, err)
			papers += n
			rows++
		}
	}
	assert.Equal(t, 10, rows)
	assert.Equal(t, 100, papers)
	assert.Equal(t, "Staff 1", synthetic[0].Rows[0].Cells[1])

	var notes int
	for _, s := range doc.Sections {
		for _, b := range s.Blocks {
			if p, ok := b.(*Paragraph); ok && p.Text == EstimatedNote {
				notes++
			}
		}
	}
	assert.Equal(t, 1, notes)
}

func TestExaminerHistoryUnmarked(t *testing.T) {
	ex, calcs := historyFixture()
	doc := ExaminerHistory(ex, calcs, Options{})

	for _, tbl := range staffTablesOf(doc) {
		for _, row := range tbl.Rows {
			assert.False(t, row.Italic)
		}
	}
	for _, s := range doc.Sections {
		for _, b := range s.Blocks {
			if p, ok := b.(*Paragraph); ok {
				assert.NotEqual(t, EstimatedNote, p.Text)
			}
		}
	}
}

func TestStaffChunks(t *testing.T) {
	var entries []interface{}
	for i := 1; i <= 12; i++ {
		entries = append(entries, "Staff member "+strconv.Itoa(i), i)
	}
	calc := newCalc("calc-1", time.Now(), 12, 78, 0, staffDay("2024-05-02", entries...))
	doc := SingleCalculation(examiner.Examiner{Name: "A", ExaminerID: "EX-1"}, calc, Options{})

	staff := staffTablesOf(doc)
	require.Len(t, staff, 3)
	assert.Len(t, staff[0].Rows, 5)
	assert.Len(t, staff[1].Rows, 5)
	assert.Len(t, staff[2].Rows, 2)
	assert.Equal(t, "11", staff[2].Rows[0].Cells[0])
	assert.Equal(t, KindSingle, doc.Kind)
}

func TestAllExaminers(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		doc := AllExaminers(nil, Options{})
		require.Len(t, doc.Sections, 1)
		assert.Equal(t, NoDataTitle, doc.Sections[0].Title)
		assert.Equal(t, "Examiner_Report_All.pdf", doc.Filename)
	})

	t.Run("examiners", func(t *testing.T) {
		ex, calcs := historyFixture()
		other := examiner.Examiner{ID: "examiner-2", Name: "Bala", ExaminerID: "EX-102"}
		doc := AllExaminers([]ExaminerCalculations{
			{Examiner: ex, Calculations: calcs},
			{Examiner: other},
		}, Options{Filename: "all.pdf"})

		assert.Equal(t, "all.pdf", doc.Filename)
		summary, ok := doc.Section(SummaryTitle)
		require.True(t, ok)
		kv := summary.Blocks[0].(*KeyValues)
		assert.Equal(t, Pair{Label: "Examiners", Value: "2"}, kv.Pairs[0])
		examiners := summary.Blocks[1].(*Table)
		require.Len(t, examiners.Rows, 2)
		assert.Equal(t, "0", examiners.Rows[1].Cells[3])

		var pageBreaks int
		for _, s := range doc.Sections {
			if s.PageBreakBefore {
				pageBreaks++
			}
		}
		assert.Equal(t, 2, pageBreaks)
	})
}

func TestCustom(t *testing.T) {
	ex, calcs := historyFixture()
	doc := Custom(ex, calcs, CustomOptions{
		Title:    "  ",
		From:     date("2024-01-20"),
		To:       date("2024-02-01"),
		Sections: []string{SectionSummary, SectionCalculations},
	})

	assert.Equal(t, "Custom Report", doc.Title)
	assert.Contains(t, doc.Subtitle, "20 Jan 2024 to 1 Feb 2024")
	_, ok := doc.Section(ExaminerDetailsTitle)
	assert.False(t, ok)
	section, ok := doc.Section(CalculationsTitle)
	require.True(t, ok)
	assert.Len(t, section.Blocks[0].(*Table).Rows, 1)
	assert.Empty(t, staffTablesOf(doc))

	doc = Custom(ex, calcs, CustomOptions{Title: "Q1", To: date("2023-12-31")})
	assert.Equal(t, "Q1", doc.Title)
	section, ok = doc.Section(CalculationsTitle)
	require.True(t, ok)
	assert.Equal(t, "No calculations found.", section.Blocks[0].(*Paragraph).Text)

	// no calculations in range and no calculation sections selected
	doc = Custom(ex, calcs, CustomOptions{To: date("2023-12-31"), Sections: []string{SectionDetails, SectionSummary}})
	_, ok = doc.Section(CalculationsTitle)
	assert.False(t, ok)
	_, ok = doc.Section(SummaryTitle)
	assert.True(t, ok)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"EX-101", "Examiner_Report_EX-101.pdf"},
		{"EX/01 A", "Examiner_Report_EX_01_A.pdf"},
		{"", "Examiner_Report_Report.pdf"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Filename(tc.code), tc.code)
	}
}
