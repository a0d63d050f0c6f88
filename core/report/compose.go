package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

// StaffChunkSize is the number of staff rows per kept-together table.
const StaffChunkSize = 5

// section titles
const (
	ExaminerDetailsTitle = "Examiner Details"
	SummaryTitle         = "Summary"
	CalculationsTitle    = "Calculations"
	ExaminersTitle       = "Examiners"
	NoDataTitle          = "No data found"

	EstimatedNote = "Staff details were not recorded for this calculation; the rows below are estimated from its totals."
)

// custom report sections
const (
	SectionDetails      = "details"
	SectionSummary      = "summary"
	SectionCalculations = "calculations"
	SectionBreakdown    = "breakdown"
)

var (
	AllSections = []string{SectionDetails, SectionSummary, SectionCalculations, SectionBreakdown}

	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_\-]+`)
)

type (
	Options struct {
		Letterhead Letterhead
		// MarkEstimated flags staff rows synthesised from totals.
		MarkEstimated bool
		Filename      string
		GeneratedAt   time.Time
		// Currency formats amounts; defaults to format.PDFCurrency.
		Currency func(decimal.Decimal) string
	}

	CustomOptions struct {
		Options
		Title string `json:"title"`
		// From & To bound the calculations' creation dates (inclusive); zero values are open.
		From     time.Time `json:"from"`
		To       time.Time `json:"to"`
		Sections []string  `json:"sections"`
	}

	ExaminerCalculations struct {
		Examiner     examiner.Examiner
		Calculations []calculation.Calculation
	}

	composer struct {
		opts Options
	}
)

func newComposer(opts Options) composer {
	if opts.Currency == nil {
		opts.Currency = format.PDFCurrency
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	return composer{opts: opts}
}

func (c composer) document(kind Kind, title, subtitle, filename string) *Document {
	if c.opts.Filename != "" {
		filename = c.opts.Filename
	}
	return &Document{
		Kind:        kind,
		Title:       title,
		Subtitle:    subtitle,
		Filename:    filename,
		GeneratedAt: c.opts.GeneratedAt,
		Letterhead:  c.opts.Letterhead,
	}
}

// SingleCalculation reports one calculation of the examiner.
func SingleCalculation(ex examiner.Examiner, calc calculation.Calculation, opts Options) *Document {
	c := newComposer(opts)
	doc := c.document(KindSingle, "Calculation Report", ex.Name+" ("+ex.ExaminerID+")", Filename(ex.ExaminerID))
	doc.Sections = append(doc.Sections, c.examinerDetails(ex, false))
	doc.Sections = append(doc.Sections, c.breakdown(calc, "Calculation of "+format.Date(calc.CreatedAt, format.WithYear))...)
	return doc
}

// ExaminerHistory reports all the calculations of the examiner.
func ExaminerHistory(ex examiner.Examiner, calcs []calculation.Calculation, opts Options) *Document {
	c := newComposer(opts)
	doc := c.document(KindHistory, "Examiner History Report", ex.Name+" ("+ex.ExaminerID+")", Filename(ex.ExaminerID))
	doc.Sections = c.examinerSections(ex, sorted(calcs), AllSections, false)
	return doc
}

// AllExaminers reports every examiner with their calculations.
func AllExaminers(list []ExaminerCalculations, opts Options) *Document {
	c := newComposer(opts)
	doc := c.document(KindAll, "All Examiners Report", "", Filename("All"))
	if len(list) == 0 {
		doc.Sections = []Section{{
			Title:  NoDataTitle,
			Blocks: []Block{&Paragraph{Text: "There are no examiners or calculations to report yet."}},
		}}
		return doc
	}

	var all []calculation.Calculation
	for _, ec := range list {
		all = append(all, ec.Calculations...)
	}
	summary := c.summary(all)
	summary.Pairs = append([]Pair{{Label: "Examiners", Value: format.Number(len(list))}}, summary.Pairs...)
	doc.Sections = append(doc.Sections, Section{Title: SummaryTitle, Blocks: []Block{summary, c.examinersTable(list)}})

	for _, ec := range list {
		doc.Sections = append(doc.Sections, c.examinerSections(ec.Examiner, sorted(ec.Calculations), AllSections, true)...)
	}
	return doc
}

// Custom reports the examiner's calculations within a date range, with the selected sections.
func Custom(ex examiner.Examiner, calcs []calculation.Calculation, opts CustomOptions) *Document {
	c := newComposer(opts.Options)
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Custom Report"
	}
	subtitle := ex.Name + " (" + ex.ExaminerID + ")"
	if r := dateRange(opts.From, opts.To); r != "" {
		subtitle += ", " + r
	}
	doc := c.document(KindCustom, title, subtitle, Filename(ex.ExaminerID))

	sections := opts.Sections
	if len(sections) == 0 {
		sections = AllSections
	}
	doc.Sections = c.examinerSections(ex, sorted(filterByDate(calcs, opts.From, opts.To)), sections, false)
	return doc
}

func (c composer) examinerSections(ex examiner.Examiner, calcs []calculation.Calculation, sections []string, newPage bool) []Section {
	var out []Section
	if has(sections, SectionDetails) {
		out = append(out, c.examinerDetails(ex, newPage))
		newPage = false
	}
	if has(sections, SectionSummary) {
		out = append(out, Section{Title: SummaryTitle, PageBreakBefore: newPage, Blocks: []Block{c.summary(calcs)}})
		newPage = false
	}
	if len(calcs) == 0 {
		if !has(sections, SectionCalculations) && !has(sections, SectionBreakdown) {
			return out
		}
		out = append(out, Section{
			Title:           CalculationsTitle,
			PageBreakBefore: newPage,
			Blocks:          []Block{&Paragraph{Text: "No calculations found.", Italic: true}},
		})
		return out
	}
	if has(sections, SectionCalculations) {
		out = append(out, Section{Title: CalculationsTitle, PageBreakBefore: newPage, Blocks: []Block{c.calculationsTable(calcs)}})
	}
	if has(sections, SectionBreakdown) {
		for i, calc := range calcs {
			title := "Calculation " + strconv.Itoa(i+1) + " (" + format.Date(calc.CreatedAt, format.WithYear) + ")"
			out = append(out, c.breakdown(calc, title)...)
		}
	}
	return out
}

func (c composer) examinerDetails(ex examiner.Examiner, newPage bool) Section {
	return Section{
		Title:           ExaminerDetailsTitle,
		PageBreakBefore: newPage,
		Blocks: []Block{&KeyValues{Pairs: []Pair{
			{Label: "Name", Value: ex.Name},
			{Label: "Examiner ID", Value: ex.ExaminerID},
			{Label: "Department", Value: orNA(ex.Department)},
			{Label: "Position", Value: orNA(ex.Position)},
			{Label: "Email", Value: orNA(ex.Email)},
			{Label: "Phone", Value: orNA(ex.Phone)},
		}}},
	}
}

func (c composer) summary(calcs []calculation.Calculation) *KeyValues {
	var papers, staff, days int
	base, incentive, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, calc := range calcs {
		papers += calc.TotalPapers
		staff += calc.TotalStaff
		days += calc.EvaluationDaysCount()
		base = base.Add(calc.BaseSalary)
		incentive = incentive.Add(calc.Incentive)
		total = total.Add(calc.FinalAmount)
	}
	return &KeyValues{Pairs: []Pair{
		{Label: "Calculations", Value: format.Number(len(calcs))},
		{Label: "Evaluation Days", Value: format.Number(days)},
		{Label: "Staff Entries", Value: format.Number(staff)},
		{Label: "Papers Evaluated", Value: format.Number(papers)},
		{Label: "Base Salary", Value: c.opts.Currency(base)},
		{Label: "Incentives", Value: c.opts.Currency(incentive)},
		{Label: "Total Amount", Value: c.opts.Currency(total)},
	}}
}

func (c composer) examinersTable(list []ExaminerCalculations) *Table {
	t := &Table{
		Title: ExaminersTitle,
		Columns: []Column{
			{Header: "Name", Width: 3},
			{Header: "Examiner ID", Width: 2},
			{Header: "Department", Width: 2.5},
			{Header: "Calculations", Width: 1.5, Align: AlignRight},
			{Header: "Papers", Width: 1.5, Align: AlignRight},
			{Header: "Total Amount", Width: 2, Align: AlignRight},
		},
	}
	for _, ec := range list {
		var papers int
		amount := decimal.Zero
		for _, calc := range ec.Calculations {
			papers += calc.TotalPapers
			amount = amount.Add(calc.FinalAmount)
		}
		t.Rows = append(t.Rows, Row{Cells: []string{
			ec.Examiner.Name,
			ec.Examiner.ExaminerID,
			orNA(ec.Examiner.Department),
			format.Number(len(ec.Calculations)),
			format.Number(papers),
			c.opts.Currency(amount),
		}})
	}
	return t
}

func (c composer) calculationsTable(calcs []calculation.Calculation) *Table {
	t := &Table{
		Columns: []Column{
			{Header: "#", Width: 0.6, Align: AlignCenter},
			{Header: "Date", Width: 2},
			{Header: "Reference", Width: 1.8},
			{Header: "Days", Width: 1, Align: AlignRight},
			{Header: "Staff", Width: 1, Align: AlignRight},
			{Header: "Papers", Width: 1.2, Align: AlignRight},
			{Header: "Base", Width: 2, Align: AlignRight},
			{Header: "Incentive", Width: 1.8, Align: AlignRight},
			{Header: "Total", Width: 2, Align: AlignRight},
		},
	}
	var days, staff, papers int
	base, incentive, total := decimal.Zero, decimal.Zero, decimal.Zero
	for i, calc := range calcs {
		ref := calc.CustomID
		if ref == "" {
			ref = "-"
		}
		t.Rows = append(t.Rows, Row{Cells: []string{
			strconv.Itoa(i + 1),
			format.Date(calc.CreatedAt, format.WithYear),
			ref,
			format.Number(calc.EvaluationDaysCount()),
			format.Number(calc.TotalStaff),
			format.Number(calc.TotalPapers),
			c.opts.Currency(calc.BaseSalary),
			c.opts.Currency(calc.Incentive),
			c.opts.Currency(calc.FinalAmount),
		}})
		days += calc.EvaluationDaysCount()
		staff += calc.TotalStaff
		papers += calc.TotalPapers
		base = base.Add(calc.BaseSalary)
		incentive = incentive.Add(calc.Incentive)
		total = total.Add(calc.FinalAmount)
	}
	t.Footer = []string{
		"", "Total", "",
		format.Number(days), format.Number(staff), format.Number(papers),
		c.opts.Currency(base), c.opts.Currency(incentive), c.opts.Currency(total),
	}
	return t
}

// breakdown details one calculation: its salary, its per-date summary and its staff tables.
func (c composer) breakdown(calc calculation.Calculation, title string) []Section {
	data := calculation.ExtractEvaluationData(calc)

	salary := &KeyValues{Pairs: []Pair{
		{Label: "Evaluation Days", Value: format.Number(calc.EvaluationDaysCount())},
		{Label: "Staff Entries", Value: format.Number(calc.TotalStaff)},
		{Label: "Papers Evaluated", Value: format.Number(calc.TotalPapers)},
		{Label: "Rate per Paper", Value: c.opts.Currency(calc.EvaluationRate)},
		{Label: "Base Salary", Value: c.opts.Currency(calc.BaseSalary)},
		{Label: "Incentive", Value: c.opts.Currency(calc.Incentive)},
		{Label: "Final Amount", Value: c.opts.Currency(calc.FinalAmount)},
	}}
	if calc.CustomID != "" {
		salary.Pairs = append([]Pair{{Label: "Reference", Value: calc.CustomID}}, salary.Pairs...)
	}

	section := Section{Title: title, Blocks: []Block{salary}}
	if len(data.Summary) == 0 {
		section.Blocks = append(section.Blocks, &Paragraph{Text: "No evaluation details recorded.", Italic: true})
		return []Section{section}
	}

	estimated := data.Synthetic && c.opts.MarkEstimated
	if estimated {
		section.Blocks = append(section.Blocks, &Paragraph{Text: EstimatedNote, Italic: true})
	}

	summary := &Table{
		Title: "Evaluation Summary",
		Columns: []Column{
			{Header: "Date", Width: 3},
			{Header: "Staff", Width: 1.5, Align: AlignRight},
			{Header: "Papers", Width: 1.5, Align: AlignRight},
		},
	}
	var staffTotal, papersTotal int
	for _, day := range data.Summary {
		summary.Rows = append(summary.Rows, Row{
			Cells:  []string{format.Date(day.Date, format.FullDate), format.Number(day.StaffCount), format.Number(day.TotalPapers)},
			Italic: estimated,
		})
		staffTotal += day.StaffCount
		papersTotal += day.TotalPapers
	}
	summary.Footer = []string{"Total", format.Number(staffTotal), format.Number(papersTotal)}
	section.Blocks = append(section.Blocks, summary)

	section.Blocks = append(section.Blocks, staffTables(data, estimated)...)
	return []Section{section}
}

// staffTables groups the staff rows by date, in chunks of StaffChunkSize kept together.
func staffTables(data calculation.EvaluationData, estimated bool) []Block {
	byDate := make(map[string][]calculation.StaffDetail)
	for _, sd := range data.StaffDetails {
		key := format.DateKey(sd.Date)
		byDate[key] = append(byDate[key], sd)
	}

	var blocks []Block
	for _, day := range data.Summary {
		details := byDate[format.DateKey(day.Date)]
		for start := 0; start < len(details); start += StaffChunkSize {
			end := start + StaffChunkSize
			if end > len(details) {
				end = len(details)
			}
			title := "Staff Evaluations, " + format.Date(day.Date, format.WithYear)
			if start > 0 {
				title += " (continued)"
			}
			t := &Table{
				Title: title,
				Columns: []Column{
					{Header: "S.No", Width: 1, Align: AlignCenter},
					{Header: "Staff Name", Width: 5},
					{Header: "Papers", Width: 2, Align: AlignRight},
				},
				KeepTogether: true,
			}
			for i, sd := range details[start:end] {
				t.Rows = append(t.Rows, Row{
					Cells:  []string{strconv.Itoa(start + i + 1), sd.StaffName, format.Number(sd.PapersEvaluated)},
					Italic: estimated && sd.Synthetic,
				})
			}
			blocks = append(blocks, t)
		}
	}
	return blocks
}

// Filename is the default report filename for an examiner code.
func Filename(code string) string {
	return "Examiner_Report_" + safeCode(code) + ".pdf"
}

// ExportFilename is the default XLSX history filename for an examiner code.
func ExportFilename(code string) string {
	return "Examiner_History_" + safeCode(code) + ".xlsx"
}

func safeCode(code string) string {
	code = strings.Trim(unsafeFilenameChars.ReplaceAllString(code, "_"), "_")
	if code == "" {
		code = "Report"
	}
	return code
}

func sorted(calcs []calculation.Calculation) []calculation.Calculation {
	out := append([]calculation.Calculation(nil), calcs...)
	calculation.SortByCreatedAt(out)
	return out
}

func filterByDate(calcs []calculation.Calculation, from, to time.Time) []calculation.Calculation {
	out := make([]calculation.Calculation, 0, len(calcs))
	for _, calc := range calcs {
		if !from.IsZero() && calc.CreatedAt.Before(startOfDay(from)) {
			continue
		}
		if !to.IsZero() && !calc.CreatedAt.Before(startOfDay(to).AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, calc)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dateRange(from, to time.Time) string {
	switch {
	case from.IsZero() && to.IsZero():
		return ""
	case from.IsZero():
		return "until " + format.Date(to, format.WithYear)
	case to.IsZero():
		return "from " + format.Date(from, format.WithYear)
	}
	return format.Date(from, format.WithYear) + " to " + format.Date(to, format.WithYear)
}

func has(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return format.NotAvailable
	}
	return s
}
