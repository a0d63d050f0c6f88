package report

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

const (
	HistorySheet = "History"
	StaffSheet   = "Staff Evaluations"
)

var (
	historyHeaders = []interface{}{
		"Examiner", "Examiner ID", "Date", "Reference", "Days", "Staff", "Papers",
		"Rate", "Base Salary", "Incentive", "Final Amount",
	}
	historyWidths = []float64{28, 14, 14, 14, 8, 8, 10, 10, 14, 12, 14}

	staffHeaders = []interface{}{
		"Examiner", "Examiner ID", "Calculation Date", "Evaluation Date", "Staff Name", "Papers", "Estimated",
	}
	staffWidths = []float64{28, 14, 16, 16, 28, 10, 10}
)

// ExportXLSX writes the calculations of every examiner as a workbook with a history sheet
// and a sheet of staff evaluations.
func ExportXLSX(w io.Writer, list []ExaminerCalculations, opts Options) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing workbook")
		}
	}()

	if err = f.SetDocProps(&excelize.DocProperties{
		Title:   "Examiner Calculations",
		Creator: creator,
	}); err != nil {
		return errors.Wrap(err, "setting workbook properties")
	}
	if err = f.SetSheetName("Sheet1", HistorySheet); err != nil {
		return errors.Wrap(err, "naming history sheet")
	}
	if _, err = f.NewSheet(StaffSheet); err != nil {
		return errors.Wrap(err, "creating staff sheet")
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	history := [][]interface{}{historyHeaders}
	staff := [][]interface{}{staffHeaders}
	for _, ec := range list {
		for _, calc := range sorted(ec.Calculations) {
			history = append(history, []interface{}{
				ec.Examiner.Name,
				ec.Examiner.ExaminerID,
				calc.CreatedAt,
				calc.CustomID,
				calc.EvaluationDaysCount(),
				calc.TotalStaff,
				calc.TotalPapers,
				calc.EvaluationRate.InexactFloat64(),
				calc.BaseSalary.InexactFloat64(),
				calc.Incentive.InexactFloat64(),
				calc.FinalAmount.InexactFloat64(),
			})

			data := calculation.ExtractEvaluationData(calc)
			for _, sd := range data.StaffDetails {
				estimated := ""
				if sd.Synthetic && opts.MarkEstimated {
					estimated = "yes"
				}
				staff = append(staff, []interface{}{
					ec.Examiner.Name,
					ec.Examiner.ExaminerID,
					calc.CreatedAt,
					format.DateKey(sd.Date),
					sd.StaffName,
					sd.PapersEvaluated,
					estimated,
				})
			}
		}
	}

	if err = writeSheet(f, HistorySheet, history, historyWidths, styles, map[int]int{2: styles.date, 7: styles.money, 8: styles.money, 9: styles.money, 10: styles.money}); err != nil {
		return err
	}
	if err = writeSheet(f, StaffSheet, staff, staffWidths, styles, map[int]int{2: styles.date}); err != nil {
		return err
	}

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

type sheetStyles struct {
	header int
	date   int
	money  int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2563EB"}},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return s, errors.Wrap(err, "creating header style")
	}
	dateFormat := "dd-mm-yyyy"
	s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return s, errors.Wrap(err, "creating date style")
	}
	moneyFormat := "#,##,##0.00"
	s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return s, errors.Wrap(err, "creating money style")
	}
	return s, nil
}

// writeSheet writes rows (the first one being the header) and styles the given columns.
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, widths []float64, styles sheetStyles, columnStyles map[int]int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "addressing row")
		}
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet, i+1)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(widths), 1)
	if err != nil {
		return errors.Wrap(err, "addressing header")
	}
	if err = f.SetCellStyle(sheet, "A1", last, styles.header); err != nil {
		return errors.Wrap(err, "styling header")
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.Wrap(err, "naming column")
		}
		if err = f.SetColWidth(sheet, col, col, w); err != nil {
			return errors.Wrap(err, "sizing column")
		}
		if style, ok := columnStyles[i]; ok && len(rows) > 1 {
			if err = f.SetCellStyle(sheet, col+"2", col+strconv.Itoa(len(rows)), style); err != nil {
				return errors.Wrap(err, "styling column")
			}
		}
	}

	if err = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return errors.Wrap(err, "freezing header")
	}
	if len(rows) > 1 {
		last, err = excelize.CoordinatesToCellName(len(widths), len(rows))
		if err != nil {
			return errors.Wrap(err, "addressing table")
		}
		if err = f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return errors.Wrap(err, "adding filter")
		}
	}
	return nil
}
