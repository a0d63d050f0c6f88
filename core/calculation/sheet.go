package calculation

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

var (
	ErrUnsupportedSheet = errors.New("unsupported spreadsheet format (expected .xlsx or .xls)")
	ErrEmptySheet       = errors.New("the spreadsheet has no evaluation rows")

	sheetFileField = "file"
)

// ParseSheet reads evaluation rows (date, staff name, papers) from the first sheet of an .xlsx or .xls file.
// A leading header row is skipped. Rows sharing a date are grouped into one evaluation day.
func ParseSheet(r io.ReadSeeker, filename string) ([]NewEvaluationDay, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r)
	default:
		return nil, core.NewValidationError(ErrUnsupportedSheet, core.FieldError{Field: sheetFileField, Error: ErrUnsupportedSheet.Error()})
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "opening xlsx"), core.FieldError{Field: sheetFileField, Error: "cannot read the spreadsheet"})
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, "reading xlsx rows")
	}
	return rows, nil
}

func readXLS(r io.ReadSeeker) (rows [][]string, err error) {
	// the xls reader panics on some malformed files
	defer func() {
		if rec := recover(); rec != nil {
			rows = nil
			err = core.NewValidationError(errors.Errorf("reading xls: %v", rec), core.FieldError{Field: sheetFileField, Error: "cannot read the spreadsheet"})
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err == nil && wb == nil {
		err = errors.New("no workbook stream")
	}
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "opening xls"), core.FieldError{Field: sheetFileField, Error: "cannot read the spreadsheet"})
	}
	if wb.NumSheets() == 0 {
		return nil, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, 3)
		for c := row.FirstCol(); c <= row.LastCol() && len(cells) < 3; c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]NewEvaluationDay, error) {
	var days []NewEvaluationDay
	index := make(map[string]int)
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if len(row) < 3 {
			return nil, rowError(i, "expected date, staff name and papers")
		}

		papers, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(row[2], ".0")))
		if err != nil || papers < 0 {
			if len(days) == 0 && len(index) == 0 && i == firstNonBlank(rows) {
				continue // header
			}
			return nil, rowError(i, "papers must be a positive whole number")
		}
		date, ok := parseSheetDate(row[0])
		if !ok {
			return nil, rowError(i, "invalid date")
		}
		name := strings.TrimSpace(row[1])
		if name == "" {
			return nil, rowError(i, "staff name is required")
		}

		key := format.DateKey(date)
		pos, ok := index[key]
		if !ok {
			days = append(days, NewEvaluationDay{Date: key})
			pos = len(days) - 1
			index[key] = pos
		}
		days[pos].StaffEvaluations = append(days[pos].StaffEvaluations, NewStaffEvaluation{
			StaffName:       name,
			PapersEvaluated: papers,
		})
	}
	if len(days) == 0 {
		return nil, core.NewValidationError(ErrEmptySheet, core.FieldError{Field: sheetFileField, Error: ErrEmptySheet.Error()})
	}
	return days, nil
}

// parseSheetDate accepts text dates and spreadsheet date serials.
func parseSheetDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, ok := format.ParseDate(s); ok {
		return t, true
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func firstNonBlank(rows [][]string) int {
	for i, row := range rows {
		if !isBlankRow(row) {
			return i
		}
	}
	return -1
}

func rowError(i int, msg string) error {
	msg = "row " + strconv.Itoa(i+1) + ": " + msg
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: sheetFileField, Error: msg})
}
