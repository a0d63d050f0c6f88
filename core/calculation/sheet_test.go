package calculation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

func newWorkbook(t *testing.T, rows ...[]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func fieldError(t *testing.T, err error) core.FieldError {
	t.Helper()
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "got %T: %v", err, err)
	require.Len(t, vErr.Fields, 1)
	return vErr.Fields[0]
}

func TestParseSheet(t *testing.T) {
	r := newWorkbook(t,
		[]interface{}{"Date", "Staff Name", "Papers"},
		[]interface{}{"2024-01-10", "Kumar", 30},
		[]interface{}{},
		[]interface{}{45301, " Devi ", 20}, // 2024-01-10 as a date serial
		[]interface{}{"11/01/2024", "Selvi", 15},
	)

	days, err := ParseSheet(r, "Evaluations.XLSX")
	require.NoError(t, err)
	assert.Equal(t, []NewEvaluationDay{
		{Date: "2024-01-10", StaffEvaluations: []NewStaffEvaluation{{StaffName: "Kumar", PapersEvaluated: 30}, {StaffName: "Devi", PapersEvaluated: 20}}},
		{Date: "2024-01-11", StaffEvaluations: []NewStaffEvaluation{{StaffName: "Selvi", PapersEvaluated: 15}}},
	}, days)
}

func TestParseSheetWithoutHeader(t *testing.T) {
	days, err := ParseSheet(newWorkbook(t, []interface{}{"2024-03-01", "Kumar", 5}), "e.xlsx")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2024-03-01", days[0].Date)
}

func TestParseSheetErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		rows     [][]interface{}
		wantMsg  string
	}{
		{name: "unsupported", filename: "e.csv", wantMsg: ErrUnsupportedSheet.Error()},
		{name: "empty", filename: "e.xlsx", wantMsg: ErrEmptySheet.Error()},
		{name: "header only", filename: "e.xlsx", rows: [][]interface{}{{"Date", "Staff", "Papers"}}, wantMsg: ErrEmptySheet.Error()},
		{
			name: "bad papers", filename: "e.xlsx",
			rows:    [][]interface{}{{"Date", "Staff", "Papers"}, {"2024-01-10", "Kumar", "many"}},
			wantMsg: "row 2: papers must be a positive whole number",
		},
		{
			name: "negative papers", filename: "e.xlsx",
			rows:    [][]interface{}{{"2024-01-10", "Kumar", 3}, {"2024-01-10", "Devi", -3}},
			wantMsg: "row 2: papers must be a positive whole number",
		},
		{
			name: "bad date", filename: "e.xlsx",
			rows:    [][]interface{}{{"someday", "Kumar", 3}},
			wantMsg: "row 1: invalid date",
		},
		{
			name: "missing name", filename: "e.xlsx",
			rows:    [][]interface{}{{"2024-01-10", "  ", 3}},
			wantMsg: "row 1: staff name is required",
		},
		{
			name: "missing column", filename: "e.xlsx",
			rows:    [][]interface{}{{"2024-01-10", "Kumar"}},
			wantMsg: "row 1: expected date, staff name and papers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSheet(newWorkbook(t, tt.rows...), tt.filename)
			fe := fieldError(t, err)
			assert.Equal(t, "file", fe.Field)
			assert.Equal(t, tt.wantMsg, fe.Error)
		})
	}
}

func TestParseSheetUnreadable(t *testing.T) {
	for _, name := range []string{"e.xlsx", "e.xls"} {
		_, err := ParseSheet(bytes.NewReader([]byte("definitely not a spreadsheet")), name)
		fe := fieldError(t, err)
		assert.Equal(t, "cannot read the spreadsheet", fe.Error, name)
	}
}
