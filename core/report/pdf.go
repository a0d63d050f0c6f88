package report

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

const (
	pageMargin  = 15.0
	topMargin   = 20.0
	lineHeight  = 5.0
	cellPadding = 1.5
	labelWidth  = 45.0
	creator     = "ExaminerPro"
)

var (
	textColor   = RGB{31, 41, 55}
	mutedColor  = RGB{107, 114, 128}
	borderColor = RGB{209, 213, 219}
	footerFill  = RGB{229, 231, 235}
)

type pdfRenderer struct {
	ctx    context.Context
	pdf    *fpdf.Fpdf
	tr     func(string) string
	doc    *Document
	color  RGB
	left   float64
	width  float64 // usable page width
	top    float64
	bottom float64 // y past which nothing is drawn
}

// RenderPDF writes the document as an A4 PDF.
// Rendering stops between rows and blocks once ctx is done, returning the wrapped ctx error.
func RenderPDF(ctx context.Context, w io.Writer, doc *Document) error {
	pdf, err := renderPDF(ctx, doc)
	if err != nil {
		return errors.Wrap(err, "rendering pdf")
	}
	if err = pdf.Output(w); err != nil {
		return errors.Wrap(err, "rendering pdf")
	}
	return nil
}

func renderPDF(ctx context.Context, doc *Document) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, topMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AliasNbPages("{nb}")
	pdf.SetTitle(doc.Title, true)
	pdf.SetSubject(doc.Subtitle, true)
	pdf.SetAuthor(doc.Letterhead.Institution, true)
	pdf.SetCreator(creator, true)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}

	pageW, pageH := pdf.GetPageSize()
	r := &pdfRenderer{
		ctx:    ctx,
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		doc:    doc,
		color:  doc.Letterhead.Color(doc.Kind),
		left:   pageMargin,
		width:  pageW - 2*pageMargin,
		top:    topMargin,
		bottom: pageH - pageMargin - 5,
	}
	pdf.SetHeaderFuncMode(r.header, true)
	pdf.SetFooterFunc(r.footer)

	pdf.AddPage()
	r.letterhead()
	r.titleBar()
	for _, s := range doc.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.section(s)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pdf, nil
}

func (r *pdfRenderer) done() bool {
	return r.ctx.Err() != nil
}

func (r *pdfRenderer) header() {
	if r.pdf.PageNo() == 1 {
		return
	}
	r.pdf.SetXY(r.left, 8)
	r.font("", 8, mutedColor)
	label := r.doc.Title
	if r.doc.Subtitle != "" {
		label += " | " + r.doc.Subtitle
	}
	r.pdf.CellFormat(r.width, 4, r.tr(label), "", 0, "L", false, 0, "")
	r.stroke(r.color, 0.4)
	r.pdf.Line(r.left, 13, r.left+r.width, 13)
}

func (r *pdfRenderer) footer() {
	_, pageH := r.pdf.GetPageSize()
	y := pageH - pageMargin
	r.stroke(borderColor, 0.2)
	r.pdf.Line(r.left, y, r.left+r.width, y)
	r.pdf.SetXY(r.left, y+1)
	r.font("", 8, mutedColor)
	left := r.doc.Letterhead.Footer
	if !r.doc.GeneratedAt.IsZero() {
		if left != "" {
			left += " | "
		}
		left += "Generated on " + format.Date(r.doc.GeneratedAt, format.Full)
	}
	r.pdf.CellFormat(r.width/2, 4, r.tr(left), "", 0, "L", false, 0, "")
	r.pdf.CellFormat(r.width/2, 4, "Page "+strconv.Itoa(r.pdf.PageNo())+" of {nb}", "", 0, "R", false, 0, "")
}

func (r *pdfRenderer) letterhead() {
	lh := r.doc.Letterhead
	if lh.Institution == "" {
		return
	}
	r.font("B", 15, textColor)
	r.pdf.CellFormat(r.width, 7, r.tr(lh.Institution), "", 1, "C", false, 0, "")
	if lh.Department != "" {
		r.font("", 11, textColor)
		r.pdf.CellFormat(r.width, 5.5, r.tr(lh.Department), "", 1, "C", false, 0, "")
	}
	r.font("", 8.5, mutedColor)
	for _, line := range lh.Address {
		r.pdf.CellFormat(r.width, 4, r.tr(line), "", 1, "C", false, 0, "")
	}
	if lh.Title != "" {
		r.font("B", 9, mutedColor)
		r.pdf.CellFormat(r.width, 5, r.tr(lh.Title), "", 1, "C", false, 0, "")
	}
	y := r.pdf.GetY() + 2
	r.stroke(r.color, 0.6)
	r.pdf.Line(r.left, y, r.left+r.width, y)
	r.pdf.SetXY(r.left, y+4)
}

func (r *pdfRenderer) titleBar() {
	y := r.pdf.GetY()
	r.fill(r.color)
	r.pdf.Rect(r.left, y, r.width, 11, "F")
	r.pdf.SetXY(r.left+3, y)
	r.font("B", 13, RGB{255, 255, 255})
	r.pdf.CellFormat(r.width-6, 11, r.tr(r.doc.Title), "", 0, "L", false, 0, "")
	r.pdf.SetXY(r.left, y+12)
	if r.doc.Subtitle != "" {
		r.font("B", 10, textColor)
		r.pdf.CellFormat(r.width, 5.5, r.tr(r.doc.Subtitle), "", 1, "L", false, 0, "")
	}
	if !r.doc.GeneratedAt.IsZero() {
		r.font("", 8.5, mutedColor)
		r.pdf.CellFormat(r.width, 4.5, r.tr("Generated on "+format.Date(r.doc.GeneratedAt, format.Full)), "", 1, "L", false, 0, "")
	}
	r.pdf.Ln(3)
}

func (r *pdfRenderer) section(s Section) {
	if s.PageBreakBefore && r.pdf.GetY() > r.top+1 {
		r.pdf.AddPage()
	}
	// keep the heading with the start of its content
	r.ensure(8 + 3*lineHeight)
	r.font("B", 11.5, r.color)
	r.pdf.CellFormat(r.width, 7, r.tr(s.Title), "", 1, "L", false, 0, "")
	r.stroke(r.color, 0.3)
	y := r.pdf.GetY()
	r.pdf.Line(r.left, y, r.left+r.width, y)
	r.pdf.Ln(2)

	for _, b := range s.Blocks {
		if r.done() {
			return
		}
		switch b := b.(type) {
		case *KeyValues:
			r.keyValues(b)
		case *Table:
			r.table(b)
		case *Paragraph:
			r.paragraph(b)
		}
		r.pdf.Ln(3)
	}
	r.pdf.Ln(2)
}

func (r *pdfRenderer) keyValues(kv *KeyValues) {
	widths := []float64{labelWidth, r.width - labelWidth}
	heights := make([]float64, len(kv.Pairs))
	lines := make([][][]string, len(kv.Pairs))
	total := 0.0
	if kv.Title != "" {
		total += 6
	}
	for i, p := range kv.Pairs {
		r.font("B", 9, textColor)
		label := r.wrap(p.Label, widths[0]-2*cellPadding)
		r.font("", 9, textColor)
		value := r.wrap(p.Value, widths[1]-2*cellPadding)
		lines[i] = [][]string{label, value}
		heights[i] = rowHeight(lines[i])
		total += heights[i]
	}
	r.keepTogether(total)
	if kv.Title != "" {
		r.blockTitle(kv.Title)
	}

	for i := range kv.Pairs {
		r.ensure(heights[i])
		y := r.pdf.GetY()
		r.stroke(borderColor, 0.2)
		r.fill(lighten(r.color, 0.9))
		r.pdf.Rect(r.left, y, widths[0], heights[i], "DF")
		r.pdf.Rect(r.left+widths[0], y, widths[1], heights[i], "D")
		r.font("B", 9, textColor)
		r.cellLines(r.left, y, widths[0], lines[i][0], AlignLeft)
		r.font("", 9, textColor)
		r.cellLines(r.left+widths[0], y, widths[1], lines[i][1], AlignLeft)
		r.pdf.SetXY(r.left, y+heights[i])
	}
}

func (r *pdfRenderer) table(t *Table) {
	widths := r.columnWidths(t.Columns)
	aligns := make([]Align, len(t.Columns))
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		aligns[i] = c.Align
		headers[i] = c.Header
	}

	r.font("B", 8.5, textColor)
	headerLines := r.rowLines(headers, widths)
	headerH := rowHeight(headerLines)

	rowLines := make([][][]string, len(t.Rows))
	rowHeights := make([]float64, len(t.Rows))
	total := headerH
	if t.Title != "" {
		total += 6
	}
	for i, row := range t.Rows {
		style := ""
		if row.Italic {
			style = "I"
		}
		r.font(style, 8.5, textColor)
		rowLines[i] = r.rowLines(row.Cells, widths)
		rowHeights[i] = rowHeight(rowLines[i])
		total += rowHeights[i]
	}
	var footerLines [][]string
	var footerH float64
	if len(t.Footer) > 0 {
		r.font("B", 8.5, textColor)
		footerLines = r.rowLines(t.Footer, widths)
		footerH = rowHeight(footerLines)
		total += footerH
	}

	first := headerH
	if len(rowHeights) > 0 {
		first += rowHeights[0]
	}
	if t.Title != "" {
		first += 6
	}
	if t.KeepTogether {
		r.keepTogether(total)
	}
	r.ensure(first)
	if t.Title != "" {
		r.blockTitle(t.Title)
	}

	drawHeader := func() {
		r.font("B", 8.5, RGB{255, 255, 255})
		r.fill(r.color)
		r.stroke(r.color, 0.2)
		r.drawRow(widths, aligns, headerLines, headerH, true)
	}
	drawHeader()

	for i, row := range t.Rows {
		if r.done() {
			return
		}
		if r.pdf.GetY()+rowHeights[i] > r.bottom {
			r.pdf.AddPage()
			drawHeader()
		}
		style := ""
		if row.Italic {
			style = "I"
		}
		r.font(style, 8.5, textColor)
		r.stroke(borderColor, 0.2)
		r.fill(lighten(r.color, 0.94))
		r.drawRow(widths, aligns, rowLines[i], rowHeights[i], i%2 == 1)
	}

	if footerLines != nil {
		if r.pdf.GetY()+footerH > r.bottom {
			r.pdf.AddPage()
			drawHeader()
		}
		r.font("B", 8.5, textColor)
		r.stroke(borderColor, 0.2)
		r.fill(footerFill)
		r.drawRow(widths, aligns, footerLines, footerH, true)
	}
}

func (r *pdfRenderer) paragraph(p *Paragraph) {
	style := ""
	if p.Italic {
		style = "I"
	}
	r.font(style, 9.5, textColor)
	for _, line := range r.wrap(p.Text, r.width) {
		r.ensure(lineHeight)
		r.pdf.CellFormat(r.width, lineHeight, line, "", 1, "L", false, 0, "")
	}
}

func (r *pdfRenderer) blockTitle(title string) {
	r.font("B", 9.5, textColor)
	r.pdf.CellFormat(r.width, 6, r.tr(title), "", 1, "L", false, 0, "")
}

// ensure starts a new page unless h fits below the current position.
func (r *pdfRenderer) ensure(h float64) {
	if r.pdf.GetY()+h > r.bottom {
		r.pdf.AddPage()
	}
}

// keepTogether moves a block of height h to the next page when it would otherwise be split
// and fits on a fresh page.
func (r *pdfRenderer) keepTogether(h float64) {
	if h <= r.bottom-r.top {
		r.ensure(h)
	}
}

func (r *pdfRenderer) columnWidths(cols []Column) []float64 {
	var sum float64
	for _, c := range cols {
		sum += weight(c)
	}
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = r.width * weight(c) / sum
	}
	return widths
}

func (r *pdfRenderer) rowLines(cells []string, widths []float64) [][]string {
	lines := make([][]string, len(widths))
	for i := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		lines[i] = r.wrap(cell, widths[i]-2*cellPadding)
	}
	return lines
}

func (r *pdfRenderer) drawRow(widths []float64, aligns []Align, lines [][]string, h float64, fill bool) {
	style := "D"
	if fill {
		style = "DF"
	}
	x, y := r.left, r.pdf.GetY()
	for i, w := range widths {
		r.pdf.Rect(x, y, w, h, style)
		r.cellLines(x, y, w, lines[i], aligns[i])
		x += w
	}
	r.pdf.SetXY(r.left, y+h)
}

func (r *pdfRenderer) cellLines(x, y, w float64, lines []string, align Align) {
	if align == "" {
		align = AlignLeft
	}
	for k, line := range lines {
		r.pdf.SetXY(x+cellPadding, y+cellPadding+float64(k)*lineHeight)
		r.pdf.CellFormat(w-2*cellPadding, lineHeight, line, "", 0, string(align), false, 0, "")
	}
}

// wrap translates s to the page encoding and breaks it into lines no wider than w.
func (r *pdfRenderer) wrap(s string, w float64) []string {
	var lines []string
	for _, para := range strings.Split(r.tr(s), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if r.pdf.GetStringWidth(candidate) <= w {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			// a single word wider than the cell is broken by characters
			for r.pdf.GetStringWidth(word) > w && len(word) > 1 {
				n := len(word) - 1
				for n > 1 && r.pdf.GetStringWidth(word[:n]) > w {
					n--
				}
				lines = append(lines, word[:n])
				word = word[n:]
			}
			line = word
		}
		lines = append(lines, line)
	}
	return lines
}

func (r *pdfRenderer) font(style string, size float64, c RGB) {
	r.pdf.SetFont("Helvetica", style, size)
	r.pdf.SetTextColor(c[0], c[1], c[2])
}

func (r *pdfRenderer) fill(c RGB) {
	r.pdf.SetFillColor(c[0], c[1], c[2])
}

func (r *pdfRenderer) stroke(c RGB, width float64) {
	r.pdf.SetDrawColor(c[0], c[1], c[2])
	r.pdf.SetLineWidth(width)
}

func rowHeight(lines [][]string) float64 {
	n := 1
	for _, l := range lines {
		if len(l) > n {
			n = len(l)
		}
	}
	return float64(n)*lineHeight + 2*cellPadding
}

func weight(c Column) float64 {
	if c.Width <= 0 {
		return 1
	}
	return c.Width
}

// lighten mixes c with white; f is the share of white.
func lighten(c RGB, f float64) RGB {
	var out RGB
	for i, v := range c {
		out[i] = v + int(float64(255-v)*f)
	}
	return out
}
