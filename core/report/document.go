// Package report composes examiner reports into a renderer-independent document tree
// and renders them as PDF or XLSX.
package report

import "time"

type Kind string

const (
	KindSingle  Kind = "single"
	KindHistory Kind = "history"
	KindAll     Kind = "all"
	KindCustom  Kind = "custom"
)

type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

type (
	Document struct {
		Kind        Kind
		Title       string
		Subtitle    string
		Filename    string
		GeneratedAt time.Time
		Letterhead  Letterhead
		Sections    []Section
	}

	Section struct {
		Title           string
		PageBreakBefore bool
		Blocks          []Block
	}

	// Block is one of *KeyValues, *Table or *Paragraph.
	Block interface {
		block()
	}

	KeyValues struct {
		Title string
		Pairs []Pair
	}

	Pair struct {
		Label string
		Value string
	}

	Table struct {
		Title   string
		Columns []Column
		Rows    []Row
		Footer  []string // totals row
		// KeepTogether asks the renderer not to split the table over two pages when it fits on one.
		KeepTogether bool
	}

	Column struct {
		Header string
		Width  float64 // relative
		Align  Align
	}

	Row struct {
		Cells  []string
		Italic bool
	}

	Paragraph struct {
		Text   string
		Italic bool
	}
)

func (*KeyValues) block() {}
func (*Table) block()     {}
func (*Paragraph) block() {}

// Tables returns every table of the document, in order.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, s := range d.Sections {
		for _, b := range s.Blocks {
			if t, ok := b.(*Table); ok {
				tables = append(tables, t)
			}
		}
	}
	return tables
}

// Section returns the first section with the given title.
func (d *Document) Section(title string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}
