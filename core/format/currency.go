// Package format renders amounts and dates the way they appear in the UI and in reports.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	RupeeSymbol    = "₹"
	PDFRupeeSymbol = "Rs. " // core PDF fonts have no ₹ glyph
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Currency formats d with Indian digit grouping (eg. ₹1,23,456.50).
// Whole amounts have no fraction digits, others exactly two.
func Currency(d decimal.Decimal) string {
	return currency(d, RupeeSymbol)
}

// CurrencyPtr is Currency with nil treated as zero.
func CurrencyPtr(d *decimal.Decimal) string {
	if d == nil {
		return Currency(decimal.Zero)
	}
	return Currency(*d)
}

// PDFCurrency is Currency with a symbol every PDF core font can draw.
func PDFCurrency(d decimal.Decimal) string {
	return currency(d, PDFRupeeSymbol)
}

// Number formats n with Indian digit grouping.
func Number(n int) string {
	return printer.Sprint(number.Decimal(n))
}

func currency(d decimal.Decimal, symbol string) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	if d.IsZero() {
		return symbol + "0"
	}

	var amount string
	if d.Equal(d.Truncate(0)) {
		amount = printer.Sprint(number.Decimal(d.IntPart(), number.MaxFractionDigits(0)))
	} else {
		amount = printer.Sprint(number.Decimal(
			d.InexactFloat64(),
			number.MinFractionDigits(2),
			number.MaxFractionDigits(2),
		))
	}
	return sign + symbol + amount
}
