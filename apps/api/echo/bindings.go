package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads the `ordering` query param, keeping the allowed fields only.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	ord.Orderings = core.ParseOrdering(ctx.QueryParam(orderingParam), allowed...)
}

func bindExaminerFilter(ctx echo.Context) *examiner.QueryFilter {
	filter := &examiner.QueryFilter{
		Search:     strings.TrimSpace(ctx.QueryParam("search")),
		Department: strings.TrimSpace(ctx.QueryParam("department")),
	}
	if *filter == (examiner.QueryFilter{}) {
		return nil
	}
	return filter
}

// bindCropBox reads the x, y, width & height form values; nil when none is given.
func bindCropBox(ctx echo.Context) (*examiner.CropBox, error) {
	var box examiner.CropBox
	var found bool
	for _, fld := range []struct {
		name string
		dst  *int
	}{{"x", &box.X}, {"y", &box.Y}, {"width", &box.Width}, {"height", &box.Height}} {
		val := strings.TrimSpace(ctx.FormValue(fld.name))
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return nil, core.NewValidationError(nil, core.FieldError{Field: fld.name, Error: "enter a positive whole number"})
		}
		*fld.dst = n
		found = true
	}
	if !found {
		return nil, nil
	}
	return &box, nil
}

// formDecimal parses the decimal form value; nil when empty.
func formDecimal(ctx echo.Context, name string) (*decimal.Decimal, error) {
	val := strings.TrimSpace(ctx.FormValue(name))
	if val == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: name, Error: "enter a valid number"})
	}
	return &d, nil
}

func queryFlag(ctx echo.Context, name string) bool {
	ok, _ := strconv.ParseBool(ctx.QueryParam(name))
	return ok
}

// bindDate parses an optional date; the zero time when blank.
func bindDate(val, field string) (time.Time, error) {
	if strings.TrimSpace(val) == "" {
		return time.Time{}, nil
	}
	t, ok := format.ParseDate(val)
	if !ok {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: field, Error: "enter a valid date"})
	}
	return t, nil
}
