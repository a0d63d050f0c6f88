package calculation

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
)

type (
	Dashboard struct {
		TotalExaminers    int               `json:"total_examiners"`
		TotalCalculations int               `json:"total_calculations"`
		TotalPapers       int               `json:"total_papers"`
		TotalStaff        int               `json:"total_staff"`
		TotalAmount       decimal.Decimal   `json:"total_amount"`
		Examiners         []ExaminerSummary `json:"examiners"`
	}

	ExaminerSummary struct {
		Examiner examiner.Examiner `json:"examiner"`
		Stats    examiner.Stats    `json:"stats"`
	}
)

// Dashboard returns the overall totals and every examiner's statistics.
func (svc *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	examiners, err := svc.examiners.QueryExaminers(ctx, nil, []core.DBOrdering{{Field: "name", Ascending: true}})
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying examiners")
	}
	agg, err := svc.aggregates.Aggregate(ctx, "")
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "aggregating calculations")
	}
	legacy, err := svc.legacyCalculations(ctx, "")
	if err != nil {
		return Dashboard{}, err
	}
	agg = addLegacy(agg, legacy)

	d := Dashboard{
		TotalExaminers:    len(examiners),
		TotalCalculations: agg.Calculations,
		TotalPapers:       agg.TotalPapers,
		TotalStaff:        agg.TotalStaff,
		TotalAmount:       agg.TotalAmount,
		Examiners:         make([]ExaminerSummary, 0, len(examiners)),
	}
	for _, ex := range examiners {
		s, err := svc.Stats(ctx, ex.ID)
		if err != nil {
			return Dashboard{}, errors.Wrapf(err, "getting stats of examiner %s", ex.ID)
		}
		d.Examiners = append(d.Examiners, ExaminerSummary{Examiner: ex, Stats: s})
	}
	return d, nil
}
