// Package boiledrepos holds the read-only reporting queries, run with sqlboiler's raw query binding.
package boiledrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
)

const aggregateQuery = `
SELECT COUNT(DISTINCT examiner_id)         AS examiners,
       COUNT(*)                            AS calculations,
       COALESCE(SUM(total_papers), 0)      AS total_papers,
       COALESCE(SUM(total_staff), 0)       AS total_staff,
       COALESCE(SUM(final_amount), 0)      AS total_amount,
       MAX(created_at)                     AS last_calculation_at
FROM calculations`

type aggregateRow struct {
	Examiners         int             `boil:"examiners"`
	Calculations      int             `boil:"calculations"`
	TotalPapers       int             `boil:"total_papers"`
	TotalStaff        int             `boil:"total_staff"`
	TotalAmount       decimal.Decimal `boil:"total_amount"`
	LastCalculationAt null.Time       `boil:"last_calculation_at"`
}

type aggregateRepository struct {
	exec core.DBExecutor
}

var _ calculation.AggregateRepository = (*aggregateRepository)(nil) // interface compliance check

func NewAggregateRepository(exec core.DBExecutor) *aggregateRepository {
	return &aggregateRepository{exec: exec}
}

func (repo aggregateRepository) Aggregate(ctx context.Context, examinerID string) (calculation.Aggregate, error) {
	var row aggregateRow
	q := queries.Raw(aggregateQuery)
	if examinerID != "" {
		if _, err := uuid.Parse(examinerID); err != nil {
			return calculation.Aggregate{TotalAmount: decimal.Zero}, nil
		}
		q = queries.Raw(aggregateQuery+` WHERE examiner_id = $1`, examinerID)
	}
	if err := q.Bind(ctx, repo.exec, &row); err != nil {
		return calculation.Aggregate{}, errors.Wrap(err, "aggregating calculations")
	}

	return calculation.Aggregate{
		Examiners:         row.Examiners,
		Calculations:      row.Calculations,
		TotalPapers:       row.TotalPapers,
		TotalStaff:        row.TotalStaff,
		TotalAmount:       row.TotalAmount,
		LastCalculationAt: row.LastCalculationAt.Ptr(),
	}, nil
}
