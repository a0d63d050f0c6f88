package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
)

const calculationColumns = `id, examiner_id, custom_id, total_staff, total_papers, total_days,
	evaluation_rate, base_salary, incentive, final_amount, created_at`

type calculationRow struct {
	ID             string          `db:"id"`
	ExaminerID     string          `db:"examiner_id"`
	CustomID       null.String     `db:"custom_id"`
	TotalStaff     int             `db:"total_staff"`
	TotalPapers    int             `db:"total_papers"`
	TotalDays      int             `db:"total_days"`
	EvaluationRate decimal.Decimal `db:"evaluation_rate"`
	BaseSalary     decimal.Decimal `db:"base_salary"`
	Incentive      decimal.Decimal `db:"incentive"`
	FinalAmount    decimal.Decimal `db:"final_amount"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (r calculationRow) calculation() calculation.Calculation {
	return calculation.Calculation{
		ID:             r.ID,
		ExaminerID:     r.ExaminerID,
		CustomID:       r.CustomID.String,
		TotalStaff:     r.TotalStaff,
		TotalPapers:    r.TotalPapers,
		TotalDays:      r.TotalDays,
		EvaluationRate: r.EvaluationRate,
		BaseSalary:     r.BaseSalary,
		Incentive:      r.Incentive,
		FinalAmount:    r.FinalAmount,
		CreatedAt:      r.CreatedAt,
	}
}

// dayRow is one line of the calculation_days/evaluation_days/staff_evaluations join.
type dayRow struct {
	CalculationID    string      `db:"calculation_id"`
	CalculationDayID string      `db:"calculation_day_id"`
	EvaluationDayID  null.String `db:"evaluation_day_id"`
	EvaluationDate   null.Time   `db:"evaluation_date"`
	StaffID          null.String `db:"staff_id"`
	StaffName        null.String `db:"staff_name"`
	PapersEvaluated  null.Int    `db:"papers_evaluated"`
}

type documentRow struct {
	ID         string    `db:"id"`
	ExaminerID string    `db:"examiner_id"`
	Document   []byte    `db:"document"`
	CreatedAt  time.Time `db:"created_at"`
}

type calculationRepository struct {
	db *sqlx.DB
}

var _ calculation.Repository = (*calculationRepository)(nil) // interface compliance check

func NewCalculationRepository(db *sqlx.DB) *calculationRepository {
	return &calculationRepository{db: db}
}

func (repo *calculationRepository) CreateCalculation(ctx context.Context, calc calculation.Calculation) (calculation.Calculation, error) {
	if calc.CreatedAt.IsZero() {
		calc.CreatedAt = time.Now().UTC()
	}
	calc.ID = uuid.New().String()
	calc.CalculationDays = append([]calculation.CalculationDay(nil), calc.CalculationDays...)

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return calculation.Calculation{}, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO calculations (`+calculationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		calc.ID, calc.ExaminerID, null.NewString(calc.CustomID, calc.CustomID != ""),
		calc.TotalStaff, calc.TotalPapers, calc.TotalDays,
		calc.EvaluationRate, calc.BaseSalary, calc.Incentive, calc.FinalAmount, calc.CreatedAt.UTC())
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return calculation.Calculation{}, calculation.ErrUnknownExaminer
		}
		return calculation.Calculation{}, errors.Wrap(err, "inserting calculation")
	}

	for i := range calc.CalculationDays {
		cd := &calc.CalculationDays[i]
		cd.ID = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO calculation_days (id, calculation_id, position) VALUES ($1, $2, $3)`,
			cd.ID, calc.ID, i); err != nil {
			return calculation.Calculation{}, errors.Wrap(err, "inserting calculation day")
		}

		cd.EvaluationDays = append([]calculation.EvaluationDay(nil), cd.EvaluationDays...)
		for j := range cd.EvaluationDays {
			day := &cd.EvaluationDays[j]
			day.ID = uuid.New().String()
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO evaluation_days (id, calculation_day_id, evaluation_date, position) VALUES ($1, $2, $3, $4)`,
				day.ID, cd.ID, null.NewTime(day.Date, !day.Date.IsZero()), j); err != nil {
				return calculation.Calculation{}, errors.Wrap(err, "inserting evaluation day")
			}

			day.StaffEvaluations = append([]calculation.StaffEvaluation(nil), day.StaffEvaluations...)
			for k := range day.StaffEvaluations {
				se := &day.StaffEvaluations[k]
				se.ID = uuid.New().String()
				if _, err = tx.ExecContext(ctx,
					`INSERT INTO staff_evaluations (id, evaluation_day_id, staff_name, papers_evaluated, position)
					VALUES ($1, $2, $3, $4, $5)`,
					se.ID, day.ID, se.StaffName, se.PapersEvaluated, k); err != nil {
					return calculation.Calculation{}, errors.Wrap(err, "inserting staff evaluation")
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return calculation.Calculation{}, errors.Wrap(err, "committing calculation")
	}
	return calc, nil
}

func (repo *calculationRepository) QueryCalculations(ctx context.Context, examinerID string) ([]calculation.Calculation, error) {
	calcs := make([]calculation.Calculation, 0)
	if examinerID != "" && !isUUID(examinerID) {
		return calcs, nil
	}

	var rows []calculationRow
	q := `SELECT ` + calculationColumns + ` FROM calculations`
	var err error
	if examinerID != "" {
		err = repo.db.SelectContext(ctx, &rows, q+` WHERE examiner_id = $1 ORDER BY created_at, id`, examinerID)
	} else {
		err = repo.db.SelectContext(ctx, &rows, q+` ORDER BY created_at, id`)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying calculations")
	}
	for _, r := range rows {
		calcs = append(calcs, r.calculation())
	}
	if err = repo.loadDays(ctx, calcs); err != nil {
		return nil, err
	}
	return calcs, nil
}

func (repo *calculationRepository) GetCalculationByID(ctx context.Context, id string) (calculation.Calculation, error) {
	if !isUUID(id) {
		return calculation.Calculation{}, calculation.ErrNotFound
	}
	var row calculationRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+calculationColumns+` FROM calculations WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return calculation.Calculation{}, calculation.ErrNotFound
	} else if err != nil {
		return calculation.Calculation{}, errors.Wrap(err, "finding calculation")
	}
	calcs := []calculation.Calculation{row.calculation()}
	if err = repo.loadDays(ctx, calcs); err != nil {
		return calculation.Calculation{}, err
	}
	return calcs[0], nil
}

// loadDays fills the calculation days of calcs, keeping the order they were stored in.
func (repo *calculationRepository) loadDays(ctx context.Context, calcs []calculation.Calculation) error {
	if len(calcs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(calcs))
	index := make(map[string]int, len(calcs))
	for i, calc := range calcs {
		ids = append(ids, calc.ID)
		index[calc.ID] = i
	}

	var rows []dayRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT cd.calculation_id, cd.id AS calculation_day_id,
			ed.id AS evaluation_day_id, ed.evaluation_date,
			se.id AS staff_id, se.staff_name, se.papers_evaluated
		FROM calculation_days cd
		LEFT JOIN evaluation_days ed ON ed.calculation_day_id = cd.id
		LEFT JOIN staff_evaluations se ON se.evaluation_day_id = ed.id
		WHERE cd.calculation_id = ANY($1::uuid[])
		ORDER BY cd.calculation_id, cd.position, ed.position, se.position`,
		pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "querying calculation days")
	}

	for _, r := range rows {
		calc := &calcs[index[r.CalculationID]]
		if n := len(calc.CalculationDays); n == 0 || calc.CalculationDays[n-1].ID != r.CalculationDayID {
			calc.CalculationDays = append(calc.CalculationDays, calculation.CalculationDay{ID: r.CalculationDayID})
		}
		cd := &calc.CalculationDays[len(calc.CalculationDays)-1]
		if !r.EvaluationDayID.Valid {
			continue
		}
		if n := len(cd.EvaluationDays); n == 0 || cd.EvaluationDays[n-1].ID != r.EvaluationDayID.String {
			day := calculation.EvaluationDay{ID: r.EvaluationDayID.String}
			if r.EvaluationDate.Valid {
				d := r.EvaluationDate.Time
				day.Date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			}
			cd.EvaluationDays = append(cd.EvaluationDays, day)
		}
		day := &cd.EvaluationDays[len(cd.EvaluationDays)-1]
		if r.StaffID.Valid {
			day.StaffEvaluations = append(day.StaffEvaluations, calculation.StaffEvaluation{
				ID:              r.StaffID.String,
				StaffName:       r.StaffName.String,
				PapersEvaluated: r.PapersEvaluated.Int,
			})
		}
	}
	return nil
}

func (repo *calculationRepository) DeleteCalculation(ctx context.Context, id string) error {
	if !isUUID(id) {
		return calculation.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM calculations WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting calculation")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting calculation")
	} else if n == 0 {
		return calculation.ErrNotFound
	}
	return nil
}

func (repo *calculationRepository) CreateLegacyDocument(ctx context.Context, doc calculation.LegacyDocument) (calculation.LegacyDocument, error) {
	doc.ID = uuid.New().String()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO calculation_documents (id, examiner_id, document, created_at) VALUES ($1, $2, $3::jsonb, $4)`,
		doc.ID, doc.ExaminerID, string(doc.Document), doc.CreatedAt.UTC())
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return calculation.LegacyDocument{}, calculation.ErrUnknownExaminer
		}
		return calculation.LegacyDocument{}, errors.Wrap(err, "inserting legacy document")
	}
	return doc, nil
}

func (repo *calculationRepository) QueryLegacyDocuments(ctx context.Context, examinerID string) ([]calculation.LegacyDocument, error) {
	docs := make([]calculation.LegacyDocument, 0)
	if examinerID != "" && !isUUID(examinerID) {
		return docs, nil
	}

	var rows []documentRow
	q := `SELECT id, examiner_id, document::text AS document, created_at FROM calculation_documents`
	var err error
	if examinerID != "" {
		err = repo.db.SelectContext(ctx, &rows, q+` WHERE examiner_id = $1 ORDER BY created_at, id`, examinerID)
	} else {
		err = repo.db.SelectContext(ctx, &rows, q+` ORDER BY created_at, id`)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying legacy documents")
	}
	for _, r := range rows {
		docs = append(docs, calculation.LegacyDocument(r))
	}
	return docs, nil
}
