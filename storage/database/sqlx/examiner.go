package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
)

const examinerColumns = `id, name, examiner_id, department, position, email, phone, profile_image_url, created_at, updated_at`

var examinerOrdering = map[string]string{
	"name":        "lower(name)",
	"examiner_id": "examiner_id",
	"department":  "department",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

type examinerRow struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	ExaminerID      string    `db:"examiner_id"`
	Department      string    `db:"department"`
	Position        string    `db:"position"`
	Email           string    `db:"email"`
	Phone           string    `db:"phone"`
	ProfileImageURL string    `db:"profile_image_url"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r examinerRow) examiner() examiner.Examiner {
	return examiner.Examiner{
		ID:              r.ID,
		Name:            r.Name,
		ExaminerID:      r.ExaminerID,
		Department:      r.Department,
		Position:        r.Position,
		Email:           r.Email,
		Phone:           r.Phone,
		ProfileImageURL: r.ProfileImageURL,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toExaminerRow(ex examiner.Examiner) examinerRow {
	return examinerRow{
		ID:              ex.ID,
		Name:            ex.Name,
		ExaminerID:      ex.ExaminerID,
		Department:      ex.Department,
		Position:        ex.Position,
		Email:           ex.Email,
		Phone:           ex.Phone,
		ProfileImageURL: ex.ProfileImageURL,
		CreatedAt:       ex.CreatedAt.UTC(),
		UpdatedAt:       ex.UpdatedAt.UTC(),
	}
}

type examinerRepository struct {
	db *sqlx.DB
}

var _ examiner.Repository = (*examinerRepository)(nil) // interface compliance check

func NewExaminerRepository(db *sqlx.DB) *examinerRepository {
	return &examinerRepository{db: db}
}

func (repo *examinerRepository) CheckExaminerIDUniqueness(ctx context.Context, code string, excludedIDs ...string) error {
	ids := make([]string, 0, len(excludedIDs))
	for _, id := range excludedIDs {
		if isUUID(id) {
			ids = append(ids, id)
		}
	}

	var found bool
	err := repo.db.GetContext(ctx, &found,
		`SELECT EXISTS (SELECT 1 FROM examiners WHERE lower(examiner_id) = lower($1) AND NOT (id = ANY($2::uuid[])))`,
		code, pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "checking examiner ID uniqueness")
	}
	if found {
		return examiner.ErrExaminerIDExists
	}
	return nil
}

func (repo *examinerRepository) CreateExaminer(ctx context.Context, ex examiner.Examiner) (examiner.Examiner, error) {
	ex.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO examiners (`+examinerColumns+`)
		VALUES (:id, :name, :examiner_id, :department, :position, :email, :phone, :profile_image_url, :created_at, :updated_at)`,
		toExaminerRow(ex))
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return examiner.Examiner{}, examiner.ErrExaminerIDExists
		}
		return examiner.Examiner{}, errors.Wrap(err, "inserting examiner")
	}
	return ex, nil
}

func (repo *examinerRepository) QueryExaminers(ctx context.Context, filter *examiner.QueryFilter, ordering []core.DBOrdering) ([]examiner.Examiner, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			n := "$" + strconv.Itoa(len(args))
			conds = append(conds, "(name ILIKE "+n+" OR examiner_id ILIKE "+n+" OR email ILIKE "+n+")")
		}
		if filter.Department != "" {
			args = append(args, filter.Department)
			conds = append(conds, "lower(department) = lower($"+strconv.Itoa(len(args))+")")
		}
	}

	q := `SELECT ` + examinerColumns + ` FROM examiners`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderBy(ordering, examinerOrdering, "created_at ASC")

	var rows []examinerRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying examiners")
	}
	examiners := make([]examiner.Examiner, 0, len(rows))
	for _, r := range rows {
		examiners = append(examiners, r.examiner())
	}
	return examiners, nil
}

func (repo *examinerRepository) getExaminer(ctx context.Context, where string, arg interface{}) (examiner.Examiner, error) {
	var row examinerRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+examinerColumns+` FROM examiners WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return examiner.Examiner{}, examiner.ErrNotFound
	} else if err != nil {
		return examiner.Examiner{}, errors.Wrap(err, "finding examiner")
	}
	return row.examiner(), nil
}

func (repo *examinerRepository) GetExaminerByID(ctx context.Context, id string) (examiner.Examiner, error) {
	if !isUUID(id) {
		return examiner.Examiner{}, examiner.ErrNotFound
	}
	return repo.getExaminer(ctx, "id = $1", id)
}

func (repo *examinerRepository) GetExaminerByCode(ctx context.Context, code string) (examiner.Examiner, error) {
	return repo.getExaminer(ctx, "lower(examiner_id) = lower($1)", code)
}

func (repo *examinerRepository) UpdateExaminer(ctx context.Context, ex examiner.Examiner) (examiner.Examiner, error) {
	if !isUUID(ex.ID) {
		return examiner.Examiner{}, examiner.ErrNotFound
	}
	q, args, err := repo.db.BindNamed(
		`UPDATE examiners SET name = :name, examiner_id = :examiner_id, department = :department, position = :position,
			email = :email, phone = :phone, profile_image_url = :profile_image_url, updated_at = :updated_at
		WHERE id = :id RETURNING created_at`,
		toExaminerRow(ex))
	if err != nil {
		return examiner.Examiner{}, errors.Wrap(err, "binding examiner")
	}
	if err = repo.db.GetContext(ctx, &ex.CreatedAt, q, args...); err != nil {
		switch {
		case err == sql.ErrNoRows:
			return examiner.Examiner{}, examiner.ErrNotFound
		case pqCode(err) == uniqueViolation:
			return examiner.Examiner{}, examiner.ErrExaminerIDExists
		}
		return examiner.Examiner{}, errors.Wrap(err, "updating examiner")
	}
	return ex, nil
}

// DeleteExaminer relies on ON DELETE CASCADE for calculations, documents and photo.
func (repo *examinerRepository) DeleteExaminer(ctx context.Context, id string) error {
	if !isUUID(id) {
		return examiner.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM examiners WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting examiner")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting examiner")
	} else if n == 0 {
		return examiner.ErrNotFound
	}
	return nil
}

func (repo *examinerRepository) SavePhoto(ctx context.Context, photo examiner.Photo) error {
	if !isUUID(photo.ExaminerID) {
		return examiner.ErrNotFound
	}
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO examiner_photos (examiner_id, content, content_type, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (examiner_id) DO UPDATE
		SET content = EXCLUDED.content, content_type = EXCLUDED.content_type, updated_at = EXCLUDED.updated_at`,
		photo.ExaminerID, photo.Content, photo.ContentType, photo.UpdatedAt.UTC())
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return examiner.ErrNotFound
		}
		return errors.Wrap(err, "saving photo")
	}
	return nil
}

func (repo *examinerRepository) GetPhoto(ctx context.Context, examinerID string) (examiner.Photo, error) {
	if !isUUID(examinerID) {
		return examiner.Photo{}, examiner.ErrPhotoNotFound
	}
	var row struct {
		ExaminerID  string    `db:"examiner_id"`
		Content     []byte    `db:"content"`
		ContentType string    `db:"content_type"`
		UpdatedAt   time.Time `db:"updated_at"`
	}
	err := repo.db.GetContext(ctx, &row,
		`SELECT examiner_id, content, content_type, updated_at FROM examiner_photos WHERE examiner_id = $1`, examinerID)
	if err == sql.ErrNoRows {
		return examiner.Photo{}, examiner.ErrPhotoNotFound
	} else if err != nil {
		return examiner.Photo{}, errors.Wrap(err, "finding photo")
	}
	return examiner.Photo(row), nil
}
