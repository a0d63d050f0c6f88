package examiner

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

var (
	// errors
	ErrNotFound         = errors.New("examiner not found")
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrExaminerIDExists = errors.New("an examiner with this examiner ID already exists")
)

type (
	Repository interface {
		// CheckExaminerIDUniqueness returns ErrExaminerIDExists if another examiner (not in excludedIDs) has this code.
		CheckExaminerIDUniqueness(ctx context.Context, code string, excludedIDs ...string) error
		CreateExaminer(ctx context.Context, ex Examiner) (Examiner, error)
		// QueryExaminers applies AND operation on available QueryFilter fields.
		QueryExaminers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Examiner, error)
		GetExaminerByID(ctx context.Context, id string) (Examiner, error)
		GetExaminerByCode(ctx context.Context, code string) (Examiner, error)
		UpdateExaminer(ctx context.Context, ex Examiner) (Examiner, error)
		// DeleteExaminer also deletes the examiner's calculations and photo.
		DeleteExaminer(ctx context.Context, id string) error
		SavePhoto(ctx context.Context, photo Photo) error
		GetPhoto(ctx context.Context, examinerID string) (Photo, error)
	}

	Service struct {
		repo       Repository
		stats      *StatsCache
		validate   *validator.Validate
		translator ut.Translator
		photoURL   func(examinerID string) string
	}
)

func NewService(
	repo Repository,
	stats *StatsCache,
	validate *validator.Validate,
	translator ut.Translator,
) *Service {
	return &Service{
		repo:       repo,
		stats:      stats,
		validate:   validate,
		translator: translator,
		photoURL:   func(id string) string { return "/v1/examiners/" + id + "/photo" },
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, code string, excludedIDs ...string) error {
	if err := svc.repo.CheckExaminerIDUniqueness(ctx, code, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrExaminerIDExists {
			return core.NewValidationError(err, core.FieldError{Field: "examiner_id", Error: err.Error()})
		}
		return errors.Wrap(err, "checking examiner ID uniqueness")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ne NewExaminer) (Examiner, error) {
	if err := ne.Validate(svc.validate, svc.translator); err != nil {
		return Examiner{}, err
	}
	if err := svc.checkUniqueness(ctx, ne.ExaminerID); err != nil {
		return Examiner{}, err
	}

	now := time.Now().UTC()
	ex := Examiner{
		Name:       ne.Name,
		ExaminerID: ne.ExaminerID,
		Department: ne.Department,
		Position:   ne.Position,
		Email:      ne.Email,
		Phone:      ne.Phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	ex, err := svc.repo.CreateExaminer(ctx, ex)
	return ex, errors.Wrap(err, "creating examiner")
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Examiner, error) {
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
		filter.Department = core.CleanString(filter.Department)
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	return svc.repo.QueryExaminers(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Examiner, error) {
	return svc.repo.GetExaminerByID(ctx, id)
}

func (svc *Service) GetByCode(ctx context.Context, code string) (Examiner, error) {
	return svc.repo.GetExaminerByCode(ctx, core.CleanString(code))
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateExaminer) (Examiner, error) {
	if err := ue.Validate(svc.validate, svc.translator); err != nil {
		return Examiner{}, err
	}

	ex, err := svc.repo.GetExaminerByID(ctx, id)
	if err != nil {
		return Examiner{}, err
	}
	if ue.ExaminerID != nil && *ue.ExaminerID != ex.ExaminerID {
		if err = svc.checkUniqueness(ctx, *ue.ExaminerID, ex.ID); err != nil {
			return Examiner{}, err
		}
	}

	ue.apply(&ex)
	ex.UpdatedAt = time.Now().UTC()
	ex, err = svc.repo.UpdateExaminer(ctx, ex)
	if err != nil {
		return Examiner{}, errors.Wrap(err, "updating examiner")
	}
	svc.stats.Invalidate(ex.ID)
	return ex, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteExaminer(ctx, id); err != nil {
		return err
	}
	svc.stats.Invalidate(id)
	return nil
}

// SetPhoto stores the processed profile photo of the examiner and points its profile_image_url at it.
func (svc *Service) SetPhoto(ctx context.Context, id string, upload PhotoUpload) (Examiner, error) {
	ex, err := svc.repo.GetExaminerByID(ctx, id)
	if err != nil {
		return Examiner{}, err
	}

	content, err := ProcessPhoto(upload)
	if err != nil {
		return Examiner{}, err
	}
	now := time.Now().UTC()
	photo := Photo{ExaminerID: ex.ID, Content: content, ContentType: PhotoContentType, UpdatedAt: now}
	if err = svc.repo.SavePhoto(ctx, photo); err != nil {
		return Examiner{}, errors.Wrap(err, "saving photo")
	}

	ex.ProfileImageURL = svc.photoURL(ex.ID)
	ex.UpdatedAt = now
	ex, err = svc.repo.UpdateExaminer(ctx, ex)
	return ex, errors.Wrap(err, "updating examiner")
}

func (svc *Service) GetPhoto(ctx context.Context, id string) (Photo, error) {
	return svc.repo.GetPhoto(ctx, id)
}
