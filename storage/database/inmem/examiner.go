package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
)

type examinerRepository struct {
	db *DB
}

var _ examiner.Repository = (*examinerRepository)(nil) // interface compliance check

func NewExaminerRepository(db *DB) *examinerRepository {
	return &examinerRepository{db: db}
}

func (repo *examinerRepository) CheckExaminerIDUniqueness(_ context.Context, code string, excludedIDs ...string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, ex := range repo.db.examiners {
		if strings.EqualFold(ex.ExaminerID, code) && !isExcluded(ex.ID, excludedIDs) {
			return examiner.ErrExaminerIDExists
		}
	}
	return nil
}

func (repo *examinerRepository) CreateExaminer(_ context.Context, ex examiner.Examiner) (examiner.Examiner, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	ex.ID = uuid.New().String()
	repo.db.examiners[ex.ID] = ex
	return ex, nil
}

func (repo *examinerRepository) QueryExaminers(_ context.Context, filter *examiner.QueryFilter, ordering []core.DBOrdering) ([]examiner.Examiner, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	examiners := make([]examiner.Examiner, 0, len(repo.db.examiners))
	for _, ex := range repo.db.examiners {
		if filter != nil {
			if filter.Search != "" && !containsFold(filter.Search, ex.Name, ex.ExaminerID, ex.Email) {
				continue
			}
			if filter.Department != "" && !strings.EqualFold(filter.Department, ex.Department) {
				continue
			}
		}
		examiners = append(examiners, ex)
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	}
	sort.SliceStable(examiners, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareExaminers(examiners[i], examiners[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return examiners[i].ID < examiners[j].ID
	})
	return examiners, nil
}

func (repo *examinerRepository) GetExaminerByID(_ context.Context, id string) (examiner.Examiner, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if ex, ok := repo.db.examiners[id]; ok {
		return ex, nil
	}
	return examiner.Examiner{}, examiner.ErrNotFound
}

func (repo *examinerRepository) GetExaminerByCode(_ context.Context, code string) (examiner.Examiner, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, ex := range repo.db.examiners {
		if strings.EqualFold(ex.ExaminerID, code) {
			return ex, nil
		}
	}
	return examiner.Examiner{}, examiner.ErrNotFound
}

func (repo *examinerRepository) UpdateExaminer(_ context.Context, ex examiner.Examiner) (examiner.Examiner, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.examiners[ex.ID]
	if !ok {
		return examiner.Examiner{}, examiner.ErrNotFound
	}
	ex.CreatedAt = orig.CreatedAt
	repo.db.examiners[ex.ID] = ex
	return ex, nil
}

func (repo *examinerRepository) DeleteExaminer(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.examiners[id]; !ok {
		return examiner.ErrNotFound
	}
	delete(repo.db.examiners, id)
	delete(repo.db.photos, id)
	for calcID, calc := range repo.db.calculations {
		if calc.ExaminerID == id {
			delete(repo.db.calculations, calcID)
		}
	}
	for docID, doc := range repo.db.documents {
		if doc.ExaminerID == id {
			delete(repo.db.documents, docID)
		}
	}
	return nil
}

func (repo *examinerRepository) SavePhoto(_ context.Context, photo examiner.Photo) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.examiners[photo.ExaminerID]; !ok {
		return examiner.ErrNotFound
	}
	photo.Content = append([]byte(nil), photo.Content...)
	repo.db.photos[photo.ExaminerID] = photo
	return nil
}

func (repo *examinerRepository) GetPhoto(_ context.Context, examinerID string) (examiner.Photo, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if photo, ok := repo.db.photos[examinerID]; ok {
		return photo, nil
	}
	return examiner.Photo{}, examiner.ErrPhotoNotFound
}

func compareExaminers(a, b examiner.Examiner, field string) int {
	switch field {
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "examiner_id":
		return strings.Compare(a.ExaminerID, b.ExaminerID)
	case "department":
		return strings.Compare(a.Department, b.Department)
	case "updated_at":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	default:
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
}

func containsFold(sub string, vals ...string) bool {
	sub = strings.ToLower(sub)
	for _, v := range vals {
		if strings.Contains(strings.ToLower(v), sub) {
			return true
		}
	}
	return false
}

func isExcluded(id string, excludedIDs []string) bool {
	for _, ex := range excludedIDs {
		if ex == id {
			return true
		}
	}
	return false
}
