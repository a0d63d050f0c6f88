package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
)

type calculationRepository struct {
	db *DB
}

var (
	_ calculation.Repository          = (*calculationRepository)(nil)
	_ calculation.AggregateRepository = (*calculationRepository)(nil)
)

func NewCalculationRepository(db *DB) *calculationRepository {
	return &calculationRepository{db: db}
}

func (repo *calculationRepository) CreateCalculation(_ context.Context, calc calculation.Calculation) (calculation.Calculation, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	calc = copyCalculation(calc)
	calc.ID = uuid.New().String()
	for i := range calc.CalculationDays {
		cd := &calc.CalculationDays[i]
		cd.ID = uuid.New().String()
		for j := range cd.EvaluationDays {
			day := &cd.EvaluationDays[j]
			day.ID = uuid.New().String()
			for k := range day.StaffEvaluations {
				day.StaffEvaluations[k].ID = uuid.New().String()
			}
		}
	}
	repo.db.calculations[calc.ID] = calc
	return copyCalculation(calc), nil
}

func (repo *calculationRepository) QueryCalculations(_ context.Context, examinerID string) ([]calculation.Calculation, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	calcs := make([]calculation.Calculation, 0)
	for _, calc := range repo.db.calculations {
		if examinerID == "" || calc.ExaminerID == examinerID {
			calcs = append(calcs, copyCalculation(calc))
		}
	}
	sort.SliceStable(calcs, func(i, j int) bool {
		if calcs[i].CreatedAt.Equal(calcs[j].CreatedAt) {
			return calcs[i].ID < calcs[j].ID
		}
		return calcs[i].CreatedAt.Before(calcs[j].CreatedAt)
	})
	return calcs, nil
}

func (repo *calculationRepository) GetCalculationByID(_ context.Context, id string) (calculation.Calculation, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if calc, ok := repo.db.calculations[id]; ok {
		return copyCalculation(calc), nil
	}
	return calculation.Calculation{}, calculation.ErrNotFound
}

func (repo *calculationRepository) DeleteCalculation(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.calculations[id]; !ok {
		return calculation.ErrNotFound
	}
	delete(repo.db.calculations, id)
	return nil
}

func (repo *calculationRepository) CreateLegacyDocument(_ context.Context, doc calculation.LegacyDocument) (calculation.LegacyDocument, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	doc.ID = uuid.New().String()
	doc.Document = append([]byte(nil), doc.Document...)
	repo.db.documents[doc.ID] = doc
	return doc, nil
}

func (repo *calculationRepository) QueryLegacyDocuments(_ context.Context, examinerID string) ([]calculation.LegacyDocument, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	docs := make([]calculation.LegacyDocument, 0)
	for _, doc := range repo.db.documents {
		if examinerID == "" || doc.ExaminerID == examinerID {
			docs = append(docs, doc)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
	return docs, nil
}

func (repo *calculationRepository) Aggregate(_ context.Context, examinerID string) (calculation.Aggregate, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	agg := calculation.Aggregate{TotalAmount: decimal.Zero}
	examiners := make(map[string]bool)
	for _, calc := range repo.db.calculations {
		if examinerID != "" && calc.ExaminerID != examinerID {
			continue
		}
		examiners[calc.ExaminerID] = true
		agg.Calculations++
		agg.TotalPapers += calc.TotalPapers
		agg.TotalStaff += calc.TotalStaff
		agg.TotalAmount = agg.TotalAmount.Add(calc.FinalAmount)
		if agg.LastCalculationAt == nil || calc.CreatedAt.After(*agg.LastCalculationAt) {
			t := calc.CreatedAt
			agg.LastCalculationAt = &t
		}
	}
	agg.Examiners = len(examiners)
	return agg, nil
}

func copyCalculation(calc calculation.Calculation) calculation.Calculation {
	if calc.CalculationDays == nil {
		return calc
	}
	days := make([]calculation.CalculationDay, len(calc.CalculationDays))
	for i, cd := range calc.CalculationDays {
		evalDays := make([]calculation.EvaluationDay, len(cd.EvaluationDays))
		for j, day := range cd.EvaluationDays {
			day.StaffEvaluations = append([]calculation.StaffEvaluation(nil), day.StaffEvaluations...)
			evalDays[j] = day
		}
		cd.EvaluationDays = evalDays
		days[i] = cd
	}
	calc.CalculationDays = days
	return calc
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
