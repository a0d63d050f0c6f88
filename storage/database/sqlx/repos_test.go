package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/setting"
	sqlxrepos "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/sqlx"
	testutil "github.com/Melvinkheturus/examinerpro-web-sub001/tests"
)

func date(day int) time.Time {
	return time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC)
}

func TestExaminerRepository(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := sqlxrepos.NewExaminerRepository(db)
	ctx := context.Background()

	anita := testutil.CreateExaminer(t, repo, "Anita Raman", "EX-101", "Physics", date(1))
	bala := testutil.CreateExaminer(t, repo, "bala K", "EX-102", "Chemistry", date(2))

	assert.Equal(t, examiner.ErrExaminerIDExists, repo.CheckExaminerIDUniqueness(ctx, "ex-101"))
	assert.NoError(t, repo.CheckExaminerIDUniqueness(ctx, "EX-101", anita.ID))
	_, err := repo.CreateExaminer(ctx, examiner.Examiner{Name: "Dup", ExaminerID: "EX-101", CreatedAt: date(3), UpdatedAt: date(3)})
	assert.Equal(t, examiner.ErrExaminerIDExists, err)

	got, err := repo.QueryExaminers(ctx, nil, []core.DBOrdering{{Field: "name", Ascending: true}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{anita.ID, bala.ID}, []string{got[0].ID, got[1].ID})

	got, err = repo.QueryExaminers(ctx, &examiner.QueryFilter{Search: "ex-102"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bala.ID, got[0].ID)

	got, err = repo.QueryExaminers(ctx, &examiner.QueryFilter{Department: "physics"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, anita.ID, got[0].ID)

	byCode, err := repo.GetExaminerByCode(ctx, "ex-102")
	require.NoError(t, err)
	assert.Equal(t, bala.ID, byCode.ID)
	_, err = repo.GetExaminerByID(ctx, "not-a-uuid")
	assert.Equal(t, examiner.ErrNotFound, err)

	anita.Department = "Mathematics"
	anita.UpdatedAt = date(5)
	updated, err := repo.UpdateExaminer(ctx, anita)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", updated.Department)
	assert.True(t, updated.CreatedAt.Equal(date(1)))

	require.NoError(t, repo.SavePhoto(ctx, examiner.Photo{ExaminerID: anita.ID, Content: []byte{1, 2}, ContentType: "image/png", UpdatedAt: date(5)}))
	require.NoError(t, repo.SavePhoto(ctx, examiner.Photo{ExaminerID: anita.ID, Content: []byte{3}, ContentType: "image/jpeg", UpdatedAt: date(6)}))
	photo, err := repo.GetPhoto(ctx, anita.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, photo.Content)
	assert.Equal(t, "image/jpeg", photo.ContentType)
	assert.Equal(t, examiner.ErrNotFound, repo.SavePhoto(ctx, examiner.Photo{ExaminerID: "00000000-0000-0000-0000-000000000000", Content: []byte{1}}))

	require.NoError(t, repo.DeleteExaminer(ctx, anita.ID))
	assert.Equal(t, examiner.ErrNotFound, repo.DeleteExaminer(ctx, anita.ID))
	_, err = repo.GetPhoto(ctx, anita.ID)
	assert.Equal(t, examiner.ErrPhotoNotFound, err)
}

func TestCalculationRepository(t *testing.T) {
	db := testutil.OpenTestDB(t)
	exRepo := sqlxrepos.NewExaminerRepository(db)
	repo := sqlxrepos.NewCalculationRepository(db)
	ctx := context.Background()

	ex := testutil.CreateExaminer(t, exRepo, "Anita Raman", "EX-101", "Physics")
	quick := testutil.CreateCalculation(t, repo, ex.ID, date(20), 4, 80)
	detailed := testutil.CreateCalculation(t, repo, ex.ID, date(10), 0, 0,
		testutil.Day(date(8), "Kumar", 30, "Latha", 20),
		testutil.Day(date(9), "Mani", 15),
	)

	calcs, err := repo.QueryCalculations(ctx, ex.ID)
	require.NoError(t, err)
	require.Len(t, calcs, 2)
	assert.Equal(t, detailed.ID, calcs[0].ID)
	assert.Equal(t, quick.ID, calcs[1].ID)
	assert.Empty(t, calcs[1].CalculationDays)

	got := calcs[0]
	assert.Equal(t, 65, got.TotalPapers)
	assert.True(t, got.FinalAmount.Equal(detailed.FinalAmount))
	days := got.EvaluationDays()
	require.Len(t, days, 2)
	assert.True(t, days[0].Date.Equal(date(8)))
	require.Len(t, days[0].StaffEvaluations, 2)
	assert.Equal(t, "Latha", days[0].StaffEvaluations[1].StaffName)
	assert.Equal(t, 15, days[1].StaffEvaluations[0].PapersEvaluated)

	one, err := repo.GetCalculationByID(ctx, detailed.ID)
	require.NoError(t, err)
	assert.Equal(t, got.CalculationDays, one.CalculationDays)

	_, err = repo.CreateCalculation(ctx, calculation.Calculation{ExaminerID: "00000000-0000-0000-0000-000000000000"})
	assert.Equal(t, calculation.ErrUnknownExaminer, err)

	doc, err := repo.CreateLegacyDocument(ctx, calculation.LegacyDocument{ExaminerID: ex.ID, Document: []byte(`{"total_papers": 10}`)})
	require.NoError(t, err)
	docs, err := repo.QueryLegacyDocuments(ctx, ex.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
	assert.JSONEq(t, `{"total_papers": 10}`, string(docs[0].Document))

	require.NoError(t, repo.DeleteCalculation(ctx, quick.ID))
	assert.Equal(t, calculation.ErrNotFound, repo.DeleteCalculation(ctx, quick.ID))
	_, err = repo.GetCalculationByID(ctx, quick.ID)
	assert.Equal(t, calculation.ErrNotFound, err)

	require.NoError(t, exRepo.DeleteExaminer(ctx, ex.ID))
	calcs, err = repo.QueryCalculations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, calcs)
}

func TestSettingRepository(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := sqlxrepos.NewSettingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveSetting(ctx, setting.Setting{Key: setting.Theme, Value: "dark"}))
	require.NoError(t, repo.SaveSetting(ctx, setting.Setting{Key: setting.EvaluationRate, Value: "25"}))
	require.NoError(t, repo.SaveSetting(ctx, setting.Setting{Key: setting.Theme, Value: "system"}))

	settings, err := repo.QuerySettings(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, setting.EvaluationRate, settings[0].Key)
	assert.Equal(t, "system", settings[1].Value)
}
