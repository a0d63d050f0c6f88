package boiledrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boiledrepos "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/sqlboiler"
	sqlxrepos "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/sqlx"
	testutil "github.com/Melvinkheturus/examinerpro-web-sub001/tests"
)

func TestAggregate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	exRepo := sqlxrepos.NewExaminerRepository(db)
	calcRepo := sqlxrepos.NewCalculationRepository(db)
	repo := boiledrepos.NewAggregateRepository(db)
	ctx := context.Background()

	agg, err := repo.Aggregate(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, agg.Calculations)
	assert.True(t, agg.TotalAmount.IsZero())
	assert.Nil(t, agg.LastCalculationAt)

	jan := func(day int) time.Time { return time.Date(2024, time.January, day, 9, 0, 0, 0, time.UTC) }
	a := testutil.CreateExaminer(t, exRepo, "Anita Raman", "EX-101", "Physics")
	b := testutil.CreateExaminer(t, exRepo, "Bala K", "EX-102", "Physics")
	testutil.CreateCalculation(t, calcRepo, a.ID, jan(2), 4, 100)
	testutil.CreateCalculation(t, calcRepo, a.ID, jan(5), 2, 50)
	testutil.CreateCalculation(t, calcRepo, b.ID, jan(3), 1, 10)

	agg, err = repo.Aggregate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Examiners)
	assert.Equal(t, 3, agg.Calculations)
	assert.Equal(t, 160, agg.TotalPapers)
	assert.Equal(t, 7, agg.TotalStaff)
	assert.Equal(t, "3200", agg.TotalAmount.String())
	require.NotNil(t, agg.LastCalculationAt)
	assert.True(t, agg.LastCalculationAt.Equal(jan(5)))

	agg, err = repo.Aggregate(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Calculations)
	assert.Equal(t, "200", agg.TotalAmount.String())

	agg, err = repo.Aggregate(ctx, "unknown")
	require.NoError(t, err)
	assert.Zero(t, agg.Calculations)
}
