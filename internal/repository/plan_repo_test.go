package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/testutil"
)

func TestPlanRepository_CreateIfAbsent_DoesNotOverwrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPlanRepository(db)
	ctx := context.Background()

	first := &model.Plan{Code: "BASIC", Name: "original", PointDailyCap: 100, IsActive: true}
	require.NoError(t, repo.CreateIfAbsent(ctx, first))

	second := &model.Plan{Code: "BASIC", Name: "changed", PointDailyCap: 5, IsActive: true}
	require.NoError(t, repo.CreateIfAbsent(ctx, second))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := repo.GetByCode(ctx, "BASIC")
	require.NoError(t, err)
	assert.Equal(t, "original", found.Name)
	assert.Equal(t, 100, found.PointDailyCap)
}

func TestPlanRepository_ListActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPlanRepository(db)
	ctx := context.Background()

	testutil.TestPlan(t, db, "B", func(p *model.Plan) { p.SortOrder = 2 })
	testutil.TestPlan(t, db, "A", func(p *model.Plan) { p.SortOrder = 1 })
	testutil.TestPlan(t, db, "HIDDEN", testutil.WithInactive())

	plans, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "A", plans[0].Code)
	assert.Equal(t, "B", plans[1].Code)

	_, err = repo.GetActiveByCode(ctx, "HIDDEN")
	assert.Error(t, err)

	hidden, err := repo.GetByCode(ctx, "HIDDEN")
	require.NoError(t, err)
	assert.False(t, hidden.IsActive)
}
