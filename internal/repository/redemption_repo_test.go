package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/testutil"
)

func TestRedemptionRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewRedemptionRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	p1 := testutil.TestProduct(t, db, 10)
	p2 := testutil.TestProduct(t, db, 20)

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &model.Redemption{
		UserID: user.ID, ProductID: p1.ID, ProductName: p1.ProductName,
		PointsUsed: 10, Code: "code-1", RedeemedAt: base,
	}))
	require.NoError(t, repo.Create(ctx, &model.Redemption{
		UserID: user.ID, ProductID: p2.ID, ProductName: p2.ProductName,
		PointsUsed: 20, Code: "code-2", RedeemedAt: base.Add(time.Hour),
	}))

	// 同一商品只能兑换一次
	err := repo.Create(ctx, &model.Redemption{
		UserID: user.ID, ProductID: p1.ID, ProductName: p1.ProductName,
		PointsUsed: 10, Code: "code-3", RedeemedAt: base,
	})
	assert.Error(t, err)

	ok, err := repo.Exists(ctx, user.ID, p1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "code-2", list[0].Code)
}
