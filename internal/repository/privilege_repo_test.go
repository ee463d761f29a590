package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/pkg/privilege"
	"github.com/qs3c/prv_line_server/internal/testutil"
)

func TestPrivilegeRepository_CreateIfAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPrivilegeRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)

	_, err := repo.GetByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	expiry := time.Now().UTC().AddDate(1, 0, 0)
	created, err := repo.CreateIfAbsent(ctx, &model.Privilege{
		UserID:     user.ID,
		Tier:       string(privilege.TierSilver),
		ExpiryDate: expiry,
	})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, &model.Privilege{
		UserID:       user.ID,
		Tier:         string(privilege.TierGold),
		CurrentPoint: 99,
		ExpiryDate:   expiry,
	})
	require.NoError(t, err)
	assert.False(t, created)

	p, err := repo.GetByUserIDForUpdate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, string(privilege.TierSilver), p.Tier)
	assert.Equal(t, int64(0), p.CurrentPoint)
}

func TestPrivilegeRepository_Save(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPrivilegeRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	p := testutil.TestPrivilege(t, db, user.ID)

	p.CurrentPoint = 12
	p.CurrentAmount = 40
	p.TotalAmountPerYear = 1840
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), found.CurrentPoint)
	assert.Equal(t, int64(40), found.CurrentAmount)
	assert.Equal(t, int64(1840), found.TotalAmountPerYear)
}

func TestPrivilegeRepository_ListExpiredDiamondUserIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPrivilegeRepository(db)
	now := time.Now().UTC()

	expired := testutil.TestUser(t, db)
	testutil.TestPrivilege(t, db, expired.ID,
		testutil.WithTier(privilege.TierDiamond),
		testutil.WithExpiry(now.Add(-time.Hour)))

	active := testutil.TestUser(t, db)
	testutil.TestPrivilege(t, db, active.ID,
		testutil.WithTier(privilege.TierDiamond),
		testutil.WithExpiry(now.Add(time.Hour)))

	gold := testutil.TestUser(t, db)
	testutil.TestPrivilege(t, db, gold.ID,
		testutil.WithTier(privilege.TierGold),
		testutil.WithExpiry(now.Add(-time.Hour)))

	ids, err := repo.ListExpiredDiamondUserIDs(context.Background(), now, 100)
	require.NoError(t, err)
	assert.Equal(t, []int64{expired.ID}, ids)
}

func TestPrivilegeRepository_MaxLicenseID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPrivilegeRepository(db)
	ctx := context.Background()

	max, err := repo.MaxLicenseID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), max)

	u := testutil.TestUser(t, db)
	testutil.TestPrivilege(t, db, u.ID, testutil.WithLicense(7))

	max, err = repo.MaxLicenseID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), max)
}
