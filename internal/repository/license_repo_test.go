package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/testutil"
)

func TestLicenseRepository_NextLicenseID_StartsAtOne(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			id, err := NewLicenseRepository(tx).NextLicenseID(ctx)
			ids = append(ids, id)
			return err
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestLicenseRepository_NextLicenseID_SeededFromExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	u := testutil.TestUser(t, db)
	testutil.TestPrivilege(t, db, u.ID, testutil.WithLicense(41))

	repo := NewLicenseRepository(db)
	id, err := repo.NextLicenseID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestLicenseRepository_RollbackDoesNotConsume(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLicenseRepository(db)
	ctx := context.Background()

	_ = db.Transaction(func(tx *gorm.DB) error {
		_, err := NewLicenseRepository(tx).NextLicenseID(ctx)
		require.NoError(t, err)
		return gorm.ErrInvalidTransaction // 强制回滚
	})

	id, err := repo.NextLicenseID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}
