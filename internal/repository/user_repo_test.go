package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/testutil"
)

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	created := testutil.TestUser(t, db)

	found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.LineUserID, found.LineUserID)

	_, err = repo.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindOrCreateByLineUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	user, created, err := repo.FindOrCreateByLineUserID(ctx, &model.User{LineUserID: "Uabc", DisplayName: "first"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, user.ID)

	// 第二次登录返回同一用户，不覆盖已有资料
	again, created, err := repo.FindOrCreateByLineUserID(ctx, &model.User{LineUserID: "Uabc", DisplayName: "second"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "first", again.DisplayName)

	var count int64
	db.Model(&model.User{}).Where("line_user_id = ?", "Uabc").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	owner := testutil.TestUser(t, db, testutil.WithEmail("taken@example.com"))
	other := testutil.TestUser(t, db)

	exists, err := repo.ExistsByEmail(ctx, "taken@example.com", other.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// 自己的邮箱不算占用
	exists, err = repo.ExistsByEmail(ctx, "taken@example.com", owner.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)

	err := repo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"status":      model.StatusVerified,
		"is_verified": true,
	})
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerified, found.Status)
	assert.True(t, found.IsVerified)

	ok, err := repo.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
