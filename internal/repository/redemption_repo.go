package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/model"
)

type RedemptionRepository struct {
	db *gorm.DB
}

func NewRedemptionRepository(db *gorm.DB) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

func (r *RedemptionRepository) Create(ctx context.Context, rd *model.Redemption) error {
	return r.db.WithContext(ctx).Create(rd).Error
}

func (r *RedemptionRepository) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Redemption{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser 兑换历史，最新的在前
func (r *RedemptionRepository) ListByUser(ctx context.Context, userID int64) ([]model.Redemption, error) {
	var list []model.Redemption
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("redeemed_at DESC, id DESC").
		Find(&list).Error
	return list, err
}
