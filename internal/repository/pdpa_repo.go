package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/prv_line_server/internal/model"
)

type PdpaRepository struct {
	db *gorm.DB
}

func NewPdpaRepository(db *gorm.DB) *PdpaRepository {
	return &PdpaRepository{db: db}
}

func (r *PdpaRepository) GetByUserID(ctx context.Context, userID int64) (*model.PdpaConsent, error) {
	var consent model.PdpaConsent
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&consent).Error
	if err != nil {
		return nil, err
	}
	return &consent, nil
}

// Upsert 按 user_id 写入或覆盖同意状态
func (r *PdpaRepository) Upsert(ctx context.Context, consent *model.PdpaConsent) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"checkbox1", "checkbox2", "updated_at"}),
	}).Create(consent).Error
}

// GetOrCreateDefault 不存在时创建全部未勾选的记录
func (r *PdpaRepository) GetOrCreateDefault(ctx context.Context, userID int64) (*model.PdpaConsent, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.PdpaConsent{UserID: userID}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}
