package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/pkg/privilege"
)

type PrivilegeRepository struct {
	db *gorm.DB
}

func NewPrivilegeRepository(db *gorm.DB) *PrivilegeRepository {
	return &PrivilegeRepository{db: db}
}

// GetByUserID 不存在时返回 gorm.ErrRecordNotFound
func (r *PrivilegeRepository) GetByUserID(ctx context.Context, userID int64) (*model.Privilege, error) {
	var p model.Privilege
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserIDForUpdate 读取并加行锁（SELECT ... FOR UPDATE），需在事务内调用
func (r *PrivilegeRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*model.Privilege, error) {
	var p model.Privilege
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateIfAbsent 插入默认账户，user_id 已存在时什么都不做；返回是否新建
func (r *PrivilegeRepository) CreateIfAbsent(ctx context.Context, p *model.Privilege) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(p)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PrivilegeRepository) Save(ctx context.Context, p *model.Privilege) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// ListExpiredDiamondUserIDs 已过期但仍是 Diamond 的账户
func (r *PrivilegeRepository) ListExpiredDiamondUserIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Privilege{}).
		Where("tier = ? AND expiry_date < ?", string(privilege.TierDiamond), now).
		Order("id ASC").
		Limit(limit).
		Pluck("user_id", &ids).Error
	return ids, err
}

// MaxLicenseID 当前已发放的最大 License 编号，没有时为 0
func (r *PrivilegeRepository) MaxLicenseID(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&model.Privilege{}).
		Select("COALESCE(MAX(license_id), 0)").
		Scan(&max).Error
	return max, err
}
