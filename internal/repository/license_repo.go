package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/prv_line_server/internal/model"
)

const licenseSequenceName = "license"

// LicenseRepository 全局 License 编号发号器
type LicenseRepository struct {
	db *gorm.DB
}

func NewLicenseRepository(db *gorm.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

// NextLicenseID 锁定计数器行并加一，需在事务内调用。
// 首次使用时以已发放的最大编号作为初始值。
func (r *LicenseRepository) NextLicenseID(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)

	seq, err := r.lockSequence(db)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var max int64
		if max, err = NewPrivilegeRepository(r.db).MaxLicenseID(ctx); err != nil {
			return 0, err
		}
		err = db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.LicenseSequence{Name: licenseSequenceName, Value: max}).Error
		if err != nil {
			return 0, err
		}
		seq, err = r.lockSequence(db)
	}
	if err != nil {
		return 0, err
	}

	next := seq.Value + 1
	err = db.Model(&model.LicenseSequence{}).
		Where("name = ?", licenseSequenceName).
		Update("value", next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *LicenseRepository) lockSequence(db *gorm.DB) (*model.LicenseSequence, error) {
	var seq model.LicenseSequence
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", licenseSequenceName).
		First(&seq).Error
	if err != nil {
		return nil, err
	}
	return &seq, nil
}
