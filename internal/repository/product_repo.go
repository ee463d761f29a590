package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/prv_line_server/internal/model"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// CreateSkipDuplicates 批量插入，商品名重复的跳过；返回实际新增数量
func (r *ProductRepository) CreateSkipDuplicates(ctx context.Context, products []*model.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "product_name"}}, DoNothing: true}).
		Create(&products)
	return result.RowsAffected, result.Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActive 全部上架商品，按所需积分升序
func (r *ProductRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("point ASC, id ASC").
		Find(&products).Error
	return products, err
}

// ListRedeemable 积分足够且该用户尚未兑换过的上架商品
func (r *ProductRepository) ListRedeemable(ctx context.Context, userID, maxPoint int64) ([]model.Product, error) {
	var products []model.Product
	redeemed := r.db.Model(&model.Redemption{}).Select("product_id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Where("active = ? AND point <= ?", true, maxPoint).
		Where("id NOT IN (?)", redeemed).
		Order("point ASC, id ASC").
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) UpdateImageURL(ctx context.Context, id int64, url string) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("image_url", url).Error
}

// Delete 删除商品，不存在时返回 gorm.ErrRecordNotFound
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
