package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/model"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*model.Expense, error) {
	var e model.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete 删除消费记录，记录不存在时返回 gorm.ErrRecordNotFound
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Expense{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByUser 按交易时间倒序分页
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]model.Expense, int64, error) {
	var (
		expenses []model.Expense
		total    int64
	)

	query := r.db.WithContext(ctx).Model(&model.Expense{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("transaction_date DESC, id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&expenses).Error
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}
