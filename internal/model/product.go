package model

import (
	"time"
)

// Product 可兑换的奖励商品
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	ProductName string    `gorm:"size:200;uniqueIndex;not null" json:"product_name"`
	Description string    `gorm:"type:text" json:"description"`
	Point       int64     `gorm:"not null" json:"point"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	Active      bool      `gorm:"default:true;index" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Redemption 积分兑换记录
type Redemption struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_redemption_user_product" json:"user_id"`
	ProductID   int64     `gorm:"not null;uniqueIndex:idx_redemption_user_product" json:"product_id"`
	ProductName string    `gorm:"size:200;not null" json:"product_name"`
	PointsUsed  int64     `gorm:"not null" json:"points_used"`
	Code        string    `gorm:"size:36;uniqueIndex;not null" json:"code"`
	RedeemedAt  time.Time `gorm:"not null;index" json:"redeemed_at"`
}

func (Redemption) TableName() string {
	return "redemptions"
}
