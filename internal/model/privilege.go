package model

import (
	"time"
)

// Privilege 用户会员账户，每个用户一条
type Privilege struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	UserID             int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	CurrentAmount      int64     `gorm:"not null;default:0" json:"current_amount"`
	TotalAmountPerYear int64     `gorm:"not null;default:0" json:"total_amount_per_year"`
	Tier               string    `gorm:"size:20;not null;default:Silver;index" json:"tier"`
	CurrentPoint       int64     `gorm:"not null;default:0" json:"current_point"`
	LicenseID          *int64    `gorm:"uniqueIndex" json:"license_id,omitempty"`
	ExpiryDate         time.Time `gorm:"not null;index" json:"expiry_date"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Privilege) TableName() string {
	return "privileges"
}

// Expense 消费记录，创建后只允许整条删除
type Expense struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	UserID          int64     `gorm:"not null;index" json:"user_id"`
	Amount          int64     `gorm:"not null" json:"amount"`
	TransactionDate time.Time `gorm:"not null;index" json:"transaction_date"`
	TierAtTime      string    `gorm:"size:20;not null" json:"tier_at_time"`
	PointsEarned    int64     `gorm:"not null;default:0" json:"points_earned"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

// LicenseSequence 全局 License 编号计数器
type LicenseSequence struct {
	Name      string    `gorm:"primaryKey;size:50" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LicenseSequence) TableName() string {
	return "license_sequences"
}
