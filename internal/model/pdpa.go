package model

import (
	"time"
)

type PdpaConsent struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	Checkbox1 bool      `gorm:"default:false" json:"checkbox1"`
	Checkbox2 bool      `gorm:"default:false" json:"checkbox2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PdpaConsent) TableName() string {
	return "pdpa_consents"
}
