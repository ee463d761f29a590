package model

import (
	"time"
)

// 用户注册流程状态
const (
	StatusNew          = 0 // 仅完成 LINE 登录
	StatusProfileSaved = 1 // 已填写基本信息
	StatusPdpaAccepted = 2 // 已同意 PDPA
	StatusVerified     = 3 // 邮箱验证完成，可使用会员卡
)

type User struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	LineUserID  string     `gorm:"column:line_user_id;size:64;uniqueIndex;not null" json:"line_user_id"`
	DisplayName string     `gorm:"size:100" json:"display_name"`
	PictureURL  string     `gorm:"size:500" json:"picture_url"`
	Firstname   string     `gorm:"size:100" json:"firstname"`
	Lastname    string     `gorm:"size:100" json:"lastname"`
	Mobile      string     `gorm:"size:20" json:"mobile"`
	Email       *string    `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	IsVerified  bool       `gorm:"default:false" json:"is_verified"`
	Status      int        `gorm:"default:0" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasBasicInfo 是否已填写姓名、手机号和邮箱
func (u *User) HasBasicInfo() bool {
	return u.Firstname != "" && u.Lastname != "" && u.Mobile != "" && u.Email != nil && *u.Email != ""
}
