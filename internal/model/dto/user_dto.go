package dto

// SaveProfileRequest 填写/更新基本信息
type SaveProfileRequest struct {
	Firstname string `json:"firstname" binding:"required,max=100"`
	Lastname  string `json:"lastname" binding:"required,max=100"`
	Mobile    string `json:"mobile" binding:"required,max=20"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Birthday  string `json:"birthday" binding:"omitempty"` // YYYY-MM-DD
}

// CardProfile 会员卡页面可编辑的信息
type CardProfile struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Birthday string `json:"birthday,omitempty"`
}

// UpdateCardProfileRequest 会员卡页面修改姓名和生日
type UpdateCardProfileRequest struct {
	Fullname string `json:"fullname" binding:"required,max=200"`
	Birthday string `json:"birthday" binding:"required"`
}

// StatusInfo 注册流程状态
type StatusInfo struct {
	Status     int  `json:"status"`
	IsVerified bool `json:"is_verified"`
}

// PdpaRequest PDPA 同意请求
type PdpaRequest struct {
	Checkbox1 bool `json:"checkbox1"`
	Checkbox2 bool `json:"checkbox2"`
}

// PdpaInfo PDPA 同意状态
type PdpaInfo struct {
	UserID    int64  `json:"user_id"`
	Checkbox1 bool   `json:"checkbox1"`
	Checkbox2 bool   `json:"checkbox2"`
	UpdatedAt string `json:"updated_at"`
}

// VerifyOTPRequest 邮箱验证码校验
type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required,numeric,min=4,max=10"`
}

// OTPSentResponse 验证码发送结果
type OTPSentResponse struct {
	Email       string `json:"email"`
	ExpiresIn   int    `json:"expires_in"`
	ResendAfter int    `json:"resend_after"`
}
