package dto

// LineLoginRequest LIFF 登录请求
type LineLoginRequest struct {
	LineUserID  string `json:"line_user_id" binding:"required,max=64"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
	PictureURL  string `json:"picture_url" binding:"omitempty,max=500"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// LineAuthURLResponse LINE 授权地址
type LineAuthURLResponse struct {
	URL string `json:"url"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID          int64  `json:"id"`
	LineUserID  string `json:"line_user_id"`
	DisplayName string `json:"display_name,omitempty"`
	PictureURL  string `json:"picture_url,omitempty"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email,omitempty"`
	Birthday    string `json:"birthday,omitempty"`
	IsVerified  bool   `json:"is_verified"`
	Status      int    `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
}
