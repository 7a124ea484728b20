package dto

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsAdmin   bool   `json:"is_admin"`
	APILimit  int    `json:"api_limit"`
	APIUsage  int    `json:"api_usage"`
	CreatedAt string `json:"created_at,omitempty"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=6"`
}
