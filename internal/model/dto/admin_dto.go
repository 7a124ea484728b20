package dto

// AdminUserItem 管理端用户列表项
type AdminUserItem struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	IsAdmin       bool   `json:"is_admin"`
	APILimit      int    `json:"api_limit"`
	APIUsage      int    `json:"api_usage"`
	AnalysesCount int64  `json:"analyses_count"`
	CreatedAt     string `json:"created_at"`
}

// UpdateLimitRequest 调整用户配额请求
type UpdateLimitRequest struct {
	APILimit int `json:"api_limit" binding:"required,min=1,max=10000"`
}

// AnalysisDetail 管理端分析详情（含归属用户）
type AnalysisDetail struct {
	AnalysisItem
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// DashboardData 管理端仪表盘数据
type DashboardData struct {
	Usage     map[string]int64 `json:"usage"`
	UserCount int64            `json:"user_count"`
	Recent    *PageData        `json:"recent"`
}

// PageData 分页数据
type PageData struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Items    interface{} `json:"items"`
}
