package dto

// AnalysisItem 分析记录（用户列表与管理端共用）
type AnalysisItem struct {
	ID        int64                  `json:"id"`
	UserID    int64                  `json:"user_id"`
	FilePath  string                 `json:"file_path,omitempty"`
	FileURL   string                 `json:"file_url,omitempty"`
	Service   string                 `json:"service"`
	Result    map[string]interface{} `json:"result"`
	Verdict   string                 `json:"verdict"`
	CreatedAt string                 `json:"created_at"`
}
