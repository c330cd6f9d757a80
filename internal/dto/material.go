package dto

// ── 课程资料 DTO ──

// UploadMaterialRequest 上传资料表单字段（文件随 multipart 提交）
type UploadMaterialRequest struct {
	Title    string `form:"title"     binding:"required,max=300"`
	ClassID  string `form:"class_id"  binding:"omitempty,uuid"`
	IsPublic bool   `form:"is_public"`
}

// MaterialResponse 资料响应
type MaterialResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	ClassID   *string `json:"class_id,omitempty"`
	ClassName string  `json:"class_name,omitempty"`
	FileType  string  `json:"file_type"`
	IsPublic  bool    `json:"is_public"`
	CreatedAt string  `json:"created_at"`
}

// ── 通知 DTO ──

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Icon      string `json:"icon"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}
