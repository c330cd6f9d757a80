package dto

// ── 作业模块 DTO ──

// CreateAssignmentRequest 创建作业请求
type CreateAssignmentRequest struct {
	ClassID     string `json:"class_id"    binding:"required,uuid"`
	Title       string `json:"title"       binding:"required,max=300"`
	Description string `json:"description" binding:"omitempty"`
	DueDate     string `json:"due_date"    binding:"required"` // RFC3339
	Points      int    `json:"points"      binding:"omitempty,min=1,max=1000"`
}

// UpdateAssignmentRequest 更新作业请求
type UpdateAssignmentRequest struct {
	Title       *string `json:"title"       binding:"omitempty,max=300"`
	Description *string `json:"description" binding:"omitempty"`
	DueDate     *string `json:"due_date"    binding:"omitempty"`
	Points      *int    `json:"points"      binding:"omitempty,min=1,max=1000"`
}

// AssignmentResponse 作业响应
type AssignmentResponse struct {
	ID          string `json:"id"`
	ClassID     string `json:"class_id"`
	ClassName   string `json:"class_name,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Points      int    `json:"points"`
	Closed      bool   `json:"closed"` // 是否已过截止时间
}

// ── 提交模块 DTO ──

// SubmitTextRequest 文本/绘图类提交请求
type SubmitTextRequest struct {
	SubmissionType string `json:"submission_type" binding:"required,oneof=text drawing"`
	Content        string `json:"content"         binding:"required"`
}

// GradeSubmissionRequest 作业评分请求
type GradeSubmissionRequest struct {
	Grade    float64 `json:"grade"    binding:"min=0"`
	Feedback string  `json:"feedback" binding:"omitempty"`
}

// SubmissionResponse 提交响应
type SubmissionResponse struct {
	ID             string   `json:"id"`
	AssignmentID   string   `json:"assignment_id"`
	StudentID      string   `json:"student_id"`
	StudentName    string   `json:"student_name,omitempty"`
	SubmissionType string   `json:"submission_type"`
	Content        string   `json:"content"`
	Grade          *float64 `json:"grade,omitempty"`
	Feedback       *string  `json:"feedback,omitempty"`
	SubmittedAt    string   `json:"submitted_at"`
}
