package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name      string `json:"name"       binding:"required,max=200"`
	Grade     string `json:"grade"      binding:"omitempty,max=20"`
	Section   string `json:"section"    binding:"omitempty,max=20"`
	TeacherID string `json:"teacher_id" binding:"required,uuid"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name    *string `json:"name"    binding:"omitempty,max=200"`
	Grade   *string `json:"grade"   binding:"omitempty,max=20"`
	Section *string `json:"section" binding:"omitempty,max=20"`
}

// ClassListRequest 班级列表查询参数
type ClassListRequest struct {
	PaginationRequest
	TeacherID string `form:"teacher_id" binding:"omitempty,uuid"`
	Keyword   string `form:"keyword"    binding:"omitempty,max=50"`
}

// EnrollStudentsRequest 批量选课请求
type EnrollStudentsRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,dive,uuid"`
}

// ClassResponse 班级响应
type ClassResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Grade       string `json:"grade"`
	Section     string `json:"section"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name,omitempty"`
	School      string `json:"school"`
}

// TeacherDashboardResponse 教师工作台计数
type TeacherDashboardResponse struct {
	Classes            int `json:"classes"`
	Students           int `json:"students"`
	Assignments        int `json:"assignments"`
	Exams              int `json:"exams"`
	PendingSubmissions int `json:"pending_submissions"`
}

// EnrollResult 批量选课结果
type EnrollResult struct {
	Enrolled int      `json:"enrolled"`
	Skipped  int      `json:"skipped"` // 已在班级中，幂等跳过
	Errors   []string `json:"errors,omitempty"`
}

// ── 学生笔记 DTO ──

// SaveNoteRequest 保存笔记请求
type SaveNoteRequest struct {
	ClassID string                 `json:"class_id" binding:"required,uuid"`
	Content map[string]interface{} `json:"content"  binding:"required"`
}

// UpdateNoteRequest 更新笔记请求
type UpdateNoteRequest struct {
	Content map[string]interface{} `json:"content" binding:"required"`
}

// NoteResponse 笔记响应
type NoteResponse struct {
	ID        string                 `json:"id"`
	ClassID   string                 `json:"class_id"`
	Content   map[string]interface{} `json:"content"`
	UpdatedAt string                 `json:"updated_at"`
}
