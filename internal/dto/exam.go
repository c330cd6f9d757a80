package dto

// ── 考试模块 DTO ──

// QuestionPayload 试题载荷（创建/导入共用）
type QuestionPayload struct {
	Type          string   `json:"type"          binding:"required,oneof=multiple_choice true_false short_answer"`
	Text          string   `json:"text"          binding:"required"`
	Options       []string `json:"options"       binding:"omitempty,max=10"`
	CorrectAnswer string   `json:"correctAnswer" binding:"omitempty"`
	Marks         float64  `json:"marks"         binding:"omitempty,min=0"`
}

// CreateExamRequest 创建考试请求
type CreateExamRequest struct {
	ClassID     string            `json:"class_id"     binding:"required,uuid"`
	Title       string            `json:"title"        binding:"required,max=300"`
	Questions   []QuestionPayload `json:"questions"    binding:"omitempty,dive"`
	Duration    int               `json:"duration"     binding:"required,min=1,max=600"` // 分钟
	Date        string            `json:"date"         binding:"required"`               // RFC3339
	MaxAttempts int               `json:"max_attempts" binding:"omitempty,min=1,max=10"`
	ShowResults *bool             `json:"show_results" binding:"omitempty"`
	TotalMarks  *float64          `json:"total_marks"  binding:"omitempty,min=0"` // 缺省为题目分值之和
}

// UpdateExamRequest 更新考试请求
type UpdateExamRequest struct {
	Title       *string           `json:"title"        binding:"omitempty,max=300"`
	Questions   []QuestionPayload `json:"questions"    binding:"omitempty,dive"`
	Duration    *int              `json:"duration"     binding:"omitempty,min=1,max=600"`
	Date        *string           `json:"date"         binding:"omitempty"`
	MaxAttempts *int              `json:"max_attempts" binding:"omitempty,min=1,max=10"`
	ShowResults *bool             `json:"show_results" binding:"omitempty"`
	IsActive    *bool             `json:"is_active"    binding:"omitempty"`
}

// SubmitExamRequest 学生交卷请求
type SubmitExamRequest struct {
	Answers   []string `json:"answers"    binding:"required"`
	TimeSpent int      `json:"time_spent" binding:"omitempty,min=0"`
}

// GradeAttemptRequest 教师评卷请求
type GradeAttemptRequest struct {
	TotalScore float64 `json:"total_score" binding:"min=0"`
	Feedback   string  `json:"feedback"    binding:"omitempty"`
}

// ExamResponse 考试响应（教师视角，含题目与答案）
type ExamResponse struct {
	ID          string            `json:"id"`
	ClassID     string            `json:"class_id"`
	Title       string            `json:"title"`
	Questions   []QuestionPayload `json:"questions,omitempty"`
	Duration    int               `json:"duration"`
	Date        string            `json:"date"`
	MaxAttempts int               `json:"max_attempts"`
	ShowResults bool              `json:"show_results"`
	TotalMarks  float64           `json:"total_marks"`
	IsActive    bool              `json:"is_active"`
}

// StudentQuestion 学生视角试题（不含正确答案）
type StudentQuestion struct {
	Type    string   `json:"type"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
	Marks   float64  `json:"marks"`
}

// TakeExamResponse 开考响应
type TakeExamResponse struct {
	AttemptID string            `json:"attempt_id"`
	ExamID    string            `json:"exam_id"`
	Title     string            `json:"title"`
	Duration  int               `json:"duration"`
	EndsAt    string            `json:"ends_at"`
	Questions []StudentQuestion `json:"questions"`
}

// SubmitExamResponse 交卷响应
type SubmitExamResponse struct {
	AttemptID      string  `json:"attempt_id"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"total_questions"`
}

// AttemptResponse 答卷响应
type AttemptResponse struct {
	ID          string   `json:"id"`
	ExamID      string   `json:"exam_id"`
	ExamTitle   string   `json:"exam_title,omitempty"`
	StudentID   string   `json:"student_id"`
	StudentName string   `json:"student_name,omitempty"`
	Status      string   `json:"status"`
	Answers     []string `json:"answers,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Feedback    *string  `json:"feedback,omitempty"`
	TimeSpent   int      `json:"time_spent"`
	StartedAt   string   `json:"started_at"`
	SubmittedAt *string  `json:"submitted_at,omitempty"`
}

// PublishResultsResponse 批量发布响应
type PublishResultsResponse struct {
	Published        int `json:"published"`
	NotifiedStudents int `json:"notified_students"`
}

// ImportQuestionsResponse 题目文件导入响应
type ImportQuestionsResponse struct {
	Imported   int     `json:"imported"`
	TotalMarks float64 `json:"total_marks"`
}
