package dto

// ── 学费模块 DTO ──

// RecordPaymentRequest 记录缴费请求
type RecordPaymentRequest struct {
	StudentID     string  `json:"student_id"     binding:"required,uuid"`
	ReceiptNumber string  `json:"receipt_number" binding:"required,max=100"`
	Amount        float64 `json:"amount"         binding:"omitempty,min=0"`
	Semester      string  `json:"semester"       binding:"omitempty,max=20"`
}

// UpdateTuitionRequest 更新学费状态请求
type UpdateTuitionRequest struct {
	TuitionStatus string `json:"tuition_status" binding:"required,oneof=unpaid partial paid"`
	AccessDays    int    `json:"access_days"    binding:"omitempty,min=1,max=365"` // partial 时的访问天数
	ReceiptNumber string `json:"receipt_number" binding:"omitempty,max=100"`       // paid 且提供时落台账
}

// ExtendAccessRequest 延长 partial 学生访问请求
type ExtendAccessRequest struct {
	Days int `json:"days" binding:"required,min=1,max=365"`
}

// PaymentResponse 缴费流水响应
type PaymentResponse struct {
	ID            string  `json:"id"`
	ReceiptNumber string  `json:"receipt_number"`
	StudentID     string  `json:"student_id"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Semester      string  `json:"semester"`
	CreatedAt     string  `json:"created_at"`
}

// TuitionStateResponse 学生学费状态响应
type TuitionStateResponse struct {
	StudentID          string            `json:"student_id"`
	TuitionStatus      string            `json:"tuition_status"`
	CanChangePassword  bool              `json:"can_change_password"`
	TempPasswordExpiry *string           `json:"temp_password_expiry,omitempty"`
	AccessExpired      bool              `json:"access_expired"`
	RecentPayments     []PaymentResponse `json:"recent_payments,omitempty"`
}

// ExpiredStudent 临时访问过期的学生（报表项）
type ExpiredStudent struct {
	StudentID string `json:"student_id"`
	IDNumber  string `json:"id_number"`
	FullName  string `json:"full_name"`
	ExpiredAt string `json:"expired_at"`
}
