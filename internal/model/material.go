package model

import "time"

// Material 课程资料表 — 对应 materials
// ClassID 为空表示不挂靠具体班级；IsPublic 为 true 时对该教师所有学生可见
type Material struct {
	MaterialID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"material_id"`
	TeacherID  string    `gorm:"type:uuid;not null;index" json:"teacher_id"`
	ClassID    *string   `gorm:"type:uuid"                json:"class_id,omitempty"`
	Title      string    `gorm:"type:varchar(300);not null" json:"title"`
	FilePath   string    `gorm:"type:varchar(500);not null" json:"file_path"`
	FileType   string    `gorm:"type:varchar(50)"         json:"file_type"`
	IsPublic   bool      `gorm:"not null;default:false"   json:"is_public"`
	School     string    `gorm:"type:varchar(200);not null;index" json:"school"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
}

// TableName 指定表名
func (Material) TableName() string { return "materials" }

// TuitionPayment 学费缴纳流水 — 对应 tuition_payments
// 不可变台账：收据号全局唯一，只增不改
type TuitionPayment struct {
	PaymentID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	ReceiptNumber string     `gorm:"type:varchar(100);not null;uniqueIndex:uq_tuition_payments_receipt" json:"receipt_number"`
	StudentID     string     `gorm:"type:uuid;not null;index" json:"student_id"`
	Amount        float64    `gorm:"not null;default:0"       json:"amount"`
	Status        string     `gorm:"type:varchar(20);not null;default:'verified'" json:"status"`
	Semester      string     `gorm:"type:varchar(20);not null" json:"semester"`
	VerifiedBy    *string    `gorm:"type:uuid"                json:"verified_by,omitempty"`
	VerifiedAt    *time.Time `gorm:"type:timestamptz"         json:"verified_at,omitempty"`
	School        string     `gorm:"type:varchar(200);not null" json:"school"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (TuitionPayment) TableName() string { return "tuition_payments" }

// Notification 站内通知 — 对应 notifications
// 始终按 user_id 过滤，跨租户不共享；过期通知从活跃查询中排除但不删除
type Notification struct {
	NotificationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string     `gorm:"type:uuid;not null;index:idx_notifications_user" json:"user_id"`
	Title          string     `gorm:"type:varchar(200);not null" json:"title"`
	Message        string     `gorm:"type:text;not null"       json:"message"`
	Icon           string     `gorm:"type:varchar(50);not null;default:'fa-info-circle'" json:"icon"`
	Read           bool       `gorm:"not null;default:false;index:idx_notifications_user" json:"read"`
	ExpiresAt      *time.Time `gorm:"type:timestamptz"         json:"expires_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
