package dto

// ── 用户模块 DTO ──

// CreateUserRequest 管理员创建用户请求
// 角色档案字段按 role 取用：student → grade/section/tuition_status，
// teacher → subject，admin → role_level
type CreateUserRequest struct {
	IDNumber      string  `json:"id_number"      binding:"required,max=50"`
	FirstName     string  `json:"first_name"     binding:"required,max=100"`
	LastName      string  `json:"last_name"      binding:"required,max=100"`
	Email         *string `json:"email"          binding:"omitempty,email"`
	Phone         *string `json:"phone"          binding:"omitempty,max=50"`
	Role          string  `json:"role"           binding:"required,oneof=student teacher admin"`
	School        string  `json:"school"         binding:"omitempty,max=200"`
	DateOfBirth   *string `json:"date_of_birth"  binding:"omitempty,datetime=2006-01-02"`
	Grade         string  `json:"grade"          binding:"omitempty,max=20"`
	Section       string  `json:"section"        binding:"omitempty,max=20"`
	TuitionStatus string  `json:"tuition_status" binding:"omitempty,oneof=unpaid partial paid"`
	ReceiptNumber string  `json:"receipt_number" binding:"omitempty,max=100"`
	Subject       string  `json:"subject"        binding:"omitempty,max=100"`
	RoleLevel     string  `json:"role_level"     binding:"omitempty,oneof=superadmin principal headteacher administrator"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role     string `form:"role"      binding:"omitempty,oneof=student teacher admin"`
	School   string `form:"school"    binding:"omitempty,max=200"` // 仅超管生效
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
	IsActive *bool  `form:"is_active" binding:"omitempty"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=100"`
	Email     *string `json:"email"      binding:"omitempty,email"`
	Phone     *string `json:"phone"      binding:"omitempty,max=50"`
	Grade     *string `json:"grade"      binding:"omitempty,max=20"`
	Section   *string `json:"section"    binding:"omitempty,max=20"`
	Subject   *string `json:"subject"    binding:"omitempty,max=100"`
}

// ResetStudentPasswordRequest 管理员重置学生密码请求
type ResetStudentPasswordRequest struct {
	// full: 永久密码，仅限已缴清学生; temporary: 带有效期的临时密码
	PasswordType string `json:"password_type" binding:"required,oneof=full temporary"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string  `json:"temp_password"`
	IsTemporary  bool    `json:"is_temporary"`
	ExpiryDate   *string `json:"expiry_date,omitempty"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string  `json:"id"`
	IDNumber  string  `json:"id_number"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
	School    *string `json:"school,omitempty"`
	IsActive  bool    `json:"is_active"`

	AvatarPath *string `json:"avatar_path,omitempty"`

	// 角色档案（按角色至多其一）
	Student *StudentProfile `json:"student,omitempty"`
	Teacher *TeacherProfile `json:"teacher,omitempty"`
	Admin   *AdminProfile   `json:"admin,omitempty"`
}

// StudentProfile 学生档案响应
type StudentProfile struct {
	StudentID          string  `json:"student_id"`
	Grade              string  `json:"grade"`
	Section            string  `json:"section"`
	TuitionStatus      string  `json:"tuition_status"`
	CanChangePassword  bool    `json:"can_change_password"`
	TempPasswordExpiry *string `json:"temp_password_expiry,omitempty"`
}

// TeacherProfile 教师档案响应
type TeacherProfile struct {
	TeacherID string `json:"teacher_id"`
	Subject   string `json:"subject"`
}

// AdminProfile 管理员档案响应
type AdminProfile struct {
	AdminID   string `json:"admin_id"`
	RoleLevel string `json:"role_level"`
}

// CreateUserResponse 创建用户响应（附初始密码，由管理员转交）
type CreateUserResponse struct {
	User         *UserResponse `json:"user"`
	TempPassword string        `json:"temp_password"`
}

// SchoolSummary 学校汇总（仅超管可见）
type SchoolSummary struct {
	School    string `json:"school"`
	UserCount int64  `json:"user_count"`
}

// AnalyticsResponse 管理端统计
type AnalyticsResponse struct {
	TotalStudents  int64 `json:"total_students"`
	TotalTeachers  int64 `json:"total_teachers"`
	TotalClasses   int64 `json:"total_classes"`
	TuitionPaid    int64 `json:"tuition_paid"`
	TuitionPartial int64 `json:"tuition_partial"`
	TuitionUnpaid  int64 `json:"tuition_unpaid"`
}
