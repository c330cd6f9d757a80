package model

import "time"

// User 用户表 — 对应 users
// School 是唯一的一等租户键；其余学校域实体通过归属链冗余复制该值。
// School 为 NULL 仅对超级管理员合法。
type User struct {
	UserID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	IDNumber            string     `gorm:"type:varchar(50);not null;uniqueIndex:uq_users_id_number" json:"id_number"`
	PasswordHash        string     `gorm:"type:varchar(255);not null"  json:"-"`
	FirstName           string     `gorm:"type:varchar(100);not null"  json:"first_name"`
	LastName            string     `gorm:"type:varchar(100);not null"  json:"last_name"`
	Email               *string    `gorm:"type:varchar(255)"           json:"email,omitempty"`
	Phone               *string    `gorm:"type:varchar(50)"            json:"phone,omitempty"`
	Role                string     `gorm:"type:varchar(20);not null"   json:"role"`
	School              *string    `gorm:"type:varchar(200);index"     json:"school,omitempty"`
	IsActive            bool       `gorm:"not null;default:true"       json:"is_active"`
	IsTemporaryPassword bool       `gorm:"not null;default:false"      json:"is_temporary_password"`
	PasswordChangedAt   *time.Time `gorm:"type:timestamptz"            json:"password_changed_at,omitempty"`
	DateOfBirth         *time.Time `gorm:"type:date"                   json:"date_of_birth,omitempty"`
	AvatarPath          *string    `gorm:"type:varchar(500)"           json:"avatar_path,omitempty"`
	BaseModel

	// 角色档案（1:1，至多其一非空）
	Admin   *Admin   `gorm:"foreignKey:UserID;references:UserID" json:"admin,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:UserID;references:UserID" json:"teacher,omitempty"`
	Student *Student `gorm:"foreignKey:UserID;references:UserID" json:"student,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 拼接显示名
func (u *User) FullName() string { return u.FirstName + " " + u.LastName }

// SchoolOrEmpty 返回租户键；NULL 视为空串
func (u *User) SchoolOrEmpty() string {
	if u.School == nil {
		return ""
	}
	return *u.School
}

// Admin 管理员档案 — 对应 admins
// RoleLevel = superadmin 是唯一授予跨租户访问的条件
type Admin struct {
	AdminID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"admin_id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:uq_admins_user"  json:"user_id"`
	RoleLevel string `gorm:"type:varchar(20);not null;default:'administrator'" json:"role_level"`
	BaseModel
}

// TableName 指定表名
func (Admin) TableName() string { return "admins" }

// Teacher 教师档案 — 对应 teachers
type Teacher struct {
	TeacherID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:uq_teachers_user" json:"user_id"`
	Subject   string `gorm:"type:varchar(100)" json:"subject"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// Student 学生档案 — 对应 students
// 不变量: CanChangePassword == (TuitionStatus == 'paid')，由
// service.ApplyTuitionTransition 在每次状态迁移时统一维护；
// TempPasswordExpiry 仅在 partial 状态下有值。
type Student struct {
	StudentID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID             string     `gorm:"type:uuid;not null;uniqueIndex:uq_students_user" json:"user_id"`
	Grade              string     `gorm:"type:varchar(20)" json:"grade"`
	Section            string     `gorm:"type:varchar(20)" json:"section"`
	TuitionStatus      string     `gorm:"type:varchar(10);not null;default:'unpaid'" json:"tuition_status"`
	CanChangePassword  bool       `gorm:"not null;default:false" json:"can_change_password"`
	TempPasswordExpiry *time.Time `gorm:"type:timestamptz" json:"temp_password_expiry,omitempty"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// AccessExpired 判定 partial 状态的临时访问是否已过期。
// 过期判定以本方法为准，读取时覆盖缓存的 CanChangePassword 标记。
func (s *Student) AccessExpired(now time.Time) bool {
	return s.TuitionStatus == TuitionPartial &&
		s.TempPasswordExpiry != nil &&
		s.TempPasswordExpiry.Before(now)
}
