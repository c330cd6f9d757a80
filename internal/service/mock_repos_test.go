package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/Danosky8082/EdTech/config"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
)

// 内存仓储：测试用，map 存储，行为与 SQL 实现对齐

var mockIDSeq int

func nextID(prefix string) string {
	mockIDSeq++
	return prefix + "-" + strconv.Itoa(mockIDSeq)
}

// tenantVisible 模拟租户过滤作用域
func tenantVisible(tc *tenant.Context, school string) bool {
	if tc.IsSuperAdmin {
		return true
	}
	if tc.School == "" {
		return false
	}
	return school == tc.School
}

// ── 用户 ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) CreateAdmin(_ context.Context, admin *model.Admin) error {
	if admin.AdminID == "" {
		admin.AdminID = nextID("admin")
	}
	if u, ok := m.users[admin.UserID]; ok {
		u.Admin = admin
	}
	return nil
}

func (m *mockUserRepo) CreateTeacher(_ context.Context, teacher *model.Teacher) error {
	if teacher.TeacherID == "" {
		teacher.TeacherID = nextID("teacher")
	}
	if u, ok := m.users[teacher.UserID]; ok {
		u.Teacher = teacher
	}
	return nil
}

func (m *mockUserRepo) CreateStudent(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		student.StudentID = nextID("student")
	}
	if u, ok := m.users[student.UserID]; ok {
		u.Student = student
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) GetByIDNumber(_ context.Context, idNumber string) (*model.User, error) {
	for _, u := range m.users {
		if u.IDNumber == idNumber {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByTeacherID(_ context.Context, teacherID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Teacher != nil && u.Teacher.TeacherID == teacherID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Student != nil && u.Student.StudentID == studentID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) List(_ context.Context, tc *tenant.Context, req *dto.UserListRequest) ([]*model.User, int64, error) {
	var out []*model.User
	for _, u := range m.users {
		if !tenantVisible(tc, u.SchoolOrEmpty()) {
			continue
		}
		if req.Role != "" && u.Role != req.Role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) UpdateStudent(_ context.Context, student *model.Student) error {
	if u, _ := m.GetByStudentID(context.Background(), student.StudentID); u != nil {
		u.Student = student
	}
	return nil
}

func (m *mockUserRepo) UpdateTeacher(_ context.Context, teacher *model.Teacher) error {
	if u, _ := m.GetByTeacherID(context.Background(), teacher.TeacherID); u != nil {
		u.Teacher = teacher
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) ExistsByIDNumber(_ context.Context, idNumber string) (bool, error) {
	u, _ := m.GetByIDNumber(context.Background(), idNumber)
	return u != nil, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, tc *tenant.Context, role string) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.Role == role && tenantVisible(tc, u.SchoolOrEmpty()) {
			count++
		}
	}
	return count, nil
}

func (m *mockUserRepo) ListSchools(_ context.Context) ([]dto.SchoolSummary, error) {
	counts := make(map[string]int64)
	for _, u := range m.users {
		if u.School != nil && *u.School != "" {
			counts[*u.School]++
		}
	}
	var out []dto.SchoolSummary
	for school, count := range counts {
		out = append(out, dto.SchoolSummary{School: school, UserCount: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].School < out[j].School })
	return out, nil
}

func (m *mockUserRepo) ListExpiredStudents(_ context.Context, tc *tenant.Context, now time.Time) ([]*model.User, error) {
	var out []*model.User
	for _, u := range m.users {
		if u.Student == nil || !tenantVisible(tc, u.SchoolOrEmpty()) {
			continue
		}
		if u.Student.TuitionStatus == model.TuitionPartial &&
			u.Student.TempPasswordExpiry != nil &&
			u.Student.TempPasswordExpiry.Before(now) {
			out = append(out, u)
		}
	}
	return out, nil
}

// ── 班级 ──

type mockClassRepo struct {
	classes map[string]*model.Class
	enroll  *mockEnrollmentRepo
}

func newMockClassRepo(enroll *mockEnrollmentRepo) *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class), enroll: enroll}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		class.ClassID = nextID("class")
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	return m.classes[id], nil
}

func (m *mockClassRepo) List(_ context.Context, tc *tenant.Context, req *dto.ClassListRequest) ([]*model.Class, int64, error) {
	var out []*model.Class
	for _, c := range m.classes {
		if !tenantVisible(tc, c.School) {
			continue
		}
		if req.TeacherID != "" && c.TeacherID != req.TeacherID {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (m *mockClassRepo) ListByTeacher(_ context.Context, teacherID string) ([]*model.Class, error) {
	var out []*model.Class
	for _, c := range m.classes {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClassRepo) ListByStudent(_ context.Context, studentID string) ([]*model.Class, error) {
	var out []*model.Class
	for _, e := range m.enroll.enrollments {
		if e.StudentID == studentID {
			if c, ok := m.classes[e.ClassID]; ok {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) Count(_ context.Context, tc *tenant.Context) (int64, error) {
	var count int64
	for _, c := range m.classes {
		if tenantVisible(tc, c.School) {
			count++
		}
	}
	return count, nil
}

// ── 选课 ──

type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment // key: classID + "/" + studentID
	users       *mockUserRepo
}

func newMockEnrollmentRepo(users *mockUserRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[string]*model.Enrollment), users: users}
}

// preload 模拟 SQL 仓储的 Preload(Student, Student.User)
func (m *mockEnrollmentRepo) preload(e *model.Enrollment) *model.Enrollment {
	if e.Student == nil {
		if u, _ := m.users.GetByStudentID(context.Background(), e.StudentID); u != nil {
			profile := *u.Student
			profile.User = u
			e.Student = &profile
		}
	}
	return e
}

func enrollKey(classID, studentID string) string { return classID + "/" + studentID }

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	if e.EnrollmentID == "" {
		e.EnrollmentID = nextID("enroll")
	}
	m.enrollments[enrollKey(e.ClassID, e.StudentID)] = e
	return nil
}

func (m *mockEnrollmentRepo) Get(_ context.Context, classID, studentID string) (*model.Enrollment, error) {
	return m.enrollments[enrollKey(classID, studentID)], nil
}

func (m *mockEnrollmentRepo) Exists(_ context.Context, classID, studentID string) (bool, error) {
	_, ok := m.enrollments[enrollKey(classID, studentID)]
	return ok, nil
}

func (m *mockEnrollmentRepo) ListByClass(_ context.Context, classID string) ([]*model.Enrollment, error) {
	var out []*model.Enrollment
	for _, e := range m.enrollments {
		if e.ClassID == classID {
			out = append(out, m.preload(e))
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]*model.Enrollment, error) {
	var out []*model.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, classID, studentID string) error {
	delete(m.enrollments, enrollKey(classID, studentID))
	return nil
}

func (m *mockEnrollmentRepo) DeleteByClass(_ context.Context, classID string) error {
	for k, e := range m.enrollments {
		if e.ClassID == classID {
			delete(m.enrollments, k)
		}
	}
	return nil
}

// ── 笔记 ──

type mockNoteRepo struct {
	notes map[string]*model.StudentNote
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]*model.StudentNote)}
}

func (m *mockNoteRepo) Create(_ context.Context, note *model.StudentNote) error {
	if note.NoteID == "" {
		note.NoteID = nextID("note")
	}
	m.notes[note.NoteID] = note
	return nil
}

func (m *mockNoteRepo) GetByID(_ context.Context, id string) (*model.StudentNote, error) {
	return m.notes[id], nil
}

func (m *mockNoteRepo) ListByStudent(_ context.Context, studentID string) ([]*model.StudentNote, error) {
	var out []*model.StudentNote
	for _, n := range m.notes {
		if n.StudentID == studentID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNoteRepo) ListByStudentClass(_ context.Context, studentID, classID string) ([]*model.StudentNote, error) {
	var out []*model.StudentNote
	for _, n := range m.notes {
		if n.StudentID == studentID && n.ClassID == classID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNoteRepo) Update(_ context.Context, note *model.StudentNote) error {
	m.notes[note.NoteID] = note
	return nil
}

func (m *mockNoteRepo) Delete(_ context.Context, id string) error {
	delete(m.notes, id)
	return nil
}

// ── 作业 ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	enroll      *mockEnrollmentRepo
}

func newMockAssignmentRepo(enroll *mockEnrollmentRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.Assignment), enroll: enroll}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = nextID("assignment")
	}
	m.assignments[a.AssignmentID] = a
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	return m.assignments[id], nil
}

func (m *mockAssignmentRepo) ListByClass(_ context.Context, classID string) ([]*model.Assignment, error) {
	var out []*model.Assignment
	for _, a := range m.assignments {
		if a.ClassID == classID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) ListByTeacher(_ context.Context, teacherID string) ([]*model.Assignment, error) {
	var out []*model.Assignment
	for _, a := range m.assignments {
		if a.TeacherID == teacherID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) ListByStudent(_ context.Context, tc *tenant.Context, studentID string) ([]*model.Assignment, error) {
	var out []*model.Assignment
	for _, a := range m.assignments {
		if !tenantVisible(tc, a.School) {
			continue
		}
		if ok, _ := m.enroll.Exists(context.Background(), a.ClassID, studentID); ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	m.assignments[a.AssignmentID] = a
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	delete(m.assignments, id)
	return nil
}

// ── 提交 ──

type mockSubmissionRepo struct {
	submissions map[string]*model.Submission // key: assignmentID + "/" + studentID
	assignments *mockAssignmentRepo
	users       *mockUserRepo
}

func newMockSubmissionRepo(assignments *mockAssignmentRepo, users *mockUserRepo) *mockSubmissionRepo {
	return &mockSubmissionRepo{
		submissions: make(map[string]*model.Submission),
		assignments: assignments,
		users:       users,
	}
}

// preload 模拟 SQL 仓储的 Preload(Assignment, Student.User)
func (m *mockSubmissionRepo) preload(s *model.Submission) *model.Submission {
	if s == nil {
		return nil
	}
	if s.Assignment == nil {
		s.Assignment = m.assignments.assignments[s.AssignmentID]
	}
	if s.Student == nil {
		if u, _ := m.users.GetByStudentID(context.Background(), s.StudentID); u != nil {
			profile := *u.Student
			profile.User = u
			s.Student = &profile
		}
	}
	return s
}

func (m *mockSubmissionRepo) Upsert(_ context.Context, s *model.Submission) error {
	key := enrollKey(s.AssignmentID, s.StudentID)
	if existing, ok := m.submissions[key]; ok {
		// 与 SQL ON CONFLICT 对齐：覆盖内容并清空评分
		existing.SubmissionType = s.SubmissionType
		existing.Content = s.Content
		existing.SubmittedAt = s.SubmittedAt
		existing.Grade = nil
		existing.Feedback = nil
		return nil
	}
	if s.SubmissionID == "" {
		s.SubmissionID = nextID("submission")
	}
	m.submissions[key] = s
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	for _, s := range m.submissions {
		if s.SubmissionID == id {
			return m.preload(s), nil
		}
	}
	return nil, nil
}

func (m *mockSubmissionRepo) Get(_ context.Context, assignmentID, studentID string) (*model.Submission, error) {
	return m.submissions[enrollKey(assignmentID, studentID)], nil
}

func (m *mockSubmissionRepo) ListByAssignment(_ context.Context, assignmentID string) ([]*model.Submission, error) {
	var out []*model.Submission
	for _, s := range m.submissions {
		if s.AssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubmissionRepo) ListByStudent(_ context.Context, studentID string) ([]*model.Submission, error) {
	var out []*model.Submission
	for _, s := range m.submissions {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubmissionRepo) Update(_ context.Context, s *model.Submission) error {
	m.submissions[enrollKey(s.AssignmentID, s.StudentID)] = s
	return nil
}

// ── 考试 ──

type mockExamRepo struct {
	exams  map[string]*model.Exam
	enroll *mockEnrollmentRepo
}

func newMockExamRepo(enroll *mockEnrollmentRepo) *mockExamRepo {
	return &mockExamRepo{exams: make(map[string]*model.Exam), enroll: enroll}
}

func (m *mockExamRepo) Create(_ context.Context, e *model.Exam) error {
	if e.ExamID == "" {
		e.ExamID = nextID("exam")
	}
	m.exams[e.ExamID] = e
	return nil
}

func (m *mockExamRepo) GetByID(_ context.Context, id string) (*model.Exam, error) {
	return m.exams[id], nil
}

func (m *mockExamRepo) ListByClass(_ context.Context, classID string) ([]*model.Exam, error) {
	var out []*model.Exam
	for _, e := range m.exams {
		if e.ClassID == classID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockExamRepo) ListByTeacher(_ context.Context, teacherID string) ([]*model.Exam, error) {
	var out []*model.Exam
	for _, e := range m.exams {
		if e.TeacherID == teacherID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockExamRepo) ListByStudent(_ context.Context, tc *tenant.Context, studentID string) ([]*model.Exam, error) {
	var out []*model.Exam
	for _, e := range m.exams {
		if !e.IsActive || !tenantVisible(tc, e.School) {
			continue
		}
		if ok, _ := m.enroll.Exists(context.Background(), e.ClassID, studentID); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockExamRepo) Update(_ context.Context, e *model.Exam) error {
	m.exams[e.ExamID] = e
	return nil
}

func (m *mockExamRepo) Delete(_ context.Context, id string) error {
	delete(m.exams, id)
	return nil
}

// ── 答卷 ──

type mockAttemptRepo struct {
	attempts map[string]*model.ExamAttempt
}

func newMockAttemptRepo() *mockAttemptRepo {
	return &mockAttemptRepo{attempts: make(map[string]*model.ExamAttempt)}
}

func (m *mockAttemptRepo) Create(_ context.Context, a *model.ExamAttempt) error {
	if a.AttemptID == "" {
		a.AttemptID = nextID("attempt")
	}
	m.attempts[a.AttemptID] = a
	return nil
}

func (m *mockAttemptRepo) GetByID(_ context.Context, id string) (*model.ExamAttempt, error) {
	return m.attempts[id], nil
}

func (m *mockAttemptRepo) GetInProgress(_ context.Context, examID, studentID string) (*model.ExamAttempt, error) {
	for _, a := range m.attempts {
		if a.ExamID == examID && a.StudentID == studentID && a.Status == model.AttemptInProgress {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAttemptRepo) CountByExamStudent(_ context.Context, examID, studentID string) (int64, error) {
	var count int64
	for _, a := range m.attempts {
		if a.ExamID == examID && a.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (m *mockAttemptRepo) ListByExam(_ context.Context, examID string, statuses ...string) ([]*model.ExamAttempt, error) {
	var out []*model.ExamAttempt
	for _, a := range m.attempts {
		if a.ExamID == examID && statusMatch(a.Status, statuses) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAttemptRepo) ListByStudent(_ context.Context, studentID string, statuses ...string) ([]*model.ExamAttempt, error) {
	var out []*model.ExamAttempt
	for _, a := range m.attempts {
		if a.StudentID == studentID && statusMatch(a.Status, statuses) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAttemptRepo) Update(_ context.Context, a *model.ExamAttempt) error {
	m.attempts[a.AttemptID] = a
	return nil
}

func statusMatch(status string, statuses []string) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

// ── 资料 ──

type mockMaterialRepo struct {
	materials map[string]*model.Material
	enroll    *mockEnrollmentRepo
	classes   *mockClassRepo
}

func newMockMaterialRepo(enroll *mockEnrollmentRepo, classes *mockClassRepo) *mockMaterialRepo {
	return &mockMaterialRepo{
		materials: make(map[string]*model.Material),
		enroll:    enroll,
		classes:   classes,
	}
}

func (m *mockMaterialRepo) Create(_ context.Context, material *model.Material) error {
	if material.MaterialID == "" {
		material.MaterialID = nextID("material")
	}
	m.materials[material.MaterialID] = material
	return nil
}

func (m *mockMaterialRepo) GetByID(_ context.Context, id string) (*model.Material, error) {
	return m.materials[id], nil
}

func (m *mockMaterialRepo) ListByTeacher(_ context.Context, teacherID string) ([]*model.Material, error) {
	var out []*model.Material
	for _, material := range m.materials {
		if material.TeacherID == teacherID {
			out = append(out, material)
		}
	}
	return out, nil
}

func (m *mockMaterialRepo) ListForStudent(ctx context.Context, tc *tenant.Context, studentID string) ([]*model.Material, error) {
	teacherIDs := make(map[string]bool)
	classes, _ := m.classes.ListByStudent(ctx, studentID)
	for _, c := range classes {
		teacherIDs[c.TeacherID] = true
	}

	var out []*model.Material
	for _, material := range m.materials {
		if !tenantVisible(tc, material.School) {
			continue
		}
		if material.ClassID != nil {
			if ok, _ := m.enroll.Exists(ctx, *material.ClassID, studentID); ok {
				out = append(out, material)
				continue
			}
		}
		if material.IsPublic && teacherIDs[material.TeacherID] {
			out = append(out, material)
		}
	}
	return out, nil
}

func (m *mockMaterialRepo) Delete(_ context.Context, id string) error {
	delete(m.materials, id)
	return nil
}

// ── 学费 ──

type mockTuitionRepo struct {
	payments map[string]*model.TuitionPayment // key: receipt number
	students *mockUserRepo
}

func newMockTuitionRepo(students *mockUserRepo) *mockTuitionRepo {
	return &mockTuitionRepo{payments: make(map[string]*model.TuitionPayment), students: students}
}

func (m *mockTuitionRepo) Create(_ context.Context, p *model.TuitionPayment) error {
	if p.PaymentID == "" {
		p.PaymentID = nextID("payment")
	}
	m.payments[p.ReceiptNumber] = p
	return nil
}

func (m *mockTuitionRepo) GetByReceiptNumber(_ context.Context, receiptNumber string) (*model.TuitionPayment, error) {
	return m.payments[receiptNumber], nil
}

func (m *mockTuitionRepo) ExistsByReceiptNumber(_ context.Context, receiptNumber string) (bool, error) {
	_, ok := m.payments[receiptNumber]
	return ok, nil
}

func (m *mockTuitionRepo) ListByStudent(_ context.Context, studentID string, limit int) ([]*model.TuitionPayment, error) {
	var out []*model.TuitionPayment
	for _, p := range m.payments {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockTuitionRepo) List(_ context.Context, tc *tenant.Context) ([]*model.TuitionPayment, error) {
	var out []*model.TuitionPayment
	for _, p := range m.payments {
		if tenantVisible(tc, p.School) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockTuitionRepo) CountStudentsByStatus(_ context.Context, tc *tenant.Context, status string) (int64, error) {
	var count int64
	for _, u := range m.students.users {
		if u.Student != nil && u.Student.TuitionStatus == status && tenantVisible(tc, u.SchoolOrEmpty()) {
			count++
		}
	}
	return count, nil
}

// ── 通知 ──

type mockNotificationRepo struct {
	notifications []*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.NotificationID == "" {
		n.NotificationID = nextID("notification")
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, ns []*model.Notification) error {
	for _, n := range ns {
		if err := m.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockNotificationRepo) ListActive(_ context.Context, userID string, now time.Time, limit int) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if n.ExpiresAt != nil && !n.ExpiresAt.After(now) {
			continue
		}
		out = append(out, n)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string, now time.Time) (int64, error) {
	active, _ := m.ListActive(ctx, userID, now, 0)
	var count int64
	for _, n := range active {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, userID, notificationID string) error {
	for _, n := range m.notifications {
		if n.NotificationID == notificationID && n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

// forUser 测试辅助：取某用户的全部通知
func (m *mockNotificationRepo) forUser(userID string) []*model.Notification {
	var out []*model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// ── 组装 ──

type mockRepos struct {
	user         *mockUserRepo
	class        *mockClassRepo
	enroll       *mockEnrollmentRepo
	note         *mockNoteRepo
	assignment   *mockAssignmentRepo
	submission   *mockSubmissionRepo
	exam         *mockExamRepo
	attempt      *mockAttemptRepo
	material     *mockMaterialRepo
	tuition      *mockTuitionRepo
	notification *mockNotificationRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	user := newMockUserRepo()
	enroll := newMockEnrollmentRepo(user)
	class := newMockClassRepo(enroll)
	assignment := newMockAssignmentRepo(enroll)
	mocks := &mockRepos{
		user:         user,
		class:        class,
		enroll:       enroll,
		note:         newMockNoteRepo(),
		assignment:   assignment,
		submission:   newMockSubmissionRepo(assignment, user),
		exam:         newMockExamRepo(enroll),
		attempt:      newMockAttemptRepo(),
		material:     newMockMaterialRepo(enroll, class),
		tuition:      newMockTuitionRepo(user),
		notification: newMockNotificationRepo(),
	}
	repo := &repository.Repository{
		User:         mocks.user,
		Class:        mocks.class,
		Enrollment:   mocks.enroll,
		Note:         mocks.note,
		Assignment:   mocks.assignment,
		Submission:   mocks.submission,
		Exam:         mocks.exam,
		Attempt:      mocks.attempt,
		Material:     mocks.material,
		Tuition:      mocks.tuition,
		Notification: mocks.notification,
	}
	return repo, mocks
}

// ── 造数辅助 ──

func strPtr(s string) *string { return &s }

func seedStudent(user *mockUserRepo, school, idNumber, passwordHash, status string, expiry *time.Time) *model.User {
	u := &model.User{
		UserID:       nextID("user"),
		IDNumber:     idNumber,
		PasswordHash: passwordHash,
		FirstName:    "测试",
		LastName:     "学生",
		Role:         model.RoleStudent,
		School:       strPtr(school),
		IsActive:     true,
	}
	u.Student = &model.Student{
		StudentID:          nextID("student"),
		UserID:             u.UserID,
		Grade:              "10",
		Section:            "A",
		TuitionStatus:      status,
		CanChangePassword:  status == model.TuitionPaid,
		TempPasswordExpiry: expiry,
	}
	user.users[u.UserID] = u
	return u
}

func seedTeacher(user *mockUserRepo, school, idNumber string) *model.User {
	u := &model.User{
		UserID:    nextID("user"),
		IDNumber:  idNumber,
		FirstName: "测试",
		LastName:  "教师",
		Role:      model.RoleTeacher,
		School:    strPtr(school),
		IsActive:  true,
	}
	u.Teacher = &model.Teacher{
		TeacherID: nextID("teacher"),
		UserID:    u.UserID,
		Subject:   "数学",
	}
	user.users[u.UserID] = u
	return u
}

func seedAdmin(user *mockUserRepo, school, idNumber, roleLevel string) *model.User {
	u := &model.User{
		UserID:    nextID("user"),
		IDNumber:  idNumber,
		FirstName: "测试",
		LastName:  "管理员",
		Role:      model.RoleAdmin,
		IsActive:  true,
	}
	if school != "" {
		u.School = strPtr(school)
	}
	u.Admin = &model.Admin{
		AdminID:   nextID("admin"),
		UserID:    u.UserID,
		RoleLevel: roleLevel,
	}
	user.users[u.UserID] = u
	return u
}

// tenantFor 从用户行解析安全上下文（与中间件一致）
func tenantFor(u *model.User) *tenant.Context {
	return tenant.Resolve(u)
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
			DefaultPassword:         "12345",
		},
		Tuition: config.TuitionConfig{TempPasswordDays: 30},
	}
}
