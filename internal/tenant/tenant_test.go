package tenant

import (
	"testing"

	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/pkg/apperr"
)

func strptr(s string) *string { return &s }

// ── Resolve 判定规则 ──

func TestResolve_SuperAdmin(t *testing.T) {
	school := "Greenwood"
	u := &model.User{
		UserID: "u-1",
		Role:   model.RoleAdmin,
		School: &school, // 超管即使带学校也不绑定租户
		Admin:  &model.Admin{AdminID: "a-1", RoleLevel: model.RoleLevelSuperAdmin},
	}

	ctx := Resolve(u)

	if !ctx.IsSuperAdmin {
		t.Error("期望 IsSuperAdmin=true")
	}
	if ctx.School != "" {
		t.Errorf("超管 School 应为空，实际=%q", ctx.School)
	}
	if !ctx.CanSeeAllSchoolUsers {
		t.Error("期望 CanSeeAllSchoolUsers=true")
	}
	if ctx.ProfileID != "a-1" {
		t.Errorf("期望 ProfileID=a-1，实际=%s", ctx.ProfileID)
	}
}

func TestResolve_SchoolAdmin(t *testing.T) {
	u := &model.User{
		UserID: "u-2",
		Role:   model.RoleAdmin,
		School: strptr("Greenwood"),
		Admin:  &model.Admin{AdminID: "a-2", RoleLevel: model.RoleLevelPrincipal},
	}

	ctx := Resolve(u)

	if ctx.IsSuperAdmin {
		t.Error("principal 不应是超管")
	}
	if ctx.School != "Greenwood" {
		t.Errorf("期望 School=Greenwood，实际=%q", ctx.School)
	}
	if !ctx.CanSeeAllSchoolUsers {
		t.Error("校级管理员应可见本校全部用户")
	}
}

func TestResolve_Teacher(t *testing.T) {
	u := &model.User{
		UserID:  "u-3",
		Role:    model.RoleTeacher,
		School:  strptr("Riverview"),
		Teacher: &model.Teacher{TeacherID: "t-1"},
	}

	ctx := Resolve(u)

	if ctx.IsSuperAdmin || ctx.CanSeeAllSchoolUsers {
		t.Error("教师不应获得扩展可见性")
	}
	if ctx.School != "Riverview" {
		t.Errorf("期望 School=Riverview，实际=%q", ctx.School)
	}
	if ctx.ProfileID != "t-1" {
		t.Errorf("期望 ProfileID=t-1，实际=%s", ctx.ProfileID)
	}
}

func TestResolve_Student(t *testing.T) {
	u := &model.User{
		UserID:  "u-4",
		Role:    model.RoleStudent,
		School:  strptr("Riverview"),
		Student: &model.Student{StudentID: "s-1"},
	}

	ctx := Resolve(u)

	if ctx.IsSuperAdmin || ctx.CanSeeAllSchoolUsers {
		t.Error("学生不应获得扩展可见性")
	}
	if ctx.ProfileID != "s-1" {
		t.Errorf("期望 ProfileID=s-1，实际=%s", ctx.ProfileID)
	}
}

func TestResolve_CorruptedRole(t *testing.T) {
	u := &model.User{
		UserID: "u-5",
		Role:   "ghost",
		School: strptr("Greenwood"),
	}

	ctx := Resolve(u)

	if ctx.IsSuperAdmin || ctx.CanSeeAllSchoolUsers {
		t.Error("未知角色按最小权限处理")
	}
	if ctx.School != "Greenwood" {
		t.Errorf("期望保留 School=Greenwood，实际=%q", ctx.School)
	}
}

func TestResolve_AdminWithoutProfile(t *testing.T) {
	// role=admin 但无 Admin 档案的退化数据：落入兜底分支
	u := &model.User{UserID: "u-6", Role: model.RoleAdmin}

	ctx := Resolve(u)

	if ctx.IsSuperAdmin || ctx.CanSeeAllSchoolUsers {
		t.Error("缺失档案的 admin 不应获得任何扩展可见性")
	}
	if ctx.School != "" {
		t.Errorf("期望 School 为空，实际=%q", ctx.School)
	}
}

// ── Authorize 单实体鉴权 ──

func TestAuthorize_SameSchool(t *testing.T) {
	ctx := &Context{School: "Greenwood"}
	if err := Authorize(ctx, "Greenwood"); err != nil {
		t.Errorf("同校访问应放行: %v", err)
	}
}

func TestAuthorize_CrossSchool(t *testing.T) {
	ctx := &Context{School: "Greenwood"}
	err := Authorize(ctx, "Riverview")
	if !apperr.IsAccessDenied(err) {
		t.Errorf("跨校访问应返回 AccessDenied，实际: %v", err)
	}
}

func TestAuthorize_SuperAdminBypass(t *testing.T) {
	ctx := &Context{IsSuperAdmin: true}
	if err := Authorize(ctx, "Riverview"); err != nil {
		t.Errorf("超管应豁免租户检查: %v", err)
	}
}

func TestAuthorize_NoSchoolDenyAll(t *testing.T) {
	// 未归属学校的非超管：即使实体学校为空也必须拒绝
	ctx := &Context{School: ""}
	if err := Authorize(ctx, ""); !apperr.IsAccessDenied(err) {
		t.Errorf("无学校上下文应 deny-all，实际: %v", err)
	}
	if err := Authorize(ctx, "Greenwood"); !apperr.IsAccessDenied(err) {
		t.Errorf("无学校上下文应 deny-all，实际: %v", err)
	}
}

func TestAuthorizeBoth_Mismatch(t *testing.T) {
	// 学生与班级归属不一致（数据错配）：对任何人都不可达，包括同校管理员
	ctx := &Context{School: "Greenwood"}
	err := AuthorizeBoth(ctx, "Greenwood", "Riverview")
	if !apperr.IsAccessDenied(err) {
		t.Errorf("两侧归属不一致应拒绝，实际: %v", err)
	}
}

func TestAuthorizeBoth_Match(t *testing.T) {
	ctx := &Context{School: "Greenwood"}
	if err := AuthorizeBoth(ctx, "Greenwood", "Greenwood"); err != nil {
		t.Errorf("两侧一致且同校应放行: %v", err)
	}
}
