package tenant

import (
	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/pkg/apperr"
)

// Scope 返回租户过滤的 GORM 作用域，叠加到所有学校域集合查询上。
//
//   - 超管：不加任何过滤（全租户可见）
//   - 有学校归属：school = ctx.School
//   - 无学校且非超管：deny-all（匹配零行）——未归属学校的管理员
//     绝不能退化为全量可见
//
// 作用域本身不会出错；列表查询只会被收紧，不产生鉴权错误。
func Scope(c *Context) func(*gorm.DB) *gorm.DB {
	return ScopeOn(c, "school")
}

// ScopeOn 同 Scope，但指定限定列名（联表查询时消除歧义，
// 如 "classes.school"）。
func ScopeOn(c *Context, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if c.IsSuperAdmin {
			return db
		}
		if c.School == "" {
			return db.Where("1 = 0")
		}
		return db.Where(column+" = ?", c.School)
	}
}

// OwnUserScope 通知等按用户归属的集合：任何角色都只按 user_id 过滤
func OwnUserScope(c *Context) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", c.UserID)
	}
}

// Authorize 单实体鉴权：按实体冗余的租户键判定可达性。
// 所有按 ID 的读取与变更端点都必须经过本检查；列表过滤不可替代。
func Authorize(c *Context, entitySchool string) error {
	if c.IsSuperAdmin {
		return nil
	}
	if c.School == "" || entitySchool != c.School {
		return apperr.AccessDenied("无权访问该学校的数据")
	}
	return nil
}

// AuthorizeBoth 关联两侧租户键都必须匹配的单实体鉴权。
// 用于选课/提交/答卷这类跨 Student 与 Class/Assignment/Exam 的关联：
// 任一侧不匹配（含数据错配导致两侧不一致）都视为不可达，而非静默合并。
func AuthorizeBoth(c *Context, ownerSchool, studentSchool string) error {
	if ownerSchool != studentSchool {
		return apperr.AccessDenied("数据归属异常，禁止访问")
	}
	return Authorize(c, ownerSchool)
}
