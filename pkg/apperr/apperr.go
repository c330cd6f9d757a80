// Package apperr 定义业务错误分类。
// Service 层返回带分类的错误，Handler 层据此映射为 HTTP 状态码，
// 避免把存储层原始错误直接暴露给调用方。
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind int

const (
	KindUnknown Kind = iota
	// KindAccessDenied 越权访问（跨校访问、角色不符、未选课）
	KindAccessDenied
	// KindNotFound 实体不存在（或被租户过滤，两者对调用方不可区分）
	KindNotFound
	// KindValidation 输入不合法（缺字段、唯一键冲突、日期非法）
	KindValidation
	// KindStateConflict 状态机冲突（截止后提交、对未提交的答卷评分等）
	KindStateConflict
	// KindIntegrity 存储层完整性冲突（外键引用导致无法删除等）
	KindIntegrity
)

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error // 可选的底层错误
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ── 构造函数 ──

// AccessDenied 越权访问
func AccessDenied(message string) error {
	return &Error{Kind: KindAccessDenied, Message: message}
}

// NotFound 实体不存在
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation 输入不合法
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// StateConflict 状态机冲突
func StateConflict(message string) error {
	return &Error{Kind: KindStateConflict, Message: message}
}

// Integrity 完整性冲突（包装存储层错误）
func Integrity(message string, err error) error {
	return &Error{Kind: KindIntegrity, Message: message, Err: err}
}

// ── 判定 ──

// KindOf 提取错误分类；非业务错误返回 KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsAccessDenied 是否越权错误
func IsAccessDenied(err error) bool { return KindOf(err) == KindAccessDenied }

// IsNotFound 是否实体不存在错误
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation 是否输入校验错误
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsStateConflict 是否状态冲突错误
func IsStateConflict(err error) bool { return KindOf(err) == KindStateConflict }
