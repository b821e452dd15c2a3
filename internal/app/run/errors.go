package run

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/mvsub/internal/domain"
)

// Error 是运行阶段的结构化错误（带 error_code），任何一种都会中止整个运行。
type Error struct {
	Code string
	Path string
	Err  error
}

// 哨兵错误：只比较 Code，便于上层用 errors.Is 判断类别。
var (
	ErrInvalidSource      = &Error{Code: domain.ErrCodeInvalidSource}
	ErrInvalidDestination = &Error{Code: domain.ErrCodeInvalidDestination}
	ErrNoPattern          = &Error{Code: domain.ErrCodeNoPattern}
	ErrEnumeration        = &Error{Code: domain.ErrCodeEnumerationFailed}
	ErrMoveFailed         = &Error{Code: domain.ErrCodeMoveFailed}
	ErrLockBusy           = &Error{Code: domain.ErrCodeLockBusy}
	ErrLockFailed         = &Error{Code: domain.ErrCodeLockFailed}
)

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s：%q：%v", e.Code, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s：%q", e.Code, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	default:
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Path == "" && t.Err == nil && t.Code == e.Code
}

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
