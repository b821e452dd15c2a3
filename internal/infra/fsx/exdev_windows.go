//go:build windows

package fsx

import (
	"errors"

	"golang.org/x/sys/windows"
)

// Windows 上跨卷 MoveFileEx 返回 ERROR_NOT_SAME_DEVICE，语义等同 EXDEV。
func isEXDEV(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SAME_DEVICE)
}
