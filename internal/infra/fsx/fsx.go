package fsx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// 通过可替换的函数指针，让测试能稳定模拟 EXDEV 等错误。
var (
	renameFunc = os.Rename
	removeFunc = os.Remove
)

// PathTypeConflictError 表示目标路径类型冲突（例如期望文件但实际是目录）。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// CrossDeviceError 表示跨盘（EXDEV）导致的 rename 失败。
// Move 会把它当作信号改走 copy+delete；直接调用 Rename 的上层可自行判断。
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("跨盘移动失败（EXDEV）：%q -> %q：%v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice 判断 err 是否为跨盘（EXDEV）错误。
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Rename 封装 os.Rename，并把 EXDEV 显式标记为 CrossDeviceError。
func Rename(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// MoveResult 描述一次 Move 实际走了哪条路径。
type MoveResult struct {
	Dst       string
	Collision bool // 目标目录已有同名文件，走了 copy+delete 覆盖
	Copied    bool // 内容经过复制（覆盖或跨盘回退）
}

// Move 把文件 src 移动到 dstDir 下（保留文件名）。
//
// - 目标不存在：直接 rename；遇到 EXDEV 回退为 copy+delete
// - 目标已存在同名文件：复制内容与元数据（权限位、mtime）覆盖它，再删除 src
// - 目标是目录：PathTypeConflictError
//
// copy 先写同目录临时文件再 rename 覆盖，中途失败不会留下半截目标文件。
// src 删除失败时目标已是完整新内容，错误照常返回。
func Move(src, dstDir string) (MoveResult, error) {
	dst := filepath.Join(dstDir, filepath.Base(src))
	res := MoveResult{Dst: dst}

	srcFi, err := os.Lstat(src)
	if err != nil {
		return res, err
	}

	dstFi, err := os.Lstat(dst)
	switch {
	case err == nil:
		if dstFi.IsDir() {
			return res, &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
		}
		res.Collision = true
		res.Copied = true
		if os.SameFile(srcFi, dstFi) {
			// 硬链接到同一 inode：目标已经是这份内容，只需去掉源。
			return res, removeFunc(src)
		}
		return res, copyThenRemove(src, dst, srcFi)
	case !os.IsNotExist(err):
		return res, err
	}

	err = Rename(src, dst)
	if err == nil {
		return res, nil
	}
	if !IsCrossDevice(err) {
		return res, err
	}
	res.Copied = true
	return res, copyThenRemove(src, dst, srcFi)
}

func copyThenRemove(src, dst string, srcFi os.FileInfo) error {
	if err := replaceWithCopy(src, dst, srcFi); err != nil {
		return err
	}
	return removeFunc(src)
}

// replaceWithCopy 在 dst 所在目录生成 src 的副本，并原子替换到 dst。
func replaceWithCopy(src, dst string, srcFi os.FileInfo) error {
	dir, name := filepath.Dir(dst), filepath.Base(dst)

	if srcFi.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		tmpName := filepath.Join(dir, "."+name+".tmp-link")
		_ = os.Remove(tmpName)
		if err := os.Symlink(target, tmpName); err != nil {
			return err
		}
		if err := renameFunc(tmpName, dst); err != nil {
			_ = os.Remove(tmpName)
			return err
		}
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// atime 无法可靠获取，与 mtime 取同值。
	return commitTemp(dir, name, in, srcFi.Mode().Perm(), srcFi.ModTime())
}

// SameDir 判断两个路径是否指向同一个物理目录（跟随符号链接，比较 device+inode）。
// 任一路径不存在时返回 false 且不报错。
func SameDir(a, b string) (bool, error) {
	fa, err := statIfExists(a)
	if err != nil || fa == nil {
		return false, err
	}
	fb, err := statIfExists(b)
	if err != nil || fb == nil {
		return false, err
	}
	return os.SameFile(fa, fb), nil
}

func statIfExists(p string) (os.FileInfo, error) {
	fi, err := os.Stat(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return fi, err
}

// WriteFileAtomicReplace 在 dir 下原子写入 name（临时文件 + rename），覆盖同名文件。
func WriteFileAtomicReplace(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return commitTemp(dir, name, bytes.NewReader(data), 0o644, time.Time{})
}

// commitTemp 把 r 的内容写进 dir 下的同目录临时文件（前缀带 '.'，rename 不会跨盘），
// 设置权限位与可选的 mtime 后 rename 到 name。失败时临时文件被清理，name 保持原样。
func commitTemp(dir, name string, r io.Reader, perm os.FileMode, mtime time.Time) error {
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(tmpName, mtime, mtime); err != nil {
			return err
		}
	}
	if err := Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return err
	}
	committed = true

	_ = syncDirBestEffort(dir)
	return nil
}

func syncDirBestEffort(dir string) error {
	// Windows 上目录 Sync 不可用。
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
