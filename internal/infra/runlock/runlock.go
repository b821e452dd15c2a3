package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrBusy 表示同一目标目录已有另一个运行持有锁。
var ErrBusy = errors.New("runlock: 目标目录正被另一个运行占用")

// Lock 是针对某个目标目录的进程间互斥锁（advisory flock）。
//
// 锁文件放在系统临时目录，而不是目标目录里：避免在用户的目标目录留下杂项文件。
type Lock struct {
	fl   *flock.Flock
	path string
}

// PathFor 返回 dstAbs 对应的锁文件路径。
//
// 哈希的是解析符号链接后的真实路径：同一物理目录经不同别名访问也得到同一把锁。
// 解析失败时退回 clean 后的路径。
func PathFor(dstAbs string) string {
	key := filepath.Clean(dstAbs)
	if real, err := filepath.EvalSymlinks(key); err == nil {
		key = real
	}
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(os.TempDir(), "mvsub-"+hex.EncodeToString(sum[:8])+".lock")
}

// Acquire 以非阻塞方式获取 dstAbs 的锁；已被占用时返回 ErrBusy。
func Acquire(dstAbs string) (*Lock, error) {
	return acquireAt(PathFor(dstAbs))
}

func acquireAt(path string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("获取锁 %s 失败：%w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w（%s）", ErrBusy, path)
	}
	return &Lock{fl: fl, path: path}, nil
}

// Path 返回锁文件路径。
func (l *Lock) Path() string { return l.path }

// Release 释放锁。
//
// 锁文件保留在原处：解锁后删除会让两个运行分别锁住新旧两个 inode。
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("释放锁 %s 失败：%w", l.path, err)
	}
	return nil
}
