package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteFileAtomicReplace_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("old")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("hello")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("内容不一致：%q", string(b))
	}
	assertNoTemp(t, dir, ".a.txt.tmp-")
}

func TestWriteFileAtomicReplace_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("hello")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.txt.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
		if e.Name() == "a.txt" {
			t.Fatalf("不应写出最终文件：%q", e.Name())
		}
	}
}

func TestMove_RenameWhenTargetMissing(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := writeFile(t, srcDir, "movie1.mp4", "m1")

	res, err := Move(src, dstDir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if res.Collision || res.Copied {
		t.Fatalf("目标不存在时应直接 rename：%+v", res)
	}
	if res.Dst != filepath.Join(dstDir, "movie1.mp4") {
		t.Fatalf("dst 不一致：%q", res.Dst)
	}
	assertContent(t, res.Dst, "m1")
	assertMissing(t, src)
}

func TestMove_CollisionOverwritesWithSource(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := writeFile(t, srcDir, "a.mkv", "incoming")
	writeFile(t, dstDir, "a.mkv", "existing-and-longer")

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chmod(src, 0o600); err != nil {
		t.Fatalf("chmod 失败：%v", err)
	}
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatalf("chtimes 失败：%v", err)
	}

	res, err := Move(src, dstDir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !res.Collision || !res.Copied {
		t.Fatalf("应走覆盖路径：%+v", res)
	}
	assertContent(t, res.Dst, "incoming")
	assertMissing(t, src)

	fi, err := os.Stat(res.Dst)
	if err != nil {
		t.Fatalf("stat 失败：%v", err)
	}
	if !fi.ModTime().Equal(mtime) {
		t.Fatalf("mtime 未保留：%v", fi.ModTime())
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("权限位未保留：%v", fi.Mode().Perm())
	}
	assertNoTemp(t, dstDir, ".a.mkv.tmp-")
}

func TestMove_TargetIsDir(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := writeFile(t, srcDir, "a.mkv", "x")
	if err := os.Mkdir(filepath.Join(dstDir, "a.mkv"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	_, err := Move(src, dstDir)
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
	assertContent(t, src, "x")
}

func TestMove_SourceVanished(t *testing.T) {
	_, err := Move(filepath.Join(t.TempDir(), "gone.mp4"), t.TempDir())
	if !os.IsNotExist(err) {
		t.Fatalf("期望 NotExist，实际 %v", err)
	}
}

func TestMove_RemoveFailAfterCopy(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := writeFile(t, srcDir, "a.mkv", "new")
	writeFile(t, dstDir, "a.mkv", "old")

	old := removeFunc
	removeFunc = func(string) error { return os.ErrPermission }
	defer func() { removeFunc = old }()

	if _, err := Move(src, dstDir); err == nil {
		t.Fatalf("删除源失败应返回错误")
	}
	// 目标已经是完整的新内容。
	assertContent(t, filepath.Join(dstDir, "a.mkv"), "new")
}

func TestSameDir(t *testing.T) {
	root := t.TempDir()
	dst := filepath.Join(root, "dst")
	if err := os.Mkdir(dst, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	same, err := SameDir(dst, filepath.Join(root, ".", "other", "..", "dst"))
	if err != nil || !same {
		t.Fatalf("不同文本路径应判定为同一目录：same=%v err=%v", same, err)
	}

	same, err = SameDir(dst, root)
	if err != nil || same {
		t.Fatalf("不同目录不应相同：same=%v err=%v", same, err)
	}

	same, err = SameDir(dst, filepath.Join(root, "missing"))
	if err != nil || same {
		t.Fatalf("不存在的路径应返回 false：same=%v err=%v", same, err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	return p
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取 %q 失败：%v", path, err)
	}
	if string(b) != want {
		t.Fatalf("%q 内容不一致：got=%q want=%q", path, string(b), want)
	}
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Fatalf("%q 应已不存在，err=%v", path, err)
	}
}

func assertNoTemp(t *testing.T, dir, prefix string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}
