package scan

import (
	"io/fs"
	"os"
	"path/filepath"
)

// ListEntries 返回 dir 的直接子条目，保持文件系统原生的列举顺序。
//
// 注意：这里刻意不用 os.ReadDir（它会按文件名排序）；顺序与平台相关，
// 不是正确性的前提，但与 “ls -f” 看到的一致更便于排查。
func ListEntries(dir string) ([]fs.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.ReadDir(-1)
}

// ListFiles 返回 dir 下的直接文件条目名（跳过子目录，不递归），保持原生顺序。
//
// 指向目录的符号链接也视为目录而跳过；其余条目（普通文件、指向文件的符号链接等）都算文件。
func ListFiles(dir string) ([]string, error) {
	entries, err := ListEntries(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		isDir, err := IsDir(dir, e)
		if err != nil {
			return nil, err
		}
		if isDir {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// IsDir 判断条目是否为目录（符号链接会被跟随）。
// 无法解析的符号链接（悬空、自引用循环、目标无权限）不是目录，按文件对待，返回 false 且不报错。
func IsDir(parent string, e fs.DirEntry) (bool, error) {
	if e.IsDir() {
		return true, nil
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	fi, err := os.Stat(filepath.Join(parent, e.Name()))
	if err != nil {
		return false, nil
	}
	return fi.IsDir(), nil
}
