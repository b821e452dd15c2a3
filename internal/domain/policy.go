package domain

import (
	"fmt"
	"strings"
)

const (
	ModeSingle = "single"
	ModeMulti  = "multi"
)

// SelectionPolicy 描述“子目录里哪些文件需要移动”。
//
// 只有两种实现：SingleSubstring 与 MultiPattern。策略本身不可变，
// 消耗状态（哪个 pattern 已经用过）只存在于单个子目录的规划过程中。
type SelectionPolicy interface {
	Mode() string
	Patterns() []string
}

// SingleSubstring：只有一个匹配串，子目录内所有包含它的文件都要移动（不设上限）。
type SingleSubstring struct {
	Pattern string
}

func (p SingleSubstring) Mode() string       { return ModeSingle }
func (p SingleSubstring) Patterns() []string { return []string{p.Pattern} }

// MultiPattern：两个及以上匹配串，每个子目录内每个 pattern 最多消耗一个文件。
type MultiPattern struct {
	List []string
}

func (p MultiPattern) Mode() string { return ModeMulti }

func (p MultiPattern) Patterns() []string {
	return append([]string(nil), p.List...)
}

// PatternError 表示匹配串列表不可用（为空，或包含空串）。
type PatternError struct {
	Index int // -1 表示列表为空
}

func (e *PatternError) Error() string {
	if e.Index < 0 {
		return "至少需要一个匹配串"
	}
	return fmt.Sprintf("第 %d 个匹配串为空", e.Index+1)
}

// NewPolicy 根据匹配串数量推导选择模式。匹配串按原样保存，不做 trim。
func NewPolicy(matches []string) (SelectionPolicy, error) {
	if len(matches) == 0 {
		return nil, &PatternError{Index: -1}
	}
	for i, m := range matches {
		if m == "" {
			return nil, &PatternError{Index: i}
		}
	}
	if len(matches) == 1 {
		return SingleSubstring{Pattern: matches[0]}, nil
	}
	return MultiPattern{List: append([]string(nil), matches...)}, nil
}

// Matches 判断文件名是否包含 pattern（纯子串，区分大小写）。
func Matches(name, pattern string) bool {
	return strings.Contains(name, pattern)
}

// FilesNoun 返回带单复数的计数短语："1 file" / "N files"。
func FilesNoun(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}
