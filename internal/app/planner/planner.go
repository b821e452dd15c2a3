package planner

import (
	"path/filepath"

	"github.com/John-Robertt/mvsub/internal/domain"
)

// PlanDir 基于子目录的文件列表（原生顺序）生成该子目录的移动计划（不做任何 I/O）。
//
//   - SingleSubstring：所有包含 pattern 的文件都进入计划
//   - MultiPattern：按调用方给定顺序逐个 pattern，取第一个命中且尚未被占用的文件；
//     每个 pattern 在本子目录最多产生一条计划，没有命中就跳过
//
// 多 pattern 的“已占用”集合只在本次调用内有效，因此每个子目录都会重新尝试全部 pattern。
func PlanDir(dir, dstDir string, names []string, policy domain.SelectionPolicy) []domain.MovePlan {
	switch p := policy.(type) {
	case domain.SingleSubstring:
		return planSingle(dir, dstDir, names, p.Pattern)
	case domain.MultiPattern:
		return planMulti(dir, dstDir, names, p.List)
	default:
		return nil
	}
}

func planSingle(dir, dstDir string, names []string, pattern string) []domain.MovePlan {
	moves := make([]domain.MovePlan, 0, len(names))
	for _, name := range names {
		if !domain.Matches(name, pattern) {
			continue
		}
		moves = append(moves, newPlan(dir, dstDir, name, pattern))
	}
	return moves
}

func planMulti(dir, dstDir string, names []string, patterns []string) []domain.MovePlan {
	taken := make(map[string]struct{}, len(patterns))
	moves := make([]domain.MovePlan, 0, len(patterns))

	for _, pattern := range patterns {
		for _, name := range names {
			if _, ok := taken[name]; ok {
				// 前面的 pattern 已经把它移走了，等价于重新列目录后看不到它。
				continue
			}
			if !domain.Matches(name, pattern) {
				continue
			}
			taken[name] = struct{}{}
			moves = append(moves, newPlan(dir, dstDir, name, pattern))
			break
		}
	}
	return moves
}

func newPlan(dir, dstDir, name, pattern string) domain.MovePlan {
	return domain.MovePlan{
		SrcAbs:  filepath.Join(dir, name),
		DstAbs:  filepath.Join(dstDir, name),
		Pattern: pattern,
	}
}
