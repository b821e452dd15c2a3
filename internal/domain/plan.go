package domain

// MovePlan 规划一次文件移动（只描述 src/dst；执行时再判断目标是否已存在）。
type MovePlan struct {
	SrcAbs  string
	DstAbs  string
	Pattern string // 命中的匹配串
}
