package run

// Observer 把“进入目录/考虑文件/完成移动”等事件从核心流程中解耦出来。
//
// 约束：run 包只负责发事件，不做任何输出；怎么展示由 CLI 决定。
// 运行是单线程顺序执行的，事件按发生顺序到达。
type Observer interface {
	// OnDirEnter 在开始处理某个源子目录时调用。
	OnDirEnter(dir string)
	// OnDirSkipped 在某个条目不作为源目录处理时调用（reason 见 domain.SkipReason*）。
	OnDirSkipped(dir, reason string)
	// OnConsider 在某个文件进入移动计划、尚未执行时调用。
	OnConsider(src, dst string)
	// OnMoved 在文件移动成功且计数器已加一后调用。
	OnMoved(src, dst string, collision bool)
	// OnPlanned 仅 dry-run：文件本应移动，但没有触碰文件系统。
	OnPlanned(src, dst string, collision bool)
}
