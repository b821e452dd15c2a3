package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New 返回写到 w 的诊断日志器。
//
// 默认只输出 warn 及以上；verbose=true 时输出 debug（选择决策、冲突覆盖、跨盘回退等）。
// 诊断日志与用户可见的进度行分开：后者由 CLI 的 Observer 负责。
func New(w io.Writer, verbose, color bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// Nop 返回丢弃一切输出的日志器（测试与库调用方的默认值）。
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
