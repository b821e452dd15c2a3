package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/John-Robertt/mvsub/internal/app/run"
	"github.com/John-Robertt/mvsub/internal/domain"
)

var _ run.Observer = (*consoleUI)(nil)

// consoleUI 把 run 层事件渲染成逐行输出（stdout）。
//
// 行格式是对外契约（脚本会 grep），颜色只在交互终端启用。
type consoleUI struct {
	w io.Writer

	dir   *color.Color
	move  *color.Color
	warn  *color.Color
	muted *color.Color
}

func newConsoleUI(w io.Writer) *consoleUI {
	ui := &consoleUI{
		w:     w,
		dir:   color.New(color.FgCyan),
		move:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		muted: color.New(color.Faint),
	}
	if !isTTY(w) {
		for _, c := range []*color.Color{ui.dir, ui.move, ui.warn, ui.muted} {
			c.DisableColor()
		}
	}
	return ui
}

func (u *consoleUI) OnDirEnter(dir string) {
	u.dir.Fprintf(u.w, "Entering directory: '%s'\n", dir)
}

func (u *consoleUI) OnDirSkipped(dir, reason string) {
	switch reason {
	case domain.SkipReasonDestination:
		u.muted.Fprintf(u.w, "Skipping destination directory: '%s'\n", dir)
	default:
		u.muted.Fprintf(u.w, "Skipping non-directory entry: '%s'\n", dir)
	}
}

func (u *consoleUI) OnConsider(src, dst string) {
	fmt.Fprintf(u.w, "Destination: '%s' source: '%s'\n", dst, src)
}

func (u *consoleUI) OnMoved(src, dst string, collision bool) {
	if collision {
		u.warn.Fprintf(u.w, "Replacing existing file: '%s'\n", dst)
	}
	u.move.Fprintf(u.w, "Moving a file: '%s' to new destination: '%s'\n", src, filepath.Dir(dst))
}

func (u *consoleUI) OnPlanned(src, dst string, collision bool) {
	if collision {
		u.warn.Fprintf(u.w, "Would replace existing file: '%s'\n", dst)
	}
	fmt.Fprintf(u.w, "Would move a file: '%s' to new destination: '%s'\n", src, filepath.Dir(dst))
}

// Summary 输出最终计数行（单复数按字面计数选择）。
func (u *consoleUI) Summary(rr domain.RunReport) {
	fmt.Fprintln(u.w, "*****")
	if rr.DryRun {
		fmt.Fprintf(u.w, "Would move %s\n", domain.FilesNoun(rr.Planned))
		return
	}
	fmt.Fprintf(u.w, "Moved %s\n", domain.FilesNoun(rr.Moved))
}

// renderDirTable 按子目录汇总本次运行（--table）。
func renderDirTable(rr domain.RunReport) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Directory", "Status", "Files"})

	total := 0
	for _, d := range rr.Dirs {
		status := "processed"
		if d.Skipped {
			status = "skipped (" + strings.ReplaceAll(d.SkipReason, "_", " ") + ")"
		}
		n := 0
		for _, f := range d.Files {
			if f.Status == domain.FileStatusMoved || f.Status == domain.FileStatusPlanned {
				n++
			}
		}
		total += n
		tw.AppendRow(table.Row{filepath.Base(d.Path), status, n})
	}
	tw.AppendFooter(table.Row{"", "total", total})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
