package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/mvsub/internal/app/run"
	"github.com/John-Robertt/mvsub/internal/config"
	"github.com/John-Robertt/mvsub/internal/domain"
	"github.com/John-Robertt/mvsub/internal/infra/fsx"
	"github.com/John-Robertt/mvsub/internal/logging"
)

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误：%v\n", err)
		os.Exit(exitCode(err))
	}
}

// usageError 表示参数层面的错误（退出码 2），其余错误退出码为 1。
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

type rootFlags struct {
	dryRun      bool
	skipNonDirs bool
	noLock      bool
	report      string
	table       bool
	configPath  string
	verbose     bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "mvsub [flags] <src_dir> <dst_dir> <match>...",
		Short: "把 src_dir 各子目录中文件名包含匹配串的文件移动到 dst_dir",
		Long: `mvsub 扫描 src_dir 的每个直接子目录，把文件名包含任一匹配串的文件移动到 dst_dir。

  一个匹配串：子目录内所有包含它的文件都会移动
  多个匹配串：每个子目录内，每个匹配串最多移动一个文件（按列举顺序取第一个命中）

dst_dir 若恰好是 src_dir 的子目录，会被自动跳过。目标已有同名文件时用新文件覆盖。
标志必须写在 src_dir 之前；之后的参数全部按原样作为匹配串。`,
		Args:          validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, f, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	fl := cmd.Flags()
	// 位置参数开始后不再解析标志：以 '-' 开头的匹配串也能原样传入。
	fl.SetInterspersed(false)
	fl.BoolVar(&f.dryRun, "dry-run", false, "只输出计划，不移动任何文件")
	fl.BoolVar(&f.skipNonDirs, "skip-non-dirs", false, "跳过 src_dir 下不是目录的条目（默认报错中止）")
	fl.BoolVar(&f.noLock, "no-lock", false, "不获取目标目录的运行锁")
	fl.StringVar(&f.report, "report", "", "把 JSON 运行报告写到该文件")
	fl.BoolVar(&f.table, "table", false, "结束后按子目录输出汇总表")
	fl.StringVar(&f.configPath, "config", "", "配置文件路径（默认尝试 ./"+config.DefaultFileName+"）")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "输出调试日志到 stderr")

	return cmd
}

func validateArgs(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 0, 1:
		return &usageError{err: fmt.Errorf("需要 src_dir 与 dst_dir，实际只有 %d 个参数", len(args))}
	case 2:
		return &usageError{err: run.ErrNoPattern}
	}
	return nil
}

func runRoot(cmd *cobra.Command, args []string, f rootFlags, stdout, stderr io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("读取当前目录失败：%w", err)
	}

	fl := cmd.Flags()
	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Src:            args[0],
		Dst:            args[1],
		Matches:        args[2:],
		ConfigPath:     f.configPath,
		DryRun:         f.dryRun,
		DryRunSet:      fl.Changed("dry-run"),
		SkipNonDirs:    f.skipNonDirs,
		SkipNonDirsSet: fl.Changed("skip-non-dirs"),
		Lock:           !f.noLock,
		LockSet:        fl.Changed("no-lock"),
		Report:         f.report,
		ReportSet:      fl.Changed("report"),
		Verbose:        f.verbose,
		VerboseSet:     fl.Changed("verbose"),
	})
	if err != nil {
		return err
	}

	logger := logging.New(stderr, eff.Verbose, isTTY(stderr))
	if eff.ConfigFile != "" {
		logger.Debug().Str("config", eff.ConfigFile).Msg("loaded config file")
	}

	ui := newConsoleUI(stdout)
	r, err := run.FromConfig(eff, logger, ui)
	if err != nil {
		return err
	}

	rr, runErr := r.Run()

	if eff.ReportPath != "" {
		if err := writeReportFile(eff.ReportPath, rr); err != nil {
			if runErr == nil {
				return &run.Error{Code: domain.ErrCodeReportFailed, Path: eff.ReportPath, Err: err}
			}
			logger.Warn().Err(err).Str("report", eff.ReportPath).Msg("write report")
		}
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "中止前已移动 %s\n", domain.FilesNoun(rr.Moved))
		return runErr
	}

	ui.Summary(rr)
	if f.table {
		fmt.Fprintln(stdout, renderDirTable(rr))
	}
	return nil
}

func writeReportFile(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), b)
}
