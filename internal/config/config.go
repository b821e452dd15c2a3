package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// DefaultFileName 是 cwd 下自动发现的配置文件名（可选）。
const DefaultFileName = "mvsub.toml"

// CLIArgs 是 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --dry-run=false 必须能覆盖 dry_run = true。
type CLIArgs struct {
	Src     string
	Dst     string
	Matches []string

	// ConfigPath 非空时必须存在；为空时尝试 <cwd>/mvsub.toml（可选）。
	ConfigPath string

	DryRun    bool
	DryRunSet bool

	SkipNonDirs    bool
	SkipNonDirsSet bool

	Lock    bool
	LockSet bool

	Report    string
	ReportSet bool

	Verbose    bool
	VerboseSet bool
}

// FileConfig 对应 mvsub.toml 的解析结构。指针字段用于区分“未写”与“写了 false”。
type FileConfig struct {
	DryRun      *bool  `toml:"dry_run"`
	SkipNonDirs *bool  `toml:"skip_non_dirs"`
	Lock        *bool  `toml:"lock"`
	Report      string `toml:"report"`
	Verbose     *bool  `toml:"verbose"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Src     string // clean + absolute
	Dst     string // clean + absolute
	Matches []string

	DryRun      bool
	SkipNonDirs bool
	Lock        bool
	ReportPath  string // 空表示不写 report；否则 clean + absolute
	Verbose     bool

	// ConfigFile 是实际读取到的配置文件路径（未读取则为空），仅用于展示。
	ConfigFile string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 给了 --config：读取该文件（必须存在）
// 2) 否则：尝试读取 <cwd>/mvsub.toml（可选）
//
// 覆盖优先级（固定）：CLI 显式指定 > 配置文件 > 内置默认。
// src/dst/matches 只来自 CLI 位置参数，配置文件不提供。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)

	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(cwdAbs, DefaultFileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}
	if !exists {
		cfgPath = ""
	}

	return merge(cwdAbs, cli, fc, cfgPath), nil
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) EffectiveConfig {
	eff := EffectiveConfig{
		Src:        absCleanFrom(cwdAbs, cli.Src),
		Dst:        absCleanFrom(cwdAbs, cli.Dst),
		Matches:    append([]string(nil), cli.Matches...),
		Lock:       true,
		ConfigFile: cfgPath,
	}

	eff.DryRun = pick(cli.DryRunSet, cli.DryRun, fc.DryRun, false)
	eff.SkipNonDirs = pick(cli.SkipNonDirsSet, cli.SkipNonDirs, fc.SkipNonDirs, false)
	eff.Lock = pick(cli.LockSet, cli.Lock, fc.Lock, true)
	eff.Verbose = pick(cli.VerboseSet, cli.Verbose, fc.Verbose, false)

	report := strings.TrimSpace(fc.Report)
	if cli.ReportSet {
		report = strings.TrimSpace(cli.Report)
	}
	if report != "" {
		// 配置文件里的相对路径同样以 cwd 为基准（与 CLI 一致，避免“同一个值两种含义”）。
		eff.ReportPath = absCleanFrom(cwdAbs, report)
	}

	return eff
}

func pick(cliSet, cliVal bool, fileVal *bool, def bool) bool {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
// - p 为空：返回空串（由上层校验报错）
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件；未知字段视为错误（多半是拼写错误）。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}

	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
