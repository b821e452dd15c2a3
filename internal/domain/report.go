package domain

import (
	"encoding/json"
	"time"
)

const (
	FileStatusPlanned = "planned"
	FileStatusMoved   = "moved"
	FileStatusFailed  = "failed"
)

const (
	SkipReasonDestination = "destination"
	SkipReasonNotDir      = "not_a_directory"
)

const (
	ErrCodeInvalidSource      = "invalid_source"
	ErrCodeInvalidDestination = "invalid_destination"
	ErrCodeNoPattern          = "no_pattern"
	ErrCodeEnumerationFailed  = "enumeration_failed"
	ErrCodeMoveFailed         = "move_failed"
	ErrCodeLockBusy           = "lock_busy"
	ErrCodeLockFailed         = "lock_failed"
	ErrCodeReportFailed       = "report_failed"
)

// RunReport 是一次运行的结果（--report 落盘的 JSON 结构）。
type RunReport struct {
	RunID    string   `json:"run_id"`
	Src      string   `json:"src"`
	Dst      string   `json:"dst"`
	Mode     string   `json:"mode"`
	Patterns []string `json:"patterns"`
	DryRun   bool     `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Moved 只统计真正完成的移动；dry-run 下恒为 0，计划数见 Planned。
	Moved   int `json:"moved"`
	Planned int `json:"planned"`

	Dirs  []DirResult  `json:"dirs"`
	Error *ErrorResult `json:"error,omitempty"`
}

type DirResult struct {
	Path       string       `json:"path"`
	Skipped    bool         `json:"skipped"`
	SkipReason string       `json:"skip_reason,omitempty"`
	Files      []FileResult `json:"files"`
}

type FileResult struct {
	Src       string `json:"src"`
	Dst       string `json:"dst"`
	Pattern   string `json:"pattern"`
	Status    string `json:"status"`
	Collision bool   `json:"collision"`
}

type ErrorResult struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Finalize 统一时间为 UTC，并保证切片字段在 JSON 中输出 [] 而不是 null。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Patterns == nil {
		r.Patterns = []string{}
	}
	if r.Dirs == nil {
		r.Dirs = []DirResult{}
	}
	for i := range r.Dirs {
		if r.Dirs[i].Files == nil {
			r.Dirs[i].Files = []FileResult{}
		}
	}
}

// ProcessedDirs 返回真正作为源目录处理过的子目录数（不含被跳过的）。
func (r RunReport) ProcessedDirs() int {
	n := 0
	for _, d := range r.Dirs {
		if !d.Skipped {
			n++
		}
	}
	return n
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
