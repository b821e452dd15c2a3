package run

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/John-Robertt/mvsub/internal/app/planner"
	"github.com/John-Robertt/mvsub/internal/config"
	"github.com/John-Robertt/mvsub/internal/domain"
	"github.com/John-Robertt/mvsub/internal/infra/fsx"
	"github.com/John-Robertt/mvsub/internal/infra/runlock"
	"github.com/John-Robertt/mvsub/internal/scan"
)

// 通过可替换的函数指针，让测试能注入锁/移动失败。
var (
	acquireLock = runlock.Acquire
	moveFile    = fsx.Move
)

// Options 控制一次运行的可选行为；零值即“真实移动、不加锁、非目录条目报错”。
type Options struct {
	DryRun      bool
	SkipNonDirs bool
	Lock        bool

	Logger   zerolog.Logger
	Observer Observer
}

// Relocator 把源根目录下各直接子目录中命中匹配串的文件移动到目标目录。
//
// 一个 Relocator 只对应一次运行：计数器随 Run 返回的 RunReport 一起交给调用方，
// 不存在跨运行的状态。
type Relocator struct {
	src    string
	dst    string
	policy domain.SelectionPolicy
	opts   Options
}

// New 校验前置条件并构造 Relocator。
//
// 校验顺序固定：源目录 -> 目标目录 -> 匹配串。此阶段不修改文件系统。
func New(src, dst string, matches []string, opts Options) (*Relocator, error) {
	srcAbs, err := checkDir(src)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeInvalidSource, Path: src, Err: err}
	}
	dstAbs, err := checkDir(dst)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeInvalidDestination, Path: dst, Err: err}
	}
	policy, err := domain.NewPolicy(matches)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeNoPattern, Err: err}
	}

	return &Relocator{
		src:    srcAbs,
		dst:    dstAbs,
		policy: policy,
		opts:   opts,
	}, nil
}

// FromConfig 用合并后的配置构造 Relocator（CLI 入口）。
func FromConfig(eff config.EffectiveConfig, logger zerolog.Logger, obs Observer) (*Relocator, error) {
	return New(eff.Src, eff.Dst, eff.Matches, Options{
		DryRun:      eff.DryRun,
		SkipNonDirs: eff.SkipNonDirs,
		Lock:        eff.Lock,
		Logger:      logger,
		Observer:    obs,
	})
}

func checkDir(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("路径不能为空")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("不是目录")
	}
	return abs, nil
}

// Src 返回 clean + absolute 的源根目录。
func (r *Relocator) Src() string { return r.src }

// Dst 返回 clean + absolute 的目标目录。
func (r *Relocator) Dst() string { return r.dst }

// Policy 返回由匹配串推导出的选择策略。
func (r *Relocator) Policy() domain.SelectionPolicy { return r.policy }

// Run 执行一次完整的扫描+移动。
//
// 任何错误都会立刻中止运行：已经完成的移动不会回滚，返回的 RunReport
// 中 Moved 只统计真正完成的移动，并带上 Error 字段。
func (r *Relocator) Run() (rr domain.RunReport, err error) {
	log := r.opts.Logger
	rr = domain.RunReport{
		RunID:     uuid.NewString(),
		Src:       r.src,
		Dst:       r.dst,
		Mode:      r.policy.Mode(),
		Patterns:  r.policy.Patterns(),
		DryRun:    r.opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		if err != nil {
			rr.Error = &domain.ErrorResult{Code: Code(err), Msg: err.Error()}
		}
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
	}()

	// dry-run 不触碰文件系统，也就不需要与其他运行互斥。
	if r.opts.Lock && !r.opts.DryRun {
		lk, e := acquireLock(r.dst)
		if e != nil {
			if errors.Is(e, runlock.ErrBusy) {
				return rr, &Error{Code: domain.ErrCodeLockBusy, Path: r.dst, Err: e}
			}
			return rr, &Error{Code: domain.ErrCodeLockFailed, Path: r.dst, Err: e}
		}
		log.Debug().Str("lock", lk.Path()).Msg("acquired destination lock")
		defer func() {
			if e := lk.Release(); e != nil {
				log.Warn().Err(e).Str("lock", lk.Path()).Msg("release destination lock")
			}
		}()
	}

	entries, e := scan.ListEntries(r.src)
	if e != nil {
		return rr, &Error{Code: domain.ErrCodeEnumerationFailed, Path: r.src, Err: e}
	}

	// dry-run 下文件不会真的落到目标目录，用集合模拟“前面的子目录已经放进去的文件名”。
	planned := map[string]struct{}{}

	for _, ent := range entries {
		dir := filepath.Join(r.src, ent.Name())

		same, e := fsx.SameDir(dir, r.dst)
		if e != nil {
			return rr, &Error{Code: domain.ErrCodeEnumerationFailed, Path: dir, Err: e}
		}
		if same {
			log.Debug().Str("dir", dir).Msg("skip destination directory")
			r.skipped(&rr, dir, domain.SkipReasonDestination)
			continue
		}

		isDir, e := scan.IsDir(r.src, ent)
		if e != nil {
			return rr, &Error{Code: domain.ErrCodeEnumerationFailed, Path: dir, Err: e}
		}
		if !isDir {
			if !r.opts.SkipNonDirs {
				return rr, &Error{Code: domain.ErrCodeEnumerationFailed, Path: dir, Err: errNotDir}
			}
			log.Debug().Str("entry", dir).Msg("skip non-directory entry")
			r.skipped(&rr, dir, domain.SkipReasonNotDir)
			continue
		}

		if r.opts.Observer != nil {
			r.opts.Observer.OnDirEnter(dir)
		}

		names, e := scan.ListFiles(dir)
		if e != nil {
			return rr, &Error{Code: domain.ErrCodeEnumerationFailed, Path: dir, Err: e}
		}

		plans := planner.PlanDir(dir, r.dst, names, r.policy)
		log.Debug().Str("dir", dir).Int("files", len(names)).Int("selected", len(plans)).Msg("planned directory")

		rr.Dirs = append(rr.Dirs, domain.DirResult{Path: dir, Files: make([]domain.FileResult, 0, len(plans))})
		dr := &rr.Dirs[len(rr.Dirs)-1]

		for _, p := range plans {
			if r.opts.Observer != nil {
				r.opts.Observer.OnConsider(p.SrcAbs, p.DstAbs)
			}
			fr := domain.FileResult{Src: p.SrcAbs, Dst: p.DstAbs, Pattern: p.Pattern}

			if r.opts.DryRun {
				fr.Status = domain.FileStatusPlanned
				fr.Collision = r.wouldCollide(p.DstAbs, planned)
				planned[filepath.Base(p.DstAbs)] = struct{}{}
				dr.Files = append(dr.Files, fr)
				rr.Planned++
				if r.opts.Observer != nil {
					r.opts.Observer.OnPlanned(p.SrcAbs, p.DstAbs, fr.Collision)
				}
				continue
			}

			rr.Planned++
			res, e := moveFile(p.SrcAbs, r.dst)
			if e != nil {
				fr.Status = domain.FileStatusFailed
				dr.Files = append(dr.Files, fr)
				return rr, &Error{Code: domain.ErrCodeMoveFailed, Path: p.SrcAbs, Err: e}
			}
			rr.Moved++

			fr.Dst = res.Dst
			fr.Status = domain.FileStatusMoved
			fr.Collision = res.Collision
			dr.Files = append(dr.Files, fr)

			log.Debug().
				Str("src", p.SrcAbs).
				Str("dst", res.Dst).
				Str("pattern", p.Pattern).
				Bool("collision", res.Collision).
				Bool("copied", res.Copied).
				Msg("moved file")
			if r.opts.Observer != nil {
				r.opts.Observer.OnMoved(p.SrcAbs, res.Dst, res.Collision)
			}
		}
	}

	return rr, nil
}

var errNotDir = errors.New("不是目录；源根目录下的直接条目必须都是子目录（可用 --skip-non-dirs 跳过）")

func (r *Relocator) skipped(rr *domain.RunReport, dir, reason string) {
	rr.Dirs = append(rr.Dirs, domain.DirResult{Path: dir, Skipped: true, SkipReason: reason})
	if r.opts.Observer != nil {
		r.opts.Observer.OnDirSkipped(dir, reason)
	}
}

func (r *Relocator) wouldCollide(dst string, planned map[string]struct{}) bool {
	if _, ok := planned[filepath.Base(dst)]; ok {
		return true
	}
	_, err := os.Lstat(dst)
	return err == nil
}
