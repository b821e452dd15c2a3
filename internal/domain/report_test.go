package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_UTCAndEmptySlices(t *testing.T) {
	r := RunReport{
		Src:        "/abs/src",
		Dst:        "/abs/dst",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Dirs:       []DirResult{{Path: "/abs/src/A"}},
	}

	r.Finalize()

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	// time.Time 在 UTC 下应输出 'Z' 后缀。
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
	if !bytes.Contains(b, []byte("\"patterns\":[]")) || !bytes.Contains(b, []byte("\"files\":[]")) {
		t.Fatalf("空切片应输出 []：%s", string(b))
	}
	if bytes.Contains(b, []byte("\"error\"")) {
		t.Fatalf("无错误时不应输出 error 字段：%s", string(b))
	}
}

func TestRunReport_ProcessedDirs(t *testing.T) {
	r := RunReport{Dirs: []DirResult{
		{Path: "A"},
		{Path: "dst", Skipped: true, SkipReason: SkipReasonDestination},
		{Path: "B"},
	}}
	if got := r.ProcessedDirs(); got != 2 {
		t.Fatalf("期望 2 个已处理目录，实际 %d", got)
	}
}
