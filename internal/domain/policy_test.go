package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewPolicy_ModeBySize(t *testing.T) {
	p, err := NewPolicy([]string{"movie"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if p.Mode() != ModeSingle {
		t.Fatalf("一个匹配串应为 single，实际 %q", p.Mode())
	}

	in := []string{"ep01", "ep02"}
	p, err = NewPolicy(in)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if p.Mode() != ModeMulti {
		t.Fatalf("两个匹配串应为 multi，实际 %q", p.Mode())
	}
	if diff := cmp.Diff(in, p.Patterns()); diff != "" {
		t.Fatalf("patterns 顺序不一致 (-want +got):\n%s", diff)
	}

	// 策略持有自己的副本：调用方后续修改不影响策略。
	in[0] = "changed"
	if p.Patterns()[0] != "ep01" {
		t.Fatalf("策略不应与调用方切片共享底层数组")
	}
}

func TestNewPolicy_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		matches []string
		index   int
	}{
		{name: "nil", matches: nil, index: -1},
		{name: "empty", matches: []string{}, index: -1},
		{name: "empty-entry", matches: []string{"a", ""}, index: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPolicy(tc.matches)
			var pe *PatternError
			if !errors.As(err, &pe) {
				t.Fatalf("期望 PatternError，实际 %T %v", err, err)
			}
			if pe.Index != tc.index {
				t.Fatalf("期望 index=%d，实际 %d", tc.index, pe.Index)
			}
		})
	}
}

func TestFilesNoun(t *testing.T) {
	for n, want := range map[int]string{0: "0 files", 1: "1 file", 2: "2 files", 11: "11 files"} {
		if got := FilesNoun(n); got != want {
			t.Fatalf("FilesNoun(%d)=%q，期望 %q", n, got, want)
		}
	}
}

func TestMatches_PlainSubstring(t *testing.T) {
	if !Matches("ep01_raw.mkv", "ep01") {
		t.Fatalf("应命中")
	}
	if Matches("EP01.mkv", "ep01") {
		t.Fatalf("匹配区分大小写")
	}
	if Matches("movie1.mp4", "mov*") {
		t.Fatalf("不支持 glob，'*' 按字面匹配")
	}
}
