package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func TestBuildEvents_ClipNames(t *testing.T) {
	tests := []struct {
		name string
		clip string
		want string
	}{
		{name: "plain", clip: "Interview (take 2), wide.mov", want: "Interview (take 2), wide.mov"},
		{name: "control runes dropped", clip: " B-roll\n\tpier\x00 ", want: "B-rollpier"},
		{name: "reserved runes replaced", clip: `cam<A>|"1"`, want: "cam_A___1_"},
		{name: "unicode letters kept", clip: "부산 야경 03", want: "부산 야경 03"},
		{name: "cut to limit", clip: strings.Repeat("샷", clipNameLimit+40), want: strings.Repeat("샷", clipNameLimit)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tl := timeline.New(30)
			v1 := tl.Tracks[0]
			if err := tl.AddClip(v1, &timeline.Clip{Name: tc.clip, StartFrame: 0, EndFrame: 30}); err != nil {
				t.Fatalf("AddClip() error = %v", err)
			}
			events := BuildEvents(tl, v1)
			if len(events) != 1 {
				t.Fatalf("len(events) = %d, want 1", len(events))
			}
			if events[0].ClipName != tc.want {
				t.Fatalf("ClipName = %q, want %q", events[0].ClipName, tc.want)
			}
		})
	}
}

func TestWrite_ProjectTitle(t *testing.T) {
	tests := []struct {
		name    string
		project string
		want    string
	}{
		{name: "kept", project: "Seoul Promo v3", want: "Seoul Promo v3"},
		{name: "separators replaced", project: `reels/day1\final`, want: "reels_day1_final"},
		{name: "empty falls back", project: "", want: defaultProjectName},
		{name: "only control runes falls back", project: "\n\t\r", want: defaultProjectName},
		{name: "cut to limit", project: strings.Repeat("a", titleLimit+1), want: strings.Repeat("a", titleLimit)},
		{name: "no trailing space after cut", project: strings.Repeat("b", titleLimit-1) + "  tail", want: strings.Repeat("b", titleLimit-1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tl, _, _, _ := testTimeline(t)
			outDir := t.TempDir()

			resp, err := Write(tl, Request{ProjectName: tc.project, OutputDir: outDir})
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if resp.OutputPath != filepath.Join(outDir, tc.want+".edl") {
				t.Fatalf("OutputPath = %q, want stem %q", resp.OutputPath, tc.want)
			}
			if n := utf8.RuneCountInString(tc.want); n > titleLimit {
				t.Fatalf("title has %d runes, limit %d", n, titleLimit)
			}
			data, err := os.ReadFile(resp.OutputPath)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if !strings.HasPrefix(string(data), "TITLE: "+tc.want+"\n") {
				t.Fatalf("EDL header = %q", strings.SplitN(string(data), "\n", 2)[0])
			}
		})
	}
}

func TestValidateOutputDir(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "cut.edl")
	if err := os.WriteFile(file, []byte("TITLE: x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name string
		dir  string
		want error
	}{
		{name: "existing dir", dir: base},
		{name: "blank", dir: "  ", want: ErrOutputDirRequired},
		{name: "traversal", dir: "/tmp/../etc", want: ErrOutputDirTraversal},
		{name: "relative traversal", dir: "../exports", want: ErrOutputDirTraversal},
		{name: "unclean", dir: base + "/./", want: ErrOutputDirUnclean},
		{name: "missing", dir: filepath.Join(base, "missing"), want: ErrOutputDirMissing},
		{name: "file", dir: file, want: ErrOutputDirNotDir},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOutputDir(tc.dir)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ValidateOutputDir(%q) error = %v, want %v", tc.dir, err, tc.want)
			}
		})
	}
}

func TestWrite_RejectsFileAsOutputDir(t *testing.T) {
	tl, _, _, _ := testTimeline(t)
	file := filepath.Join(t.TempDir(), "exports")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Write(tl, Request{ProjectName: "x", OutputDir: file}); !errors.Is(err, ErrOutputDirNotDir) {
		t.Fatalf("Write() error = %v, want ErrOutputDirNotDir", err)
	}
}
