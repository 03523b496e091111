package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", "****"},
		{"abcd", "****"},
		{"12345678", "****"},
		{"0123456789abcdef", "0123...cdef"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.token); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestSanitizePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got := SanitizePath(filepath.Join(home, "media", "clip.mp4"))
	if want := "~" + string(filepath.Separator) + filepath.Join("media", "clip.mp4"); got != want {
		t.Errorf("SanitizePath() = %q, want %q", got, want)
	}
	if got := SanitizePath("/srv/clip.mp4"); home != "/" && got != "/srv/clip.mp4" {
		t.Errorf("SanitizePath() = %q, want unchanged", got)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "bogus"} {
		if NewLogger(lvl) == nil {
			t.Errorf("NewLogger(%q) returned nil", lvl)
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	WithComponent(WithProjectID(base, "p1"), "autosave").Info("saved")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if rec["component"] != "autosave" || rec["project_id"] != "p1" {
		t.Fatalf("record = %v", rec)
	}
}
