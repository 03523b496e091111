package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	exportpkg "github.com/heimdex/heimdex-editor/internal/export"
)

func TestExportEDL_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	a := env.addClip(t, 0, 60)
	env.addClip(t, 60, 120)
	if rr := env.do(t, http.MethodPost, "/clips/"+a+"/transition", TransitionRequest{}); rr.Code != http.StatusCreated {
		t.Fatalf("transition status = %d", rr.Code)
	}
	outDir := t.TempDir()

	rr := env.do(t, http.MethodPost, "/export/edl", exportpkg.Request{
		ProjectName: "Project One",
		Format:      "edl",
		OutputDir:   outDir,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp exportpkg.Response
	decodeInto(t, rr, &resp)
	if resp.Status != "ok" || resp.Format != "edl" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.EventCount != 2 || resp.Transitions != 1 {
		t.Fatalf("events = %d, transitions = %d, want 2 and 1", resp.EventCount, resp.Transitions)
	}
	if resp.OutputPath != filepath.Join(outDir, "Project One.edl") {
		t.Fatalf("output_path = %q", resp.OutputPath)
	}

	data, err := os.ReadFile(resp.OutputPath)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !strings.Contains(string(data), "TITLE: Project One") {
		t.Fatalf("missing title: %q", data)
	}
}

func TestExportEDL_DefaultsToExportDir(t *testing.T) {
	env := newTestEnv(t)
	env.addClip(t, 0, 30)

	rr := env.do(t, http.MethodPost, "/export/edl", exportpkg.Request{})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp exportpkg.Response
	decodeInto(t, rr, &resp)
	if filepath.Dir(resp.OutputPath) != env.cfg.ExportDir {
		t.Fatalf("output_path = %q, want inside %q", resp.OutputPath, env.cfg.ExportDir)
	}
	if filepath.Base(resp.OutputPath) != "heimdex_export.edl" {
		t.Fatalf("file = %q", filepath.Base(resp.OutputPath))
	}
}

func TestExportEDL_Errors(t *testing.T) {
	env := newTestEnv(t)
	outDir := t.TempDir()

	tests := []struct {
		name   string
		req    exportpkg.Request
		status int
	}{
		{"bad format", exportpkg.Request{Format: "xml", OutputDir: outDir}, http.StatusBadRequest},
		{"traversal", exportpkg.Request{OutputDir: outDir + "/../x"}, http.StatusBadRequest},
		{"missing dir", exportpkg.Request{OutputDir: filepath.Join(outDir, "nope")}, http.StatusBadRequest},
		{"unknown track", exportpkg.Request{OutputDir: outDir, TrackID: 42}, http.StatusNotFound},
		{"empty track", exportpkg.Request{OutputDir: outDir}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/export/edl", tt.req)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rr.Code, tt.status, rr.Body.String())
			}
		})
	}
}
