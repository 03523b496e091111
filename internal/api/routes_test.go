package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/heimdex/heimdex-editor/internal/db"
	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/preview"
	"github.com/heimdex/heimdex-editor/internal/project"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

const testToken = "test-token-0123456789"

type testEnv struct {
	cfg     ServerConfig
	router  http.Handler
	engine  *editor.Engine
	repo    project.Repository
	service *project.Service
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := project.NewRepository(database.Conn())
	if err := repo.SetConfig(context.Background(), project.ConfigAuthToken, testToken); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}

	logger := testLogger()
	engine := editor.New(editor.Config{FrameRate: 30, UndoDepth: 50, Logger: logger})
	service := project.NewService(repo, engine, 30, logger)

	cfg := ServerConfig{
		ExportDir:  filepath.Join(t.TempDir(), "exports"),
		Engine:     engine,
		Projects:   service,
		Repository: repo,
		Autosaver:  project.NewAutosaver(service, engine, 0),
		Preview:    preview.NewServer(logger),
		Logger:     logger,
		StartTime:  time.Now(),
		Version:    "test",
	}
	return &testEnv{cfg: cfg, router: NewRouter(cfg), engine: engine, repo: repo, service: service}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal error: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) videoTrack() int {
	var id int
	e.engine.View(func(tl *timeline.Timeline) { id = tl.Tracks[0].ID })
	return id
}

func (e *testEnv) addClip(t *testing.T, start, end int) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/tracks/"+strconv.Itoa(e.videoTrack())+"/clips", ClipRequest{
		Name: "clip", SourcePath: "/media/clip.mp4", StartFrame: start, EndFrame: end,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add clip status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp IDResponse
	decodeInto(t, rr, &resp)
	return resp.ID
}

func (e *testEnv) clip(id string) timeline.Clip {
	var out timeline.Clip
	e.engine.View(func(tl *timeline.Timeline) {
		if _, c := tl.FindClip(id); c != nil {
			out = *c
		}
	})
	return out
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	decodeInto(t, rr, &body)
	return body
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeJSONBody(t, rr)
	if body["status"] != "ok" || body["version"] != "test" {
		t.Fatalf("body = %v", body)
	}
}

func TestStatusHandler(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.service.Save(context.Background(), "Reel"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	env.addClip(t, 0, 30)

	rr := env.do(t, http.MethodGet, "/status", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp StatusResponse
	decodeInto(t, rr, &resp)
	if resp.State != "idle" {
		t.Errorf("State = %s, want idle", resp.State)
	}
	if resp.Timeline.Clips != 1 || resp.Timeline.UndoDepth != 1 {
		t.Errorf("Timeline = %+v", resp.Timeline)
	}
	if resp.Project == nil || resp.Project.Name != "Reel" {
		t.Errorf("Project = %+v", resp.Project)
	}
	if resp.Autosave == nil || resp.Autosave.Running {
		t.Errorf("Autosave = %+v", resp.Autosave)
	}
	if resp.Presets == 0 {
		t.Error("Presets = 0, want the default dissolve")
	}
}

func TestTimelineHandler(t *testing.T) {
	env := newTestEnv(t)
	id := env.addClip(t, 10, 40)

	rr := env.do(t, http.MethodGet, "/timeline", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}

	var tl timeline.Timeline
	decodeInto(t, rr, &tl)
	_, c := tl.FindClip(id)
	if c == nil || c.StartFrame != 10 || c.EndFrame != 40 {
		t.Fatalf("clip = %+v", c)
	}
}

func TestClipCommands(t *testing.T) {
	env := newTestEnv(t)
	id := env.addClip(t, 0, 60)

	if rr := env.do(t, http.MethodPost, "/clips/"+id+"/move", FrameRequest{Frame: 30}); rr.Code != http.StatusNoContent {
		t.Fatalf("move status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if c := env.clip(id); c.StartFrame != 30 || c.EndFrame != 90 {
		t.Fatalf("after move = %d-%d, want 30-90", c.StartFrame, c.EndFrame)
	}

	if rr := env.do(t, http.MethodPost, "/clips/"+id+"/trim-right", FrameRequest{Frame: 80}); rr.Code != http.StatusNoContent {
		t.Fatalf("trim status = %d", rr.Code)
	}
	if c := env.clip(id); c.EndFrame != 80 {
		t.Fatalf("EndFrame = %d, want 80", c.EndFrame)
	}

	frame := 50
	rr := env.do(t, http.MethodPost, "/clips/"+id+"/split", SplitRequest{Frame: &frame})
	if rr.Code != http.StatusCreated {
		t.Fatalf("split status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var second IDResponse
	decodeInto(t, rr, &second)
	if c := env.clip(second.ID); c.StartFrame != 50 || c.EndFrame != 80 {
		t.Fatalf("second half = %d-%d, want 50-80", c.StartFrame, c.EndFrame)
	}

	rr = env.do(t, http.MethodPost, "/undo", nil)
	var hist HistoryResponse
	decodeInto(t, rr, &hist)
	if !hist.Applied || hist.Description != "Split clip" {
		t.Fatalf("undo = %+v", hist)
	}
	if env.engine.Stats().Clips != 1 {
		t.Fatalf("clips after undo = %d, want 1", env.engine.Stats().Clips)
	}

	rr = env.do(t, http.MethodPost, "/redo", nil)
	decodeInto(t, rr, &hist)
	if !hist.Applied || env.engine.Stats().Clips != 2 {
		t.Fatalf("redo = %+v, clips = %d", hist, env.engine.Stats().Clips)
	}

	if rr := env.do(t, http.MethodDelete, "/clips/"+second.ID+"?ripple=true", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if env.engine.Stats().Clips != 1 {
		t.Fatalf("clips after delete = %d, want 1", env.engine.Stats().Clips)
	}
}

func TestClipCommands_Errors(t *testing.T) {
	env := newTestEnv(t)
	id := env.addClip(t, 0, 60)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown clip", http.MethodPost, "/clips/nope/move", FrameRequest{Frame: 5}, http.StatusNotFound},
		{"split outside", http.MethodPost, "/clips/" + id + "/split", SplitRequest{Frame: intPtr(200)}, http.StatusUnprocessableEntity},
		{"bad clip span", http.MethodPost, "/tracks/1/clips", ClipRequest{StartFrame: 10, EndFrame: 5}, http.StatusBadRequest},
		{"past source end", http.MethodPost, "/tracks/1/clips", ClipRequest{StartFrame: 0, EndFrame: 200, SourceInFrame: 900, SourceDurationFrames: 1000}, http.StatusBadRequest},
		{"source in past end", http.MethodPost, "/tracks/1/clips", ClipRequest{StartFrame: 0, EndFrame: 10, SourceInFrame: 1000, SourceDurationFrames: 1000}, http.StatusBadRequest},
		{"bad track id", http.MethodPost, "/tracks/abc/clips", ClipRequest{StartFrame: 0, EndFrame: 5}, http.StatusBadRequest},
		{"unknown track", http.MethodPost, "/tracks/99/clips", ClipRequest{StartFrame: 0, EndFrame: 5}, http.StatusNotFound},
		{"paste empty clipboard", http.MethodPost, "/tracks/0/paste", PasteRequest{}, http.StatusUnprocessableEntity},
		{"unknown preset", http.MethodPost, "/clips/" + id + "/transition", TransitionRequest{Preset: "Spin"}, http.StatusBadRequest},
		{"no neighbour", http.MethodPost, "/clips/" + id + "/transition", TransitionRequest{}, http.StatusUnprocessableEntity},
		{"bad track type", http.MethodPost, "/tracks", AddTrackRequest{Type: "subtitle"}, http.StatusBadRequest},
		{"bad pointer target", http.MethodPost, "/pointer/down", PointerDownRequest{Kind: "clip"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rr.Code, tt.status, rr.Body.String())
			}
			var body ErrorResponse
			decodeInto(t, rr, &body)
			if body.Error == "" || body.Code == "" {
				t.Fatalf("error body = %+v", body)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

func TestAddClip_SourceBounds(t *testing.T) {
	env := newTestEnv(t)
	track := strconv.Itoa(env.videoTrack())

	rr := env.do(t, http.MethodPost, "/tracks/"+track+"/clips", ClipRequest{
		StartFrame: 0, EndFrame: 200, SourceInFrame: 900, SourceDurationFrames: 1000,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	var body ErrorResponse
	decodeInto(t, rr, &body)
	if body.Error != "end_frame runs past the end of the source" {
		t.Fatalf("error = %q", body.Error)
	}

	rr = env.do(t, http.MethodPost, "/tracks/"+track+"/clips", ClipRequest{
		StartFrame: 0, EndFrame: 100, SourceInFrame: 900, SourceDurationFrames: 1000,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp IDResponse
	decodeInto(t, rr, &resp)
	c := env.clip(resp.ID)
	if c.SourceOutFrame != 1000 || c.SourceOutFrame > c.SourceDurationFrames {
		t.Fatalf("source out = %d, duration = %d", c.SourceOutFrame, c.SourceDurationFrames)
	}
}

func TestLockedTrackRefusesEdits(t *testing.T) {
	env := newTestEnv(t)
	id := env.addClip(t, 0, 60)
	track := strconv.Itoa(env.videoTrack())

	if rr := env.do(t, http.MethodPost, "/tracks/"+track+"/lock", LockRequest{Locked: true}); rr.Code != http.StatusNoContent {
		t.Fatalf("lock status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, "/clips/"+id+"/move", FrameRequest{Frame: 10}); rr.Code != http.StatusConflict {
		t.Fatalf("move on locked track status = %d, want %d", rr.Code, http.StatusConflict)
	}
	if c := env.clip(id); c.StartFrame != 0 {
		t.Fatalf("StartFrame = %d, want 0", c.StartFrame)
	}
}

func TestTransitionsAndPresets(t *testing.T) {
	env := newTestEnv(t)
	a := env.addClip(t, 0, 60)
	env.addClip(t, 60, 120)

	rr := env.do(t, http.MethodPost, "/clips/"+a+"/transition", TransitionRequest{})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var tr timeline.Transition
	decodeInto(t, rr, &tr)
	if tr.ClipAID != a || tr.DurationFrames != timeline.DefaultTransitionPreset.DurationFrames {
		t.Fatalf("transition = %+v", tr)
	}

	if rr := env.do(t, http.MethodDelete, "/transitions/"+tr.ID, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("remove status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodDelete, "/transitions/"+tr.ID, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("second remove status = %d, want 404", rr.Code)
	}

	env.engine.SetPlayhead(62)
	rr = env.do(t, http.MethodPost, "/transitions/default", TransitionRequest{})
	var placed DefaultTransitionsResponse
	decodeInto(t, rr, &placed)
	if rr.Code != http.StatusCreated || placed.Placed != 1 {
		t.Fatalf("default transitions = %d, %+v", rr.Code, placed)
	}

	rr = env.do(t, http.MethodGet, "/presets", nil)
	var presets PresetsResponse
	decodeInto(t, rr, &presets)
	if len(presets.Presets) == 0 {
		t.Fatal("no presets listed")
	}
}

func TestOverlayCommands(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/overlays", OverlayRequest{Text: "Title", StartFrame: 10, DurationFrames: 60})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created IDResponse
	decodeInto(t, rr, &created)
	base := "/overlays/" + created.ID

	for _, step := range []struct {
		path string
		body any
	}{
		{base + "/move", FrameRequest{Frame: 20}},
		{base + "/resize", ResizeRequest{DurationFrames: 90}},
		{base + "/text", TextRequest{Text: "Chapter 1"}},
		{base + "/select", SelectRequest{Selected: true}},
	} {
		if rr := env.do(t, http.MethodPost, step.path, step.body); rr.Code != http.StatusNoContent {
			t.Fatalf("%s status = %d, body = %s", step.path, rr.Code, rr.Body.String())
		}
	}

	env.engine.View(func(tl *timeline.Timeline) {
		o := tl.Overlay(created.ID)
		if o == nil || o.StartFrame != 20 || o.DurationFrames != 90 || o.Text != "Chapter 1" {
			t.Fatalf("overlay = %+v", o)
		}
		if tl.SelectedOverlayID != created.ID {
			t.Fatalf("SelectedOverlayID = %q", tl.SelectedOverlayID)
		}
	})

	if rr := env.do(t, http.MethodDelete, base, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, base+"/move", FrameRequest{Frame: 0}); rr.Code != http.StatusNotFound {
		t.Fatalf("move deleted overlay status = %d", rr.Code)
	}
}

func TestEffectsAndKeyframes(t *testing.T) {
	env := newTestEnv(t)
	id := env.addClip(t, 0, 60)

	rr := env.do(t, http.MethodPost, "/clips/"+id+"/effects", EffectRequest{
		Name:   "blur",
		Params: map[string]timeline.Value{"radius": timeline.FloatValue(2.5)},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add effect status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var effect IDResponse
	decodeInto(t, rr, &effect)

	rr = env.do(t, http.MethodPost, "/clips/"+id+"/keyframes", KeyframeRequest{Param: "opacity", Frame: 10, Value: timeline.FloatValue(0.5)})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("keyframe status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if c := env.clip(id); len(c.Effects) != 1 || len(c.Keyframes) != 1 {
		t.Fatalf("effects = %d, keyframes = %d", len(c.Effects), len(c.Keyframes))
	}

	if rr := env.do(t, http.MethodDelete, "/clips/"+id+"/effects/"+effect.ID, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("remove effect status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodDelete, "/clips/"+id+"/effects/"+effect.ID, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("second remove status = %d, want 404", rr.Code)
	}
}

func TestPointerGesture(t *testing.T) {
	env := newTestEnv(t)
	id := env.addClip(t, 0, 60)

	var target map[string]interface{}
	rr := env.do(t, http.MethodGet, "/hit-test?track_id="+strconv.Itoa(env.videoTrack())+"&x=100", nil)
	decodeInto(t, rr, &target)
	if target["kind"] != "clip" || target["clip_id"] != id {
		t.Fatalf("hit test = %v", target)
	}

	if rr := env.do(t, http.MethodPost, "/pointer/down", PointerDownRequest{Kind: "clip", ClipID: id, X: 100}); rr.Code != http.StatusNoContent {
		t.Fatalf("down status = %d, body = %s", rr.Code, rr.Body.String())
	}
	env.do(t, http.MethodPost, "/pointer/move", PointerMoveRequest{X: 140})
	env.do(t, http.MethodPost, "/pointer/move", PointerMoveRequest{X: 200})
	env.do(t, http.MethodPost, "/pointer/up", nil)

	if c := env.clip(id); c.StartFrame == 0 {
		t.Fatal("drag did not move the clip")
	}
	if depth := env.engine.Stats().UndoDepth; depth != 2 {
		t.Fatalf("UndoDepth = %d, want 2 (add + one gesture)", depth)
	}
}

func TestViewportHandlers(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, http.MethodPost, "/playhead", PlayheadRequest{Frame: 45}); rr.Code != http.StatusNoContent {
		t.Fatalf("playhead status = %d", rr.Code)
	}
	rr := env.do(t, http.MethodPost, "/zoom", ZoomRequest{Zoom: 100})
	var zoom ZoomResponse
	decodeInto(t, rr, &zoom)
	if zoom.Zoom != timeline.MaxZoom {
		t.Fatalf("zoom = %v, want clamped to %v", zoom.Zoom, timeline.MaxZoom)
	}
	if rr := env.do(t, http.MethodPost, "/markers", MarkersRequest{In: 10, Out: 20}); rr.Code != http.StatusNoContent {
		t.Fatalf("markers status = %d", rr.Code)
	}

	env.engine.View(func(tl *timeline.Timeline) {
		if tl.Playhead != 45 || tl.InPoint != 10 || tl.OutPoint != 20 {
			t.Fatalf("playhead = %d, in = %d, out = %d", tl.Playhead, tl.InPoint, tl.OutPoint)
		}
	})
}

func TestClipMediaHandler(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "shot.mp4")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	rr := env.do(t, http.MethodPost, "/tracks/0/media", MediaDropRequest{Path: path, DurationSeconds: 2, HasVideo: true})
	if rr.Code != http.StatusCreated {
		t.Fatalf("drop status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created IDResponse
	decodeInto(t, rr, &created)

	req := httptest.NewRequest(http.MethodGet, "/clips/"+created.ID+"/media", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Range", "bytes=0-3")
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusPartialContent {
		t.Fatalf("media status = %d, want %d", rr.Code, http.StatusPartialContent)
	}
	if rr.Body.String() != "0123" {
		t.Fatalf("body = %q", rr.Body.String())
	}

	if rr := env.do(t, http.MethodGet, "/clips/nope/media", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("missing clip status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, "/tracks/0/media", MediaDropRequest{Path: "/notes.txt", DurationSeconds: 1}); rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("non-media drop status = %d", rr.Code)
	}
}

func TestProjectHandlers(t *testing.T) {
	env := newTestEnv(t)
	env.addClip(t, 0, 30)

	rr := env.do(t, http.MethodPost, "/projects/save", SaveProjectRequest{Name: "Promo"})
	if rr.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var saved ProjectInfo
	decodeInto(t, rr, &saved)
	if saved.Name != "Promo" || saved.ClipCount != 1 {
		t.Fatalf("saved = %+v", saved)
	}

	env.addClip(t, 40, 70)

	rr = env.do(t, http.MethodPost, "/projects/"+saved.ID+"/load", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("load status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var loaded LoadProjectResponse
	decodeInto(t, rr, &loaded)
	if loaded.Project.ID != saved.ID || loaded.Recovered {
		t.Fatalf("loaded = %+v", loaded)
	}
	if env.engine.Stats().Clips != 1 {
		t.Fatalf("clips after load = %d, want 1", env.engine.Stats().Clips)
	}

	rr = env.do(t, http.MethodGet, "/projects", nil)
	var list ProjectsResponse
	decodeInto(t, rr, &list)
	if len(list.Projects) != 1 {
		t.Fatalf("projects = %+v", list.Projects)
	}

	if rr := env.do(t, http.MethodPost, "/projects/nope/load", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("missing project status = %d", rr.Code)
	}
}

func TestEventsHandler(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?token="+testToken, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	waitFor := func(prefix string) string {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed waiting for %q", prefix)
				}
				if strings.HasPrefix(line, prefix) {
					return line
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %q", prefix)
			}
		}
	}

	waitFor("event: hello")
	env.engine.SetPlayhead(12)
	waitFor("event: playhead_changed")
	data := waitFor("data: ")
	if !strings.Contains(data, `"frame":12`) {
		t.Fatalf("data = %q", data)
	}
}
