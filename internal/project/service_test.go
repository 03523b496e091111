package project

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/heimdex/heimdex-editor/internal/db"
	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := db.New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewRepository(database.Conn())
}

func setupService(t *testing.T) (*Service, *editor.Engine, Repository) {
	t.Helper()
	repo := setupTestDB(t)
	engine := editor.New(editor.Config{FrameRate: 30, UndoDepth: 10, Logger: testLogger()})
	return NewService(repo, engine, 30, testLogger()), engine, repo
}

func addClip(t *testing.T, e *editor.Engine, start, end int) string {
	t.Helper()
	var trackID int
	e.View(func(tl *timeline.Timeline) { trackID = tl.Tracks[0].ID })
	id, err := e.AddClip(trackID, &timeline.Clip{Name: "c", StartFrame: start, EndFrame: end})
	if err != nil {
		t.Fatalf("AddClip() error = %v", err)
	}
	return id
}

func TestService_OpenCreatesProject(t *testing.T) {
	svc, _, repo := setupService(t)
	ctx := context.Background()

	p, err := svc.Open(ctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if p.Name != DefaultProjectName {
		t.Errorf("Name = %s, want %s", p.Name, DefaultProjectName)
	}

	id, err := repo.GetConfig(ctx, ConfigCurrentProject)
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if id != p.ID {
		t.Errorf("current project = %s, want %s", id, p.ID)
	}
}

func TestService_SaveAndLoad(t *testing.T) {
	svc, engine, _ := setupService(t)
	ctx := context.Background()

	addClip(t, engine, 0, 90)
	saved, err := svc.Save(ctx, "Trailer")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ClipCount != 1 || saved.DurationFrames != 90 {
		t.Errorf("summary = %d clips / %d frames, want 1 / 90", saved.ClipCount, saved.DurationFrames)
	}

	addClip(t, engine, 100, 150)
	if got := engine.Stats().Clips; got != 2 {
		t.Fatalf("clips = %d, want 2", got)
	}

	loaded, recovered, err := svc.Load(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if recovered {
		t.Error("recovered = true, want false")
	}
	if loaded.Name != "Trailer" {
		t.Errorf("Name = %s, want Trailer", loaded.Name)
	}
	if got := engine.Stats().Clips; got != 1 {
		t.Errorf("clips after load = %d, want 1", got)
	}
	if engine.Stats().UndoDepth != 0 {
		t.Error("load should clear undo history")
	}
}

func TestService_SaveUsesTimelineFrameRate(t *testing.T) {
	svc, engine, repo := setupService(t)
	ctx := context.Background()

	engine.Load(timeline.New(25))
	addClip(t, engine, 0, 50)
	saved, err := svc.Save(ctx, "PAL cut")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.FrameRate != 25 {
		t.Errorf("FrameRate = %v, want 25", saved.FrameRate)
	}

	if _, _, err := svc.Load(ctx, saved.ID); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	resaved, err := svc.Save(ctx, "")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	stored, err := repo.GetProject(ctx, resaved.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if stored.FrameRate != 25 {
		t.Errorf("stored FrameRate = %v, want 25", stored.FrameRate)
	}
}

func TestService_SaveKeepsIdentity(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, "A")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := svc.Save(ctx, "")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second save created a new project")
	}
	if second.Name != "A" {
		t.Errorf("Name = %s, want A", second.Name)
	}

	projects, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("len(projects) = %d, want 1", len(projects))
	}
}

func TestService_LoadRecoversAutosave(t *testing.T) {
	svc, engine, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, "Draft")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	addClip(t, engine, 0, 30)
	if err := svc.Autosave(ctx, engine.Revision()); err != nil {
		t.Fatalf("Autosave() error = %v", err)
	}

	engine.Load(timeline.New(30))
	_, recovered, err := svc.Load(ctx, p.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !recovered {
		t.Error("recovered = false, want true")
	}
	if got := engine.Stats().Clips; got != 1 {
		t.Errorf("clips = %d, want 1", got)
	}
}

func TestService_SaveDiscardsAutosave(t *testing.T) {
	svc, engine, repo := setupService(t)
	ctx := context.Background()

	p, _ := svc.Save(ctx, "Draft")
	addClip(t, engine, 0, 30)
	if err := svc.Autosave(ctx, engine.Revision()); err != nil {
		t.Fatalf("Autosave() error = %v", err)
	}
	if _, err := svc.Save(ctx, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	a, err := repo.GetAutosave(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetAutosave() error = %v", err)
	}
	if a != nil {
		t.Error("autosave should be removed by an explicit save")
	}
}

func TestService_LoadMissing(t *testing.T) {
	svc, _, _ := setupService(t)

	_, _, err := svc.Load(context.Background(), "nope")
	if err != ErrProjectNotFound {
		t.Errorf("Load() error = %v, want ErrProjectNotFound", err)
	}
}

func TestAutosaver_SavesOnlyOnChange(t *testing.T) {
	svc, engine, repo := setupService(t)
	ctx := context.Background()

	p, _ := svc.Save(ctx, "Draft")
	a := NewAutosaver(svc, engine, time.Hour)

	if a.Tick(ctx) {
		t.Error("Tick() saved without changes")
	}

	addClip(t, engine, 0, 30)
	if !a.Tick(ctx) {
		t.Fatal("Tick() did not save after a change")
	}
	if a.Tick(ctx) {
		t.Error("Tick() saved the same revision twice")
	}

	saved, err := repo.GetAutosave(ctx, p.ID)
	if err != nil || saved == nil {
		t.Fatalf("GetAutosave() = %v, %v", saved, err)
	}
	if saved.Revision != engine.Revision() {
		t.Errorf("Revision = %d, want %d", saved.Revision, engine.Revision())
	}
}

func TestAutosaver_StartStops(t *testing.T) {
	svc, engine, _ := setupService(t)
	a := NewAutosaver(svc, engine, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for !a.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	a.Pause()
	if !a.IsPaused() {
		t.Error("IsPaused() = false after Pause()")
	}
	a.Resume()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after cancel")
	}
	if a.IsRunning() {
		t.Error("IsRunning() = true after stop")
	}
}
