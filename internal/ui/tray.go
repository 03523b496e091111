package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/project"
)

type Tray struct {
	engine    *editor.Engine
	projects  *project.Service
	autosaver *project.Autosaver
	logger    *slog.Logger

	statusItem   *systray.MenuItem
	timelineItem *systray.MenuItem
	undoItem     *systray.MenuItem
	redoItem     *systray.MenuItem
	pauseItem    *systray.MenuItem

	mu          sync.Mutex
	unsubscribe func()

	onQuit func()
}

type TrayConfig struct {
	Engine    *editor.Engine
	Projects  *project.Service
	Autosaver *project.Autosaver
	Logger    *slog.Logger
	OnQuit    func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		engine:    cfg.Engine,
		projects:  cfg.Projects,
		autosaver: cfg.Autosaver,
		logger:    logging.WithComponent(cfg.Logger, "tray"),
		onQuit:    cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Heimdex")
	systray.SetTooltip("Heimdex Editor")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current editor status")
	t.statusItem.Disable()

	t.timelineItem = systray.AddMenuItem("Clips: 0", "Open timeline")
	t.timelineItem.Disable()

	systray.AddSeparator()

	t.undoItem = systray.AddMenuItem("Undo", "Undo the last edit")
	t.redoItem = systray.AddMenuItem("Redo", "Redo the last undone edit")
	saveItem := systray.AddMenuItem("Save", "Save the project")
	t.pauseItem = systray.AddMenuItem("Pause Autosave", "Pause periodic autosave")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Heimdex Editor")

	t.refresh()
	t.mu.Lock()
	t.unsubscribe = t.engine.Subscribe(func(ev editor.Event) {
		if ev.Type == editor.EventTimelineModified {
			t.refresh()
		}
	})
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.undoItem.ClickedCh:
				if desc, ok := t.engine.Undo(); ok {
					t.logger.Info("undo from tray", "command", desc)
				}
			case <-t.redoItem.ClickedCh:
				if desc, ok := t.engine.Redo(); ok {
					t.logger.Info("redo from tray", "command", desc)
				}
			case <-saveItem.ClickedCh:
				t.save()
			case <-t.pauseItem.ClickedCh:
				t.togglePause()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
	t.logger.Info("system tray exiting")
}

func (t *Tray) save() {
	rev := t.engine.Revision()
	p, err := t.projects.Save(context.Background(), "")
	if err != nil {
		t.logger.Error("failed to save project", "error", err)
		t.setStatus("Save failed")
		return
	}
	if t.autosaver != nil {
		t.autosaver.MarkSaved(rev)
	}
	t.setStatus("Saved " + p.Name)
}

func (t *Tray) togglePause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autosaver == nil {
		return
	}

	if t.autosaver.IsPaused() {
		t.autosaver.Resume()
		t.pauseItem.SetTitle("Pause Autosave")
	} else {
		t.autosaver.Pause()
		t.pauseItem.SetTitle("Resume Autosave")
	}
}

func (t *Tray) setStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) refresh() {
	stats := t.engine.Stats()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.timelineItem.SetTitle(timelineTitle(stats))
	t.undoItem.SetTitle(historyTitle("Undo", stats.NextUndo))
	t.redoItem.SetTitle(historyTitle("Redo", stats.NextRedo))
	if stats.UndoDepth == 0 {
		t.undoItem.Disable()
	} else {
		t.undoItem.Enable()
	}
	if stats.RedoDepth == 0 {
		t.redoItem.Disable()
	} else {
		t.redoItem.Enable()
	}
}

func timelineTitle(s editor.Stats) string {
	return fmt.Sprintf("Clips: %d, Transitions: %d", s.Clips, s.Transitions)
}

func historyTitle(verb, desc string) string {
	if desc == "" {
		return verb
	}
	return verb + " " + desc
}

func (t *Tray) Quit() {
	systray.Quit()
}
