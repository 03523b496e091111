// Package editor owns the timeline for one editing session. It is the only
// way the rest of the program touches a timeline: every command takes the
// engine lock, snapshots for undo, mutates, and publishes notifications once
// the lock is released.
package editor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

var ErrUnknownPreset = errors.New("unknown transition preset")

// PresetSource supplies the transition catalogue. The engine does not store
// presets itself.
type PresetSource interface {
	Preset(name string) (timeline.TransitionPreset, bool)
	List() []timeline.TransitionPreset
}

type Config struct {
	FrameRate float64
	UndoDepth int
	Presets   PresetSource
	Logger    *slog.Logger
}

type Engine struct {
	mu        sync.Mutex
	tl        *timeline.Timeline
	history   *timeline.History
	machine   *interaction.Machine
	presets   PresetSource
	bus       *Bus
	logger    *slog.Logger
	revision  int64
	clipboard *timeline.Clip
	pending   []Event
	gesture   *timeline.Snapshot // taken at pointer-down, recorded on first change
}

func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		tl:      timeline.New(cfg.FrameRate),
		history: timeline.NewHistory(cfg.UndoDepth),
		presets: cfg.Presets,
		bus:     NewBus(),
		logger:  logging.WithComponent(logger, "editor"),
	}
	e.machine = interaction.New(e.tl, e.gestureHooks())
	return e
}

func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	return e.bus.Subscribe(l)
}

// lock and unlock bracket every command. unlock publishes whatever the
// command queued.
func (e *Engine) lock() {
	e.mu.Lock()
}

func (e *Engine) unlock() {
	events := e.pending
	e.pending = nil
	e.mu.Unlock()
	e.bus.publish(events)
}

func (e *Engine) emit(ev Event) {
	ev.Revision = e.revision
	e.pending = append(e.pending, ev)
}

// modified bumps the revision, drops transitions left stale by the change
// and queues one TimelineModified.
func (e *Engine) modified() {
	if n := e.tl.PruneStaleTransitions(); n > 0 {
		e.logger.Debug("pruned stale transitions", "count", n)
	}
	e.revision++
	e.emit(Event{Type: EventTimelineModified})
}

// edit runs one undoable command. The snapshot is taken before fn runs and
// recorded only if fn succeeds; failing commands leave the timeline as it
// was.
func (e *Engine) edit(description string, fn func(tl *timeline.Timeline) error) error {
	e.lock()
	defer e.unlock()

	e.machine.PointerUp()
	snap := timeline.Capture(e.tl, description)
	if err := fn(e.tl); err != nil {
		e.logger.Debug("command refused", "command", description, "error", err)
		return err
	}
	e.history.Record(snap)
	e.modified()
	e.logger.Debug("command applied", "command", description, "revision", e.revision)
	return nil
}

// gestureHooks bind the interaction machine to the engine. They run under
// the engine lock.
func (e *Engine) gestureHooks() interaction.Hooks {
	return interaction.Hooks{
		Begin: func(description string) {
			e.gesture = timeline.Capture(e.tl, description)
		},
		Commit: func() {
			if e.gesture != nil {
				e.history.Record(e.gesture)
				e.gesture = nil
			}
		},
		Modified: e.modified,
		PlayheadChanged: func(frame int) {
			e.emit(Event{Type: EventPlayheadChanged, Frame: frame})
		},
		ClipSelected: func(clipID string) {
			e.emit(Event{Type: EventClipSelectionChanged, ClipID: clipID})
		},
		OverlaySelected: func(overlayID string) {
			e.emit(Event{Type: EventOverlaySelectionChanged, OverlayID: overlayID})
		},
		ScrubStarted: func() {
			e.emit(Event{Type: EventScrubStarted, Frame: e.tl.Playhead})
		},
		ScrubEnded: func() {
			e.emit(Event{Type: EventScrubEnded, Frame: e.tl.Playhead})
		},
	}
}

// View runs fn with read access to the timeline. fn must not keep
// references past its return or mutate anything.
func (e *Engine) View(fn func(tl *timeline.Timeline)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.tl)
}

// MarshalTimeline encodes the current timeline as JSON.
func (e *Engine) MarshalTimeline() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return json.Marshal(e.tl)
}

// Load replaces the timeline, for example with a saved project, and clears
// the history.
func (e *Engine) Load(tl *timeline.Timeline) {
	e.lock()
	defer e.unlock()

	if tl.FrameRate <= 0 {
		tl.FrameRate = timeline.DefaultFrameRate
	}
	tl.Zoom = timeline.ClampZoom(tl.Zoom)
	e.tl = tl
	e.history.Clear()
	e.gesture = nil
	e.machine.SetTimeline(tl)
	e.clipboard = nil
	e.modified()
	e.logger.Info("timeline loaded", "tracks", len(tl.Tracks), "clips", tl.ClipCount())
}

func (e *Engine) Revision() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revision
}

type Stats struct {
	Revision       int64   `json:"revision"`
	FrameRate      float64 `json:"frame_rate"`
	Tracks         int     `json:"tracks"`
	Clips          int     `json:"clips"`
	Transitions    int     `json:"transitions"`
	TextOverlays   int     `json:"text_overlays"`
	DurationFrames int     `json:"duration_frames"`
	UndoDepth      int     `json:"undo_depth"`
	RedoDepth      int     `json:"redo_depth"`
	NextUndo       string  `json:"next_undo,omitempty"`
	NextRedo       string  `json:"next_redo,omitempty"`
	Gesture        string  `json:"gesture"`
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{
		Revision:       e.revision,
		FrameRate:      e.tl.FrameRate,
		Tracks:         len(e.tl.Tracks),
		Clips:          e.tl.ClipCount(),
		TextOverlays:   len(e.tl.TextOverlays),
		DurationFrames: e.tl.DurationFrames(),
		UndoDepth:      e.history.UndoDepth(),
		RedoDepth:      e.history.RedoDepth(),
		NextUndo:       e.history.NextUndo(),
		NextRedo:       e.history.NextRedo(),
		Gesture:        e.machine.State().String(),
	}
	for _, t := range e.tl.Tracks {
		s.Transitions += len(t.Transitions)
	}
	return s
}

// Undo reports the description of the undone command, or false when the
// undo stack is empty.
func (e *Engine) Undo() (string, bool) {
	e.lock()
	defer e.unlock()

	e.machine.PointerUp()
	desc, ok := e.history.Undo(e.tl)
	if !ok {
		return "", false
	}
	e.modified()
	e.emit(Event{Type: EventClipSelectionChanged})
	e.emit(Event{Type: EventOverlaySelectionChanged})
	e.logger.Info("undo", "command", desc, "revision", e.revision)
	return desc, true
}

func (e *Engine) Redo() (string, bool) {
	e.lock()
	defer e.unlock()

	e.machine.PointerUp()
	desc, ok := e.history.Redo(e.tl)
	if !ok {
		return "", false
	}
	e.modified()
	e.emit(Event{Type: EventClipSelectionChanged})
	e.emit(Event{Type: EventOverlaySelectionChanged})
	e.logger.Info("redo", "command", desc, "revision", e.revision)
	return desc, true
}

func (e *Engine) Presets() []timeline.TransitionPreset {
	if e.presets == nil {
		return []timeline.TransitionPreset{timeline.DefaultTransitionPreset}
	}
	return e.presets.List()
}

func (e *Engine) preset(name string) (timeline.TransitionPreset, error) {
	if name == "" {
		return timeline.DefaultTransitionPreset, nil
	}
	if e.presets != nil {
		if p, ok := e.presets.Preset(name); ok {
			return p, nil
		}
	}
	if name == timeline.DefaultTransitionPreset.Name {
		return timeline.DefaultTransitionPreset, nil
	}
	return timeline.TransitionPreset{}, ErrUnknownPreset
}
