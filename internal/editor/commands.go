package editor

import (
	"errors"

	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

var (
	ErrEmptyClipboard = errors.New("clipboard is empty")
	ErrNoTrack        = errors.New("no unlocked track of that type")
)

// editableClip finds a clip whose track accepts edits.
func editableClip(tl *timeline.Timeline, clipID string) (*timeline.Track, *timeline.Clip, error) {
	track, clip := tl.FindClip(clipID)
	if clip == nil {
		return nil, nil, timeline.ErrClipNotFound
	}
	if track.Locked {
		return nil, nil, timeline.ErrTrackLocked
	}
	return track, clip, nil
}

func track(tl *timeline.Timeline, id int) (*timeline.Track, error) {
	t := tl.Track(id)
	if t == nil {
		return nil, timeline.ErrTrackNotFound
	}
	return t, nil
}

// firstUnlocked returns the first unlocked track of typ.
func firstUnlocked(tl *timeline.Timeline, typ timeline.TrackType) *timeline.Track {
	for _, t := range tl.Tracks {
		if t.Type == typ && !t.Locked {
			return t
		}
	}
	return nil
}

// Tracks

func (e *Engine) AddTrack(typ timeline.TrackType, name string) (int, error) {
	var id int
	err := e.edit("Add track", func(tl *timeline.Timeline) error {
		id = tl.AddTrack(typ, name).ID
		return nil
	})
	return id, err
}

func (e *Engine) RemoveTrack(id int) error {
	return e.edit("Remove track", func(tl *timeline.Timeline) error {
		return tl.RemoveTrack(id)
	})
}

func (e *Engine) SetTrackLocked(id int, locked bool) error {
	desc := "Unlock track"
	if locked {
		desc = "Lock track"
	}
	return e.edit(desc, func(tl *timeline.Timeline) error {
		t, err := track(tl, id)
		if err != nil {
			return err
		}
		t.Locked = locked
		return nil
	})
}

func (e *Engine) SetTrackMuted(id int, muted bool) error {
	desc := "Unmute track"
	if muted {
		desc = "Mute track"
	}
	return e.edit(desc, func(tl *timeline.Timeline) error {
		t, err := track(tl, id)
		if err != nil {
			return err
		}
		t.Muted = muted
		return nil
	})
}

// Clips

// AddClip places clip on a track at its own StartFrame. The engine takes
// ownership of clip.
func (e *Engine) AddClip(trackID int, clip *timeline.Clip) (string, error) {
	err := e.edit("Add clip", func(tl *timeline.Timeline) error {
		t, err := track(tl, trackID)
		if err != nil {
			return err
		}
		return tl.AddClip(t, clip)
	})
	if err != nil {
		return "", err
	}
	return clip.ID, nil
}

// InsertClip places clip at atFrame and ripples later clips on the same
// track forward by its duration.
func (e *Engine) InsertClip(trackID, atFrame int, clip *timeline.Clip) (string, error) {
	err := e.edit("Insert clip", func(tl *timeline.Timeline) error {
		t, err := track(tl, trackID)
		if err != nil {
			return err
		}
		return tl.InsertClip(t, atFrame, clip)
	})
	if err != nil {
		return "", err
	}
	return clip.ID, nil
}

// DropMedia adds a clip for src at frame. A zero trackID picks the first
// unlocked track matching the media.
func (e *Engine) DropMedia(src timeline.MediaSource, trackID, frame int) (string, error) {
	var id string
	err := e.edit("Add media", func(tl *timeline.Timeline) error {
		typ := src.DropTarget()
		var t *timeline.Track
		if trackID == 0 {
			if t = firstUnlocked(tl, typ); t == nil {
				return ErrNoTrack
			}
		} else {
			var err error
			if t, err = track(tl, trackID); err != nil {
				return err
			}
			typ = t.Type
		}
		clip := timeline.NewClipFromMedia(src, typ, frame, tl.FrameRate)
		if err := tl.AddClip(t, clip); err != nil {
			return err
		}
		id = clip.ID
		return nil
	})
	return id, err
}

func (e *Engine) MoveClip(clipID string, startFrame int) error {
	return e.edit("Move clip", func(tl *timeline.Timeline) error {
		_, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		timeline.MoveClip(clip, startFrame)
		return nil
	})
}

func (e *Engine) TrimLeft(clipID string, startFrame int) error {
	return e.edit("Trim clip start", func(tl *timeline.Timeline) error {
		_, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		timeline.TrimLeft(clip, startFrame)
		return nil
	})
}

func (e *Engine) TrimRight(clipID string, endFrame int) error {
	return e.edit("Trim clip end", func(tl *timeline.Timeline) error {
		_, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		timeline.TrimRight(clip, endFrame)
		return nil
	})
}

// SplitClip cuts a clip at frame, or at the playhead when frame is negative.
// It returns the id of the new second half.
func (e *Engine) SplitClip(clipID string, frame int) (string, error) {
	var id string
	err := e.edit("Split clip", func(tl *timeline.Timeline) error {
		t, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		if frame < 0 {
			frame = tl.Playhead
		}
		second, err := tl.SplitAtFrame(t, clip, frame)
		if err != nil {
			return err
		}
		id = second.ID
		return nil
	})
	return id, err
}

func (e *Engine) DeleteClip(clipID string, ripple bool) error {
	desc := "Delete clip"
	if ripple {
		desc = "Ripple delete clip"
	}
	err := e.edit(desc, func(tl *timeline.Timeline) error {
		t, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		wasSelected := tl.SelectedClipID == clip.ID
		if ripple {
			err = tl.RippleDelete(t, clip)
		} else {
			err = tl.DeleteClip(t, clip)
		}
		if err == nil && wasSelected {
			e.emit(Event{Type: EventClipSelectionChanged})
		}
		return err
	})
	return err
}

func (e *Engine) SetClipMuted(clipID string, muted bool) error {
	desc := "Unmute clip"
	if muted {
		desc = "Mute clip"
	}
	return e.edit(desc, func(tl *timeline.Timeline) error {
		_, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		clip.Muted = muted
		return nil
	})
}

// SelectClip selects a clip; an empty id clears the clip selection.
// Selection is not an edit and leaves the history alone.
func (e *Engine) SelectClip(clipID string) error {
	e.lock()
	defer e.unlock()

	var clip *timeline.Clip
	if clipID != "" {
		if _, clip = e.tl.FindClip(clipID); clip == nil {
			return timeline.ErrClipNotFound
		}
	}
	if e.tl.SelectedClipID == clipID {
		return nil
	}
	e.tl.SelectClip(clip)
	e.emit(Event{Type: EventClipSelectionChanged, ClipID: clipID})
	return nil
}

// CopyClip puts a detached copy of the clip on the engine clipboard.
func (e *Engine) CopyClip(clipID string) error {
	e.lock()
	defer e.unlock()

	_, clip := e.tl.FindClip(clipID)
	if clip == nil {
		return timeline.ErrClipNotFound
	}
	e.clipboard = clip.Clone()
	e.clipboard.Selected = false
	return nil
}

// PasteClip inserts a fresh copy of the clipboard clip at frame, or at the
// playhead when frame is negative. A zero trackID picks the first unlocked
// track of the clip's type. Later clips ripple forward.
func (e *Engine) PasteClip(trackID, frame int) (string, error) {
	var id string
	err := e.edit("Paste clip", func(tl *timeline.Timeline) error {
		if e.clipboard == nil {
			return ErrEmptyClipboard
		}
		var t *timeline.Track
		if trackID == 0 {
			if t = firstUnlocked(tl, e.clipboard.TrackType); t == nil {
				return ErrNoTrack
			}
		} else {
			var err error
			if t, err = track(tl, trackID); err != nil {
				return err
			}
		}
		if frame < 0 {
			frame = tl.Playhead
		}
		clip := e.clipboard.Duplicate()
		if err := tl.InsertClip(t, frame, clip); err != nil {
			return err
		}
		id = clip.ID
		return nil
	})
	return id, err
}

// Transitions

// AddTransition places the named preset at the boundary between clip and
// its neighbour. An empty preset name means the default cross dissolve.
func (e *Engine) AddTransition(clipID, presetName string) (timeline.Transition, error) {
	preset, err := e.preset(presetName)
	if err != nil {
		return timeline.Transition{}, err
	}
	var placed timeline.Transition
	err = e.edit("Add transition", func(tl *timeline.Timeline) error {
		_, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		tr, err := tl.PlaceTransition(clip, preset)
		if err != nil {
			return err
		}
		placed = *tr
		return nil
	})
	return placed, err
}

// PlaceDefaultTransitions adds the default transition to every video cut
// near the playhead. No cut near the playhead is a soft failure.
func (e *Engine) PlaceDefaultTransitions(presetName string) (int, error) {
	preset, err := e.preset(presetName)
	if err != nil {
		return 0, err
	}
	var n int
	err = e.edit("Add default transition", func(tl *timeline.Timeline) error {
		n = len(tl.PlaceDefaultTransitions(preset))
		if n == 0 {
			return timeline.ErrNoAdjacentClip
		}
		return nil
	})
	return n, err
}

func (e *Engine) RemoveTransition(id string) error {
	return e.edit("Remove transition", func(tl *timeline.Timeline) error {
		return tl.RemoveTransition(id)
	})
}

// Text overlays

func (e *Engine) AddTextOverlay(o *timeline.TextOverlay) string {
	_ = e.edit("Add text overlay", func(tl *timeline.Timeline) error {
		tl.AddTextOverlay(o)
		return nil
	})
	return o.ID
}

func (e *Engine) overlayEdit(desc, id string, fn func(o *timeline.TextOverlay)) error {
	return e.edit(desc, func(tl *timeline.Timeline) error {
		o := tl.Overlay(id)
		if o == nil {
			return timeline.ErrOverlayNotFound
		}
		fn(o)
		return nil
	})
}

func (e *Engine) MoveTextOverlay(id string, startFrame int) error {
	return e.overlayEdit("Move text overlay", id, func(o *timeline.TextOverlay) {
		timeline.MoveTextOverlay(o, startFrame)
	})
}

func (e *Engine) ResizeTextOverlay(id string, durationFrames int) error {
	return e.overlayEdit("Resize text overlay", id, func(o *timeline.TextOverlay) {
		timeline.ResizeTextOverlay(o, durationFrames)
	})
}

func (e *Engine) SetTextOverlayText(id, text string) error {
	return e.overlayEdit("Edit text overlay", id, func(o *timeline.TextOverlay) {
		o.Text = text
	})
}

func (e *Engine) DeleteTextOverlay(id string) error {
	return e.edit("Delete text overlay", func(tl *timeline.Timeline) error {
		o := tl.Overlay(id)
		if o == nil {
			return timeline.ErrOverlayNotFound
		}
		wasSelected := tl.SelectedOverlayID == id
		if err := tl.DeleteTextOverlay(o); err != nil {
			return err
		}
		if wasSelected {
			e.emit(Event{Type: EventOverlaySelectionChanged})
		}
		return nil
	})
}

func (e *Engine) SelectTextOverlay(id string) error {
	e.lock()
	defer e.unlock()

	var o *timeline.TextOverlay
	if id != "" {
		if o = e.tl.Overlay(id); o == nil {
			return timeline.ErrOverlayNotFound
		}
	}
	if e.tl.SelectedOverlayID == id {
		return nil
	}
	e.tl.SelectOverlay(o)
	e.emit(Event{Type: EventOverlaySelectionChanged, OverlayID: id})
	return nil
}

// Effects

func (e *Engine) AddEffect(clipID, name string, params map[string]timeline.Value) (string, error) {
	var id string
	err := e.edit("Add effect", func(tl *timeline.Timeline) error {
		_, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		id = timeline.AddEffect(clip, name, params).ID
		return nil
	})
	return id, err
}

func (e *Engine) RemoveEffect(clipID, effectID string) error {
	return e.edit("Remove effect", func(tl *timeline.Timeline) error {
		_, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		return timeline.RemoveEffect(clip, effectID)
	})
}

func (e *Engine) SetKeyframe(clipID, param string, frame int, v timeline.Value) error {
	return e.edit("Set keyframe", func(tl *timeline.Timeline) error {
		_, clip, err := editableClip(tl, clipID)
		if err != nil {
			return err
		}
		timeline.SetKeyframe(clip, param, frame, v)
		return nil
	})
}

// View state. Playhead, zoom and markers are not part of the history.

func (e *Engine) SetPlayhead(frame int) {
	e.lock()
	defer e.unlock()
	if e.tl.SetPlayhead(frame) {
		e.emit(Event{Type: EventPlayheadChanged, Frame: e.tl.Playhead})
	}
}

func (e *Engine) SetZoom(zoom float64) float64 {
	e.lock()
	defer e.unlock()
	e.tl.SetZoom(zoom)
	return e.tl.Zoom
}

func (e *Engine) SetMarkers(in, out int) {
	e.lock()
	defer e.unlock()
	e.tl.SetMarkers(in, out)
	e.revision++
	e.emit(Event{Type: EventTimelineModified})
}

// Pointer input

func (e *Engine) PointerDown(target interaction.Target, x float64) error {
	e.lock()
	defer e.unlock()
	return e.machine.PointerDown(target, x)
}

func (e *Engine) PointerMove(x float64) {
	e.lock()
	defer e.unlock()
	e.machine.PointerMove(x)
}

func (e *Engine) PointerUp() {
	e.lock()
	defer e.unlock()
	e.machine.PointerUp()
}

// HitTest resolves pixel x on a track row. A zero trackID tests the text
// overlay lane.
func (e *Engine) HitTest(trackID int, x float64) interaction.Target {
	e.mu.Lock()
	defer e.mu.Unlock()
	if trackID == 0 {
		return interaction.HitTestOverlays(e.tl, x)
	}
	return interaction.HitTestTrack(e.tl, trackID, x, interaction.DefaultHandlePixels)
}
