// Package interaction turns continuous pointer input over the timeline into
// discrete edits.
//
// A gesture starts on pointer-down, mutates the live clip or overlay on every
// move and ends on pointer-up. There is no preview copy: the timeline shows
// intermediate positions. Hooks.Begin runs when an editing gesture starts,
// Hooks.Commit runs on the first move that actually changes the timeline and
// Hooks.Modified runs once at the end if anything changed. A click that moves
// nothing never reaches Commit.
package interaction

import (
	"fmt"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

type State int

const (
	Idle State = iota
	ScrubbingPlayhead
	DraggingClip
	TrimmingLeft
	TrimmingRight
	DraggingTextOverlay
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ScrubbingPlayhead:
		return "scrubbing_playhead"
	case DraggingClip:
		return "dragging_clip"
	case TrimmingLeft:
		return "trimming_left"
	case TrimmingRight:
		return "trimming_right"
	case DraggingTextOverlay:
		return "dragging_text_overlay"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type TargetKind string

const (
	TargetNone            TargetKind = ""
	TargetRuler           TargetKind = "ruler"
	TargetClipBody        TargetKind = "clip"
	TargetClipLeftHandle  TargetKind = "clip_left"
	TargetClipRightHandle TargetKind = "clip_right"
	TargetOverlayBody     TargetKind = "overlay"
)

// Target is what the pointer went down on, as resolved by the caller's hit
// testing (see HitTestTrack and HitTestOverlays).
type Target struct {
	Kind      TargetKind `json:"kind"`
	ClipID    string     `json:"clip_id,omitempty"`
	OverlayID string     `json:"overlay_id,omitempty"`
}

// Hooks are called synchronously from the machine. Any of them may be nil.
type Hooks struct {
	Begin           func(description string)
	Commit          func()
	Modified        func()
	PlayheadChanged func(frame int)
	ClipSelected    func(clipID string)
	OverlaySelected func(overlayID string)
	ScrubStarted    func()
	ScrubEnded      func()
}

type Machine struct {
	tl    *timeline.Timeline
	hooks Hooks

	state     State
	clipID    string
	overlayID string
	anchor    int
	origStart int
	origEnd   int
	changed   bool
}

func New(tl *timeline.Timeline, hooks Hooks) *Machine {
	return &Machine{tl: tl, hooks: hooks}
}

// SetTimeline swaps the timeline being edited and drops any gesture in
// progress without notifying.
func (m *Machine) SetTimeline(tl *timeline.Timeline) {
	m.tl = tl
	m.reset()
}

func (m *Machine) State() State {
	return m.state
}

// Active reports whether a gesture is in progress.
func (m *Machine) Active() bool {
	return m.state != Idle
}

// PointerDown starts a gesture at content-space pixel x. A gesture already in
// progress is finished first.
func (m *Machine) PointerDown(target Target, x float64) error {
	if m.state != Idle {
		m.PointerUp()
	}
	frame := m.frameAt(x)

	switch target.Kind {
	case TargetRuler:
		m.state = ScrubbingPlayhead
		call0(m.hooks.ScrubStarted)
		m.scrubTo(frame)
		return nil

	case TargetClipBody, TargetClipLeftHandle, TargetClipRightHandle:
		track, clip := m.tl.FindClip(target.ClipID)
		if clip == nil {
			return timeline.ErrClipNotFound
		}
		if track.Locked {
			return timeline.ErrTrackLocked
		}
		state, desc := DraggingClip, "Move clip"
		switch target.Kind {
		case TargetClipLeftHandle:
			state, desc = TrimmingLeft, "Trim clip start"
		case TargetClipRightHandle:
			state, desc = TrimmingRight, "Trim clip end"
		}
		call1(m.hooks.Begin, desc)
		if m.tl.SelectedClipID != clip.ID {
			m.tl.SelectClip(clip)
			call1(m.hooks.ClipSelected, clip.ID)
		}
		m.begin(state, frame, clip.StartFrame, clip.EndFrame)
		m.clipID = clip.ID
		return nil

	case TargetOverlayBody:
		o := m.tl.Overlay(target.OverlayID)
		if o == nil {
			return timeline.ErrOverlayNotFound
		}
		call1(m.hooks.Begin, "Move text overlay")
		if m.tl.SelectedOverlayID != o.ID {
			m.tl.SelectOverlay(o)
			call1(m.hooks.OverlaySelected, o.ID)
		}
		m.begin(DraggingTextOverlay, frame, o.StartFrame, o.EndFrame())
		m.overlayID = o.ID
		return nil
	}
	return fmt.Errorf("unsupported pointer target %q", target.Kind)
}

func (m *Machine) begin(state State, anchor, start, end int) {
	m.state = state
	m.anchor = anchor
	m.origStart = start
	m.origEnd = end
	m.changed = false
}

// PointerMove applies the frame offset between x and the pointer-down
// position to the entity under edit. It does nothing while idle.
func (m *Machine) PointerMove(x float64) {
	frame := m.frameAt(x)
	delta := frame - m.anchor

	switch m.state {
	case Idle:
		return

	case ScrubbingPlayhead:
		m.scrubTo(frame)

	case DraggingClip, TrimmingLeft, TrimmingRight:
		_, clip := m.tl.FindClip(m.clipID)
		if clip == nil {
			m.reset()
			return
		}
		start, end, in := clip.StartFrame, clip.EndFrame, clip.SourceInFrame
		switch m.state {
		case DraggingClip:
			timeline.MoveClip(clip, m.origStart+delta)
		case TrimmingLeft:
			timeline.TrimLeft(clip, m.origStart+delta)
		case TrimmingRight:
			timeline.TrimRight(clip, m.origEnd+delta)
		}
		if clip.StartFrame != start || clip.EndFrame != end || clip.SourceInFrame != in {
			m.markChanged()
		}

	case DraggingTextOverlay:
		o := m.tl.Overlay(m.overlayID)
		if o == nil {
			m.reset()
			return
		}
		start := o.StartFrame
		timeline.MoveTextOverlay(o, m.origStart+delta)
		if o.StartFrame != start {
			m.markChanged()
		}
	}
}

func (m *Machine) markChanged() {
	if !m.changed {
		m.changed = true
		call0(m.hooks.Commit)
	}
}

// PointerUp ends the gesture and returns to Idle.
func (m *Machine) PointerUp() {
	switch m.state {
	case Idle:
		return
	case ScrubbingPlayhead:
		call0(m.hooks.ScrubEnded)
	default:
		if m.changed {
			call0(m.hooks.Modified)
		}
	}
	m.reset()
}

func (m *Machine) reset() {
	m.state = Idle
	m.clipID = ""
	m.overlayID = ""
	m.changed = false
}

func (m *Machine) scrubTo(frame int) {
	if m.tl.SetPlayhead(frame) && m.hooks.PlayheadChanged != nil {
		m.hooks.PlayheadChanged(m.tl.Playhead)
	}
}

func (m *Machine) frameAt(x float64) int {
	return timeline.PixelToFrame(x, m.tl.Zoom)
}

func call0(fn func()) {
	if fn != nil {
		fn()
	}
}

func call1(fn func(string), s string) {
	if fn != nil {
		fn(s)
	}
}
