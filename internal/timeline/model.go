// Package timeline is the frame-indexed editing model: tracks, clips,
// transitions and text overlays, the operations that mutate them and the
// snapshot history used for undo and redo.
//
// Nothing in this package locks. A Timeline is owned by a single controller
// (see internal/editor) that serializes access.
package timeline

import (
	"sort"

	"github.com/google/uuid"
)

type TrackType string

const (
	TrackTypeVideo TrackType = "video"
	TrackTypeAudio TrackType = "audio"
)

// Unset marks an in/out point that has not been placed.
const Unset = -1

func NewID() string {
	return uuid.NewString()
}

type Timeline struct {
	Tracks       []*Track       `json:"tracks"`
	TextOverlays []*TextOverlay `json:"text_overlays"`
	FrameRate    float64        `json:"frame_rate"`
	Zoom         float64        `json:"zoom"`
	Playhead     int            `json:"playhead"`
	InPoint      int            `json:"in_point"`
	OutPoint     int            `json:"out_point"`
	NextTrackID  int            `json:"next_track_id"`

	SelectedClipID    string `json:"selected_clip_id,omitempty"`
	SelectedOverlayID string `json:"selected_overlay_id,omitempty"`
}

type Track struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Type        TrackType     `json:"type"`
	Locked      bool          `json:"locked"`
	Muted       bool          `json:"muted"`
	Clips       []*Clip       `json:"clips"`
	Transitions []*Transition `json:"transitions"`
}

type Clip struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	SourcePath           string    `json:"source_path"`
	TrackType            TrackType `json:"track_type"`
	StartFrame           int       `json:"start_frame"`
	EndFrame             int       `json:"end_frame"`
	SourceInFrame        int       `json:"source_in_frame"`
	SourceOutFrame       int       `json:"source_out_frame"`
	SourceDurationFrames int       `json:"source_duration_frames"`
	FrameRate            float64   `json:"frame_rate"`
	Muted                bool      `json:"muted"`
	Selected             bool      `json:"selected"`
	Color                string    `json:"color,omitempty"`

	Effects   []*Effect        `json:"effects,omitempty"`
	Keyframes []*KeyframeTrack `json:"keyframes,omitempty"`
}

// DurationFrames is EndFrame - StartFrame.
func (c *Clip) DurationFrames() int {
	return c.EndFrame - c.StartFrame
}

// Contains reports whether frame lies strictly inside the clip.
func (c *Clip) Contains(frame int) bool {
	return c.StartFrame < frame && frame < c.EndFrame
}

// Clone returns a deep copy that keeps the clip's identity. Snapshots use it.
func (c *Clip) Clone() *Clip {
	out := *c
	out.Effects = nil
	for _, e := range c.Effects {
		out.Effects = append(out.Effects, e.Clone())
	}
	out.Keyframes = nil
	for _, k := range c.Keyframes {
		out.Keyframes = append(out.Keyframes, k.Clone())
	}
	return &out
}

// Duplicate returns a deep copy with fresh identities for the clip and its
// effects. Split and paste use it.
func (c *Clip) Duplicate() *Clip {
	out := c.Clone()
	out.ID = NewID()
	out.Selected = false
	for _, e := range out.Effects {
		e.ID = NewID()
	}
	return out
}

type TransitionType string

const (
	TransitionDissolve TransitionType = "dissolve"
	TransitionFade     TransitionType = "fade"
	TransitionWipe     TransitionType = "wipe"
	TransitionSlide    TransitionType = "slide"
)

type Direction string

const (
	DirectionNone  Direction = "none"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

// Transition joins an outgoing clip (A) to an incoming clip (B) on one
// track. The clips are referenced by id and resolved through the owning
// track on every read.
type Transition struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           TransitionType `json:"type"`
	Direction      Direction      `json:"direction"`
	DurationFrames int            `json:"duration_frames"`
	ClipAID        string         `json:"clip_a_id"`
	ClipBID        string         `json:"clip_b_id"`
	StartFrame     int            `json:"start_frame"`
}

func (t *Transition) Clone() *Transition {
	out := *t
	return &out
}

// TransitionPreset is one entry of the externally supplied catalogue.
type TransitionPreset struct {
	Name           string         `json:"name"`
	Type           TransitionType `json:"type"`
	Direction      Direction      `json:"direction"`
	DurationFrames int            `json:"duration_frames"`
}

type TextOverlay struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	StartFrame     int     `json:"start_frame"`
	DurationFrames int     `json:"duration_frames"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	FontFamily     string  `json:"font_family,omitempty"`
	FontSize       float64 `json:"font_size,omitempty"`
	Color          string  `json:"color,omitempty"`
	Bold           bool    `json:"bold,omitempty"`
	Italic         bool    `json:"italic,omitempty"`
	Selected       bool    `json:"selected"`
}

func (o *TextOverlay) EndFrame() int {
	return o.StartFrame + o.DurationFrames
}

func (o *TextOverlay) Clone() *TextOverlay {
	out := *o
	return &out
}

// New returns an empty timeline with one video and one audio track.
func New(frameRate float64) *Timeline {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	tl := &Timeline{
		FrameRate:   frameRate,
		Zoom:        1,
		InPoint:     Unset,
		OutPoint:    Unset,
		NextTrackID: 1,
	}
	tl.AddTrack(TrackTypeVideo, "")
	tl.AddTrack(TrackTypeAudio, "")
	return tl
}

func (tl *Timeline) Track(id int) *Track {
	for _, t := range tl.Tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// FindClip locates a clip by id and returns it with its owning track.
func (tl *Timeline) FindClip(id string) (*Track, *Clip) {
	for _, t := range tl.Tracks {
		if c := t.Clip(id); c != nil {
			return t, c
		}
	}
	return nil, nil
}

// TrackOf finds the track holding clip by membership scan.
func (tl *Timeline) TrackOf(clip *Clip) *Track {
	for _, t := range tl.Tracks {
		for _, c := range t.Clips {
			if c == clip {
				return t
			}
		}
	}
	return nil
}

func (tl *Timeline) Overlay(id string) *TextOverlay {
	for _, o := range tl.TextOverlays {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (tl *Timeline) SelectedClip() *Clip {
	if tl.SelectedClipID == "" {
		return nil
	}
	_, c := tl.FindClip(tl.SelectedClipID)
	return c
}

func (tl *Timeline) SelectedOverlay() *TextOverlay {
	if tl.SelectedOverlayID == "" {
		return nil
	}
	return tl.Overlay(tl.SelectedOverlayID)
}

// DurationFrames is the end frame of the last clip or overlay.
func (tl *Timeline) DurationFrames() int {
	end := 0
	for _, t := range tl.Tracks {
		for _, c := range t.Clips {
			if c.EndFrame > end {
				end = c.EndFrame
			}
		}
	}
	for _, o := range tl.TextOverlays {
		if o.EndFrame() > end {
			end = o.EndFrame()
		}
	}
	return end
}

func (tl *Timeline) ClipCount() int {
	n := 0
	for _, t := range tl.Tracks {
		n += len(t.Clips)
	}
	return n
}

func (t *Track) Clip(id string) *Clip {
	for _, c := range t.Clips {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// SortedClips returns the track's clips ordered by start frame. The track's
// own insertion order is left alone.
func (t *Track) SortedClips() []*Clip {
	out := make([]*Clip, len(t.Clips))
	copy(out, t.Clips)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartFrame < out[j].StartFrame
	})
	return out
}

// ClipAt returns the topmost clip covering frame, if any.
func (t *Track) ClipAt(frame int) *Clip {
	for i := len(t.Clips) - 1; i >= 0; i-- {
		c := t.Clips[i]
		if c.StartFrame <= frame && frame < c.EndFrame {
			return c
		}
	}
	return nil
}

func (t *Track) Transition(id string) *Transition {
	for _, tr := range t.Transitions {
		if tr.ID == id {
			return tr
		}
	}
	return nil
}

// TransitionClips resolves a transition's clip references against the
// track. ok is false when either clip is no longer on the track.
func (t *Track) TransitionClips(tr *Transition) (a, b *Clip, ok bool) {
	a = t.Clip(tr.ClipAID)
	b = t.Clip(tr.ClipBID)
	return a, b, a != nil && b != nil
}

// TransitionBetween returns the transition joining a and b, matched by
// identity rather than frame position.
func (t *Track) TransitionBetween(aID, bID string) *Transition {
	for _, tr := range t.Transitions {
		if tr.ClipAID == aID && tr.ClipBID == bID {
			return tr
		}
	}
	return nil
}
