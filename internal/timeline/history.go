package timeline

import "time"

// TrackHeader is the structural part of a track captured by a snapshot.
type TrackHeader struct {
	ID     int       `json:"id"`
	Name   string    `json:"name"`
	Type   TrackType `json:"type"`
	Locked bool      `json:"locked"`
	Muted  bool      `json:"muted"`
}

type TrackClip struct {
	TrackID int   `json:"track_id"`
	Clip    *Clip `json:"clip"`
}

type TrackTransition struct {
	TrackID    int         `json:"track_id"`
	Transition *Transition `json:"transition"`
}

// Snapshot is an immutable copy of every clip on every track, the
// transitions and the text overlays at one moment.
type Snapshot struct {
	Description string            `json:"description"`
	TakenAt     time.Time         `json:"taken_at"`
	Tracks      []TrackHeader     `json:"tracks"`
	NextTrackID int               `json:"next_track_id"`
	Clips       []TrackClip       `json:"clips"`
	Transitions []TrackTransition `json:"transitions"`
	Overlays    []*TextOverlay    `json:"overlays"`
}

func Capture(tl *Timeline, description string) *Snapshot {
	s := &Snapshot{
		Description: description,
		TakenAt:     time.Now(),
		NextTrackID: tl.NextTrackID,
	}
	for _, t := range tl.Tracks {
		s.Tracks = append(s.Tracks, TrackHeader{ID: t.ID, Name: t.Name, Type: t.Type, Locked: t.Locked, Muted: t.Muted})
		for _, c := range t.Clips {
			s.Clips = append(s.Clips, TrackClip{TrackID: t.ID, Clip: c.Clone()})
		}
		for _, tr := range t.Transitions {
			s.Transitions = append(s.Transitions, TrackTransition{TrackID: t.ID, Transition: tr.Clone()})
		}
	}
	for _, o := range tl.TextOverlays {
		s.Overlays = append(s.Overlays, o.Clone())
	}
	return s
}

// Restore rebuilds the timeline's tracks, clips, transitions and overlays
// from s and clears the selection. s itself is not aliased, so it can be
// restored again. Playhead, zoom and markers are view state and stay put.
func (s *Snapshot) Restore(tl *Timeline) {
	tracks := make([]*Track, 0, len(s.Tracks))
	byID := make(map[int]*Track, len(s.Tracks))
	for _, h := range s.Tracks {
		t := &Track{ID: h.ID, Name: h.Name, Type: h.Type, Locked: h.Locked, Muted: h.Muted}
		tracks = append(tracks, t)
		byID[h.ID] = t
	}
	for _, tc := range s.Clips {
		if t := byID[tc.TrackID]; t != nil {
			c := tc.Clip.Clone()
			c.Selected = false
			t.Clips = append(t.Clips, c)
		}
	}
	for _, tt := range s.Transitions {
		if t := byID[tt.TrackID]; t != nil {
			t.Transitions = append(t.Transitions, tt.Transition.Clone())
		}
	}
	overlays := make([]*TextOverlay, 0, len(s.Overlays))
	for _, o := range s.Overlays {
		c := o.Clone()
		c.Selected = false
		overlays = append(overlays, c)
	}

	tl.Tracks = tracks
	tl.TextOverlays = overlays
	if s.NextTrackID > tl.NextTrackID {
		tl.NextTrackID = s.NextTrackID
	}
	tl.SelectedClipID = ""
	tl.SelectedOverlayID = ""
}

// History holds the undo and redo stacks. With a positive depth the undo
// stack drops its oldest entry when full; zero means unbounded.
type History struct {
	depth int
	undo  []*Snapshot
	redo  []*Snapshot
}

func NewHistory(depth int) *History {
	if depth < 0 {
		depth = 0
	}
	return &History{depth: depth}
}

// Save snapshots tl before a mutation and clears the redo stack.
func (h *History) Save(tl *Timeline, description string) {
	h.Record(Capture(tl, description))
}

// Record pushes a snapshot captured earlier. Callers that may abandon a
// command capture first and record only once the command succeeds.
func (h *History) Record(s *Snapshot) {
	h.push(s)
	h.redo = nil
}

func (h *History) push(s *Snapshot) {
	h.undo = append(h.undo, s)
	if h.depth > 0 && len(h.undo) > h.depth {
		drop := len(h.undo) - h.depth
		for i := 0; i < drop; i++ {
			h.undo[i] = nil
		}
		h.undo = h.undo[drop:]
	}
}

// Undo restores the most recent snapshot. It returns the undone snapshot's
// description, or false when there is nothing to undo.
func (h *History) Undo(tl *Timeline) (string, bool) {
	if len(h.undo) == 0 {
		return "", false
	}
	s := h.undo[len(h.undo)-1]
	h.undo[len(h.undo)-1] = nil
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, Capture(tl, s.Description))
	s.Restore(tl)
	return s.Description, true
}

func (h *History) Redo(tl *Timeline) (string, bool) {
	if len(h.redo) == 0 {
		return "", false
	}
	s := h.redo[len(h.redo)-1]
	h.redo[len(h.redo)-1] = nil
	h.redo = h.redo[:len(h.redo)-1]
	h.push(Capture(tl, s.Description))
	s.Restore(tl)
	return s.Description, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

func (h *History) UndoDepth() int { return len(h.undo) }
func (h *History) RedoDepth() int { return len(h.redo) }

// NextUndo is the description of the entry Undo would restore.
func (h *History) NextUndo() string {
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].Description
}

func (h *History) NextRedo() string {
	if len(h.redo) == 0 {
		return ""
	}
	return h.redo[len(h.redo)-1].Description
}

func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
