package timeline

const (
	// AdjacencyWindow is how far apart, in frames, two clips may sit and
	// still count as touching.
	AdjacencyWindow = 5

	// PlayheadWindow is how close the playhead must be to a cut for the
	// default transition to land there.
	PlayheadWindow = 5

	DefaultTransitionFrames = 30
)

// DefaultTransitionPreset is the cross dissolve placed at the playhead.
var DefaultTransitionPreset = TransitionPreset{
	Name:           "Cross Dissolve",
	Type:           TransitionDissolve,
	Direction:      DirectionNone,
	DurationFrames: DefaultTransitionFrames,
}

// ResolveTransition anchors a transition from preset at the boundary
// between clip and its neighbour. The predecessor wins when both sides
// qualify. A neighbour qualifies when the gap to it is at most the preset
// duration; overlapping neighbours qualify too. The boundary is always the
// incoming clip's start.
//
// The transition is created but not attached; see PlaceTransition.
func (tl *Timeline) ResolveTransition(clip *Clip, preset TransitionPreset) (*Track, *Transition, error) {
	track := tl.TrackOf(clip)
	if track == nil {
		return nil, nil, ErrTrackNotFound
	}
	dur := clampMin(preset.DurationFrames, 1)

	clips := track.SortedClips()
	idx := -1
	for i, c := range clips {
		if c == clip {
			idx = i
			break
		}
	}

	var a, b *Clip
	if idx > 0 {
		if prev := clips[idx-1]; adjacent(prev, clip, dur) {
			a, b = prev, clip
		}
	}
	if a == nil && idx+1 < len(clips) {
		if next := clips[idx+1]; adjacent(clip, next, dur) {
			a, b = clip, next
		}
	}
	if a == nil {
		return track, nil, ErrNoAdjacentClip
	}

	return track, &Transition{
		ID:             NewID(),
		Name:           preset.Name,
		Type:           preset.Type,
		Direction:      preset.Direction,
		DurationFrames: dur,
		ClipAID:        a.ID,
		ClipBID:        b.ID,
		StartFrame:     anchorFrame(b, dur),
	}, nil
}

// PlaceTransition resolves and attaches a transition for clip, replacing any
// transition already joining the same two clips.
func (tl *Timeline) PlaceTransition(clip *Clip, preset TransitionPreset) (*Transition, error) {
	track, tr, err := tl.ResolveTransition(clip, preset)
	if err != nil {
		return nil, err
	}
	if old := track.TransitionBetween(tr.ClipAID, tr.ClipBID); old != nil {
		track.removeTransition(old.ID)
	}
	track.Transitions = append(track.Transitions, tr)
	return tr, nil
}

// adjacent reports whether a is followed by b with at most window frames
// between them. Overlapping pairs count as long as a starts first. The
// resolver, the default heuristic and the stale pass all decide adjacency
// here.
func adjacent(a, b *Clip, window int) bool {
	return a.StartFrame <= b.StartFrame && b.StartFrame-a.EndFrame <= window
}

// keepWindow is how far apart a transition's clips may drift before the
// transition is stale. It is never narrower than the window the resolver
// used to create it.
func keepWindow(durationFrames int) int {
	return clampMin(durationFrames, AdjacencyWindow)
}

// anchorFrame is where a transition of dur frames into b begins.
func anchorFrame(b *Clip, dur int) int {
	return clampMin(b.StartFrame-dur/2, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PlaceDefaultTransitions puts a cross dissolve on every video cut within
// PlayheadWindow frames of the playhead that does not already have one. It
// returns the transitions it created.
func (tl *Timeline) PlaceDefaultTransitions(preset TransitionPreset) []*Transition {
	if preset.DurationFrames <= 0 {
		preset.DurationFrames = DefaultTransitionFrames
	}
	var placed []*Transition
	for _, track := range tl.Tracks {
		if track.Type != TrackTypeVideo || track.Locked {
			continue
		}
		clips := track.SortedClips()
		for i := 0; i+1 < len(clips); i++ {
			a, b := clips[i], clips[i+1]
			if !adjacent(a, b, AdjacencyWindow) || a.EndFrame-b.StartFrame > AdjacencyWindow {
				continue
			}
			boundary := b.StartFrame
			if abs(tl.Playhead-boundary) > PlayheadWindow {
				continue
			}
			if track.TransitionBetween(a.ID, b.ID) != nil {
				continue
			}
			tr := &Transition{
				ID:             NewID(),
				Name:           preset.Name,
				Type:           preset.Type,
				Direction:      preset.Direction,
				DurationFrames: preset.DurationFrames,
				ClipAID:        a.ID,
				ClipBID:        b.ID,
				StartFrame:     anchorFrame(b, preset.DurationFrames),
			}
			track.Transitions = append(track.Transitions, tr)
			placed = append(placed, tr)
		}
	}
	return placed
}

func (tl *Timeline) RemoveTransition(id string) error {
	for _, t := range tl.Tracks {
		if t.removeTransition(id) {
			return nil
		}
	}
	return ErrTransitionNotFound
}

func (t *Track) removeTransition(id string) bool {
	for i, tr := range t.Transitions {
		if tr.ID == id {
			t.Transitions = append(t.Transitions[:i], t.Transitions[i+1:]...)
			return true
		}
	}
	return false
}

// PruneStaleTransitions drops transitions whose clips left the track or are
// no longer adjacent, and re-anchors the rest on their incoming clip. It
// returns how many were removed.
func (tl *Timeline) PruneStaleTransitions() int {
	removed := 0
	for _, t := range tl.Tracks {
		kept := t.Transitions[:0]
		for _, tr := range t.Transitions {
			a, b, ok := t.TransitionClips(tr)
			if ok && adjacent(a, b, keepWindow(tr.DurationFrames)) {
				tr.StartFrame = anchorFrame(b, tr.DurationFrames)
				kept = append(kept, tr)
				continue
			}
			removed++
		}
		for i := len(kept); i < len(t.Transitions); i++ {
			t.Transitions[i] = nil
		}
		t.Transitions = kept
	}
	return removed
}
