package timeline

import "fmt"

// Mutation operations. None of them snapshot or notify; the editor engine
// wraps them with both. Continuous edits clamp their arguments instead of
// failing.

func (tl *Timeline) AddTrack(typ TrackType, name string) *Track {
	id := tl.NextTrackID
	if id < 1 {
		id = 1
	}
	tl.NextTrackID = id + 1
	if name == "" {
		name = fmt.Sprintf("%s %d", trackPrefix(typ), tl.countTracks(typ)+1)
	}
	t := &Track{ID: id, Name: name, Type: typ}
	tl.Tracks = append(tl.Tracks, t)
	return t
}

func trackPrefix(typ TrackType) string {
	if typ == TrackTypeAudio {
		return "A"
	}
	return "V"
}

func (tl *Timeline) countTracks(typ TrackType) int {
	n := 0
	for _, t := range tl.Tracks {
		if t.Type == typ {
			n++
		}
	}
	return n
}

// RemoveTrack refuses to remove the last track of a type.
func (tl *Timeline) RemoveTrack(id int) error {
	idx := -1
	for i, t := range tl.Tracks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrTrackNotFound
	}
	t := tl.Tracks[idx]
	if tl.countTracks(t.Type) <= 1 {
		return ErrLastTrack
	}
	if sel := tl.SelectedClip(); sel != nil && t.Clip(sel.ID) != nil {
		tl.SelectedClipID = ""
	}
	tl.Tracks = append(tl.Tracks[:idx], tl.Tracks[idx+1:]...)
	return nil
}

func (tl *Timeline) checkAccepts(track *Track, clip *Clip) error {
	if track.Locked {
		return ErrTrackLocked
	}
	if clip.TrackType == "" {
		clip.TrackType = track.Type
	}
	if clip.TrackType != track.Type {
		return ErrTrackTypeMismatch
	}
	return nil
}

func (tl *Timeline) prepareClip(clip *Clip) {
	if clip.ID == "" {
		clip.ID = NewID()
	}
	if clip.FrameRate <= 0 {
		clip.FrameRate = tl.FrameRate
	}
	clip.StartFrame = clampMin(clip.StartFrame, 0)
	if clip.EndFrame <= clip.StartFrame {
		clip.EndFrame = clip.StartFrame + 1
	}
	tl.clampToSource(clip)
	clip.Selected = false
}

// clampToSource keeps 0 <= SourceInFrame < SourceOutFrame <= SourceDurationFrames
// when the source length is known, shortening the clip if the source runs
// out. An unset SourceOutFrame is derived from the clip's duration.
func (tl *Timeline) clampToSource(clip *Clip) {
	if clip.SourceDurationFrames <= 0 {
		return
	}
	clip.SourceInFrame = clampRange(clip.SourceInFrame, 0, clip.SourceDurationFrames-1)
	if clip.SourceOutFrame <= clip.SourceInFrame {
		clip.SourceOutFrame = clip.SourceInFrame + RescaleFrames(clip.DurationFrames(), tl.FrameRate, clip.FrameRate)
	}
	if clip.SourceOutFrame <= clip.SourceDurationFrames {
		return
	}
	clip.SourceOutFrame = clip.SourceDurationFrames
	avail := clampMin(RescaleFrames(clip.SourceOutFrame-clip.SourceInFrame, clip.FrameRate, tl.FrameRate), 1)
	if clip.DurationFrames() > avail {
		clip.EndFrame = clip.StartFrame + avail
	}
}

// AddClip places clip at its own StartFrame. No ripple.
func (tl *Timeline) AddClip(track *Track, clip *Clip) error {
	if err := tl.checkAccepts(track, clip); err != nil {
		return err
	}
	tl.prepareClip(clip)
	track.Clips = append(track.Clips, clip)
	return nil
}

// InsertClip makes room at atFrame by shifting every clip on the track that
// ends after atFrame forward by the new clip's duration, then places the
// clip at atFrame. Other tracks are not touched.
func (tl *Timeline) InsertClip(track *Track, atFrame int, clip *Clip) error {
	if err := tl.checkAccepts(track, clip); err != nil {
		return err
	}
	tl.prepareClip(clip)
	atFrame = clampMin(atFrame, 0)
	dur := clip.DurationFrames()

	shifted := make(map[string]bool)
	for _, c := range track.Clips {
		if c.EndFrame > atFrame {
			c.StartFrame += dur
			c.EndFrame += dur
			shifted[c.ID] = true
		}
	}
	track.shiftTransitions(shifted, dur)

	clip.StartFrame = atFrame
	clip.EndFrame = atFrame + dur
	track.Clips = append(track.Clips, clip)
	return nil
}

// RippleShift moves every clip starting at or after fromFrame by delta.
// A negative delta never pushes a clip below frame 0.
func (t *Track) RippleShift(fromFrame, delta int) {
	if delta == 0 {
		return
	}
	shifted := make(map[string]bool)
	for _, c := range t.Clips {
		if c.StartFrame < fromFrame {
			continue
		}
		d := delta
		if c.StartFrame+d < 0 {
			d = -c.StartFrame
		}
		c.StartFrame += d
		c.EndFrame += d
		shifted[c.ID] = true
	}
	t.shiftTransitions(shifted, delta)
}

// shiftTransitions keeps a transition anchored when its incoming clip moved.
func (t *Track) shiftTransitions(shifted map[string]bool, delta int) {
	for _, tr := range t.Transitions {
		if shifted[tr.ClipBID] {
			tr.StartFrame = clampMin(tr.StartFrame+delta, 0)
		}
	}
}

// MoveClip keeps the clip's duration. Overlap with siblings is allowed.
func MoveClip(clip *Clip, newStartFrame int) {
	dur := clip.DurationFrames()
	clip.StartFrame = clampMin(newStartFrame, 0)
	clip.EndFrame = clip.StartFrame + dur
}

// TrimLeft moves the clip's start and shifts its source-in by the same
// delta, so the untouched part keeps its source-to-timeline mapping. The
// start is clamped to [0, EndFrame-1], and when the source length is known
// it cannot reach before the first source frame.
func TrimLeft(clip *Clip, newStartFrame int) {
	lo := 0
	if clip.SourceDurationFrames > 0 {
		lo = clampMin(clip.StartFrame-clip.SourceInFrame, 0)
	}
	newStartFrame = clampRange(newStartFrame, lo, clip.EndFrame-1)
	delta := newStartFrame - clip.StartFrame
	clip.StartFrame = newStartFrame
	clip.SourceInFrame += delta
}

// TrimRight sets EndFrame only, clamped to at least StartFrame+1.
// SourceOutFrame is left as it was.
func TrimRight(clip *Clip, newEndFrame int) {
	clip.EndFrame = clampMin(newEndFrame, clip.StartFrame+1)
}

// SplitAtFrame cuts clip at atFrame. The second half is a new clip with its
// own identity, appended to the same track; transitions leaving the
// original now leave the second half.
func (tl *Timeline) SplitAtFrame(track *Track, clip *Clip, atFrame int) (*Clip, error) {
	if track.Locked {
		return nil, ErrTrackLocked
	}
	if !clip.Contains(atFrame) {
		return nil, ErrSplitOutsideClip
	}
	offset := atFrame - clip.StartFrame

	second := clip.Duplicate()
	second.StartFrame = atFrame
	second.SourceInFrame = clip.SourceInFrame + offset
	for _, k := range second.Keyframes {
		for i := range k.Keys {
			k.Keys[i].Frame -= offset
		}
	}
	clip.EndFrame = atFrame

	for _, tr := range track.Transitions {
		if tr.ClipAID == clip.ID {
			tr.ClipAID = second.ID
		}
	}
	track.Clips = append(track.Clips, second)
	return second, nil
}

// DeleteClip leaves a gap. Transitions touching the clip go with it.
func (tl *Timeline) DeleteClip(track *Track, clip *Clip) error {
	idx := -1
	for i, c := range track.Clips {
		if c == clip {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrClipNotFound
	}
	track.Clips = append(track.Clips[:idx], track.Clips[idx+1:]...)

	kept := track.Transitions[:0]
	for _, tr := range track.Transitions {
		if tr.ClipAID != clip.ID && tr.ClipBID != clip.ID {
			kept = append(kept, tr)
		}
	}
	track.Transitions = kept

	if tl.SelectedClipID == clip.ID {
		tl.SelectedClipID = ""
	}
	clip.Selected = false
	return nil
}

// RippleDelete removes clip and closes the gap it leaves on its track.
func (tl *Timeline) RippleDelete(track *Track, clip *Clip) error {
	start, dur := clip.StartFrame, clip.DurationFrames()
	if err := tl.DeleteClip(track, clip); err != nil {
		return err
	}
	track.RippleShift(start+dur, -dur)
	return nil
}

// SelectClip marks clip as the only selected clip. nil clears the selection.
func (tl *Timeline) SelectClip(clip *Clip) {
	for _, t := range tl.Tracks {
		for _, c := range t.Clips {
			c.Selected = false
		}
	}
	tl.SelectedClipID = ""
	if clip != nil {
		clip.Selected = true
		tl.SelectedClipID = clip.ID
	}
}

func (tl *Timeline) SelectOverlay(overlay *TextOverlay) {
	for _, o := range tl.TextOverlays {
		o.Selected = false
	}
	tl.SelectedOverlayID = ""
	if overlay != nil {
		overlay.Selected = true
		tl.SelectedOverlayID = overlay.ID
	}
}

func (tl *Timeline) ClearSelection() {
	tl.SelectClip(nil)
	tl.SelectOverlay(nil)
}

func (tl *Timeline) AddTextOverlay(overlay *TextOverlay) {
	if overlay.ID == "" {
		overlay.ID = NewID()
	}
	overlay.StartFrame = clampMin(overlay.StartFrame, 0)
	overlay.DurationFrames = clampMin(overlay.DurationFrames, 1)
	overlay.Selected = false
	tl.TextOverlays = append(tl.TextOverlays, overlay)
}

func (tl *Timeline) DeleteTextOverlay(overlay *TextOverlay) error {
	for i, o := range tl.TextOverlays {
		if o == overlay {
			tl.TextOverlays = append(tl.TextOverlays[:i], tl.TextOverlays[i+1:]...)
			if tl.SelectedOverlayID == overlay.ID {
				tl.SelectedOverlayID = ""
			}
			overlay.Selected = false
			return nil
		}
	}
	return ErrOverlayNotFound
}

func MoveTextOverlay(overlay *TextOverlay, newStartFrame int) {
	overlay.StartFrame = clampMin(newStartFrame, 0)
}

func ResizeTextOverlay(overlay *TextOverlay, newDuration int) {
	overlay.DurationFrames = clampMin(newDuration, 1)
}

// SetPlayhead reports whether the playhead moved.
func (tl *Timeline) SetPlayhead(frame int) bool {
	frame = clampMin(frame, 0)
	if frame == tl.Playhead {
		return false
	}
	tl.Playhead = frame
	return true
}

func (tl *Timeline) SetZoom(zoom float64) {
	tl.Zoom = ClampZoom(zoom)
}

// SetMarkers places the in and out points. Values below zero unset them.
func (tl *Timeline) SetMarkers(in, out int) {
	if in < 0 {
		in = Unset
	}
	if out < 0 {
		out = Unset
	}
	if in != Unset && out != Unset && out < in {
		in, out = out, in
	}
	tl.InPoint, tl.OutPoint = in, out
}

func AddEffect(clip *Clip, name string, params map[string]Value) *Effect {
	e := &Effect{ID: NewID(), Name: name, Params: params}
	clip.Effects = append(clip.Effects, e)
	return e
}

func RemoveEffect(clip *Clip, effectID string) error {
	for i, e := range clip.Effects {
		if e.ID == effectID {
			clip.Effects = append(clip.Effects[:i], clip.Effects[i+1:]...)
			return nil
		}
	}
	return ErrEffectNotFound
}

// SetKeyframe records value for param at a clip-relative frame.
func SetKeyframe(clip *Clip, param string, frame int, v Value) {
	for _, k := range clip.Keyframes {
		if k.Param == param {
			k.Set(frame, v)
			return
		}
	}
	k := &KeyframeTrack{Param: param}
	k.Set(frame, v)
	clip.Keyframes = append(clip.Keyframes, k)
}
