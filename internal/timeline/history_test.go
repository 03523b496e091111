package timeline

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shape renders the structural content of a timeline so two states can be
// compared by value.
func shape(tl *Timeline) string {
	var lines []string
	for _, t := range tl.Tracks {
		lines = append(lines, fmt.Sprintf("track %d %s %s locked=%v", t.ID, t.Type, t.Name, t.Locked))
		for _, c := range t.SortedClips() {
			lines = append(lines, fmt.Sprintf("  clip %s [%d,%d) in=%d name=%s", c.ID, c.StartFrame, c.EndFrame, c.SourceInFrame, c.Name))
		}
		for _, tr := range t.Transitions {
			lines = append(lines, fmt.Sprintf("  transition %s %s->%s @%d", tr.ID, tr.ClipAID, tr.ClipBID, tr.StartFrame))
		}
	}
	var overlays []string
	for _, o := range tl.TextOverlays {
		overlays = append(overlays, fmt.Sprintf("overlay %s %q %d+%d", o.ID, o.Text, o.StartFrame, o.DurationFrames))
	}
	sort.Strings(overlays)
	return strings.Join(append(lines, overlays...), "\n")
}

func TestHistory_UndoRestoresSnapshot(t *testing.T) {
	tl := New(30)
	v := videoTrack(t, tl)
	h := NewHistory(0)
	c := newClip(0, 100)
	require.NoError(t, tl.AddClip(v, c))
	before := shape(tl)

	h.Save(tl, "Split clip")
	_, err := tl.SplitAtFrame(v, c, 40)
	require.NoError(t, err)
	require.Len(t, v.Clips, 2)

	desc, ok := h.Undo(tl)
	require.True(t, ok)
	assert.Equal(t, "Split clip", desc)
	assert.Equal(t, before, shape(tl))
	assert.True(t, h.CanRedo())
	assert.False(t, h.CanUndo())
}

func TestHistory_UndoRedoIdempotent(t *testing.T) {
	tl := New(30)
	v := videoTrack(t, tl)
	h := NewHistory(0)
	a, b := newClip(0, 50), newClip(50, 100)
	require.NoError(t, tl.AddClip(v, a))
	require.NoError(t, tl.AddClip(v, b))
	tl.AddTextOverlay(&TextOverlay{Text: "Hi", DurationFrames: 10})

	h.Save(tl, "Add transition")
	_, err := tl.PlaceTransition(b, TransitionPreset{DurationFrames: 10})
	require.NoError(t, err)
	h.Save(tl, "Move clip")
	MoveClip(a, 5)
	after := shape(tl)

	_, ok := h.Undo(tl)
	require.True(t, ok)
	_, ok = h.Redo(tl)
	require.True(t, ok)

	assert.Equal(t, after, shape(tl))
}

func TestHistory_CoversTransitionsAndTracks(t *testing.T) {
	tl := New(30)
	v := videoTrack(t, tl)
	h := NewHistory(0)
	a, b := newClip(0, 50), newClip(50, 100)
	require.NoError(t, tl.AddClip(v, a))
	require.NoError(t, tl.AddClip(v, b))

	h.Save(tl, "Add transition")
	_, err := tl.PlaceTransition(b, TransitionPreset{DurationFrames: 10})
	require.NoError(t, err)
	h.Undo(tl)
	assert.Empty(t, tl.Track(v.ID).Transitions)

	extra := tl.AddTrack(TrackTypeVideo, "B-roll")
	require.NoError(t, tl.AddClip(extra, newClip(0, 10)))
	h.Save(tl, "Remove track")
	require.NoError(t, tl.RemoveTrack(extra.ID))
	h.Undo(tl)
	restored := tl.Track(extra.ID)
	require.NotNil(t, restored)
	assert.Len(t, restored.Clips, 1)
	assert.Equal(t, "B-roll", restored.Name)
}

func TestHistory_ThreeMutationsUndoTwiceRedoOnce(t *testing.T) {
	tl := New(30)
	v := videoTrack(t, tl)
	h := NewHistory(0)
	c := newClip(0, 100)
	require.NoError(t, tl.AddClip(v, c))

	var states []string
	for _, start := range []int{10, 20, 30} {
		h.Save(tl, "Move clip")
		_, clip := tl.FindClip(c.ID)
		MoveClip(clip, start)
		states = append(states, shape(tl))
	}

	h.Undo(tl)
	h.Undo(tl)
	assert.Equal(t, states[0], shape(tl), "two undos leave only the first mutation")

	h.Redo(tl)
	assert.Equal(t, states[1], shape(tl), "redo reapplies the second mutation")

	h.Undo(tl)
	assert.Equal(t, states[0], shape(tl))
}

func TestHistory_SaveClearsRedo(t *testing.T) {
	tl := New(30)
	h := NewHistory(0)

	h.Save(tl, "one")
	tl.AddTextOverlay(&TextOverlay{Text: "a", DurationFrames: 5})
	h.Undo(tl)
	require.True(t, h.CanRedo())

	h.Save(tl, "two")
	assert.False(t, h.CanRedo())
}

func TestHistory_EmptyStacksAreNoops(t *testing.T) {
	tl := New(30)
	h := NewHistory(0)
	before := shape(tl)

	_, ok := h.Undo(tl)
	assert.False(t, ok)
	_, ok = h.Redo(tl)
	assert.False(t, ok)
	assert.Equal(t, before, shape(tl))
}

func TestHistory_BoundedDepthEvictsOldest(t *testing.T) {
	tl := New(30)
	h := NewHistory(2)
	for i := 0; i < 5; i++ {
		h.Save(tl, fmt.Sprintf("step %d", i))
	}

	assert.Equal(t, 2, h.UndoDepth())
	assert.Equal(t, "step 4", h.NextUndo())
	h.Undo(tl)
	h.Undo(tl)
	assert.False(t, h.CanUndo())
	assert.Equal(t, 2, h.RedoDepth())
	assert.Equal(t, "step 3", h.NextRedo())
}

func TestHistory_RestoreClearsSelection(t *testing.T) {
	tl := New(30)
	v := videoTrack(t, tl)
	h := NewHistory(0)
	c := newClip(0, 10)
	require.NoError(t, tl.AddClip(v, c))
	tl.SelectClip(c)

	h.Save(tl, "Move clip")
	MoveClip(c, 20)
	h.Undo(tl)

	assert.Empty(t, tl.SelectedClipID)
	_, restored := tl.FindClip(c.ID)
	require.NotNil(t, restored)
	assert.False(t, restored.Selected)
	assert.NotSame(t, c, restored)
}

func TestSnapshot_NotAliased(t *testing.T) {
	tl := New(30)
	v := videoTrack(t, tl)
	c := newClip(0, 10)
	require.NoError(t, tl.AddClip(v, c))

	s := Capture(tl, "x")
	s.Restore(tl)
	_, restored := tl.FindClip(c.ID)
	MoveClip(restored, 500)

	assert.Equal(t, 0, s.Clips[0].Clip.StartFrame)
}
