package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoClips(t *testing.T, aStart, aEnd, bStart, bEnd int) (*Timeline, *Track, *Clip, *Clip) {
	t.Helper()
	tl := New(30)
	v := videoTrack(t, tl)
	a, b := newClip(aStart, aEnd), newClip(bStart, bEnd)
	require.NoError(t, tl.AddClip(v, a))
	require.NoError(t, tl.AddClip(v, b))
	return tl, v, a, b
}

var preset20 = TransitionPreset{Name: "Dissolve", Type: TransitionDissolve, Direction: DirectionNone, DurationFrames: 20}

func TestPlaceTransition_Predecessor(t *testing.T) {
	tl, v, a, b := twoClips(t, 0, 50, 50, 100)

	tr, err := tl.PlaceTransition(b, preset20)
	require.NoError(t, err)

	assert.Equal(t, a.ID, tr.ClipAID)
	assert.Equal(t, b.ID, tr.ClipBID)
	assert.Equal(t, 40, tr.StartFrame)
	assert.Equal(t, 20, tr.DurationFrames)
	assert.Equal(t, "Dissolve", tr.Name)
	assert.Len(t, v.Transitions, 1)
}

func TestPlaceTransition_Successor(t *testing.T) {
	tl, _, a, b := twoClips(t, 0, 50, 60, 100)

	tr, err := tl.PlaceTransition(a, preset20)
	require.NoError(t, err)

	assert.Equal(t, a.ID, tr.ClipAID)
	assert.Equal(t, b.ID, tr.ClipBID)
	assert.Equal(t, 50, tr.StartFrame, "anchored on the incoming clip")
}

func TestPlaceTransition_OverlappingNeighbourSurvivesPrune(t *testing.T) {
	tl, v, a, b := twoClips(t, 0, 100, 60, 160)

	tr, err := tl.PlaceTransition(b, preset20)
	require.NoError(t, err)
	assert.Equal(t, a.ID, tr.ClipAID)
	assert.Equal(t, 50, tr.StartFrame)

	assert.Equal(t, 0, tl.PruneStaleTransitions())
	require.Len(t, v.Transitions, 1)
	assert.Same(t, tr, v.Transitions[0])
}

func TestPlaceTransition_PrefersPredecessor(t *testing.T) {
	tl := New(30)
	v := videoTrack(t, tl)
	a, b, c := newClip(0, 50), newClip(50, 100), newClip(100, 150)
	// insertion order must not matter
	for _, clip := range []*Clip{c, b, a} {
		require.NoError(t, tl.AddClip(v, clip))
	}

	tr, err := tl.PlaceTransition(b, preset20)
	require.NoError(t, err)
	assert.Equal(t, a.ID, tr.ClipAID)
	assert.Equal(t, b.ID, tr.ClipBID)
}

func TestPlaceTransition_GapWithinDuration(t *testing.T) {
	tl, _, a, b := twoClips(t, 0, 50, 70, 100)

	tr, err := tl.PlaceTransition(b, preset20)
	require.NoError(t, err)
	assert.Equal(t, a.ID, tr.ClipAID)
	assert.Equal(t, 60, tr.StartFrame)
}

func TestPlaceTransition_NoNeighbour(t *testing.T) {
	tl, v, _, b := twoClips(t, 0, 50, 71, 100)

	tr, err := tl.PlaceTransition(b, preset20)
	assert.ErrorIs(t, err, ErrNoAdjacentClip)
	assert.Nil(t, tr)
	assert.Empty(t, v.Transitions)
}

func TestPlaceTransition_ClipNotOnTimeline(t *testing.T) {
	tl := New(30)
	_, err := tl.PlaceTransition(newClip(0, 10), preset20)
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestPlaceTransition_ReplacesSamePair(t *testing.T) {
	tl, v, _, b := twoClips(t, 0, 50, 50, 100)

	_, err := tl.PlaceTransition(b, preset20)
	require.NoError(t, err)
	tr, err := tl.PlaceTransition(b, TransitionPreset{Name: "Wipe", Type: TransitionWipe, DurationFrames: 11})
	require.NoError(t, err)

	require.Len(t, v.Transitions, 1)
	assert.Same(t, tr, v.Transitions[0])
	assert.Equal(t, 45, tr.StartFrame)
}

func TestPlaceDefaultTransitions(t *testing.T) {
	tl, v, a, b := twoClips(t, 0, 50, 50, 100)
	audio := tl.Tracks[1]
	require.NoError(t, tl.AddClip(audio, &Clip{TrackType: TrackTypeAudio, StartFrame: 0, EndFrame: 50}))
	require.NoError(t, tl.AddClip(audio, &Clip{TrackType: TrackTypeAudio, StartFrame: 50, EndFrame: 100}))

	tl.SetPlayhead(100)
	assert.Empty(t, tl.PlaceDefaultTransitions(DefaultTransitionPreset))

	tl.SetPlayhead(54)
	placed := tl.PlaceDefaultTransitions(DefaultTransitionPreset)
	require.Len(t, placed, 1)
	assert.Equal(t, a.ID, placed[0].ClipAID)
	assert.Equal(t, b.ID, placed[0].ClipBID)
	assert.Equal(t, 35, placed[0].StartFrame)
	assert.Empty(t, audio.Transitions)

	assert.Empty(t, tl.PlaceDefaultTransitions(DefaultTransitionPreset), "existing pair is skipped")
	assert.Len(t, v.Transitions, 1)
}

func TestPruneStaleTransitions(t *testing.T) {
	tl, v, a, b := twoClips(t, 0, 50, 50, 100)
	_, err := tl.PlaceTransition(b, preset20)
	require.NoError(t, err)

	MoveClip(b, 55)
	assert.Equal(t, 0, tl.PruneStaleTransitions())
	require.Len(t, v.Transitions, 1)
	assert.Equal(t, 45, v.Transitions[0].StartFrame, "re-anchored on the moved clip")

	TrimLeft(b, 60)
	assert.Equal(t, 0, tl.PruneStaleTransitions())
	assert.Equal(t, 50, v.Transitions[0].StartFrame)

	MoveClip(b, 30)
	assert.Equal(t, 0, tl.PruneStaleTransitions(), "overlap is still adjacent")

	MoveClip(b, 300)
	assert.Equal(t, 1, tl.PruneStaleTransitions())
	assert.Empty(t, v.Transitions)

	MoveClip(b, 50)
	_, err = tl.PlaceTransition(b, preset20)
	require.NoError(t, err)
	MoveClip(a, 200)
	assert.Equal(t, 1, tl.PruneStaleTransitions(), "swapped order is stale")
}

func TestRemoveTransition(t *testing.T) {
	tl, v, _, b := twoClips(t, 0, 50, 50, 100)
	tr, err := tl.PlaceTransition(b, preset20)
	require.NoError(t, err)

	require.NoError(t, tl.RemoveTransition(tr.ID))
	assert.Empty(t, v.Transitions)
	assert.ErrorIs(t, tl.RemoveTransition(tr.ID), ErrTransitionNotFound)
}

func TestInsertClip_ShiftsAnchoredTransition(t *testing.T) {
	tl, v, _, b := twoClips(t, 0, 50, 50, 100)
	tr, err := tl.PlaceTransition(b, preset20)
	require.NoError(t, err)

	require.NoError(t, tl.InsertClip(v, 60, newClip(0, 10)))
	assert.Equal(t, 50, tr.StartFrame, "only the incoming clip moved")

	_, a2 := tl.FindClip(tr.ClipAID)
	require.NoError(t, tl.InsertClip(v, 0, newClip(0, 10)))
	assert.Equal(t, 10, a2.StartFrame)
	assert.Equal(t, 60, tr.StartFrame)
}
