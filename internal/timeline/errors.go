package timeline

import "errors"

var (
	ErrTrackNotFound      = errors.New("track not found")
	ErrClipNotFound       = errors.New("clip not found")
	ErrOverlayNotFound    = errors.New("text overlay not found")
	ErrEffectNotFound     = errors.New("effect not found")
	ErrTransitionNotFound = errors.New("transition not found")
	ErrTrackLocked        = errors.New("track is locked")
	ErrTrackTypeMismatch  = errors.New("clip type does not match track type")
	ErrLastTrack          = errors.New("cannot remove the last track of its type")
	ErrSplitOutsideClip   = errors.New("split point is not inside the clip")
	ErrNoAdjacentClip     = errors.New("no adjacent clip for transition")
)
