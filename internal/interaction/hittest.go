package interaction

import "github.com/heimdex/heimdex-editor/internal/timeline"

// DefaultHandlePixels is the width of a clip's trim handle.
const DefaultHandlePixels = 6.0

// HitTestTrack resolves content-space pixel x on a track to a clip body or
// one of its trim handles. Later clips sit on top of earlier ones.
func HitTestTrack(tl *timeline.Timeline, trackID int, x, handlePx float64) Target {
	track := tl.Track(trackID)
	if track == nil {
		return Target{}
	}
	for i := len(track.Clips) - 1; i >= 0; i-- {
		c := track.Clips[i]
		left := timeline.FrameToPixel(c.StartFrame, tl.Zoom)
		right := timeline.FrameToPixel(c.EndFrame, tl.Zoom)
		if x < left || x >= right {
			continue
		}
		// narrow clips keep a body in the middle
		handle := handlePx
		if w := right - left; handle*3 > w {
			handle = w / 3
		}
		switch {
		case x < left+handle:
			return Target{Kind: TargetClipLeftHandle, ClipID: c.ID}
		case x >= right-handle:
			return Target{Kind: TargetClipRightHandle, ClipID: c.ID}
		default:
			return Target{Kind: TargetClipBody, ClipID: c.ID}
		}
	}
	return Target{}
}

// HitTestOverlays finds the text overlay covering x on the overlay lane.
func HitTestOverlays(tl *timeline.Timeline, x float64) Target {
	for i := len(tl.TextOverlays) - 1; i >= 0; i-- {
		o := tl.TextOverlays[i]
		left := timeline.FrameToPixel(o.StartFrame, tl.Zoom)
		right := timeline.FrameToPixel(o.EndFrame(), tl.Zoom)
		if x >= left && x < right {
			return Target{Kind: TargetOverlayBody, OverlayID: o.ID}
		}
	}
	return Target{}
}
