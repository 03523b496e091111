package timeline

import "math"

const (
	// BasePixelsPerFrame is the on-screen width of one frame at zoom 1.
	BasePixelsPerFrame = 5.0

	MinZoom = 0.05
	MaxZoom = 8.0

	DefaultFrameRate = 30.0

	// pixelEpsilon absorbs float error so PixelToFrame(FrameToPixel(f)) == f.
	pixelEpsilon = 1e-6
)

func FrameToPixel(frame int, zoom float64) float64 {
	return float64(frame) * BasePixelsPerFrame * zoom
}

// PixelToFrame floors. Negative pixels give negative frames; callers clamp.
func PixelToFrame(pixel, zoom float64) int {
	unit := BasePixelsPerFrame * zoom
	if unit <= 0 {
		return 0
	}
	return int(math.Floor(pixel/unit + pixelEpsilon))
}

func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}

// SecondsToFrames rounds to the nearest frame.
func SecondsToFrames(seconds, frameRate float64) int {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return int(math.Round(seconds * frameRate))
}

// RescaleFrames converts a frame count between two frame rates.
func RescaleFrames(frames int, from, to float64) int {
	if from <= 0 || to <= 0 || from == to {
		return frames
	}
	return int(math.Round(float64(frames) * to / from))
}

func clampMin(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

func clampRange(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
