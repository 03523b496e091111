package timeline

import (
	"path/filepath"
	"strings"
)

// MediaSource describes media dropped onto a track. Duration and frame rate
// are read from the file outside the engine.
type MediaSource struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
	FrameRate       float64 `json:"frame_rate"`
	HasVideo        bool    `json:"has_video"`
	HasAudio        bool    `json:"has_audio"`
}

var trackColors = map[TrackType]string{
	TrackTypeVideo: "#4a7bd0",
	TrackTypeAudio: "#3fa66b",
}

// NewClipFromMedia builds a clip covering the whole source, starting at
// startFrame. Source-space fields are counted in the source's own frames;
// the timeline span is rescaled to timelineRate.
func NewClipFromMedia(src MediaSource, typ TrackType, startFrame int, timelineRate float64) *Clip {
	srcRate := src.FrameRate
	if srcRate <= 0 {
		srcRate = timelineRate
	}
	srcFrames := clampMin(SecondsToFrames(src.DurationSeconds, srcRate), 1)
	span := clampMin(RescaleFrames(srcFrames, srcRate, timelineRate), 1)
	startFrame = clampMin(startFrame, 0)

	return &Clip{
		ID:                   NewID(),
		Name:                 strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path)),
		SourcePath:           src.Path,
		TrackType:            typ,
		StartFrame:           startFrame,
		EndFrame:             startFrame + span,
		SourceInFrame:        0,
		SourceOutFrame:       srcFrames,
		SourceDurationFrames: srcFrames,
		FrameRate:            srcRate,
		Color:                trackColors[typ],
	}
}

// DropTarget picks the track type a source lands on. Video wins when the
// source carries both.
func (src MediaSource) DropTarget() TrackType {
	if !src.HasVideo && src.HasAudio {
		return TrackTypeAudio
	}
	return TrackTypeVideo
}
