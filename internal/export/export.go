package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrEmptyTrack    = errors.New("track has no clips to export")
)

const defaultProjectName = "heimdex_export"

// Write renders one track of tl as an EDL file in req.OutputDir. TrackID 0
// means the first video track.
func Write(tl *timeline.Timeline, req Request) (*Response, error) {
	if err := ValidateOutputDir(req.OutputDir); err != nil {
		return nil, err
	}

	var track *timeline.Track
	if req.TrackID == 0 {
		for _, t := range tl.Tracks {
			if t.Type == timeline.TrackTypeVideo {
				track = t
				break
			}
		}
	} else {
		track = tl.Track(req.TrackID)
	}
	if track == nil {
		return nil, ErrTrackNotFound
	}

	events := BuildEvents(tl, track)
	if len(events) == 0 {
		return nil, ErrEmptyTrack
	}

	name := edlTitle(req.ProjectName)

	transitions := 0
	for _, ev := range events {
		if ev.EditType != "C" {
			transitions++
		}
	}

	edl := GenerateEDL(events, name, tl.FrameRate)
	outputPath := filepath.Join(req.OutputDir, name+".edl")
	if err := os.WriteFile(outputPath, []byte(edl), 0o644); err != nil {
		return nil, fmt.Errorf("write export file: %w", err)
	}

	return &Response{
		Status:      "ok",
		Format:      "edl",
		OutputPath:  outputPath,
		EventCount:  len(events) - transitions,
		Transitions: transitions,
	}, nil
}
