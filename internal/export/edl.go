package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

const defaultReel = "AX"

// BuildEvents lists one cut per unmuted clip on track in timeline order. A
// clip that is the incoming side of a transition becomes a two-line event:
// a zero-length cut on the outgoing clip followed by the transition into
// the incoming one.
func BuildEvents(tl *timeline.Timeline, track *timeline.Track) []Event {
	channel := "V"
	if track.Type == timeline.TrackTypeAudio {
		channel = "A"
	}

	incoming := make(map[string]*timeline.Transition, len(track.Transitions))
	for _, tr := range track.Transitions {
		if _, _, ok := track.TransitionClips(tr); ok {
			incoming[tr.ClipBID] = tr
		}
	}

	var events []Event
	n := 0
	for _, c := range track.SortedClips() {
		if c.Muted {
			continue
		}
		n++
		srcIn := timeline.RescaleFrames(c.SourceInFrame, c.FrameRate, tl.FrameRate)
		ev := Event{
			Number:    n,
			Reel:      defaultReel,
			Channel:   channel,
			EditType:  "C",
			ClipName:  clipName(c.Name),
			MediaPath: c.SourcePath,
			SourceIn:  srcIn,
			SourceOut: srcIn + c.DurationFrames(),
			RecordIn:  c.StartFrame,
			RecordOut: c.EndFrame,
		}

		if tr := incoming[c.ID]; tr != nil {
			if a := track.Clip(tr.ClipAID); a != nil && !a.Muted {
				aOut := timeline.RescaleFrames(a.SourceInFrame, a.FrameRate, tl.FrameRate) + a.DurationFrames()
				events = append(events, Event{
					Number:    n,
					Reel:      defaultReel,
					Channel:   channel,
					EditType:  "C",
					ClipName:  clipName(a.Name),
					MediaPath: a.SourcePath,
					SourceIn:  aOut,
					SourceOut: aOut,
					RecordIn:  c.StartFrame,
					RecordOut: c.StartFrame,
				})
				ev.EditType = editType(tr.Type)
				ev.TransitionFrames = tr.DurationFrames
			}
		}
		events = append(events, ev)
	}
	return events
}

func editType(t timeline.TransitionType) string {
	switch t {
	case timeline.TransitionWipe:
		return "W001"
	case timeline.TransitionSlide:
		return "W002"
	default:
		return "D"
	}
}

// GenerateEDL renders events as CMX 3600 text.
func GenerateEDL(events []Event, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = timeline.DefaultFrameRate
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for _, ev := range events {
		dur := "   "
		if ev.EditType != "C" {
			dur = fmt.Sprintf("%03d", ev.TransitionFrames)
		}
		lines = append(lines, fmt.Sprintf("%03d  %-8s %-5s %-4s %s %s %s %s %s",
			ev.Number, ev.Reel, ev.Channel, ev.EditType, dur,
			framesToTimecode(ev.SourceIn, fps, isDropFrame), framesToTimecode(ev.SourceOut, fps, isDropFrame),
			framesToTimecode(ev.RecordIn, fps, isDropFrame), framesToTimecode(ev.RecordOut, fps, isDropFrame)))
		if ev.SourceIn == ev.SourceOut && ev.EditType == "C" {
			continue
		}
		lines = append(lines, fmt.Sprintf("* FROM CLIP NAME:  %s", ev.ClipName))
		if ev.MediaPath != "" {
			lines = append(lines, fmt.Sprintf("* MEDIA PATH:  %s", ev.MediaPath))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// framesToTimecode formats a frame count as HH:MM:SS:FF. With drop set the
// count is mapped to SMPTE drop-frame labels (two frame numbers skipped per
// minute at 30, four at 60, except every tenth minute) and the last
// separator becomes ';'.
func framesToTimecode(totalFrames int, fps int, drop bool) string {
	if totalFrames < 0 {
		totalFrames = 0
	}
	sep := ":"
	if drop {
		skipped := fps / 15
		perMinute := fps*60 - skipped
		perTenMinutes := fps*600 - 9*skipped
		tens, rem := totalFrames/perTenMinutes, totalFrames%perTenMinutes
		totalFrames += 9 * skipped * tens
		if rem > skipped {
			totalFrames += skipped * ((rem - skipped) / perMinute)
		}
		sep = ";"
	}
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", hours, minutes, seconds, sep, frames)
}
