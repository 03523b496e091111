package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/project"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateClipRequest, ClipRequest{})
	return v
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State    string        `json:"state"`
	Project  *ProjectInfo  `json:"project,omitempty"`
	Timeline editor.Stats  `json:"timeline"`
	Autosave *AutosaveInfo `json:"autosave,omitempty"`
	Presets  int           `json:"presets"`
}

type AutosaveInfo struct {
	Running bool `json:"running"`
	Paused  bool `json:"paused"`
}

type ProjectInfo struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	FrameRate      float64 `json:"frame_rate"`
	ClipCount      int     `json:"clip_count"`
	DurationFrames int     `json:"duration_frames"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectInfo `json:"projects"`
}

type SaveProjectRequest struct {
	Name string `json:"name" validate:"max=200"`
}

type LoadProjectResponse struct {
	Project   ProjectInfo `json:"project"`
	Recovered bool        `json:"recovered"`
}

type AddTrackRequest struct {
	Type string `json:"type" validate:"required,oneof=video audio"`
	Name string `json:"name" validate:"max=100"`
}

type TrackResponse struct {
	ID int `json:"id"`
}

type LockRequest struct {
	Locked bool `json:"locked"`
}

type MuteRequest struct {
	Muted bool `json:"muted"`
}

type ClipRequest struct {
	Name                 string  `json:"name" validate:"max=200"`
	SourcePath           string  `json:"source_path"`
	StartFrame           int     `json:"start_frame" validate:"min=0"`
	EndFrame             int     `json:"end_frame" validate:"gtfield=StartFrame"`
	SourceInFrame        int     `json:"source_in_frame" validate:"min=0"`
	SourceDurationFrames int     `json:"source_duration_frames" validate:"min=0"`
	FrameRate            float64 `json:"frame_rate" validate:"min=0"`
	Color                string  `json:"color"`
}

// validateClipRequest rejects a clip that reads past the end of its source
// when the source length is known.
func validateClipRequest(sl validator.StructLevel) {
	r := sl.Current().Interface().(ClipRequest)
	if r.SourceDurationFrames <= 0 {
		return
	}
	if r.SourceInFrame >= r.SourceDurationFrames {
		sl.ReportError(r.SourceInFrame, "source_in_frame", "SourceInFrame", "ltfield", "source_duration_frames")
		return
	}
	if r.SourceInFrame+(r.EndFrame-r.StartFrame) > r.SourceDurationFrames {
		sl.ReportError(r.EndFrame, "end_frame", "EndFrame", "within_source", "")
	}
}

func (r ClipRequest) toClip() *timeline.Clip {
	dur := r.EndFrame - r.StartFrame
	return &timeline.Clip{
		Name:                 r.Name,
		SourcePath:           r.SourcePath,
		StartFrame:           r.StartFrame,
		EndFrame:             r.EndFrame,
		SourceInFrame:        r.SourceInFrame,
		SourceOutFrame:       r.SourceInFrame + dur,
		SourceDurationFrames: r.SourceDurationFrames,
		FrameRate:            r.FrameRate,
		Color:                r.Color,
	}
}

type MediaDropRequest struct {
	Path            string  `json:"path" validate:"required"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gt=0"`
	FrameRate       float64 `json:"frame_rate" validate:"min=0"`
	HasVideo        bool    `json:"has_video"`
	HasAudio        bool    `json:"has_audio"`
	Frame           int     `json:"frame" validate:"min=0"`
}

type IDResponse struct {
	ID string `json:"id"`
}

// FrameRequest carries a target frame for move, trim and split.
type FrameRequest struct {
	Frame int `json:"frame"`
}

type SplitRequest struct {
	// nil splits at the playhead.
	Frame *int `json:"frame" validate:"omitempty,min=0"`
}

type SelectRequest struct {
	Selected bool `json:"selected"`
}

type PasteRequest struct {
	Frame *int `json:"frame" validate:"omitempty,min=0"`
}

type TransitionRequest struct {
	Preset string `json:"preset" validate:"max=100"`
}

type DefaultTransitionsResponse struct {
	Placed int `json:"placed"`
}

type OverlayRequest struct {
	Text           string  `json:"text" validate:"required,max=500"`
	StartFrame     int     `json:"start_frame" validate:"min=0"`
	DurationFrames int     `json:"duration_frames" validate:"min=1"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	FontFamily     string  `json:"font_family"`
	FontSize       float64 `json:"font_size" validate:"min=0"`
	Color          string  `json:"color"`
	Bold           bool    `json:"bold"`
	Italic         bool    `json:"italic"`
}

func (r OverlayRequest) toOverlay() *timeline.TextOverlay {
	return &timeline.TextOverlay{
		Text:           r.Text,
		StartFrame:     r.StartFrame,
		DurationFrames: r.DurationFrames,
		X:              r.X,
		Y:              r.Y,
		FontFamily:     r.FontFamily,
		FontSize:       r.FontSize,
		Color:          r.Color,
		Bold:           r.Bold,
		Italic:         r.Italic,
	}
}

type ResizeRequest struct {
	DurationFrames int `json:"duration_frames" validate:"min=1"`
}

type TextRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type EffectRequest struct {
	Name   string                    `json:"name" validate:"required,max=100"`
	Params map[string]timeline.Value `json:"params"`
}

type KeyframeRequest struct {
	Param string         `json:"param" validate:"required,max=100"`
	Frame int            `json:"frame" validate:"min=0"`
	Value timeline.Value `json:"value"`
}

type PlayheadRequest struct {
	Frame int `json:"frame"`
}

type ZoomRequest struct {
	Zoom float64 `json:"zoom" validate:"gt=0"`
}

type ZoomResponse struct {
	Zoom float64 `json:"zoom"`
}

type MarkersRequest struct {
	In  int `json:"in" validate:"min=-1"`
	Out int `json:"out" validate:"min=-1"`
}

type PointerDownRequest struct {
	Kind      string  `json:"kind" validate:"required,oneof=ruler clip clip_left clip_right overlay"`
	ClipID    string  `json:"clip_id" validate:"required_if=Kind clip,required_if=Kind clip_left,required_if=Kind clip_right"`
	OverlayID string  `json:"overlay_id" validate:"required_if=Kind overlay"`
	X         float64 `json:"x"`
}

func (r PointerDownRequest) target() interaction.Target {
	return interaction.Target{
		Kind:      interaction.TargetKind(r.Kind),
		ClipID:    r.ClipID,
		OverlayID: r.OverlayID,
	}
}

type PointerMoveRequest struct {
	X float64 `json:"x"`
}

type HistoryResponse struct {
	Applied     bool   `json:"applied"`
	Description string `json:"description,omitempty"`
	Revision    int64  `json:"revision"`
}

type PresetsResponse struct {
	Presets []timeline.TransitionPreset `json:"presets"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ProjectToInfo(p *project.Project) ProjectInfo {
	return ProjectInfo{
		ID:             p.ID,
		Name:           p.Name,
		FrameRate:      p.FrameRate,
		ClipCount:      p.ClipCount,
		DurationFrames: p.DurationFrames,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
}

// decodeJSON reads and validates a request body. An empty body decodes to
// the zero value, which is then validated like any other.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, strings.ToLower(e.Param()))
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", field, e.Param())
	case "within_source":
		return fmt.Sprintf("%s runs past the end of the source", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
