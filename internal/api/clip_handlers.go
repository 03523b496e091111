package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/preview"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func trackIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		WriteError(w, http.StatusBadRequest, "invalid track id", "BAD_REQUEST")
		return 0, false
	}
	return id, true
}

func decodeOrReject(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return false
	}
	return true
}

// Tracks

func addTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddTrackRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		id, err := cfg.Engine.AddTrack(timeline.TrackType(req.Type), req.Name)
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, TrackResponse{ID: id})
	}
}

func removeTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := trackIDParam(w, r)
		if !ok {
			return
		}
		if err := cfg.Engine.RemoveTrack(id); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func lockTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := trackIDParam(w, r)
		if !ok {
			return
		}
		var req LockRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		if err := cfg.Engine.SetTrackLocked(id, req.Locked); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func muteTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := trackIDParam(w, r)
		if !ok {
			return
		}
		var req MuteRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		if err := cfg.Engine.SetTrackMuted(id, req.Muted); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Clips

// addClipHandler places a clip at its start frame. With ?ripple=true later
// clips on the track are pushed right to make room.
func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trackID, ok := trackIDParam(w, r)
		if !ok {
			return
		}
		var req ClipRequest
		if !decodeOrReject(w, r, &req) {
			return
		}

		var id string
		var err error
		if r.URL.Query().Get("ripple") == "true" {
			id, err = cfg.Engine.InsertClip(trackID, req.StartFrame, req.toClip())
		} else {
			id, err = cfg.Engine.AddClip(trackID, req.toClip())
		}
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, IDResponse{ID: id})
	}
}

// dropMediaHandler adds a clip for a media file dropped on the timeline.
// Track 0 lets the engine pick a track matching the media.
func dropMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trackID, ok := trackIDParam(w, r)
		if !ok {
			return
		}
		var req MediaDropRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		if !preview.IsMediaFile(req.Path) {
			WriteError(w, http.StatusUnsupportedMediaType, "unsupported media type", "UNSUPPORTED_MEDIA")
			return
		}
		src := timeline.MediaSource{
			Path:            req.Path,
			DurationSeconds: req.DurationSeconds,
			FrameRate:       req.FrameRate,
			HasVideo:        req.HasVideo,
			HasAudio:        req.HasAudio,
		}
		id, err := cfg.Engine.DropMedia(src, trackID, req.Frame)
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, IDResponse{ID: id})
	}
}

func pasteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trackID, ok := trackIDParam(w, r)
		if !ok {
			return
		}
		var req PasteRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		frame := -1
		if req.Frame != nil {
			frame = *req.Frame
		}
		id, err := cfg.Engine.PasteClip(trackID, frame)
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, IDResponse{ID: id})
	}
}

// frameEdit runs one of the continuous clip edits with the frame from the
// request body.
func frameEdit(cfg ServerConfig, fn func(clipID string, frame int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FrameRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		if err := fn(chi.URLParam(r, "id"), req.Frame); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func moveClipHandler(cfg ServerConfig) http.HandlerFunc {
	return frameEdit(cfg, cfg.Engine.MoveClip)
}

func trimLeftHandler(cfg ServerConfig) http.HandlerFunc {
	return frameEdit(cfg, cfg.Engine.TrimLeft)
}

func trimRightHandler(cfg ServerConfig) http.HandlerFunc {
	return frameEdit(cfg, cfg.Engine.TrimRight)
}

func splitClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SplitRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		frame := -1
		if req.Frame != nil {
			frame = *req.Frame
		}
		id, err := cfg.Engine.SplitClip(chi.URLParam(r, "id"), frame)
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, IDResponse{ID: id})
	}
}

// selectClipHandler selects the clip, or clears the clip selection when
// selected is false.
func selectClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		if !req.Selected {
			id = ""
		}
		if err := cfg.Engine.SelectClip(id); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func muteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MuteRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		if err := cfg.Engine.SetClipMuted(chi.URLParam(r, "id"), req.Muted); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func copyClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Engine.CopyClip(chi.URLParam(r, "id")); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ripple := r.URL.Query().Get("ripple") == "true"
		if err := cfg.Engine.DeleteClip(chi.URLParam(r, "id"), ripple); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// clipMediaHandler streams the clip's source file for preview.
func clipMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clipID := chi.URLParam(r, "id")

		var path string
		found := false
		cfg.Engine.View(func(tl *timeline.Timeline) {
			if _, c := tl.FindClip(clipID); c != nil {
				path, found = c.SourcePath, true
			}
		})
		if !found {
			WriteError(w, http.StatusNotFound, timeline.ErrClipNotFound.Error(), "NOT_FOUND")
			return
		}
		if path == "" {
			WriteError(w, http.StatusNotFound, "clip has no source media", "NOT_FOUND")
			return
		}

		if err := cfg.Preview.ServeMedia(w, r, path); err != nil {
			if errors.Is(err, preview.ErrNotMedia) {
				WriteError(w, http.StatusUnsupportedMediaType, err.Error(), "UNSUPPORTED_MEDIA")
				return
			}
			logging.WithClipID(cfg.Logger, clipID).Error("preview error", "error", err)
		}
	}
}

// Transitions

func addTransitionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransitionRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		tr, err := cfg.Engine.AddTransition(chi.URLParam(r, "id"), req.Preset)
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, tr)
	}
}

func defaultTransitionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransitionRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		n, err := cfg.Engine.PlaceDefaultTransitions(req.Preset)
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, DefaultTransitionsResponse{Placed: n})
	}
}

func removeTransitionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Engine.RemoveTransition(chi.URLParam(r, "id")); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Effects

func addEffectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EffectRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		id, err := cfg.Engine.AddEffect(chi.URLParam(r, "id"), req.Name, req.Params)
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, IDResponse{ID: id})
	}
}

func removeEffectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := cfg.Engine.RemoveEffect(chi.URLParam(r, "id"), chi.URLParam(r, "effectID"))
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setKeyframeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req KeyframeRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		if req.Value.Kind == "" {
			WriteError(w, http.StatusBadRequest, "value is required", "BAD_REQUEST")
			return
		}
		if err := cfg.Engine.SetKeyframe(chi.URLParam(r, "id"), req.Param, req.Frame, req.Value); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
