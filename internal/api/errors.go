package api

import (
	"errors"
	"net/http"

	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/export"
	"github.com/heimdex/heimdex-editor/internal/project"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

var (
	notFoundErrors = []error{
		timeline.ErrTrackNotFound,
		timeline.ErrClipNotFound,
		timeline.ErrOverlayNotFound,
		timeline.ErrEffectNotFound,
		timeline.ErrTransitionNotFound,
		project.ErrProjectNotFound,
		export.ErrTrackNotFound,
	}
	conflictErrors = []error{
		timeline.ErrTrackLocked,
		timeline.ErrLastTrack,
	}
	unprocessableErrors = []error{
		timeline.ErrTrackTypeMismatch,
		timeline.ErrSplitOutsideClip,
		timeline.ErrNoAdjacentClip,
		editor.ErrEmptyClipboard,
		editor.ErrNoTrack,
		export.ErrEmptyTrack,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeEditError answers a refused or failed command. Refusals leave the
// timeline unchanged, so they are reported as client errors.
func writeEditError(w http.ResponseWriter, cfg ServerConfig, err error) {
	switch {
	case isAny(err, notFoundErrors):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case isAny(err, conflictErrors):
		WriteError(w, http.StatusConflict, err.Error(), "CONFLICT")
	case isAny(err, unprocessableErrors):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "UNPROCESSABLE")
	case errors.Is(err, editor.ErrUnknownPreset):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	default:
		cfg.Logger.Error("command failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}
