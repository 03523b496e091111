package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func addOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OverlayRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		id := cfg.Engine.AddTextOverlay(req.toOverlay())
		WriteJSON(w, http.StatusCreated, IDResponse{ID: id})
	}
}

func moveOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return frameEdit(cfg, cfg.Engine.MoveTextOverlay)
}

func resizeOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResizeRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		if err := cfg.Engine.ResizeTextOverlay(chi.URLParam(r, "id"), req.DurationFrames); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func overlayTextHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TextRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		if err := cfg.Engine.SetTextOverlayText(chi.URLParam(r, "id"), req.Text); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func selectOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		if !req.Selected {
			id = ""
		}
		if err := cfg.Engine.SelectTextOverlay(id); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Engine.DeleteTextOverlay(chi.URLParam(r, "id")); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Viewport

func playheadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayheadRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		cfg.Engine.SetPlayhead(req.Frame)
		w.WriteHeader(http.StatusNoContent)
	}
}

func zoomHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ZoomRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		WriteJSON(w, http.StatusOK, ZoomResponse{Zoom: cfg.Engine.SetZoom(req.Zoom)})
	}
}

func markersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MarkersRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		cfg.Engine.SetMarkers(req.In, req.Out)
		w.WriteHeader(http.StatusNoContent)
	}
}

// Pointer input. x is a content-space pixel offset.

func pointerDownHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PointerDownRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		if err := cfg.Engine.PointerDown(req.target(), req.X); err != nil {
			writeEditError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func pointerMoveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PointerMoveRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		cfg.Engine.PointerMove(req.X)
		w.WriteHeader(http.StatusNoContent)
	}
}

func pointerUpHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Engine.PointerUp()
		w.WriteHeader(http.StatusNoContent)
	}
}
