package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/heimdex/heimdex-editor/internal/editor"
)

const sseKeepalive = 15 * time.Second

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(LoopbackOnly())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(CORSMiddleware(cfg.CORSOrigins))
	}

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/timeline", timelineHandler(cfg))
		r.Get("/events", eventsHandler(cfg))
		r.Get("/presets", presetsHandler(cfg))
		r.Get("/hit-test", hitTestHandler(cfg))

		r.Post("/tracks", addTrackHandler(cfg))
		r.Delete("/tracks/{id}", removeTrackHandler(cfg))
		r.Post("/tracks/{id}/lock", lockTrackHandler(cfg))
		r.Post("/tracks/{id}/mute", muteTrackHandler(cfg))
		r.Post("/tracks/{id}/clips", addClipHandler(cfg))
		r.Post("/tracks/{id}/media", dropMediaHandler(cfg))
		r.Post("/tracks/{id}/paste", pasteClipHandler(cfg))

		r.Route("/clips/{id}", func(r chi.Router) {
			r.Post("/move", moveClipHandler(cfg))
			r.Post("/trim-left", trimLeftHandler(cfg))
			r.Post("/trim-right", trimRightHandler(cfg))
			r.Post("/split", splitClipHandler(cfg))
			r.Post("/select", selectClipHandler(cfg))
			r.Post("/mute", muteClipHandler(cfg))
			r.Post("/copy", copyClipHandler(cfg))
			r.Delete("/", deleteClipHandler(cfg))
			r.Post("/transition", addTransitionHandler(cfg))
			r.Post("/effects", addEffectHandler(cfg))
			r.Delete("/effects/{effectID}", removeEffectHandler(cfg))
			r.Post("/keyframes", setKeyframeHandler(cfg))
			r.Get("/media", clipMediaHandler(cfg))
		})

		r.Post("/transitions/default", defaultTransitionsHandler(cfg))
		r.Delete("/transitions/{id}", removeTransitionHandler(cfg))

		r.Post("/overlays", addOverlayHandler(cfg))
		r.Route("/overlays/{id}", func(r chi.Router) {
			r.Post("/move", moveOverlayHandler(cfg))
			r.Post("/resize", resizeOverlayHandler(cfg))
			r.Post("/text", overlayTextHandler(cfg))
			r.Post("/select", selectOverlayHandler(cfg))
			r.Delete("/", deleteOverlayHandler(cfg))
		})

		r.Post("/playhead", playheadHandler(cfg))
		r.Post("/zoom", zoomHandler(cfg))
		r.Post("/markers", markersHandler(cfg))

		r.Post("/pointer/down", pointerDownHandler(cfg))
		r.Post("/pointer/move", pointerMoveHandler(cfg))
		r.Post("/pointer/up", pointerUpHandler(cfg))

		r.Post("/undo", undoHandler(cfg))
		r.Post("/redo", redoHandler(cfg))

		r.Post("/export/edl", exportEDLHandler(cfg))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects/save", saveProjectHandler(cfg))
		r.Post("/projects/{id}/load", loadProjectHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := cfg.Engine.Stats()
		resp := StatusResponse{
			State:    stats.Gesture,
			Timeline: stats,
			Presets:  len(cfg.Engine.Presets()),
		}
		if cfg.Projects != nil {
			if p := cfg.Projects.Current(); p != nil {
				info := ProjectToInfo(p)
				resp.Project = &info
			}
		}
		if cfg.Autosaver != nil {
			resp.Autosave = &AutosaveInfo{
				Running: cfg.Autosaver.IsRunning(),
				Paused:  cfg.Autosaver.IsPaused(),
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func timelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := cfg.Engine.MarshalTimeline()
		if err != nil {
			cfg.Logger.Error("failed to encode timeline", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to encode timeline", "INTERNAL_ERROR")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(cfg.Engine.Revision(), 10)))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

// eventsHandler relays engine notifications as server-sent events. A client
// that falls behind loses events; the revision on the next one tells it to
// re-read the timeline.
func eventsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteError(w, http.StatusInternalServerError, "streaming unsupported", "INTERNAL_ERROR")
			return
		}

		events := make(chan editor.Event, 64)
		unsubscribe := cfg.Engine.Subscribe(func(ev editor.Event) {
			select {
			case events <- ev:
			default:
			}
		})
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "event: hello\ndata: {\"revision\":%d}\n\n", cfg.Engine.Revision())
		flusher.Flush()

		keepalive := time.NewTicker(sseKeepalive)
		defer keepalive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-events:
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
				flusher.Flush()
			case <-keepalive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()
			}
		}
	}
}

func presetsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, PresetsResponse{Presets: cfg.Engine.Presets()})
	}
}

func hitTestHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		trackID := 0
		if s := q.Get("track_id"); s != "" {
			id, err := strconv.Atoi(s)
			if err != nil || id < 0 {
				WriteError(w, http.StatusBadRequest, "invalid track_id", "BAD_REQUEST")
				return
			}
			trackID = id
		}
		x, err := strconv.ParseFloat(q.Get("x"), 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid x", "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusOK, cfg.Engine.HitTest(trackID, x))
	}
}

func undoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		desc, ok := cfg.Engine.Undo()
		WriteJSON(w, http.StatusOK, HistoryResponse{Applied: ok, Description: desc, Revision: cfg.Engine.Revision()})
	}
}

func redoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		desc, ok := cfg.Engine.Redo()
		WriteJSON(w, http.StatusOK, HistoryResponse{Applied: ok, Description: desc, Revision: cfg.Engine.Revision()})
	}
}
