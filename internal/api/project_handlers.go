package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/heimdex/heimdex-editor/internal/logging"
)

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Projects.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectInfo, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToInfo(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func saveProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveProjectRequest
		if !decodeOrReject(w, r, &req) {
			return
		}

		rev := cfg.Engine.Revision()
		p, err := cfg.Projects.Save(r.Context(), req.Name)
		if err != nil {
			cfg.Logger.Error("save failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to save project", "INTERNAL_ERROR")
			return
		}
		if cfg.Autosaver != nil {
			cfg.Autosaver.MarkSaved(rev)
		}
		WriteJSON(w, http.StatusOK, ProjectToInfo(p))
	}
}

func loadProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, recovered, err := cfg.Projects.Load(r.Context(), id)
		if err != nil {
			logging.WithProjectID(cfg.Logger, id).Warn("load failed", "error", err)
			writeEditError(w, cfg, err)
			return
		}
		if cfg.Autosaver != nil {
			cfg.Autosaver.MarkSaved(cfg.Engine.Revision())
		}
		WriteJSON(w, http.StatusOK, LoadProjectResponse{Project: ProjectToInfo(p), Recovered: recovered})
	}
}
