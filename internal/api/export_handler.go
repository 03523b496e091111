package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/heimdex/heimdex-editor/internal/export"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.OutputDir == "" && cfg.ExportDir != "" {
			if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
				cfg.Logger.Error("failed to create export directory", "error", err)
				WriteError(w, http.StatusInternalServerError, "failed to create export directory", "INTERNAL_ERROR")
				return
			}
			req.OutputDir = cfg.ExportDir
		}

		if err := validate.Struct(req); err != nil {
			WriteError(w, http.StatusBadRequest, formatValidationError(err).Error(), "BAD_REQUEST")
			return
		}
		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		if req.ProjectName == "" && cfg.Projects != nil {
			if p := cfg.Projects.Current(); p != nil {
				req.ProjectName = p.Name
			}
		}

		var resp *export.Response
		var err error
		cfg.Engine.View(func(tl *timeline.Timeline) {
			resp, err = export.Write(tl, req)
		})
		if err != nil {
			writeEditError(w, cfg, err)
			return
		}

		cfg.Logger.Info("timeline exported", "path", resp.OutputPath, "events", resp.EventCount)
		WriteJSON(w, http.StatusOK, resp)
	}
}
