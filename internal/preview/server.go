// Package preview streams clip source media to the renderer so it can play
// back what sits under the playhead.
package preview

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/heimdex/heimdex-editor/internal/logging"
)

var ErrNotMedia = errors.New("not a media file")

// MediaExtensions are the source formats the editor accepts.
var MediaExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
}

func IsMediaFile(path string) bool {
	_, ok := MediaExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := MediaExtensions[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

type MediaServer interface {
	ServeMedia(w http.ResponseWriter, r *http.Request, path string) error
}

type Server struct {
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	return &Server{logger: logging.WithComponent(logger, "preview")}
}

// ServeMedia writes path to w, honouring a byte Range request. It answers
// 404 itself for missing files; other failures are returned.
func (s *Server) ServeMedia(w http.ResponseWriter, r *http.Request, path string) error {
	if !IsMediaFile(path) {
		return ErrNotMedia
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "media not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat media: %w", err)
	}
	size := info.Size()

	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", contentType(path))

	br, err := ParseRange(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrUnsatisfiable):
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case errors.Is(err, ErrInvalidRange):
		br = nil
	}

	if br == nil {
		h.Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		_, err = io.Copy(w, f)
		return err
	}

	if _, err := f.Seek(br.Start, io.SeekStart); err != nil {
		return fmt.Errorf("seek media: %w", err)
	}
	h.Set("Content-Length", fmt.Sprintf("%d", br.Length()))
	h.Set("Content-Range", br.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)
	_, err = io.CopyN(w, f, br.Length())
	if err != nil {
		s.logger.Debug("media stream ended early", "path", path, "error", err)
	}
	return nil
}
