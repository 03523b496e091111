package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

var ErrProjectNotFound = errors.New("project not found")

// Session is the editing session a project is saved from and loaded into.
type Session interface {
	MarshalTimeline() ([]byte, error)
	Load(tl *timeline.Timeline)
	Revision() int64
	Stats() editor.Stats
}

type Service struct {
	repo      Repository
	session   Session
	frameRate float64
	logger    *slog.Logger

	mu      sync.Mutex
	current *Project
}

func NewService(repo Repository, session Session, frameRate float64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, session: session, frameRate: frameRate, logger: logging.WithComponent(logger, "project")}
}

// Current returns a copy of the open project, or nil.
func (s *Service) Current() *Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	p := *s.current
	return &p
}

// Open reopens the last project, or starts a new one when there is none.
func (s *Service) Open(ctx context.Context) (*Project, error) {
	id, err := s.repo.GetConfig(ctx, ConfigCurrentProject)
	if err != nil {
		return nil, fmt.Errorf("read current project: %w", err)
	}
	if id != "" {
		p, _, err := s.Load(ctx, id)
		if err == nil {
			return p, nil
		}
		s.logger.Warn("could not reopen last project", "project_id", id, "error", err)
	}
	return s.Save(ctx, DefaultProjectName)
}

// Save writes the session's timeline to the open project, creating one if
// none is open. A non-empty name renames the project.
func (s *Service) Save(ctx context.Context, name string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.session.MarshalTimeline()
	if err != nil {
		return nil, fmt.Errorf("encode timeline: %w", err)
	}
	stats := s.session.Stats()
	now := time.Now().UTC()

	var p Project
	if s.current != nil {
		p = *s.current
	} else {
		p = Project{ID: NewID(), Name: DefaultProjectName, CreatedAt: now}
	}
	if name = strings.TrimSpace(name); name != "" {
		p.Name = name
	}
	p.FrameRate = stats.FrameRate
	if p.FrameRate <= 0 {
		p.FrameRate = s.frameRate
	}
	p.ClipCount = stats.Clips
	p.DurationFrames = stats.DurationFrames
	p.UpdatedAt = now

	if err := s.repo.UpsertProject(ctx, &p, doc); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	if err := s.repo.DeleteAutosave(ctx, p.ID); err != nil {
		s.logger.Warn("failed to clear autosave", "project_id", p.ID, "error", err)
	}
	if err := s.repo.SetConfig(ctx, ConfigCurrentProject, p.ID); err != nil {
		s.logger.Warn("failed to remember current project", "project_id", p.ID, "error", err)
	}

	s.current = &p
	s.logger.Info("project saved", "project_id", p.ID, "name", p.Name, "clips", p.ClipCount)
	out := p
	return &out, nil
}

// Load replaces the session's timeline with a saved project. When an
// autosave newer than the last save exists it is loaded instead, and
// recovered reports true.
func (s *Service) Load(ctx context.Context, id string) (p *Project, recovered bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err = s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, false, ErrProjectNotFound
	}

	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get project document: %w", err)
	}
	if a, err := s.repo.GetAutosave(ctx, id); err != nil {
		s.logger.Warn("failed to read autosave", "project_id", id, "error", err)
	} else if a != nil && !a.SavedAt.Before(p.UpdatedAt) {
		doc, recovered = a.Document, true
	}

	var tl timeline.Timeline
	if err := json.Unmarshal(doc, &tl); err != nil {
		return nil, false, fmt.Errorf("decode project %s: %w", id, err)
	}
	s.session.Load(&tl)

	if err := s.repo.SetConfig(ctx, ConfigCurrentProject, p.ID); err != nil {
		s.logger.Warn("failed to remember current project", "project_id", p.ID, "error", err)
	}
	s.current = p
	s.logger.Info("project loaded", "project_id", p.ID, "name", p.Name, "recovered", recovered)
	out := *p
	return &out, recovered, nil
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

// Autosave stores the session's timeline as the open project's autosave.
// It does nothing while no project is open.
func (s *Service) Autosave(ctx context.Context, revision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	doc, err := s.session.MarshalTimeline()
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}
	a := &Autosave{
		ProjectID: s.current.ID,
		Document:  doc,
		Revision:  revision,
		SavedAt:   time.Now().UTC(),
	}
	if err := s.repo.SaveAutosave(ctx, a); err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	s.logger.Debug("autosaved", "project_id", a.ProjectID, "revision", revision)
	return nil
}
