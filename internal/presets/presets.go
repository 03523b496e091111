// Package presets loads the transition catalogue from a YAML file and keeps
// it current while the file changes.
package presets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/timeline"
	"github.com/heimdex/heimdex-editor/internal/watcher"
)

var validate = validator.New()

type presetEntry struct {
	Name           string `yaml:"name" validate:"required,max=64"`
	Type           string `yaml:"type" validate:"required,oneof=dissolve fade wipe slide"`
	Direction      string `yaml:"direction" validate:"omitempty,oneof=none left right up down"`
	DurationFrames int    `yaml:"duration_frames" validate:"min=1,max=600"`
}

type presetFile struct {
	Presets []presetEntry `yaml:"presets" validate:"dive"`
}

// Builtin is the catalogue used when no presets file exists.
func Builtin() []timeline.TransitionPreset {
	return []timeline.TransitionPreset{
		timeline.DefaultTransitionPreset,
		{Name: "Fade", Type: timeline.TransitionFade, Direction: timeline.DirectionNone, DurationFrames: 30},
		{Name: "Wipe Left", Type: timeline.TransitionWipe, Direction: timeline.DirectionLeft, DurationFrames: 20},
		{Name: "Wipe Right", Type: timeline.TransitionWipe, Direction: timeline.DirectionRight, DurationFrames: 20},
		{Name: "Slide Up", Type: timeline.TransitionSlide, Direction: timeline.DirectionUp, DurationFrames: 15},
		{Name: "Slide Down", Type: timeline.TransitionSlide, Direction: timeline.DirectionDown, DurationFrames: 15},
	}
}

// Parse decodes and validates a presets document. Duplicate names are an
// error.
func Parse(data []byte) ([]timeline.TransitionPreset, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, formatValidationError(err)
	}

	seen := make(map[string]bool, len(f.Presets))
	out := make([]timeline.TransitionPreset, 0, len(f.Presets))
	for _, p := range f.Presets {
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
		dir := timeline.Direction(p.Direction)
		if dir == "" {
			dir = timeline.DirectionNone
		}
		out = append(out, timeline.TransitionPreset{
			Name:           p.Name,
			Type:           timeline.TransitionType(p.Type),
			Direction:      dir,
			DurationFrames: p.DurationFrames,
		})
	}
	return out, nil
}

// Marshal encodes presets in the file format Parse reads.
func Marshal(presets []timeline.TransitionPreset) ([]byte, error) {
	f := presetFile{Presets: make([]presetEntry, 0, len(presets))}
	for _, p := range presets {
		f.Presets = append(f.Presets, presetEntry{
			Name:           p.Name,
			Type:           string(p.Type),
			Direction:      string(p.Direction),
			DurationFrames: p.DurationFrames,
		})
	}
	return yaml.Marshal(f)
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", field, boundWord(e.Tag()), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("invalid presets: %s", strings.Join(msgs, "; "))
}

func boundWord(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}

// Catalog is the live preset list. It is safe for concurrent use.
type Catalog struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	presets []timeline.TransitionPreset
	byName  map[string]timeline.TransitionPreset
}

// NewCatalog returns a catalogue holding the built-in presets. Call Load to
// read path.
func NewCatalog(path string, logger *slog.Logger) *Catalog {
	c := &Catalog{path: path, logger: logging.WithComponent(logger, "presets")}
	c.set(Builtin())
	return c
}

func (c *Catalog) set(presets []timeline.TransitionPreset) {
	byName := make(map[string]timeline.TransitionPreset, len(presets)+1)
	for _, p := range presets {
		byName[p.Name] = p
	}
	// the default dissolve is always resolvable
	if _, ok := byName[timeline.DefaultTransitionPreset.Name]; !ok {
		presets = append([]timeline.TransitionPreset{timeline.DefaultTransitionPreset}, presets...)
		byName[timeline.DefaultTransitionPreset.Name] = timeline.DefaultTransitionPreset
	}

	c.mu.Lock()
	c.presets = presets
	c.byName = byName
	c.mu.Unlock()
}

// Load reads the presets file. A missing file keeps the built-ins; an
// invalid one is an error and leaves the current catalogue in place.
func (c *Catalog) Load() error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		c.logger.Info("no presets file, using built-in presets", "path", c.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read presets: %w", err)
	}
	presets, err := Parse(data)
	if err != nil {
		return err
	}
	c.set(presets)
	c.logger.Info("presets loaded", "path", c.path, "count", len(presets))
	return nil
}

// WriteDefaults creates the presets file with the built-ins unless it
// already exists.
func (c *Catalog) WriteDefaults() error {
	if c.path == "" {
		return nil
	}
	if _, err := os.Stat(c.path); err == nil {
		return nil
	}
	data, err := Marshal(Builtin())
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write presets: %w", err)
	}
	return nil
}

// Watch reloads the catalogue whenever the presets file changes. Reload
// failures are logged and the previous catalogue stays in effect.
func (c *Catalog) Watch(ctx context.Context, w watcher.Watcher) error {
	w.OnChange(func(path string, event watcher.EventType) {
		if event == watcher.EventDelete {
			c.logger.Warn("presets file removed, keeping current presets", "path", path)
			return
		}
		if err := c.Load(); err != nil {
			c.logger.Error("reload presets failed", "path", path, "error", err)
		}
	})
	return w.Watch(ctx, c.path)
}

func (c *Catalog) Preset(name string) (timeline.TransitionPreset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byName[name]
	return p, ok
}

// List returns the presets sorted by name.
func (c *Catalog) List() []timeline.TransitionPreset {
	c.mu.RLock()
	out := make([]timeline.TransitionPreset, len(c.presets))
	copy(out, c.presets)
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
