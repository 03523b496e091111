// Package config provides configuration management for the Heimdex Editor.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Default values
	DefaultPort             = 8788
	DefaultLogLevel         = "info"
	DefaultDataDir          = ".heimdex-editor"
	DefaultFrameRate        = 30.0
	DefaultUndoDepth        = 200
	DefaultAutosaveInterval = 30 // seconds

	// Environment variable names
	EnvPort             = "HEIMDEX_PORT"
	EnvLogLevel         = "HEIMDEX_LOG_LEVEL"
	EnvDataDir          = "HEIMDEX_DATA_DIR"
	EnvPresetsFile      = "HEIMDEX_PRESETS_FILE"
	EnvFrameRate        = "HEIMDEX_FRAME_RATE"
	EnvUndoDepth        = "HEIMDEX_UNDO_DEPTH"
	EnvAutosaveInterval = "HEIMDEX_AUTOSAVE_INTERVAL"
	EnvHeadless         = "HEIMDEX_HEADLESS"
	EnvCORSOrigins      = "HEIMDEX_CORS_ORIGINS"

	// Database filename
	DBFilename = "editor.db"

	PresetsFilename = "transitions.yaml"
)

var DefaultCORSOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ExportDir() string
	PresetsFile() string
	FrameRate() float64
	UndoDepth() int
	AutosaveInterval() time.Duration
	Headless() bool
	CORSOrigins() []string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port             int
	logLevel         string
	dataDir          string
	presetsFile      string
	frameRate        float64
	undoDepth        int
	autosaveInterval time.Duration
	headless         bool
	corsOrigins      []string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:             DefaultPort,
		logLevel:         DefaultLogLevel,
		dataDir:          defaultDataDir(),
		frameRate:        DefaultFrameRate,
		undoDepth:        DefaultUndoDepth,
		autosaveInterval: DefaultAutosaveInterval * time.Second,
		corsOrigins:      DefaultCORSOrigins,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.presetsFile = os.Getenv(EnvPresetsFile)

	if fr := os.Getenv(EnvFrameRate); fr != "" {
		rate, err := strconv.ParseFloat(fr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvFrameRate, err)
		}
		if rate <= 0 || rate > 240 {
			return nil, fmt.Errorf("invalid %s: frame rate must be in (0, 240]", EnvFrameRate)
		}
		cfg.frameRate = rate
	}

	if ud := os.Getenv(EnvUndoDepth); ud != "" {
		depth, err := strconv.Atoi(ud)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvUndoDepth, err)
		}
		if depth < 0 {
			return nil, fmt.Errorf("invalid %s: depth must not be negative", EnvUndoDepth)
		}
		cfg.undoDepth = depth
	}

	if ai := os.Getenv(EnvAutosaveInterval); ai != "" {
		secs, err := strconv.Atoi(ai)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvAutosaveInterval, err)
		}
		if secs < 0 {
			return nil, fmt.Errorf("invalid %s: interval must not be negative", EnvAutosaveInterval)
		}
		cfg.autosaveInterval = time.Duration(secs) * time.Second
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	if co := os.Getenv(EnvCORSOrigins); co != "" {
		var origins []string
		for _, o := range strings.Split(co, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.corsOrigins = origins
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ExportDir is where EDL exports land when a request names no directory.
func (c *EnvConfig) ExportDir() string {
	return filepath.Join(c.dataDir, "exports")
}

func (c *EnvConfig) PresetsFile() string {
	if c.presetsFile != "" {
		return c.presetsFile
	}
	return filepath.Join(c.dataDir, PresetsFilename)
}

func (c *EnvConfig) FrameRate() float64 {
	return c.frameRate
}

// UndoDepth is the undo stack bound; 0 means unbounded.
func (c *EnvConfig) UndoDepth() int {
	return c.undoDepth
}

// AutosaveInterval returns 0 when autosave is disabled.
func (c *EnvConfig) AutosaveInterval() time.Duration {
	return c.autosaveInterval
}

func (c *EnvConfig) Headless() bool {
	return c.headless
}

func (c *EnvConfig) CORSOrigins() []string {
	return c.corsOrigins
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
