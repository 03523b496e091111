package project

import (
	"time"

	"github.com/google/uuid"
)

// Project is a saved timeline. The timeline itself is stored as a JSON
// document next to the summary columns.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	FrameRate      float64   `json:"frame_rate"`
	ClipCount      int       `json:"clip_count"`
	DurationFrames int       `json:"duration_frames"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Autosave is the latest unsaved state of a project. At most one exists per
// project and an explicit save discards it.
type Autosave struct {
	ProjectID string    `json:"project_id"`
	Document  []byte    `json:"-"`
	Revision  int64     `json:"revision"`
	SavedAt   time.Time `json:"saved_at"`
}

const (
	ConfigAuthToken      = "auth_token"
	ConfigCurrentProject = "current_project"

	DefaultProjectName = "Untitled"
)

func NewID() string {
	return uuid.NewString()
}
