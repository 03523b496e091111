package project

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	UpsertProject(ctx context.Context, p *Project, document []byte) error
	GetProject(ctx context.Context, id string) (*Project, error)
	GetDocument(ctx context.Context, id string) ([]byte, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id string) error

	SaveAutosave(ctx context.Context, a *Autosave) error
	GetAutosave(ctx context.Context, projectID string) (*Autosave, error)
	DeleteAutosave(ctx context.Context, projectID string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func (r *SQLiteRepository) UpsertProject(ctx context.Context, p *Project, document []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, frame_rate, document, clip_count, duration_frames, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			frame_rate = excluded.frame_rate,
			document = excluded.document,
			clip_count = excluded.clip_count,
			duration_frames = excluded.duration_frames,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, p.FrameRate, string(document), p.ClipCount, p.DurationFrames, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, frame_rate, clip_count, duration_frames, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*Project, error) {
	var p Project
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &p.FrameRate, &p.ClipCount, &p.DurationFrames, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) GetDocument(ctx context.Context, id string) ([]byte, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, "SELECT document FROM projects WHERE id = ?", id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// ListProjects returns projects, most recently updated first.
func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, frame_rate, clip_count, duration_frames, created_at, updated_at
		FROM projects ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) SaveAutosave(ctx context.Context, a *Autosave) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO autosaves (project_id, document, revision, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			document = excluded.document,
			revision = excluded.revision,
			saved_at = excluded.saved_at
	`, a.ProjectID, string(a.Document), a.Revision, formatTime(a.SavedAt))
	return err
}

func (r *SQLiteRepository) GetAutosave(ctx context.Context, projectID string) (*Autosave, error) {
	var a Autosave
	var doc, savedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT project_id, document, revision, saved_at FROM autosaves WHERE project_id = ?
	`, projectID).Scan(&a.ProjectID, &doc, &a.Revision, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Document = []byte(doc)
	a.SavedAt = parseTime(savedAt)
	return &a, nil
}

func (r *SQLiteRepository) DeleteAutosave(ctx context.Context, projectID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM autosaves WHERE project_id = ?", projectID)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')
	`, key, value)
	return err
}
