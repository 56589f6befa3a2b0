// Package store persists documentation projects in SQLite.
//
// A project is a named set of Markdown files with the layout and theme used
// to render them. Projects belong to a user; every write requires a user id.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultMaxFileSize bounds a stored file.
const DefaultMaxFileSize int64 = 10 << 20

// AllowedExtensions are the file extensions a project may hold.
var AllowedExtensions = []string{".md", ".markdown", ".txt"}

// Sentinel errors.
var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrNotFound        = errors.New("project not found")
	ErrForbidden       = errors.New("project belongs to another user")
	ErrFileTooLarge    = errors.New("file too large")
	ErrFileType        = errors.New("file type not allowed")
	ErrInvalidProject  = errors.New("invalid project")
)

// File is a stored source file.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Project is a saved set of files and rendering choices.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Theme     string    `json:"theme"`
	Template  string    `json:"template"`
	Files     []File    `json:"files"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Options configures a Store.
type Options struct {
	// MaxFileSize in bytes. Zero means DefaultMaxFileSize.
	MaxFileSize int64
	// Now stamps saves. Nil means time.Now.
	Now func() time.Time
}

// SQLiteStore implements project persistence on SQLite.
type SQLiteStore struct {
	db          *sql.DB
	maxFileSize int64
	now         func() time.Time
}

// Open opens (creating if needed) the database at path.
// Use ":memory:" for a throwaway store.
func Open(path string, opts Options) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: an in-memory database exists per connection, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, maxFileSize: opts.MaxFileSize, now: opts.Now}
	if s.maxFileSize <= 0 {
		s.maxFileSize = DefaultMaxFileSize
	}
	if s.now == nil {
		s.now = time.Now
	}

	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		theme TEXT NOT NULL DEFAULT '',
		template TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id, updated_at);
	CREATE TABLE IF NOT EXISTS project_files (
		project_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (project_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ValidateFile checks a file's extension and size against the store limits.
func (s *SQLiteStore) ValidateFile(f File) error {
	return ValidateFile(f, s.maxFileSize)
}

// ValidateFile checks a file's extension and size against maxSize bytes.
func ValidateFile(f File, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(f.Name))
	allowed := false
	for _, a := range AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrFileType, f.Name, strings.Join(AllowedExtensions, ", "))
	}
	if int64(len(f.Content)) > maxSize {
		return fmt.Errorf("%w: %q is %d bytes, limit %d", ErrFileTooLarge, f.Name, len(f.Content), maxSize)
	}
	return nil
}

// Save inserts or replaces p and returns its id. An empty id gets a new
// UUID. UpdatedAt is always refreshed; CreatedAt is kept on update.
func (s *SQLiteStore) Save(ctx context.Context, p Project) (string, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return "", ErrUnauthenticated
	}
	if strings.TrimSpace(p.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidProject)
	}
	for _, f := range p.Files {
		if err := s.ValidateFile(f); err != nil {
			return "", err
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	var created int64
	err = tx.QueryRowContext(ctx, "SELECT user_id, created_at FROM projects WHERE id = ?", p.ID).Scan(&owner, &created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = now.UnixNano()
		_, err = tx.ExecContext(ctx,
			"INSERT INTO projects (id, user_id, name, theme, template, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.UserID, p.Name, p.Theme, p.Template, created, now.UnixNano())
		if err != nil {
			return "", fmt.Errorf("insert project: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("query project: %w", err)
	case owner != p.UserID:
		return "", ErrForbidden
	default:
		_, err = tx.ExecContext(ctx,
			"UPDATE projects SET name = ?, theme = ?, template = ?, updated_at = ? WHERE id = ?",
			p.Name, p.Theme, p.Template, now.UnixNano(), p.ID)
		if err != nil {
			return "", fmt.Errorf("update project: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM project_files WHERE project_id = ?", p.ID); err != nil {
		return "", fmt.Errorf("clear files: %w", err)
	}
	for i, f := range p.Files {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO project_files (project_id, position, name, content) VALUES (?, ?, ?, ?)",
			p.ID, i, f.Name, f.Content); err != nil {
			return "", fmt.Errorf("insert file %q: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return p.ID, nil
}

// Load returns the project with id, files in saved order.
func (s *SQLiteStore) Load(ctx context.Context, id string) (Project, error) {
	var p Project
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, theme, template, created_at, updated_at FROM projects WHERE id = ?", id,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Theme, &p.Template, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Project{}, fmt.Errorf("query project: %w", err)
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()

	files, err := s.loadFiles(ctx, p.ID)
	if err != nil {
		return Project{}, err
	}
	p.Files = files
	return p, nil
}

// List returns the user's projects, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, userID string) ([]Project, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM projects WHERE user_id = ? ORDER BY updated_at DESC, id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan project: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	// Release the single connection before loading each project.
	_ = rows.Close()

	projects := make([]Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Delete removes the user's project with id.
func (s *SQLiteStore) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthenticated
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.QueryRowContext(ctx, "SELECT user_id FROM projects WHERE id = ?", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("query project: %w", err)
	}
	if owner != userID {
		return ErrForbidden
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM project_files WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("delete files: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) loadFiles(ctx context.Context, projectID string) ([]File, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, content FROM project_files WHERE project_id = ? ORDER BY position", projectID)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	files := []File{}
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Name, &f.Content); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return files, nil
}
