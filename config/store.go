package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/ytexport/video"
)

const optionsKey = "extraction_options"

// Store persists the last used extraction options and the export history
// using SQLite.
type Store struct {
	db       *sql.DB
	defaults video.Options
}

// Export is one CSV file written by the exporter.
type Export struct {
	ID         uuid.UUID      `json:"id"`
	Path       string         `json:"path"`
	Source     string         `json:"source"`
	PageType   video.PageType `json:"page_type"`
	VideoCount int            `json:"video_count"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewStore creates a store with the given database path. The parent directory
// is created if needed.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, defaults: video.DefaultOptions()}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		source TEXT NOT NULL,
		page_type TEXT NOT NULL,
		video_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetDefaultOptions replaces the options GetOptions returns while none are
// saved.
func (s *Store) SetDefaultOptions(opts video.Options) {
	s.defaults = opts
}

// GetOptions retrieves the saved extraction options, or the defaults if none
// were saved.
func (s *Store) GetOptions() (video.Options, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", optionsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return s.defaults, nil
	}
	if err != nil {
		return video.Options{}, fmt.Errorf("failed to query options: %w", err)
	}

	var opts video.Options
	if err := json.Unmarshal([]byte(value), &opts); err != nil {
		return video.Options{}, fmt.Errorf("failed to decode options: %w", err)
	}
	return opts, nil
}

// SaveOptions replaces the saved extraction options.
func (s *Store) SaveOptions(opts video.Options) error {
	value, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	_, err = s.db.Exec("INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)", optionsKey, string(value))
	if err != nil {
		return fmt.Errorf("failed to save options: %w", err)
	}
	return nil
}

// RecordExport adds an export to the history. A nil ID is assigned and a zero
// CreatedAt is set to now.
func (s *Store) RecordExport(e *Export) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO exports (id, path, source, page_type, video_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		e.ID.String(),
		e.Path,
		e.Source,
		string(e.PageType),
		e.VideoCount,
		e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// ListExports returns the most recent exports first. A limit of zero or less
// returns all of them.
func (s *Store) ListExports(limit int) ([]Export, error) {
	query := `
		SELECT id, path, source, page_type, video_count, created_at
		FROM exports
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	exports := make([]Export, 0)
	for rows.Next() {
		var (
			e         Export
			id        string
			pageType  string
			createdAt int64
		)
		if err := rows.Scan(&id, &e.Path, &e.Source, &pageType, &e.VideoCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		e.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid export id %q: %w", id, err)
		}
		e.PageType = video.PageType(pageType)
		e.CreatedAt = time.Unix(createdAt, 0)
		exports = append(exports, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exports: %w", err)
	}
	return exports, nil
}
