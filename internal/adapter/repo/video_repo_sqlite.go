package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"aititle/internal/domain"
	"aititle/internal/infra"
)

const sqliteVideoSchema = `CREATE TABLE IF NOT EXISTS videos (
	youtube_id TEXT PRIMARY KEY,
	ai_title   TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

// VideoRepositorySQLite implements domain.VideoRepository on SQLite.
type VideoRepositorySQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewVideoRepositorySQLite prepares the schema and returns the repository.
func NewVideoRepositorySQLite(ctx context.Context, db *sql.DB) (*VideoRepositorySQLite, error) {
	if _, err := db.ExecContext(ctx, sqliteVideoSchema); err != nil {
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &VideoRepositorySQLite{db: db, now: time.Now}, nil
}

// FindByVideoID fetches the stored title for videoID.
func (r *VideoRepositorySQLite) FindByVideoID(ctx context.Context, videoID string) (*domain.VideoRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT youtube_id, ai_title, created_at FROM videos WHERE youtube_id = ?`, videoID)
	var rec domain.VideoRecord
	var createdAt string
	if err := row.Scan(&rec.VideoID, &rec.AITitle, &createdAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select video %s: %w", videoID, err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", videoID, err)
	}
	rec.CreatedAt = parsed
	return &rec, nil
}

// Create inserts a new record, reporting ErrDuplicateKey when videoID exists.
func (r *VideoRepositorySQLite) Create(ctx context.Context, videoID, title string) (*domain.VideoRecord, error) {
	createdAt := r.now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO videos (youtube_id, ai_title, created_at) VALUES (?, ?, ?)`,
		videoID, title, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isSQLiteConstraintKey(err) {
			return nil, fmt.Errorf("insert video %s: %w", videoID, domain.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("insert video %s: %w", videoID, err)
	}
	return &domain.VideoRecord{VideoID: videoID, AITitle: title, CreatedAt: createdAt}, nil
}

func isSQLiteConstraintKey(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// extended result codes disabled
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

var _ domain.VideoRepository = (*VideoRepositorySQLite)(nil)
