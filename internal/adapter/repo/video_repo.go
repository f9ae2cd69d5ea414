package repo

import (
	"context"
	"fmt"

	"aititle/internal/domain"
	"aititle/internal/infra"
	"aititle/internal/sqlinline"
)

// VideoRepositoryPG implements domain.VideoRepository on PostgreSQL.
type VideoRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewVideoRepository creates a video repository over a marker-aware executor.
func NewVideoRepository(sql infra.SQLExecutor) *VideoRepositoryPG {
	return &VideoRepositoryPG{sql: sql}
}

// FindByVideoID fetches the stored title for videoID.
func (r *VideoRepositoryPG) FindByVideoID(ctx context.Context, videoID string) (*domain.VideoRecord, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectVideoByYouTubeID, videoID)
	var rec domain.VideoRecord
	if err := row.Scan(&rec.VideoID, &rec.AITitle, &rec.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select video %s: %w", videoID, err)
	}
	return &rec, nil
}

// Create inserts a new record. The primary key on youtube_id turns a lost race into ErrDuplicateKey.
func (r *VideoRepositoryPG) Create(ctx context.Context, videoID, title string) (*domain.VideoRecord, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertVideo, videoID, title)
	var rec domain.VideoRecord
	if err := row.Scan(&rec.VideoID, &rec.AITitle, &rec.CreatedAt); err != nil {
		if infra.IsUniqueViolation(err) {
			return nil, fmt.Errorf("insert video %s: %w", videoID, domain.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("insert video %s: %w", videoID, err)
	}
	return &rec, nil
}

var _ domain.VideoRepository = (*VideoRepositoryPG)(nil)
