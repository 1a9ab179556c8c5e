package repository

import (
	"context"
	"fmt"

	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SubtitleRepository defines operations for managing video subtitles.
type SubtitleRepository interface {
	// ReplaceForVideo replaces the full subtitle set of a video in one
	// transaction.
	ReplaceForVideo(ctx context.Context, videoID int64, subtitles []*models.Subtitle) error

	// ListByVideo retrieves all subtitles for a video ordered by language.
	ListByVideo(ctx context.Context, videoID int64) ([]*models.Subtitle, error)
}

type subtitleRepository struct {
	pool *pgxpool.Pool
}

// NewSubtitleRepository creates a new SubtitleRepository.
func NewSubtitleRepository(pool *pgxpool.Pool) SubtitleRepository {
	return &subtitleRepository{pool: pool}
}

func (r *subtitleRepository) ReplaceForVideo(ctx context.Context, videoID int64, subtitles []*models.Subtitle) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.WrapError(err, "begin replace subtitles")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM subtitles WHERE video_id = $1`, videoID); err != nil {
		return db.WrapError(err, "delete subtitles")
	}

	for _, sub := range subtitles {
		_, err := tx.Exec(ctx, `
			INSERT INTO subtitles (external_id, video_id, name, url, language)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (external_id) DO UPDATE
			SET video_id = EXCLUDED.video_id,
			    name = EXCLUDED.name,
			    url = EXCLUDED.url,
			    language = EXCLUDED.language
		`, sub.ExternalID, videoID, sub.Name, sub.URL, sub.Language)
		if err != nil {
			return db.WrapError(err, "insert subtitle")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError(err, "commit replace subtitles")
	}

	return nil
}

func (r *subtitleRepository) ListByVideo(ctx context.Context, videoID int64) ([]*models.Subtitle, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT external_id, video_id, name, url, language
		FROM subtitles
		WHERE video_id = $1
		ORDER BY language, name
	`, videoID)
	if err != nil {
		return nil, db.WrapError(err, "list subtitles")
	}
	defer rows.Close()

	var subtitles []*models.Subtitle
	for rows.Next() {
		sub := &models.Subtitle{}
		if err := rows.Scan(&sub.ExternalID, &sub.VideoID, &sub.Name, &sub.URL, &sub.Language); err != nil {
			return nil, fmt.Errorf("scan subtitle: %w", err)
		}
		subtitles = append(subtitles, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtitles: %w", err)
	}

	return subtitles, nil
}
