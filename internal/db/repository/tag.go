package repository

import (
	"context"
	"fmt"

	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TagRepository defines operations for managing tags and their video
// associations.
type TagRepository interface {
	// ReplaceVideoTags transactionally clears the tag associations of a video
	// and assigns the given tag names, creating missing tags on the way.
	// Duplicate names collapse; an empty slice just clears.
	ReplaceVideoTags(ctx context.Context, videoID int64, names []string) error

	// GetTagByName retrieves a single tag by its unique name (case-sensitive).
	GetTagByName(ctx context.Context, name string) (*models.Tag, error)

	// ListTags retrieves all tags ordered by name.
	ListTags(ctx context.Context) ([]*models.Tag, error)

	// ListByVideo retrieves the tags associated with a video.
	ListByVideo(ctx context.Context, videoID int64) ([]*models.Tag, error)
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) ReplaceVideoTags(ctx context.Context, videoID int64, names []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.WrapError(err, "begin replace tags")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM video_tags WHERE video_id = $1`, videoID); err != nil {
		return db.WrapError(err, "clear tag associations")
	}

	for _, name := range names {
		// The no-op update makes RETURNING yield the id on conflict too.
		var tagID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO tags (name)
			VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name).Scan(&tagID)
		if err != nil {
			return db.WrapError(err, "upsert tag")
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO video_tags (video_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT (video_id, tag_id) DO NOTHING
		`, videoID, tagID); err != nil {
			return db.WrapError(err, "insert tag association")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError(err, "commit replace tags")
	}

	return nil
}

func (r *tagRepository) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM tags WHERE name = $1
	`, name).Scan(&tag.ID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		return nil, db.WrapError(err, "get tag by name")
	}

	return tag, nil
}

func (r *tagRepository) ListTags(ctx context.Context) ([]*models.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, db.WrapError(err, "list tags")
	}
	defer rows.Close()

	return scanTags(rows)
}

func (r *tagRepository) ListByVideo(ctx context.Context, videoID int64) ([]*models.Tag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN video_tags vt ON vt.tag_id = t.id
		WHERE vt.video_id = $1
		ORDER BY t.name
	`, videoID)
	if err != nil {
		return nil, db.WrapError(err, "list tags by video")
	}
	defer rows.Close()

	return scanTags(rows)
}

func scanTags(rows pgx.Rows) ([]*models.Tag, error) {
	var tags []*models.Tag

	for rows.Next() {
		tag := &models.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	return tags, nil
}
