package repository

import (
	"context"
	"fmt"

	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Advisory lock key for the catalog full-sync. Two overlapping full syncs
// would race on the delete-reconciliation step, so the second caller backs off.
const catalogSyncLockID = 902217

// VideoRepository defines operations for managing catalog videos.
type VideoRepository interface {
	// UpsertVideo creates a new video or updates an existing one, keyed on
	// the external catalog id.
	UpsertVideo(ctx context.Context, video *models.Video) error

	// GetVideoByID retrieves a single video by local id.
	GetVideoByID(ctx context.Context, id int64) (*models.Video, error)

	// GetVideoByExternalID retrieves a single video by its external catalog id.
	GetVideoByExternalID(ctx context.Context, externalID string) (*models.Video, error)

	// ListCatalog retrieves a filtered, sorted page of videos plus the total
	// count of rows matching the filter.
	ListCatalog(ctx context.Context, filter CatalogFilter) ([]*models.Video, int64, error)

	// DeleteAbsentVideos deletes every video whose external id is not in keep
	// and returns the number of rows removed. Subtitles cascade.
	DeleteAbsentVideos(ctx context.Context, keep []string) (int64, error)

	// TryLockCatalogSync attempts to take the advisory lock guarding full
	// syncs. When acquired it returns a release function and true; when the
	// lock is held elsewhere it returns false.
	TryLockCatalogSync(ctx context.Context) (func(), bool, error)
}

type videoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) VideoRepository {
	return &videoRepository{pool: pool}
}

func (r *videoRepository) UpsertVideo(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (external_id, name, poster, preview, asset_base_url, duration, resolution, codec, play_count, download_count, source_created_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (external_id) DO UPDATE
		SET name = EXCLUDED.name,
		    poster = EXCLUDED.poster,
		    preview = EXCLUDED.preview,
		    asset_base_url = EXCLUDED.asset_base_url,
		    duration = EXCLUDED.duration,
		    resolution = EXCLUDED.resolution,
		    codec = EXCLUDED.codec,
		    play_count = EXCLUDED.play_count,
		    download_count = EXCLUDED.download_count,
		    updated_at = NOW()
		RETURNING id, source_created_at, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		video.ExternalID,
		video.Name,
		video.Poster,
		video.Preview,
		video.AssetBaseURL,
		video.Duration,
		video.Resolution,
		video.Codec,
		video.PlayCount,
		video.DownloadCount,
		video.SourceCreated,
	).Scan(
		&video.ID,
		&video.SourceCreated,
		&video.CreatedAt,
		&video.UpdatedAt,
	)

	if err != nil {
		return db.WrapError(err, "upsert video")
	}

	return nil
}

func (r *videoRepository) GetVideoByID(ctx context.Context, id int64) (*models.Video, error) {
	query := videoColumns + ` WHERE id = $1`

	video := &models.Video{}
	if err := scanVideo(r.pool.QueryRow(ctx, query, id), video); err != nil {
		return nil, db.WrapError(err, "get video by id")
	}

	return video, nil
}

func (r *videoRepository) GetVideoByExternalID(ctx context.Context, externalID string) (*models.Video, error) {
	query := videoColumns + ` WHERE external_id = $1`

	video := &models.Video{}
	if err := scanVideo(r.pool.QueryRow(ctx, query, externalID), video); err != nil {
		return nil, db.WrapError(err, "get video by external id")
	}

	return video, nil
}

func (r *videoRepository) ListCatalog(ctx context.Context, filter CatalogFilter) ([]*models.Video, int64, error) {
	selectSQL, countSQL, args := buildCatalogQuery(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, db.WrapError(err, "count catalog")
	}

	rows, err := r.pool.Query(ctx, selectSQL, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, db.WrapError(err, "list catalog")
	}
	defer rows.Close()

	videos, err := scanVideos(rows)
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

func (r *videoRepository) DeleteAbsentVideos(ctx context.Context, keep []string) (int64, error) {
	// Single statement so the reconciliation delete is atomic.
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE NOT (external_id = ANY($1))`, keep)
	if err != nil {
		return 0, db.WrapError(err, "delete absent videos")
	}

	return tag.RowsAffected(), nil
}

func (r *videoRepository) TryLockCatalogSync(ctx context.Context) (func(), bool, error) {
	// Advisory locks are session scoped, so the connection must be pinned
	// until release.
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, false, db.WrapError(err, "acquire sync lock connection")
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, catalogSyncLockID).Scan(&locked); err != nil {
		conn.Release()
		return nil, false, db.WrapError(err, "try sync lock")
	}

	if !locked {
		conn.Release()
		return nil, false, nil
	}

	release := func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, catalogSyncLockID)
		conn.Release()
	}

	return release, true, nil
}

const videoColumns = `
	SELECT id, external_id, name, poster, preview, asset_base_url, duration, resolution, codec, play_count, download_count, source_created_at, created_at, updated_at
	FROM videos`

func scanVideo(row pgx.Row, video *models.Video) error {
	return row.Scan(
		&video.ID,
		&video.ExternalID,
		&video.Name,
		&video.Poster,
		&video.Preview,
		&video.AssetBaseURL,
		&video.Duration,
		&video.Resolution,
		&video.Codec,
		&video.PlayCount,
		&video.DownloadCount,
		&video.SourceCreated,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
}

// Helper function to scan multiple videos from query results
func scanVideos(rows pgx.Rows) ([]*models.Video, error) {
	var videos []*models.Video

	for rows.Next() {
		video := &models.Video{}
		if err := scanVideo(rows, video); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}
