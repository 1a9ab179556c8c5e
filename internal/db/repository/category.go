package repository

import (
	"context"
	"fmt"

	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository defines operations for managing categories and their
// video associations.
type CategoryRepository interface {
	// CreateCategory creates a category with a unique name.
	CreateCategory(ctx context.Context, name string) (*models.Category, error)

	// DeleteCategory deletes a category. Fails with a foreign key violation
	// while video associations still reference it.
	DeleteCategory(ctx context.Context, id int64) error

	// GetCategoryByID retrieves a single category by id.
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)

	// GetCategoryByName retrieves a single category by its unique name.
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)

	// ListCategories retrieves all categories ordered by name.
	ListCategories(ctx context.Context) ([]*models.Category, error)

	// AssignCategory associates a video with a category. Assigning an
	// existing pair is a no-op; a video may hold several categories this way.
	AssignCategory(ctx context.Context, videoID, categoryID int64) error

	// UnassignCategory removes one video-category association.
	UnassignCategory(ctx context.Context, videoID, categoryID int64) error

	// BulkReassignCategory transactionally clears all category associations
	// for the given videos and assigns each to exactly one category.
	BulkReassignCategory(ctx context.Context, videoIDs []int64, categoryID int64) error

	// ListByVideo retrieves the categories associated with a video.
	ListByVideo(ctx context.Context, videoID int64) ([]*models.Category, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id, created_at
	`, name).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return nil, db.WrapError(err, "create category")
	}

	return category, nil
}

func (r *categoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return db.WrapError(err, "delete category")
	}
	if tag.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "delete category")
	}

	return nil
}

func (r *categoryRepository) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	category := &models.Category{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM categories WHERE id = $1
	`, id).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, db.WrapError(err, "get category by id")
	}

	return category, nil
}

func (r *categoryRepository) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM categories WHERE name = $1
	`, name).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, db.WrapError(err, "get category by name")
	}

	return category, nil
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, db.WrapError(err, "list categories")
	}
	defer rows.Close()

	return scanCategories(rows)
}

func (r *categoryRepository) AssignCategory(ctx context.Context, videoID, categoryID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO video_categories (video_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT (video_id, category_id) DO NOTHING
	`, videoID, categoryID)
	if err != nil {
		return db.WrapError(err, "assign category")
	}

	return nil
}

func (r *categoryRepository) UnassignCategory(ctx context.Context, videoID, categoryID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM video_categories WHERE video_id = $1 AND category_id = $2
	`, videoID, categoryID)
	if err != nil {
		return db.WrapError(err, "unassign category")
	}

	return nil
}

func (r *categoryRepository) BulkReassignCategory(ctx context.Context, videoIDs []int64, categoryID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.WrapError(err, "begin bulk reassign")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `
		DELETE FROM video_categories WHERE video_id = ANY($1)
	`, videoIDs); err != nil {
		return db.WrapError(err, "clear category associations")
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO video_categories (video_id, category_id)
		SELECT unnest($1::bigint[]), $2
	`, videoIDs, categoryID); err != nil {
		return db.WrapError(err, "insert category associations")
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError(err, "commit bulk reassign")
	}

	return nil
}

func (r *categoryRepository) ListByVideo(ctx context.Context, videoID int64) ([]*models.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.created_at
		FROM categories c
		JOIN video_categories vc ON vc.category_id = c.id
		WHERE vc.video_id = $1
		ORDER BY c.name
	`, videoID)
	if err != nil {
		return nil, db.WrapError(err, "list categories by video")
	}
	defer rows.Close()

	return scanCategories(rows)
}

func scanCategories(rows pgx.Rows) ([]*models.Category, error) {
	var categories []*models.Category

	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}
