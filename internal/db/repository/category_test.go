package repository

import (
	"context"
	"testing"
	"time"

	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"
	"github.com/reelgrid/reelgrid/internal/db/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository_CreateCategory(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	categoryRepo := NewCategoryRepository(td.Pool)
	ctx := context.Background()

	t.Run("creates category", func(t *testing.T) {
		td.TruncateTables(t)

		category, err := categoryRepo.CreateCategory(ctx, "Nature")
		require.NoError(t, err)
		assert.NotZero(t, category.ID)
		assert.Equal(t, "Nature", category.Name)
	})

	t.Run("duplicate name fails", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := categoryRepo.CreateCategory(ctx, "Nature")
		require.NoError(t, err)

		_, err = categoryRepo.CreateCategory(ctx, "Nature")
		require.Error(t, err)
		assert.True(t, db.IsDuplicateKey(err))
	})
}

func TestCategoryRepository_DeleteCategory(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	categoryRepo := NewCategoryRepository(td.Pool)
	videoRepo := NewVideoRepository(td.Pool)
	ctx := context.Background()

	t.Run("deletes unreferenced category", func(t *testing.T) {
		td.TruncateTables(t)

		category, err := categoryRepo.CreateCategory(ctx, "Nature")
		require.NoError(t, err)

		require.NoError(t, categoryRepo.DeleteCategory(ctx, category.ID))

		_, err = categoryRepo.GetCategoryByID(ctx, category.ID)
		assert.True(t, db.IsNotFound(err))
	})

	t.Run("fails while video associations exist and leaves everything intact", func(t *testing.T) {
		td.TruncateTables(t)

		category, err := categoryRepo.CreateCategory(ctx, "Nature")
		require.NoError(t, err)
		video := models.NewVideo("ext-1", "Reef Dive", time.Now())
		require.NoError(t, videoRepo.UpsertVideo(ctx, video))
		require.NoError(t, categoryRepo.AssignCategory(ctx, video.ID, category.ID))

		err = categoryRepo.DeleteCategory(ctx, category.ID)
		require.Error(t, err)
		assert.True(t, db.IsForeignKeyViolation(err))

		// No partial delete: category and association survive
		_, err = categoryRepo.GetCategoryByID(ctx, category.ID)
		require.NoError(t, err)
		assigned, err := categoryRepo.ListByVideo(ctx, video.ID)
		require.NoError(t, err)
		assert.Len(t, assigned, 1)
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		td.TruncateTables(t)

		err := categoryRepo.DeleteCategory(ctx, 999)
		require.Error(t, err)
		assert.True(t, db.IsNotFound(err))
	})
}

func TestCategoryRepository_AssignCategory(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	categoryRepo := NewCategoryRepository(td.Pool)
	videoRepo := NewVideoRepository(td.Pool)
	ctx := context.Background()

	t.Run("assign is idempotent and additive", func(t *testing.T) {
		td.TruncateTables(t)

		video := models.NewVideo("ext-1", "Reef Dive", time.Now())
		require.NoError(t, videoRepo.UpsertVideo(ctx, video))
		nature, err := categoryRepo.CreateCategory(ctx, "Nature")
		require.NoError(t, err)
		travel, err := categoryRepo.CreateCategory(ctx, "Travel")
		require.NoError(t, err)

		require.NoError(t, categoryRepo.AssignCategory(ctx, video.ID, nature.ID))
		require.NoError(t, categoryRepo.AssignCategory(ctx, video.ID, nature.ID))
		require.NoError(t, categoryRepo.AssignCategory(ctx, video.ID, travel.ID))

		assigned, err := categoryRepo.ListByVideo(ctx, video.ID)
		require.NoError(t, err)
		// Single-assign allows several categories on one video
		assert.Len(t, assigned, 2)
	})

	t.Run("assign to missing video fails", func(t *testing.T) {
		td.TruncateTables(t)

		category, err := categoryRepo.CreateCategory(ctx, "Nature")
		require.NoError(t, err)

		err = categoryRepo.AssignCategory(ctx, 999, category.ID)
		require.Error(t, err)
		assert.True(t, db.IsForeignKeyViolation(err))
	})
}

func TestCategoryRepository_BulkReassignCategory(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	categoryRepo := NewCategoryRepository(td.Pool)
	videoRepo := NewVideoRepository(td.Pool)
	ctx := context.Background()

	t.Run("each video ends with exactly the new category", func(t *testing.T) {
		td.TruncateTables(t)

		nature, err := categoryRepo.CreateCategory(ctx, "Nature")
		require.NoError(t, err)
		travel, err := categoryRepo.CreateCategory(ctx, "Travel")
		require.NoError(t, err)

		v1 := models.NewVideo("ext-1", "One", time.Now())
		v2 := models.NewVideo("ext-2", "Two", time.Now())
		require.NoError(t, videoRepo.UpsertVideo(ctx, v1))
		require.NoError(t, videoRepo.UpsertVideo(ctx, v2))

		// v1 starts with both categories, v2 with none
		require.NoError(t, categoryRepo.AssignCategory(ctx, v1.ID, nature.ID))
		require.NoError(t, categoryRepo.AssignCategory(ctx, v1.ID, travel.ID))

		require.NoError(t, categoryRepo.BulkReassignCategory(ctx, []int64{v1.ID, v2.ID}, travel.ID))

		for _, v := range []*models.Video{v1, v2} {
			assigned, err := categoryRepo.ListByVideo(ctx, v.ID)
			require.NoError(t, err)
			require.Len(t, assigned, 1)
			assert.Equal(t, travel.ID, assigned[0].ID)
		}
	})

	t.Run("missing category rolls back the whole operation", func(t *testing.T) {
		td.TruncateTables(t)

		nature, err := categoryRepo.CreateCategory(ctx, "Nature")
		require.NoError(t, err)
		video := models.NewVideo("ext-1", "One", time.Now())
		require.NoError(t, videoRepo.UpsertVideo(ctx, video))
		require.NoError(t, categoryRepo.AssignCategory(ctx, video.ID, nature.ID))

		err = categoryRepo.BulkReassignCategory(ctx, []int64{video.ID}, 999)
		require.Error(t, err)
		assert.True(t, db.IsForeignKeyViolation(err))

		// Prior association survived the rollback
		assigned, err := categoryRepo.ListByVideo(ctx, video.ID)
		require.NoError(t, err)
		assert.Len(t, assigned, 1)
	})
}
