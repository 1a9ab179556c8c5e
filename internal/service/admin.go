package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"
	"github.com/reelgrid/reelgrid/internal/db/repository"

	"go.uber.org/zap"
)

// AdminService backs the admin console: category CRUD, category/tag
// assignment, and account listing.
type AdminService struct {
	videos     repository.VideoRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	users      repository.UserRepository
	log        *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	videos repository.VideoRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	users repository.UserRepository,
	log *zap.Logger,
) *AdminService {
	return &AdminService{
		videos:     videos,
		categories: categories,
		tags:       tags,
		users:      users,
		log:        log,
	}
}

// CreateCategory creates a category from a trimmed, non-empty name.
func (s *AdminService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}

	category, err := s.categories.CreateCategory(ctx, name)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, &ValidationError{Field: "name", Message: "already exists"}
		}
		return nil, err
	}

	s.log.Info("Category created", zap.Int64("id", category.ID), zap.String("name", name))
	return category, nil
}

// DeleteCategory deletes a category. The delete fails while videos still
// reference the category; callers must unassign first.
func (s *AdminService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return &NotFoundError{Resource: "category", Key: formatID(id)}
		}
		return err
	}

	s.log.Info("Category deleted", zap.Int64("id", id))
	return nil
}

// AssignCategory adds one video-category association. Repeated assignment is
// a no-op; a video may accumulate several categories through this path.
func (s *AdminService) AssignCategory(ctx context.Context, videoID, categoryID int64) error {
	if videoID == 0 {
		return &ValidationError{Field: "videoId", Message: "is required"}
	}
	if categoryID == 0 {
		return &ValidationError{Field: "categoryId", Message: "is required"}
	}

	if err := s.categories.AssignCategory(ctx, videoID, categoryID); err != nil {
		if db.IsForeignKeyViolation(err) {
			return &NotFoundError{Resource: "video or category", Key: formatID(videoID)}
		}
		return err
	}

	return nil
}

// UnassignCategory removes one video-category association.
func (s *AdminService) UnassignCategory(ctx context.Context, videoID, categoryID int64) error {
	if videoID == 0 {
		return &ValidationError{Field: "videoId", Message: "is required"}
	}
	if categoryID == 0 {
		return &ValidationError{Field: "categoryId", Message: "is required"}
	}

	return s.categories.UnassignCategory(ctx, videoID, categoryID)
}

// BulkAssignCategory reassigns every given video to exactly the one category,
// replacing whatever categories the videos held before. This deliberately
// differs from AssignCategory, which is additive.
func (s *AdminService) BulkAssignCategory(ctx context.Context, videoIDs []int64, categoryID int64) error {
	if len(videoIDs) == 0 {
		return &ValidationError{Field: "videoIds", Message: "is required"}
	}
	if categoryID == 0 {
		return &ValidationError{Field: "categoryId", Message: "is required"}
	}

	if _, err := s.categories.GetCategoryByID(ctx, categoryID); err != nil {
		if db.IsNotFound(err) {
			return &NotFoundError{Resource: "category", Key: formatID(categoryID)}
		}
		return err
	}

	if err := s.categories.BulkReassignCategory(ctx, videoIDs, categoryID); err != nil {
		if db.IsForeignKeyViolation(err) {
			return &NotFoundError{Resource: "video", Key: "in selection"}
		}
		return err
	}

	s.log.Info("Bulk category reassignment",
		zap.Int("videos", len(videoIDs)), zap.Int64("categoryId", categoryID))
	return nil
}

// UpdateTags replaces a video's tag set from a comma-separated string.
// An empty string clears all tags.
func (s *AdminService) UpdateTags(ctx context.Context, videoID int64, tagList string) error {
	if videoID == 0 {
		return &ValidationError{Field: "videoId", Message: "is required"}
	}

	if _, err := s.videos.GetVideoByID(ctx, videoID); err != nil {
		if db.IsNotFound(err) {
			return &NotFoundError{Resource: "video", Key: formatID(videoID)}
		}
		return err
	}

	names := ParseTagList(tagList)
	if err := s.tags.ReplaceVideoTags(ctx, videoID, names); err != nil {
		return err
	}

	s.log.Info("Tags updated", zap.Int64("videoId", videoID), zap.Int("tags", len(names)))
	return nil
}

// ListUsers returns all accounts for the admin user page.
func (s *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}

// ListCategories returns all categories for admin forms.
func (s *AdminService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.ListCategories(ctx)
}

// ParseTagList splits a comma-separated tag string into trimmed, non-empty,
// de-duplicated names in input order.
func ParseTagList(tagList string) []string {
	parts := strings.Split(tagList, ",")
	seen := make(map[string]bool, len(parts))
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
