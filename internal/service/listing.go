package service

import (
	"context"

	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"
	"github.com/reelgrid/reelgrid/internal/db/repository"

	"go.uber.org/zap"
)

// CatalogPageSize is the fixed number of videos per listing page.
const CatalogPageSize = 20

// ListingParams are the raw query parameters of a catalog listing request.
type ListingParams struct {
	Page     int    // 1-based; values < 1 are treated as 1
	Query    string // free-text match on the video name
	Category string // category name filter
	Tag      string // tag name filter
	Sort     string // newest | oldest | popular | az | za
}

// Listing is one rendered page of the catalog.
type Listing struct {
	Videos     []*models.Video
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// VideoDetail is everything shown on a single video page.
type VideoDetail struct {
	Video      *models.Video
	Subtitles  []*models.Subtitle
	Categories []*models.Category
	Tags       []*models.Tag
}

// ListingService serves the public catalog pages.
type ListingService struct {
	videos     repository.VideoRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	subtitles  repository.SubtitleRepository
	log        *zap.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(
	videos repository.VideoRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	subtitles repository.SubtitleRepository,
	log *zap.Logger,
) *ListingService {
	return &ListingService{
		videos:     videos,
		categories: categories,
		tags:       tags,
		subtitles:  subtitles,
		log:        log,
	}
}

// ListVideos resolves the request parameters into a catalog filter and
// returns one page plus pagination totals. Unknown category or tag names
// yield an empty page rather than an error.
func (s *ListingService) ListVideos(ctx context.Context, params ListingParams) (*Listing, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}

	filter := repository.CatalogFilter{
		Text:   params.Query,
		Sort:   params.Sort,
		Limit:  CatalogPageSize,
		Offset: (page - 1) * CatalogPageSize,
	}

	if params.Category != "" {
		category, err := s.categories.GetCategoryByName(ctx, params.Category)
		if err != nil {
			if db.IsNotFound(err) {
				return emptyListing(page), nil
			}
			return nil, err
		}
		filter.CategoryID = category.ID
	}

	if params.Tag != "" {
		tag, err := s.tags.GetTagByName(ctx, params.Tag)
		if err != nil {
			if db.IsNotFound(err) {
				return emptyListing(page), nil
			}
			return nil, err
		}
		filter.TagID = tag.ID
	}

	videos, total, err := s.videos.ListCatalog(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Listing{
		Videos:     videos,
		Page:       page,
		PageSize:   CatalogPageSize,
		Total:      total,
		TotalPages: totalPages(total, CatalogPageSize),
	}, nil
}

// ListByCategoryID returns one listing page scoped to a category, for the
// category detail page. The category itself is returned for the page header.
func (s *ListingService) ListByCategoryID(ctx context.Context, categoryID int64, page int) (*models.Category, *Listing, error) {
	category, err := s.categories.GetCategoryByID(ctx, categoryID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil, &NotFoundError{Resource: "category", Key: formatID(categoryID)}
		}
		return nil, nil, err
	}

	if page < 1 {
		page = 1
	}

	videos, total, err := s.videos.ListCatalog(ctx, repository.CatalogFilter{
		CategoryID: categoryID,
		Sort:       repository.SortNewest,
		Limit:      CatalogPageSize,
		Offset:     (page - 1) * CatalogPageSize,
	})
	if err != nil {
		return nil, nil, err
	}

	return category, &Listing{
		Videos:     videos,
		Page:       page,
		PageSize:   CatalogPageSize,
		Total:      total,
		TotalPages: totalPages(total, CatalogPageSize),
	}, nil
}

// GetVideoDetail loads a video with its subtitles, categories and tags.
func (s *ListingService) GetVideoDetail(ctx context.Context, externalID string) (*VideoDetail, error) {
	video, err := s.videos.GetVideoByExternalID(ctx, externalID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, &NotFoundError{Resource: "video", Key: externalID}
		}
		return nil, err
	}

	subtitles, err := s.subtitles.ListByVideo(ctx, video.ID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.ListByVideo(ctx, video.ID)
	if err != nil {
		return nil, err
	}

	tags, err := s.tags.ListByVideo(ctx, video.ID)
	if err != nil {
		return nil, err
	}

	return &VideoDetail{
		Video:      video,
		Subtitles:  subtitles,
		Categories: categories,
		Tags:       tags,
	}, nil
}

// ListCategories returns all categories for navigation.
func (s *ListingService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.ListCategories(ctx)
}

func emptyListing(page int) *Listing {
	return &Listing{Page: page, PageSize: CatalogPageSize}
}

// totalPages is ceil(total / pageSize).
func totalPages(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
