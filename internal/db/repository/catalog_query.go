package repository

import (
	"fmt"
	"strings"
)

// CatalogFilter describes one page of the public catalog listing. Zero-valued
// fields are left out of the generated predicate.
type CatalogFilter struct {
	// Text matches video names case-insensitively (substring).
	Text string

	// CategoryID restricts to videos associated with the category; 0 means no
	// category filter.
	CategoryID int64

	// TagID restricts to videos associated with the tag; 0 means no tag filter.
	TagID int64

	// Sort is one of SortNewest, SortOldest, SortPopular, SortAZ, SortZA.
	// Anything else falls back to SortNewest.
	Sort string

	Limit  int
	Offset int
}

// Sort keys accepted by the catalog listing.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortPopular = "popular"
	SortAZ      = "az"
	SortZA      = "za"
)

var sortOrder = map[string]string{
	SortNewest:  "source_created_at DESC",
	SortOldest:  "source_created_at ASC",
	SortPopular: "play_count DESC",
	SortAZ:      "LOWER(name) ASC",
	SortZA:      "LOWER(name) DESC",
}

// buildCatalogQuery resolves a CatalogFilter into a page query and a count
// query sharing the same predicate and argument list. The page query expects
// LIMIT and OFFSET appended as the final two arguments.
func buildCatalogQuery(f CatalogFilter) (selectSQL, countSQL string, args []any) {
	var where []string

	if f.Text != "" {
		args = append(args, "%"+f.Text+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	if f.CategoryID != 0 {
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf(
			"id IN (SELECT video_id FROM video_categories WHERE category_id = $%d)", len(args)))
	}

	if f.TagID != 0 {
		args = append(args, f.TagID)
		where = append(where, fmt.Sprintf(
			"id IN (SELECT video_id FROM video_tags WHERE tag_id = $%d)", len(args)))
	}

	predicate := ""
	if len(where) > 0 {
		predicate = " WHERE " + strings.Join(where, " AND ")
	}

	order, ok := sortOrder[f.Sort]
	if !ok {
		order = sortOrder[SortNewest]
	}

	selectSQL = fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		videoColumns, predicate, order, len(args)+1, len(args)+2)
	countSQL = "SELECT COUNT(*) FROM videos" + predicate

	return selectSQL, countSQL, args
}
