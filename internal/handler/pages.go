package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reelgrid/reelgrid/internal/middleware"
	"github.com/reelgrid/reelgrid/internal/service"
)

// PageHandler serves the public, server-rendered catalog pages.
type PageHandler struct {
	listing *service.ListingService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(listing *service.ListingService) *PageHandler {
	return &PageHandler{listing: listing}
}

// Home renders the catalog listing with filter, sort and pagination
// parameters.
func (h *PageHandler) Home(c *gin.Context) {
	params := listingParams(c)

	listing, err := h.listing.ListVideos(c.Request.Context(), params)
	if err != nil {
		h.renderError(c, err)
		return
	}

	categories, err := h.listing.ListCategories(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	principal, _ := middleware.GetPrincipal(c)
	c.HTML(http.StatusOK, "home", gin.H{
		"Listing":    listing,
		"Categories": categories,
		"Params":     params,
		"Principal":  principal,
	})
}

// CategoryPage renders the listing scoped to one category.
func (h *PageHandler) CategoryPage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.renderError(c, &service.NotFoundError{Resource: "category", Key: c.Param("id")})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	category, listing, err := h.listing.ListByCategoryID(c.Request.Context(), id, page)
	if err != nil {
		h.renderError(c, err)
		return
	}

	principal, _ := middleware.GetPrincipal(c)
	c.HTML(http.StatusOK, "home", gin.H{
		"Listing":   listing,
		"Category":  category,
		"Principal": principal,
		"Params":    service.ListingParams{Page: page, Category: category.Name, Sort: "newest"},
	})
}

// VideoPage renders one video with its subtitles, categories and tags.
func (h *PageHandler) VideoPage(c *gin.Context) {
	detail, err := h.listing.GetVideoDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	principal, _ := middleware.GetPrincipal(c)
	c.HTML(http.StatusOK, "video", gin.H{
		"Detail":    detail,
		"Principal": principal,
	})
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	principal, _ := middleware.GetPrincipal(c)
	if _, ok := err.(*service.NotFoundError); ok {
		c.HTML(http.StatusNotFound, "error", gin.H{
			"Status":    http.StatusNotFound,
			"Message":   "Page not found",
			"Principal": principal,
		})
		return
	}

	c.HTML(http.StatusInternalServerError, "error", gin.H{
		"Status":    http.StatusInternalServerError,
		"Message":   "Something went wrong",
		"Principal": principal,
	})
}

// listingParams reads the shared listing query parameters.
func listingParams(c *gin.Context) service.ListingParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	return service.ListingParams{
		Page:     page,
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Sort:     c.DefaultQuery("sort", "newest"),
	}
}
