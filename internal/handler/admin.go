package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reelgrid/reelgrid/internal/middleware"
	"github.com/reelgrid/reelgrid/internal/service"
)

// AdminHandler serves the admin console pages and mutation endpoints.
type AdminHandler struct {
	listing *service.ListingService
	admin   *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(listing *service.ListingService, admin *service.AdminService) *AdminHandler {
	return &AdminHandler{listing: listing, admin: admin}
}

// Dashboard renders the admin listing with the same filter parameters as the
// public page.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	params := listingParams(c)

	listing, err := h.listing.ListVideos(c.Request.Context(), params)
	if err != nil {
		handleError(c, err)
		return
	}

	categories, err := h.admin.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	principal, _ := middleware.GetPrincipal(c)
	c.HTML(http.StatusOK, "admin", gin.H{
		"Listing":    listing,
		"Categories": categories,
		"Params":     params,
		"Principal":  principal,
	})
}

// CategoryManager renders the category management page.
func (h *AdminHandler) CategoryManager(c *gin.Context) {
	categories, err := h.admin.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	principal, _ := middleware.GetPrincipal(c)
	c.HTML(http.StatusOK, "admin", gin.H{
		"ShowCategories": true,
		"Categories":     categories,
		"Principal":      principal,
	})
}

// CreateCategory handles the category creation form.
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	category, err := h.admin.CreateCategory(c.Request.Context(), c.PostForm("name"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// DeleteCategory deletes a category. The delete fails while videos still
// reference it.
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handleError(c, &service.ValidationError{Field: "id", Message: "must be numeric"})
		return
	}

	if err := h.admin.DeleteCategory(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type assignCategoryRequest struct {
	CategoryID int64 `json:"categoryId"`
}

// AssignCategory adds one category to a video.
func (h *AdminHandler) AssignCategory(c *gin.Context) {
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handleError(c, &service.ValidationError{Field: "id", Message: "must be numeric"})
		return
	}

	var req assignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, &service.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	if err := h.admin.AssignCategory(c.Request.Context(), videoID, req.CategoryID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videoId": videoID, "categoryId": req.CategoryID})
}

// UnassignCategory removes one category from a video.
func (h *AdminHandler) UnassignCategory(c *gin.Context) {
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handleError(c, &service.ValidationError{Field: "id", Message: "must be numeric"})
		return
	}

	var req assignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, &service.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	if err := h.admin.UnassignCategory(c.Request.Context(), videoID, req.CategoryID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videoId": videoID, "categoryId": req.CategoryID})
}

type bulkAssignRequest struct {
	VideoIDs   []int64 `json:"videoIds"`
	CategoryID int64   `json:"categoryId"`
}

// BulkAssignCategory reassigns every selected video to exactly one category.
func (h *AdminHandler) BulkAssignCategory(c *gin.Context) {
	var req bulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, &service.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	if err := h.admin.BulkAssignCategory(c.Request.Context(), req.VideoIDs, req.CategoryID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": len(req.VideoIDs), "categoryId": req.CategoryID})
}

type updateTagsRequest struct {
	Tags string `json:"tags"`
}

// UpdateTags replaces a video's tag set from a comma-separated string. An
// empty string clears all tags.
func (h *AdminHandler) UpdateTags(c *gin.Context) {
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handleError(c, &service.ValidationError{Field: "id", Message: "must be numeric"})
		return
	}

	var req updateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, &service.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	if err := h.admin.UpdateTags(c.Request.Context(), videoID, req.Tags); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videoId": videoID})
}

// ListUsers returns all accounts for the admin user page.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
