package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelgrid/reelgrid/internal/service"
)

// SyncHandler exposes the catalog sync to admins and the cron scheduler.
type SyncHandler struct {
	sync *service.SyncService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(sync *service.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// SyncVideos runs a sync of the requested type. syncType defaults to latest.
func (h *SyncHandler) SyncVideos(c *gin.Context) {
	syncType := c.DefaultQuery("syncType", service.SyncLatest)

	result, err := h.sync.Run(c.Request.Context(), syncType)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusOK
	if result.Skipped {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}

// Cron is the scheduler entrypoint; it always runs a latest sync.
func (h *SyncHandler) Cron(c *gin.Context) {
	result, err := h.sync.Run(c.Request.Context(), service.SyncLatest)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
