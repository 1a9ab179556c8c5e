package handler

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reelgrid/reelgrid/internal/auth"
	"github.com/reelgrid/reelgrid/internal/middleware"
)

// Handlers bundles everything the router wires up.
type Handlers struct {
	Pages  *PageHandler
	Auth   *AuthHandler
	Admin  *AdminHandler
	Sync   *SyncHandler
	Health *HealthHandler
}

// RouterConfig carries the router-level settings.
type RouterConfig struct {
	TemplatesDir string
	StaticDir    string
	SessionStore sessions.Store
	CronSecret   string
}

// NewRouter assembles the gin engine with all routes and middleware.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.HTMLRender = NewRenderer(cfg.TemplatesDir)

	router.Use(sessions.Sessions(auth.SessionName, cfg.SessionStore))
	router.Use(middleware.LoadPrincipal())

	if cfg.StaticDir != "" {
		router.Static("/static", cfg.StaticDir)
	}

	// Public pages.
	router.GET("/", h.Pages.Home)
	router.GET("/video/:id", h.Pages.VideoPage)
	router.GET("/category/:id", h.Pages.CategoryPage)

	// Auth round trip.
	router.GET("/auth/signin", h.Auth.SignIn)
	router.GET("/auth/callback", h.Auth.Callback)
	router.GET("/auth/signout", h.Auth.SignOut)

	// Admin console pages; non-admins are redirected.
	admin := router.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("", h.Admin.Dashboard)
		admin.GET("/category", h.Admin.CategoryManager)
	}

	// Admin mutation endpoints called from the console via fetch.
	adminAPI := router.Group("/admin", middleware.RequireAdminAPI())
	{
		adminAPI.POST("/category", h.Admin.CreateCategory)
		adminAPI.POST("/category/:id/delete", h.Admin.DeleteCategory)
		adminAPI.POST("/videos/:id/assign", h.Admin.AssignCategory)
		adminAPI.POST("/videos/:id/unassign", h.Admin.UnassignCategory)
		adminAPI.POST("/bulk-assign", h.Admin.BulkAssignCategory)
		adminAPI.POST("/videos/:id/tags", h.Admin.UpdateTags)
	}

	api := router.Group("/api")
	{
		api.GET("/admin/users", middleware.RequireAdminAPI(), h.Admin.ListUsers)
		api.POST("/sync-videos", middleware.RequireAdminAPI(), h.Sync.SyncVideos)
		api.GET("/cron", middleware.CronAuth(cfg.CronSecret), h.Sync.Cron)
	}

	router.GET("/healthz", h.Health.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
