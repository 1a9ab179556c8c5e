package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reelgrid/reelgrid/internal/db/models"
	"github.com/reelgrid/reelgrid/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pagesFixture struct {
	router     *gin.Engine
	videos     *memVideoRepo
	categories *memCategoryRepo
	subtitles  *memSubtitleRepo
}

func newPagesFixture(t *testing.T) *pagesFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &pagesFixture{
		videos:     newMemVideoRepo(),
		categories: newMemCategoryRepo(),
		subtitles:  newMemSubtitleRepo(),
	}

	listing := service.NewListingService(f.videos, f.categories, newMemTagRepo(), f.subtitles, zap.NewNop())
	h := NewPageHandler(listing)

	f.router = gin.New()
	f.router.HTMLRender = NewRenderer("../../web/templates")
	f.router.GET("/", h.Home)
	f.router.GET("/video/:id", h.VideoPage)
	f.router.GET("/category/:id", h.CategoryPage)
	return f
}

func (f *pagesFixture) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHomePage(t *testing.T) {
	f := newPagesFixture(t)
	require.NoError(t, f.videos.UpsertVideo(t.Context(),
		models.NewVideo("ext-1", "Reef Dive", time.Now())))

	w := f.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Reef Dive")
	assert.Contains(t, w.Body.String(), "/video/ext-1")
}

func TestHomePageEmptyCatalog(t *testing.T) {
	f := newPagesFixture(t)

	w := f.get("/?q=nothing&sort=popular")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No videos found")
}

func TestVideoPage(t *testing.T) {
	f := newPagesFixture(t)
	video := models.NewVideo("ext-1", "Reef Dive", time.Now())
	require.NoError(t, f.videos.UpsertVideo(t.Context(), video))
	require.NoError(t, f.subtitles.ReplaceForVideo(t.Context(), video.ID, []*models.Subtitle{
		{ExternalID: "sub-1", VideoID: video.ID, Name: "English", URL: "/subs/en.vtt", Language: "en"},
	}))

	w := f.get("/video/ext-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Reef Dive")
	assert.Contains(t, w.Body.String(), "/subs/en.vtt")
}

func TestVideoPageNotFound(t *testing.T) {
	f := newPagesFixture(t)

	w := f.get("/video/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
}

func TestCategoryPage(t *testing.T) {
	f := newPagesFixture(t)
	category, err := f.categories.CreateCategory(t.Context(), "Diving")
	require.NoError(t, err)
	require.NoError(t, f.videos.UpsertVideo(t.Context(),
		models.NewVideo("ext-1", "Reef Dive", time.Now())))

	w := f.get("/category/1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), category.Name)
}

func TestCategoryPageNotFound(t *testing.T) {
	f := newPagesFixture(t)

	w := f.get("/category/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
