package handler

import (
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
)

// pageTemplates maps each renderable page to the template file composed with
// the shared layout.
var pageTemplates = map[string]string{
	"home":  "home.tmpl",
	"video": "video.tmpl",
	"admin": "admin.tmpl",
	"error": "error.tmpl",
}

// NewRenderer builds the HTML renderer from the templates directory. Every
// page shares layout.tmpl.
func NewRenderer(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	layout := filepath.Join(templatesDir, "layout.tmpl")
	for name, file := range pageTemplates {
		r.AddFromFiles(name, layout, filepath.Join(templatesDir, file))
	}
	return r
}
