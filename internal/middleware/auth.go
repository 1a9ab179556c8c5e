// Package middleware provides the gin middleware guarding admin surfaces.
package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/reelgrid/reelgrid/internal/auth"
	"github.com/reelgrid/reelgrid/pkg/logger"
	"go.uber.org/zap"
)

// PrincipalKey is the gin context key the resolved identity is stored under.
const PrincipalKey = "principal"

// LoadPrincipal resolves the session identity once per request and stores it
// in the context for handlers and templates.
func LoadPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, ok := auth.CurrentPrincipal(c); ok {
			c.Set(PrincipalKey, principal)
		}
		c.Next()
	}
}

// GetPrincipal returns the identity stored by LoadPrincipal.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	value, ok := c.Get(PrincipalKey)
	if !ok {
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	return principal, ok
}

// RequireAdmin gates admin pages. Anonymous requests are redirected to
// sign-in with the original path preserved as callback; authenticated
// non-admins are sent home.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			callback := c.Request.URL.RequestURI()
			c.Redirect(http.StatusFound, "/auth/signin?callback="+url.QueryEscape(callback))
			c.Abort()
			return
		}

		if !principal.IsAdmin() {
			logger.Named("middleware").Warn("Non-admin request to admin page",
				zap.String("email", principal.Email),
				zap.String("path", c.Request.URL.Path),
			)
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdminAPI gates admin JSON endpoints: 401 for anonymous requests,
// 403 for authenticated non-admins.
func RequireAdminAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Next()
	}
}
