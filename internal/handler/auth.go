package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/reelgrid/reelgrid/internal/auth"
	"github.com/reelgrid/reelgrid/pkg/logger"
	"go.uber.org/zap"
)

// AuthHandler drives sign-in, the OAuth callback, and sign-out.
type AuthHandler struct {
	authenticator *auth.Authenticator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authenticator *auth.Authenticator) *AuthHandler {
	return &AuthHandler{authenticator: authenticator}
}

// SignIn starts the OAuth round trip. The optional callback query parameter
// is stored in the session and honored after a successful login.
func (h *AuthHandler) SignIn(c *gin.Context) {
	state, err := auth.NewState()
	if err != nil {
		handleError(c, err)
		return
	}

	session := sessions.Default(c)
	auth.SaveLoginState(session, state, safeCallback(c.Query("callback")))
	if err := session.Save(); err != nil {
		handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, h.authenticator.AuthCodeURL(state))
}

// Callback completes the OAuth round trip, establishes the session, and
// redirects to the stored callback path.
func (h *AuthHandler) Callback(c *gin.Context) {
	session := sessions.Default(c)
	state, callback := auth.ConsumeLoginState(session)

	if state == "" || c.Query("state") != state {
		logger.Named("handler").Warn("OAuth state mismatch",
			zap.String("remoteAddr", c.ClientIP()))
		c.Redirect(http.StatusFound, "/")
		return
	}

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	user, err := h.authenticator.HandleCallback(c.Request.Context(), code)
	if err != nil {
		logger.Named("handler").Error("OAuth callback failed", zap.Error(err))
		c.Redirect(http.StatusFound, "/")
		return
	}

	auth.SaveUser(session, user)
	if err := session.Save(); err != nil {
		handleError(c, err)
		return
	}

	if callback == "" {
		callback = "/"
	}
	c.Redirect(http.StatusFound, callback)
}

// SignOut clears the session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1, Path: "/"})
	_ = session.Save()

	c.Redirect(http.StatusFound, "/")
}

// safeCallback only accepts local paths, never absolute URLs, as post-login
// redirect targets.
func safeCallback(callback string) string {
	if callback == "" || !strings.HasPrefix(callback, "/") || strings.HasPrefix(callback, "//") {
		return ""
	}
	return callback
}
