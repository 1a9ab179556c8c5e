package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/reelgrid/reelgrid/internal/db/models"
)

// SessionName is the cookie holding the signed session.
const SessionName = "reelgrid_session"

// Session keys. Role is written once at sign-in and never refreshed; the
// session carries it for its whole lifetime.
const (
	sessionKeyUserID   = "user_id"
	sessionKeyEmail    = "user_email"
	sessionKeyName     = "user_name"
	sessionKeyRole     = "user_role"
	sessionKeyState    = "oauth_state"
	sessionKeyCallback = "oauth_callback"
)

// Principal is the request-scoped identity resolved from the session.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// IsAdmin reports whether the session carries the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// SaveUser writes the signed-in user into the session.
func SaveUser(session sessions.Session, user *models.User) {
	session.Set(sessionKeyUserID, user.ID.String())
	session.Set(sessionKeyEmail, user.Email)
	session.Set(sessionKeyName, user.Name)
	session.Set(sessionKeyRole, user.Role)
}

// SaveLoginState stores the CSRF state and post-login callback path for the
// in-flight OAuth round trip.
func SaveLoginState(session sessions.Session, state, callback string) {
	session.Set(sessionKeyState, state)
	session.Set(sessionKeyCallback, callback)
}

// ConsumeLoginState reads and clears the stored state and callback.
func ConsumeLoginState(session sessions.Session) (state, callback string) {
	state, _ = session.Get(sessionKeyState).(string)
	callback, _ = session.Get(sessionKeyCallback).(string)
	session.Delete(sessionKeyState)
	session.Delete(sessionKeyCallback)
	return state, callback
}

// CurrentPrincipal resolves the identity of the request, if any. The second
// return value is false for anonymous requests.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	session := sessions.Default(c)

	userID, _ := session.Get(sessionKeyUserID).(string)
	if userID == "" {
		return Principal{}, false
	}

	email, _ := session.Get(sessionKeyEmail).(string)
	name, _ := session.Get(sessionKeyName).(string)
	role, _ := session.Get(sessionKeyRole).(string)

	return Principal{UserID: userID, Email: email, Name: name, Role: role}, true
}
