// Package auth implements sign-in via an external OAuth provider and the
// cookie sessions that carry the resulting identity.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/reelgrid/reelgrid/internal/config"
	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"
	"github.com/reelgrid/reelgrid/internal/db/repository"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Authenticator drives the OAuth authorization-code flow and account
// creation.
type Authenticator struct {
	oauth       *oauth2.Config
	userInfoURL string
	users       repository.UserRepository
	adminEmails map[string]bool
	log         *zap.Logger
}

// NewAuthenticator creates an Authenticator from the provider configuration.
func NewAuthenticator(cfg *config.OAuthConfig, users repository.UserRepository, log *zap.Logger) *Authenticator {
	return &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"user:email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		users:       users,
		adminEmails: cfg.AdminEmailSet(),
		log:         log,
	}
}

// NewState returns a random CSRF state token for one login round trip.
func NewState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// AuthCodeURL returns the provider URL to redirect the browser to.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state)
}

// providerUser is the provider's userinfo payload. The id is the stable
// subject used as the local account key.
type providerUser struct {
	ID        json.Number `json:"id"`
	Login     string      `json:"login"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	AvatarURL string      `json:"avatar_url"`
}

// HandleCallback exchanges the authorization code, loads the provider
// profile, and returns the matching local account, creating it on first
// sign-in. The admin allow-list is consulted only at that creation; later
// logins never change the stored role.
func (a *Authenticator) HandleCallback(ctx context.Context, code string) (*models.User, error) {
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	profile, err := a.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	providerID := profile.ID.String()
	if providerID == "" {
		return nil, fmt.Errorf("provider profile has no id")
	}

	user, err := a.users.GetUserByProviderID(ctx, providerID)
	if err == nil {
		return user, nil
	}
	if !db.IsNotFound(err) {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, fmt.Errorf("provider profile has no verified email")
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	user = models.NewUser(email, name, profile.AvatarURL, providerID, a.adminEmails[email])
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	a.log.Info("Account created",
		zap.String("email", email),
		zap.String("role", user.Role),
	)

	return user, nil
}

func (a *Authenticator) fetchProfile(ctx context.Context, token *oauth2.Token) (*providerUser, error) {
	client := a.oauth.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, string(body))
	}

	var profile providerUser
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("parse userinfo: %w", err)
	}

	return &profile, nil
}
