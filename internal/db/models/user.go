package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. The role is decided once, when the account is created.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is an account created from a successful OAuth callback.
type User struct {
	ID         uuid.UUID `db:"id"`
	Email      string    `db:"email"`
	Name       string    `db:"name"`
	AvatarURL  string    `db:"avatar_url"`
	ProviderID string    `db:"provider_id"`
	Role       string    `db:"role"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// NewUser creates a User with the role resolved from the admin allow-list.
func NewUser(email, name, avatarURL, providerID string, isAdmin bool) *User {
	role := RoleUser
	if isAdmin {
		role = RoleAdmin
	}
	now := time.Now()
	return &User{
		ID:         uuid.New(),
		Email:      email,
		Name:       name,
		AvatarURL:  avatarURL,
		ProviderID: providerID,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
