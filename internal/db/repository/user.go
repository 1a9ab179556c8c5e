package repository

import (
	"context"
	"fmt"

	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository defines operations for managing OAuth-created accounts.
type UserRepository interface {
	// CreateUser persists a new account. The role was already resolved from
	// the allow-list and is never rewritten afterwards.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByProviderID retrieves an account by the OAuth provider's
	// stable subject id.
	GetUserByProviderID(ctx context.Context, providerID string) (*models.User, error)

	// GetUserByEmail retrieves an account by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ListUsers retrieves all accounts ordered by creation time.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, avatar_url, provider_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.Name, user.AvatarURL, user.ProviderID, user.Role).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return db.WrapError(err, "create user")
	}

	return nil
}

func (r *userRepository) GetUserByProviderID(ctx context.Context, providerID string) (*models.User, error) {
	return r.getUser(ctx, `WHERE provider_id = $1`, providerID)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `WHERE email = $1`, email)
}

func (r *userRepository) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, avatar_url, provider_id, role, created_at, updated_at
		FROM users `+where, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.ProviderID,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get user")
	}

	return user, nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, avatar_url, provider_id, role, created_at, updated_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, db.WrapError(err, "list users")
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.AvatarURL,
			&user.ProviderID,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}
