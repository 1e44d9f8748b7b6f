package database

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

const userColumns = `user_id, auth_id, email, first_name, last_name, phone, bio,
	profile_photo_url, user_type, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByAuthID resolves an identity-provider subject to the internal user row
func (r *UserRepository) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_id = $1`
	if err := r.db.GetContext(ctx, &user, query, authID); err != nil {
		return nil, wrapError(err, "get user by auth id")
	}
	return &user, nil
}

// GetByID retrieves a user by internal id
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &user, query, userID); err != nil {
		return nil, wrapError(err, "get user")
	}
	return &user, nil
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	if err := r.db.GetContext(ctx, &user, query, strings.TrimSpace(email)); err != nil {
		return nil, wrapError(err, "get user by email")
	}
	return &user, nil
}

// Upsert creates the user for an identity or refreshes its email and names.
// user_type is only set on insert.
func (r *UserRepository) Upsert(ctx context.Context, authID string, req *models.SyncUserRequest) (*models.User, error) {
	query := `
		INSERT INTO users (auth_id, email, first_name, last_name, user_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (auth_id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = NOW()
		RETURNING ` + userColumns

	var user models.User
	err := r.db.GetContext(ctx, &user, query,
		authID, strings.TrimSpace(req.Email), strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), req.UserType)
	if err != nil {
		return nil, wrapError(err, "upsert user")
	}
	return &user, nil
}

// UpdateProfile updates the mutable profile fields; nil fields are left unchanged
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.User, error) {
	query := `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone = COALESCE($4, phone),
			bio = COALESCE($5, bio),
			profile_photo_url = COALESCE($6, profile_photo_url),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + userColumns

	var user models.User
	err := r.db.GetContext(ctx, &user, query,
		userID, req.FirstName, req.LastName, req.Phone, req.Bio, req.ProfilePhotoURL)
	if err != nil {
		return nil, wrapError(err, "update profile")
	}
	return &user, nil
}
