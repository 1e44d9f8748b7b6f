package models

import "time"

// UserType is the role a user signed up with
type UserType string

const (
	UserTypeGuest UserType = "guest"
	UserTypeHost  UserType = "host"
)

// Valid reports whether t is a known user type
func (t UserType) Valid() bool {
	return t == UserTypeGuest || t == UserTypeHost
}

// User represents a user in the system. AuthID is the opaque subject
// issued by the identity provider; UserID is the internal key.
type User struct {
	UserID          int64     `json:"user_id" db:"user_id"`
	AuthID          string    `json:"-" db:"auth_id"`
	Email           string    `json:"email" db:"email"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	Bio             *string   `json:"bio,omitempty" db:"bio"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty" db:"profile_photo_url"`
	UserType        UserType  `json:"user_type" db:"user_type"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns "First Last" without stray spaces
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Principal is the authenticated caller, resolved from the identity token
type Principal struct {
	UserID int64    `json:"user_id"`
	AuthID string   `json:"-"`
	Email  string   `json:"email"`
	Type   UserType `json:"user_type"`
}

// IsHost mirrors the host-role check used by authorization rules
func (p Principal) IsHost() bool {
	return p.Type == UserTypeHost
}

// SyncUserRequest provisions the internal user row for an identity
type SyncUserRequest struct {
	Email     string   `json:"email" binding:"required,email"`
	FirstName string   `json:"first_name" binding:"required,max=100"`
	LastName  string   `json:"last_name" binding:"max=100"`
	UserType  UserType `json:"user_type" binding:"required,oneof=guest host"`
}

// UpdateProfileRequest represents the request to update mutable profile fields
type UpdateProfileRequest struct {
	FirstName       *string `json:"first_name" binding:"omitempty,max=100"`
	LastName        *string `json:"last_name" binding:"omitempty,max=100"`
	Phone           *string `json:"phone"`
	Bio             *string `json:"bio" binding:"omitempty,max=2000"`
	ProfilePhotoURL *string `json:"profile_photo_url" binding:"omitempty,url"`
}
