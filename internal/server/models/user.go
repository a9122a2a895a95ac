package models

import "time"

// Role is a user's authorisation level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserStatus is set by moderators; suspended users cannot log in.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserSuspended:
		return true
	}
	return false
}

// User is the stored account row.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Verified     bool
	VerifyToken  string
	Role         Role
	Status       UserStatus
	FullName     string
	Bio          string
	Institution  string
	CreatedAt    time.Time
}

// Profile is the sanitized view of a User handed to callers and clients:
// no password hash, no verification token.
type Profile struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Verified    bool       `json:"is_verified"`
	Role        Role       `json:"role"`
	Status      UserStatus `json:"status"`
	FullName    string     `json:"full_name,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Institution string     `json:"institution,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Profile strips secrets from u.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Verified:    u.Verified,
		Role:        u.Role,
		Status:      u.Status,
		FullName:    u.FullName,
		Bio:         u.Bio,
		Institution: u.Institution,
		CreatedAt:   u.CreatedAt,
	}
}

// ProfileUpdate carries the optional fields of a profile edit; nil means
// "leave unchanged".
type ProfileUpdate struct {
	Username    *string `json:"username,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Institution *string `json:"institution,omitempty"`
}
