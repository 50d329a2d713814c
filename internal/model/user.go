package model

import (
	"errors"
	"time"
)

// User represents a user in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	FullName       *string   `db:"full_name" json:"full_name"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url"`
	AvatarKey      *string   `db:"avatar_key" json:"-"`
	Bio            *string   `db:"bio" json:"bio"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the compact author representation embedded in posts,
// comments and search results.
type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	FullName    *string `db:"full_name" json:"full_name"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url"`
	IsFollowing bool    `json:"is_following"`
}

// UserCounts holds the live edge counts for a profile. These are always
// recomputed from the follows/posts tables, never stored.
type UserCounts struct {
	FollowerCount  int `db:"follower_count" json:"follower_count"`
	FollowingCount int `db:"following_count" json:"following_count"`
	PostCount      int `db:"post_count" json:"post_count"`
}

// ProfileResponse is a user's profile as seen by a viewer.
type ProfileResponse struct {
	User *User `json:"user"`
	UserCounts
	IsFollowing bool       `json:"is_following"`
	Posts       []PostView `json:"posts,omitempty"`
}

// SearchResponse is the paginated user search result.
type SearchResponse struct {
	Users      []UserSummary `json:"users"`
	PageNumber int           `json:"page_number"`
	PageSize   int           `json:"page_size"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"-"`
	AvatarKey *string `json:"-"`
}

// LoginRequest represents the data needed to log in. UID may be a
// username or an email address.
type LoginRequest struct {
	UID      string `json:"uid"`
	Password string `json:"password"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to create a user with a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmptyQuery is returned for a blank or whitespace-only search query
	ErrEmptyQuery = errors.New("search query is required")
)
