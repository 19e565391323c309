package domain

import (
	"context"
	"strings"
	"time"
)

// User represents a registered account and its watchlist.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Watchlist    []string // nil when never set
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins the optional name parts, trimming the gap when either is missing.
func (u *User) FullName() string {
	var first, last string
	if u.FirstName != nil {
		first = *u.FirstName
	}
	if u.LastName != nil {
		last = *u.LastName
	}
	return strings.TrimSpace(first + " " + last)
}

// UserRepository defines persistence operations for users.
//
// Update methods report ErrNotFound when no row matched the id, which is how
// callers learn that an account was deleted while its token was still valid.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName *string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	// SetWatchlist replaces the whole watchlist in a single statement.
	SetWatchlist(ctx context.Context, id int64, tickers []string) error
	Delete(ctx context.Context, id int64) error
}
