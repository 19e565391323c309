package handler

import (
	"time"

	"github.com/joshcord99/stoxai/internal/domain"
	"github.com/joshcord99/stoxai/internal/service"
)

// UserDTO is the sanitized JSON representation of a user. The password hash
// never leaves the server.
type UserDTO struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	FullName  string   `json:"full_name"`
	Watchlist []string `json:"watchlist"`
	CreatedAt string   `json:"created_at"`
	IsActive  bool     `json:"is_active"`
}

func toUserDTO(u *domain.User) UserDTO {
	watchlist := u.Watchlist
	if watchlist == nil {
		watchlist = []string{}
	}
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Watchlist: watchlist,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		IsActive:  true,
	}
}

type sessionResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type accountInfoDTO struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	CreatedAt string  `json:"created_at"`
}

// ExportDTO is the body of GET /account/export.
type ExportDTO struct {
	AccountInfo accountInfoDTO `json:"account_info"`
	Watchlist   []string       `json:"watchlist"`
	ExportedAt  string         `json:"exported_at"`
}

func toExportDTO(e *service.Export) ExportDTO {
	user := toUserDTO(e.User)
	return ExportDTO{
		AccountInfo: accountInfoDTO{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			CreatedAt: user.CreatedAt,
		},
		Watchlist:  user.Watchlist,
		ExportedAt: e.ExportedAt.Format(time.RFC3339),
	}
}
