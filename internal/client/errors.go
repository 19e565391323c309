package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned by protected operations when no session
	// is held.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired is returned when a 401 could not be recovered by a
	// refresh. The session has been discarded and the user must log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrInvalidTicker is returned by AddTicker and RemoveTicker for blank symbols.
	ErrInvalidTicker = errors.New("ticker symbol is required")
)

// APIError is a non-2xx response carrying the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}
