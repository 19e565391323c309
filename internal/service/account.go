package service

import (
	"context"
	"fmt"
	"time"

	"github.com/joshcord99/stoxai/internal/domain"
)

var availableAssets = []string{
	"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "META", "NVDA", "NFLX",
	"BTC", "ETH", "ADA", "DOT", "LINK", "LTC", "BCH", "UNI", "ATOM",
	"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD", "USD/CAD",
}

var availableStocks = []string{
	"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "META", "NVDA", "NFLX",
	"ADBE", "CRM", "ORCL", "PYPL", "INTC", "AMD", "CSCO", "IBM",
}

// AccountService serves the authenticated profile and watchlist operations.
// Every method takes the user id resolved by the authorization gate.
type AccountService struct {
	users domain.UserRepository
}

func NewAccountService(users domain.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// Profile returns the current user record including its watchlist.
func (s *AccountService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile overwrites both name fields; nil clears a field.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, firstName, lastName *string) error {
	if err := s.users.UpdateProfile(ctx, userID, firstName, lastName); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SetWatchlist replaces the stored watchlist with tickers and returns them
// unchanged. It is a full replace: concurrent read-modify-write cycles from
// two sessions of the same account can lose an update.
func (s *AccountService) SetWatchlist(ctx context.Context, userID int64, tickers []string) ([]string, error) {
	if tickers == nil {
		return nil, fmt.Errorf("%w: watchlist must be an array", domain.ErrValidation)
	}
	if err := s.users.SetWatchlist(ctx, userID, tickers); err != nil {
		return nil, fmt.Errorf("set watchlist: %w", err)
	}
	return tickers, nil
}

// Export is a snapshot of everything stored for one account.
type Export struct {
	User       *domain.User
	ExportedAt time.Time
}

// Export returns the caller's stored data, typically fetched before
// DeleteAccount.
func (s *AccountService) Export(ctx context.Context, userID int64) (*Export, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &Export{User: user, ExportedAt: time.Now().UTC()}, nil
}

// DeleteAccount hard-deletes the user. Outstanding tokens stay valid until
// they expire but resolve to no user afterwards.
func (s *AccountService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// AvailableAssets lists the tickers offered for tracking.
func (s *AccountService) AvailableAssets() []string {
	return append([]string(nil), availableAssets...)
}

// AvailableStocks lists the equity subset of AvailableAssets plus a few extras.
func (s *AccountService) AvailableStocks() []string {
	return append([]string(nil), availableStocks...)
}
