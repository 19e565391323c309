package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

// RegisterRequest is the payload of Register. Names are optional.
type RegisterRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// ChatContext echoes what the assistant knew about the user.
type ChatContext struct {
	Name      string   `json:"name"`
	Watchlist []string `json:"watchlist"`
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	Response    string      `json:"response"`
	UserContext ChatContext `json:"user_context"`
	AIEnabled   bool        `json:"ai_enabled"`
}

type sessionResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (c *Client) startSession(resp sessionResponse) (*User, error) {
	user := resp.User
	if err := c.setState(State{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         &user,
	}); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var resp sessionResponse
	if err := c.doPublic(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return c.startSession(resp)
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp sessionResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.doPublic(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return c.startSession(resp)
}

// Logout discards the session locally. The server is not contacted; issued
// tokens stay valid until they expire.
func (c *Client) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{}
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Health returns the server's status string.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doPublic(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// Profile fetches the current user and refreshes the cached copy.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.doAuth(ctx, http.MethodGet, "/user/profile", nil, &resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.state.Authenticated() {
		user := resp.User
		c.state.User = &user
		if err := c.store.Save(c.state); err != nil {
			slog.Warn("save session profile", "error", err)
		}
	}
	c.mu.Unlock()
	return &resp.User, nil
}

// ChangePassword replaces the account password. The session stays valid.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return c.doAuth(ctx, http.MethodPost, "/auth/change-password", body, nil)
}

// VerifyToken asks the server whether the session still maps to an account.
func (c *Client) VerifyToken(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.doAuth(ctx, http.MethodGet, "/auth/verify-token", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// AccountInfo is the identity part of an Export.
type AccountInfo struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	CreatedAt string  `json:"created_at"`
}

// Export is the server-side copy of the account's data.
type Export struct {
	AccountInfo AccountInfo `json:"account_info"`
	Watchlist   []string    `json:"watchlist"`
	ExportedAt  string      `json:"exported_at"`
}

// ExportAccount downloads everything the server stores for the account.
func (c *Client) ExportAccount(ctx context.Context) (*Export, error) {
	var resp struct {
		UserData Export `json:"user_data"`
	}
	if err := c.doAuth(ctx, http.MethodGet, "/account/export", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.UserData, nil
}

// UpdateProfile overwrites both names; nil clears a name.
func (c *Client) UpdateProfile(ctx context.Context, firstName, lastName *string) error {
	body := map[string]*string{"first_name": firstName, "last_name": lastName}
	return c.doAuth(ctx, http.MethodPut, "/user/profile", body, nil)
}

// SetWatchlist replaces the whole watchlist and returns what the server stored.
func (c *Client) SetWatchlist(ctx context.Context, tickers []string) ([]string, error) {
	if tickers == nil {
		tickers = []string{}
	}
	var resp struct {
		Watchlist []string `json:"watchlist"`
	}
	body := map[string][]string{"watchlist": tickers}
	if err := c.doAuth(ctx, http.MethodPut, "/user/watchlist", body, &resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.state.User != nil {
		c.state.User.Watchlist = resp.Watchlist
		if err := c.store.Save(c.state); err != nil {
			slog.Warn("save session watchlist", "error", err)
		}
	}
	c.mu.Unlock()
	return resp.Watchlist, nil
}

// NormalizeTicker trims and upper-cases a symbol.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// AddTicker reads the profile, appends ticker if absent and writes the whole
// list back. Two sessions doing this concurrently can lose an update.
func (c *Client) AddTicker(ctx context.Context, ticker string) ([]string, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrInvalidTicker
	}
	return c.editWatchlist(ctx, func(list []string) []string {
		if slices.Contains(list, ticker) {
			return list
		}
		return append(list, ticker)
	})
}

// RemoveTicker reads the profile, drops ticker and writes the whole list
// back. It has the same lost-update exposure as AddTicker.
func (c *Client) RemoveTicker(ctx context.Context, ticker string) ([]string, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrInvalidTicker
	}
	return c.editWatchlist(ctx, func(list []string) []string {
		return slices.DeleteFunc(list, func(t string) bool { return t == ticker })
	})
}

func (c *Client) editWatchlist(ctx context.Context, edit func([]string) []string) ([]string, error) {
	user, err := c.Profile(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(user.Watchlist))
	current := make([]string, 0, len(user.Watchlist))
	for _, t := range user.Watchlist {
		t = NormalizeTicker(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		current = append(current, t)
	}
	return c.SetWatchlist(ctx, edit(current))
}

// Chat asks the assistant a question.
func (c *Client) Chat(ctx context.Context, question string) (*ChatReply, error) {
	var reply ChatReply
	body := map[string]string{"question": question}
	if err := c.doAuth(ctx, http.MethodPost, "/ai_chatbot", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// AvailableAssets lists the tickers the server offers.
func (c *Client) AvailableAssets(ctx context.Context) ([]string, error) {
	var resp struct {
		Assets []string `json:"assets"`
	}
	if err := c.doAuth(ctx, http.MethodGet, "/available-assets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Assets, nil
}

// AvailableStocks lists the equities the server offers.
func (c *Client) AvailableStocks(ctx context.Context) ([]string, error) {
	var resp struct {
		Stocks []string `json:"stocks"`
	}
	if err := c.doAuth(ctx, http.MethodGet, "/available-stocks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stocks, nil
}

// DeleteAccount permanently deletes the account and ends the session.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.doAuth(ctx, http.MethodDelete, "/account/delete", nil, nil); err != nil {
		return err
	}
	return c.Logout()
}
