package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/joshcord99/stoxai/internal/domain"
	"github.com/joshcord99/stoxai/internal/service"
)

// AccountHandler serves the profile, watchlist and account routes. Every
// route sits behind RequireAuth.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// HandleGetProfile returns the caller's profile.
// GET /user/profile
func (h *AccountHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := h.accounts.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    toUserDTO(user),
	})
}

// HandleUpdateProfile overwrites both name fields. A field that is omitted or
// null is cleared; an empty body clears both.
// PUT /user/profile
// Request: {"first_name":"...","last_name":"..."}
func (h *AccountHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := readJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	if err := h.accounts.UpdateProfile(r.Context(), userID, req.FirstName, req.LastName); err != nil {
		writeServiceError(w, "update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Profile updated successfully"})
}

// HandleSetWatchlist replaces the caller's watchlist.
// PUT /user/watchlist
// Request:  {"watchlist":["AAPL","BTC"]}
// Response: {"success":true,"message":"...","watchlist":[...]}
func (h *AccountHandler) HandleSetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	tickers, err := decodeWatchlist(w, r)
	if err != nil {
		writeServiceError(w, "decode watchlist", err)
		return
	}

	stored, err := h.accounts.SetWatchlist(r.Context(), userID, tickers)
	if err != nil {
		writeServiceError(w, "set watchlist", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Watchlist updated successfully",
		"watchlist": stored,
	})
}

// decodeWatchlist accepts only a JSON array of strings in the "watchlist"
// field. Missing, null, non-array and null elements are validation errors.
func decodeWatchlist(w http.ResponseWriter, r *http.Request) ([]string, error) {
	var req struct {
		Watchlist *[]*string `json:"watchlist"`
	}
	invalid := fmt.Errorf("%w: watchlist must be an array", domain.ErrValidation)
	if err := readJSON(w, r, &req); err != nil || req.Watchlist == nil {
		return nil, invalid
	}

	tickers := make([]string, 0, len(*req.Watchlist))
	for _, t := range *req.Watchlist {
		if t == nil {
			return nil, invalid
		}
		tickers = append(tickers, *t)
	}
	return tickers, nil
}

// HandleExportAccount returns everything stored for the caller.
// GET /account/export
// Response: {"success":true,"user_data":{"account_info":{...},"watchlist":[...],"exported_at":"..."}}
func (h *AccountHandler) HandleExportAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	export, err := h.accounts.Export(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "export account", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"user_data": toExportDTO(export),
	})
}

// HandleDeleteAccount permanently removes the caller's account.
// DELETE /account/delete
func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.accounts.DeleteAccount(r.Context(), userID); err != nil {
		writeServiceError(w, "delete account", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Account deleted successfully"})
}

// HandleAvailableAssets lists the trackable tickers.
// GET /available-assets
func (h *AccountHandler) HandleAvailableAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"assets":  h.accounts.AvailableAssets(),
	})
}

// HandleAvailableStocks lists the trackable equities.
// GET /available-stocks
func (h *AccountHandler) HandleAvailableStocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stocks":  h.accounts.AvailableStocks(),
	})
}
