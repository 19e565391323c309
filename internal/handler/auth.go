package handler

import (
	"net/http"

	"github.com/joshcord99/stoxai/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleRegister processes a JSON registration request.
// POST /auth/register
// Request:  {"email":"...","password":"...","first_name":"...","last_name":"..."}
// Response: 201 {"success":true,"message":"...","user":{...},"access_token":"...","refresh_token":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string  `json:"email"`
		Password  string  `json:"password"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	sess, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, "register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Success:      true,
		Message:      "User registered successfully",
		User:         toUserDTO(sess.User),
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	})
}

// HandleLogin processes a JSON login request.
// POST /auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"success":true,"message":"...","user":{...},"access_token":"...","refresh_token":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, "login user", err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Success:      true,
		Message:      "Login successful",
		User:         toUserDTO(sess.User),
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	})
}

// HandleRefresh exchanges the refresh token carried as a bearer credential
// for a new access token.
// POST /auth/refresh
// Response: {"success":true,"access_token":"..."}
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "Authentication required")
		return
	}

	access, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, "refresh token", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"access_token": access,
	})
}

// HandleChangePassword replaces the caller's password.
// POST /auth/change-password
// Request: {"current_password":"...","new_password":"..."}
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	if err := h.auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, "change password", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Password changed successfully"})
}

// HandleVerifyToken reports whether the bearer token still resolves to an
// account.
// GET /auth/verify-token
// Response: {"success":true,"valid":true,"user":{...}}
func (h *AuthHandler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := h.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "verify token", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"valid":   true,
		"user":    toUserDTO(user),
	})
}
