package handler

import (
	"net/http"

	"github.com/joshcord99/stoxai/internal/ratelimit"
	"github.com/joshcord99/stoxai/internal/service"
)

// Services bundles what RegisterRoutes wires into handlers. AuthLimiter may
// be nil to disable rate limiting of the credential endpoints.
type Services struct {
	Tokens      *service.TokenService
	Auth        *service.AuthService
	Accounts    *service.AccountService
	Chat        *service.ChatService
	AuthLimiter ratelimit.Limiter
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s Services) {
	authH := NewAuthHandler(s.Auth)
	accountH := NewAccountHandler(s.Accounts)
	chatH := NewChatHandler(s.Chat)

	limited := func(h http.HandlerFunc) http.Handler {
		if s.AuthLimiter == nil {
			return h
		}
		return RateLimit(s.AuthLimiter, h)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(s.Tokens, h)
	}

	mux.HandleFunc("GET /health", HandleHealth)

	mux.Handle("POST /auth/register", limited(authH.HandleRegister))
	mux.Handle("POST /auth/login", limited(authH.HandleLogin))
	mux.Handle("POST /auth/refresh", limited(authH.HandleRefresh))
	mux.Handle("POST /auth/change-password", limited(protected(authH.HandleChangePassword).ServeHTTP))
	mux.Handle("GET /auth/verify-token", protected(authH.HandleVerifyToken))

	mux.Handle("GET /user/profile", protected(accountH.HandleGetProfile))
	mux.Handle("PUT /user/profile", protected(accountH.HandleUpdateProfile))
	mux.Handle("PUT /user/watchlist", protected(accountH.HandleSetWatchlist))
	mux.Handle("GET /account/export", protected(accountH.HandleExportAccount))
	mux.Handle("DELETE /account/delete", protected(accountH.HandleDeleteAccount))
	mux.Handle("GET /available-assets", protected(accountH.HandleAvailableAssets))
	mux.Handle("GET /available-stocks", protected(accountH.HandleAvailableStocks))

	mux.Handle("POST /ai_chatbot", protected(chatH.HandleAsk))

	mux.HandleFunc("/", HandleNotFound)
}
