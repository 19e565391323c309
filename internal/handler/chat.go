package handler

import (
	"net/http"

	"github.com/joshcord99/stoxai/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// HandleAsk answers a question about the caller's watchlist.
// POST /ai_chatbot
// Request:  {"question":"..."}
// Response: {"success":true,"response":"...","user_context":{...},"ai_enabled":bool}
func (h *ChatHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Question string `json:"question"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	reply, err := h.chat.Ask(r.Context(), userID, req.Question)
	if err != nil {
		writeServiceError(w, "chat", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"response":     reply.Response,
		"user_context": reply.Context,
		"ai_enabled":   reply.AIEnabled,
	})
}
