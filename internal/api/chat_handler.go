package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/service"
)

// ChatHandler serves the assistant endpoints.
type ChatHandler struct {
	chat   service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chat service.ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for ChatHandler")
	}
	return &ChatHandler{chat: chat, logger: logger.With(slog.String("component", "chat_handler"))}
}

// Send handles POST /api/chat and returns the assistant's reply.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reply, err := h.chat.Send(r.Context(), userID, req.Message)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get a reply")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, reply)
}

// History handles GET /api/chat/history?limit=.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	msgs, err := h.chat.History(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load chat history")
		return
	}
	if msgs == nil {
		msgs = []*domain.ChatMessage{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, msgs)
}
