// File: internal/handlers/chat_handler.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/yuin/goldmark"

	"github.com/citizenslab/citizens-chat/internal/domain"
	"github.com/citizenslab/citizens-chat/internal/middleware"
	"github.com/citizenslab/citizens-chat/internal/services/conversation"
	"github.com/citizenslab/citizens-chat/internal/services/turn"
)

type ChatHandler struct {
	ConversationService *conversation.Service
	Orchestrator        *turn.Orchestrator
	markdown            goldmark.Markdown
}

func NewChatHandler(cs *conversation.Service, orchestrator *turn.Orchestrator) *ChatHandler {
	return &ChatHandler{
		ConversationService: cs,
		Orchestrator:        orchestrator,
		markdown:            goldmark.New(),
	}
}

// messageView augments a stored message with rendered HTML for assistant
// replies, which are written in markdown.
type messageView struct {
	domain.Message
	ContentHTML string `json:"content_html,omitempty"`
}

// GetUserConversations retrieves all conversations for the requesting user.
func (h *ChatHandler) GetUserConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(uint)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversations, err := h.ConversationService.GetUserConversations(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve conversations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// CreateConversation starts a new, empty conversation.
func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(uint)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.ConversationService.CreateConversation(r.Context(), userID, req.Title)
	if err != nil {
		writeError(w, "Could not create conversation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetConversationMessages retrieves the ordered message history.
func (h *ChatHandler) GetConversationMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(uint)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID, err := pathID(r)
	if err != nil {
		writeError(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	messages, err := h.ConversationService.GetConversationMessages(r.Context(), userID, conversationID)
	if err != nil {
		if errors.Is(err, conversation.ErrUnauthorized) {
			writeError(w, "Unauthorized", http.StatusForbidden)
			return
		}
		writeError(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}

	views := make([]messageView, 0, len(messages))
	for _, msg := range messages {
		view := messageView{Message: msg}
		if msg.Role == domain.RoleAssistant {
			view.ContentHTML = h.renderMarkdown(msg.Content)
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

// SendMessage handles one conversation turn: the user's message is persisted,
// a reply is generated and persisted, and both messages are returned.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(uint)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID, err := pathID(r)
	if err != nil {
		writeError(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Orchestrator.HandleTurn(r.Context(), userID, conversationID, req.Message)
	if err != nil {
		if turn.IsValidationError(err) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("[ChatHandler] Turn failed for conversation %d: %v", conversationID, err)
		writeError(w, "Could not process message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// DeleteConversation removes a conversation and its messages.
func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(uint)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID, err := pathID(r)
	if err != nil {
		writeError(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	if err := h.ConversationService.DeleteConversation(r.Context(), userID, conversationID); err != nil {
		if errors.Is(err, conversation.ErrUnauthorized) {
			writeError(w, "Unauthorized", http.StatusForbidden)
			return
		}
		writeError(w, "Could not delete conversation", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(content), &buf); err != nil {
		log.Printf("[ChatHandler] Markdown render failed: %v", err)
		return ""
	}
	return buf.String()
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
