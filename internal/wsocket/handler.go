package wsocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"stockaide_go_backend/internal/models"
	"stockaide_go_backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Handler struct {
	chatService *services.ChatSessionService
	upgrader    websocket.Upgrader
	log         zerolog.Logger
}

// Message is the frame exchanged over the chat socket.
type Message struct {
	Type      string               `json:"type"`
	Content   string               `json:"content,omitempty"`
	SessionID string               `json:"sessionId"`
	Messages  []models.ChatMessage `json:"messages,omitempty"`
}

func NewHandler(chatService *services.ChatSessionService, upgrader websocket.Upgrader, log zerolog.Logger) *Handler {
	return &Handler{
		chatService: chatService,
		upgrader:    upgrader,
		log:         log,
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request, user *models.User) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "No sessionId provided", http.StatusBadRequest)
		return
	}
	// A foreign session ID reads the same as a missing one.
	activation, found := h.chatService.ActivationInfo(sessionID)
	if !found || activation.UserID != user.ID.String() {
		http.Error(w, "Chat session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.log.Warn().Err(err).Msg("malformed websocket frame")
			continue
		}
		if msg.SessionID == "" {
			msg.SessionID = sessionID
		}

		switch msg.Type {
		case "message":
			h.handleChatMessage(ctx, conn, user, msg)
		case "list_sessions":
			h.sendSavedSessions(conn, user, msg.SessionID)
		case "terminate":
			h.chatService.EndSession(msg.SessionID)
			h.writeJSON(conn, Message{Type: "info", Content: "Session ended", SessionID: msg.SessionID})
			return
		default:
			h.log.Warn().Str("type", msg.Type).Msg("unknown websocket message type")
		}
	}
}

func (h *Handler) handleChatMessage(ctx context.Context, conn *websocket.Conn, user *models.User, msg Message) {
	if _, err := h.chatService.AppendUserMessage(msg.SessionID, msg.Content); err != nil {
		h.writeChatError(conn, msg.SessionID, err)
		return
	}

	messages, err := h.chatService.RequestAssistantReply(ctx, msg.SessionID)
	if err != nil {
		h.writeChatError(conn, msg.SessionID, err)
		return
	}

	h.writeJSON(conn, Message{
		Type:      "assistant",
		SessionID: msg.SessionID,
		Messages:  messages,
	})
}

func (h *Handler) sendSavedSessions(conn *websocket.Conn, user *models.User, sessionID string) {
	activation, found := h.chatService.ActivationInfo(sessionID)
	if !found {
		h.writeChatError(conn, sessionID, services.ErrActivationNotFound)
		return
	}

	sessions := h.chatService.ListSavedSessions(user.ID.String(), activation.Ticker)
	payload, err := json.Marshal(sessions)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to marshal saved sessions")
		return
	}
	h.writeJSON(conn, Message{
		Type:      "saved_sessions",
		Content:   string(payload),
		SessionID: sessionID,
	})
}

func (h *Handler) writeChatError(conn *websocket.Conn, sessionID string, err error) {
	content := "Chat error"
	switch {
	case errors.Is(err, services.ErrActivationNotFound):
		content = "Chat session not found"
	case errors.Is(err, services.ErrReplyPending):
		content = "A reply is already pending"
	}
	h.writeJSON(conn, Message{Type: "error", Content: content, SessionID: sessionID})
}

func (h *Handler) writeJSON(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Warn().Err(err).Msg("websocket write failed")
	}
}
