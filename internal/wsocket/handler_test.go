package wsocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stockaide_go_backend/internal/models"
	"stockaide_go_backend/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAnalyzer struct {
	reply string
}

func (s staticAnalyzer) Analyze(ctx context.Context, ticker string) (*services.StockAnalysis, error) {
	return &services.StockAnalysis{Ticker: ticker}, nil
}

func (s staticAnalyzer) Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	return s.reply, nil
}

func chatServerFor(h *Handler, user *models.User) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.HandleWebSocket(w, r, user)
	}))
}

func TestHandleWebSocketAttach(t *testing.T) {
	chatService := services.NewChatSessionService(
		staticAnalyzer{reply: "an answer"},
		services.NewMemorySessionStore(),
		zerolog.Nop(),
	)
	handler := NewHandler(chatService, websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}, zerolog.Nop())

	owner := &models.User{ID: uuid.New()}
	intruder := &models.User{ID: uuid.New()}
	analysis := &services.StockAnalysis{Ticker: "AAPL"}
	analysis.Insights.EntryScore = 7.5
	analysis.Quality.Grade = "A"
	activation := chatService.StartSession(owner.ID.String(), analysis)

	ownerServer := chatServerFor(handler, owner)
	defer ownerServer.Close()
	intruderServer := chatServerFor(handler, intruder)
	defer intruderServer.Close()

	t.Run("missing session id", func(t *testing.T) {
		resp, err := http.Get(ownerServer.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown session", func(t *testing.T) {
		resp, err := http.Get(ownerServer.URL + "?sessionId=" + uuid.NewString())
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("foreign session is rejected before upgrade", func(t *testing.T) {
		resp, err := http.Get(intruderServer.URL + "?sessionId=" + activation.ID)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("owner chats over the socket", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(ownerServer.URL, "http") + "?sessionId=" + activation.ID
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		defer conn.Close()

		require.NoError(t, conn.WriteJSON(Message{Type: "message", Content: "what now?"}))

		var frame Message
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, "assistant", frame.Type)
		require.Len(t, frame.Messages, 3)
		assert.Equal(t, "an answer", frame.Messages[2].Content)
	})
}
