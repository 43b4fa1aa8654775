package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "stockaide_go_backend/internal/errors"
	"stockaide_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func analyzeStockHandler(analyzer services.StockAnalyzer, chatService *services.ChatSessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Ticker string `json:"ticker" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ticker := strings.ToUpper(strings.TrimSpace(request.Ticker))
		if ticker == "" {
			apperrors.HandleError(c, apperrors.New400Error("ticker is required"))
			return
		}

		user, ok := currentUser(c)
		if !ok {
			return
		}

		analysis, err := analyzer.Analyze(c.Request.Context(), ticker)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to analyze stock"})
			return
		}

		activation := chatService.StartSession(user.ID.String(), analysis)

		c.JSON(http.StatusOK, gin.H{
			"analysis":      analysis,
			"sessionId":     activation.ID,
			"messages":      activation.Messages,
			"savedSessions": chatService.ListSavedSessions(user.ID.String(), analysis.Ticker),
		})
	}
}

// authorizedActivation resolves a live activation and enforces that it belongs
// to the authenticated user. A foreign session ID reads the same as a missing
// one.
func authorizedActivation(c *gin.Context, chatService *services.ChatSessionService, sessionID string) (services.Activation, bool) {
	user, ok := currentUser(c)
	if !ok {
		return services.Activation{}, false
	}
	activation, found := chatService.ActivationInfo(sessionID)
	if !found || activation.UserID != user.ID.String() {
		apperrors.HandleError(c, apperrors.New404Error("chat session not found"))
		return services.Activation{}, false
	}
	return activation, true
}

func sendChatMessageHandler(chatService *services.ChatSessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			SessionID string `json:"sessionId" binding:"required"`
			Message   string `json:"message" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.TrimSpace(request.Message) == "" {
			apperrors.HandleError(c, apperrors.New400Error("message must not be blank"))
			return
		}

		activation, ok := authorizedActivation(c, chatService, request.SessionID)
		if !ok {
			return
		}

		if _, err := chatService.AppendUserMessage(request.SessionID, request.Message); err != nil {
			handleChatError(c, err)
			return
		}

		// A failed upstream call still yields a normal response: the service
		// converts it into the fallback assistant message.
		messages, err := chatService.RequestAssistantReply(c.Request.Context(), request.SessionID)
		if err != nil {
			handleChatError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"messages":      messages,
			"savedSessions": chatService.ListSavedSessions(activation.UserID, activation.Ticker),
		})
	}
}

func listSessionsHandler(chatService *services.ChatSessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticker := c.Query("ticker")
		if strings.TrimSpace(ticker) == "" {
			apperrors.HandleError(c, apperrors.New400Error("ticker is required"))
			return
		}

		user, ok := currentUser(c)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"savedSessions": chatService.ListSavedSessions(user.ID.String(), ticker),
		})
	}
}

func loadSessionHandler(chatService *services.ChatSessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			SessionID string `json:"sessionId" binding:"required"`
			Timestamp string `json:"timestamp" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if _, ok := authorizedActivation(c, chatService, request.SessionID); !ok {
			return
		}

		messages, err := chatService.LoadSession(request.SessionID, request.Timestamp)
		if err != nil {
			handleChatError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"messages": messages})
	}
}

func endSessionHandler(chatService *services.ChatSessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			SessionID string `json:"sessionId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if _, ok := authorizedActivation(c, chatService, request.SessionID); !ok {
			return
		}

		chatService.EndSession(request.SessionID)
		c.JSON(http.StatusOK, gin.H{"message": "Session ended"})
	}
}

func deleteSessionHandler(chatService *services.ChatSessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Ticker    string `json:"ticker" binding:"required"`
			Timestamp string `json:"timestamp" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, ok := currentUser(c)
		if !ok {
			return
		}

		chatService.DeleteSession(user.ID.String(), request.Ticker, request.Timestamp)
		c.JSON(http.StatusOK, gin.H{
			"savedSessions": chatService.ListSavedSessions(user.ID.String(), request.Ticker),
		})
	}
}

func handleChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrActivationNotFound):
		apperrors.HandleError(c, apperrors.New404Error("chat session not found"))
	case errors.Is(err, services.ErrSessionNotFound):
		apperrors.HandleError(c, apperrors.New404Error("saved session not found"))
	case errors.Is(err, services.ErrReplyPending):
		apperrors.HandleError(c, apperrors.New409Error("a reply is already pending"))
	default:
		apperrors.HandleError(c, fmt.Errorf("chat: %w", err))
	}
}
