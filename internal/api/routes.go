package api

import (
	"net/http"
	"time"

	"stockaide_go_backend/internal/auth"
	"stockaide_go_backend/internal/models"
	"stockaide_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	analyzer services.StockAnalyzer,
	chatService *services.ChatSessionService,
	watchlistService *services.WatchlistService,
	portfolioService *services.PortfolioService,
	userService *services.UserService,
	watchlistConfirm time.Duration,
) {
	api := r.Group("/api")
	api.Use(auth.AuthMiddleware(userService))
	{
		api.POST("/analysis/analyze", analyzeStockHandler(analyzer, chatService))
		api.POST("/analysis/chat", sendChatMessageHandler(chatService))
		api.GET("/analysis/sessions", listSessionsHandler(chatService))
		api.POST("/analysis/sessions/load", loadSessionHandler(chatService))
		api.POST("/analysis/sessions/end", endSessionHandler(chatService))
		api.DELETE("/analysis/sessions", deleteSessionHandler(chatService))

		api.GET("/watchlist", getWatchlistHandler(watchlistService))
		api.POST("/watchlist", addToWatchlistHandler(watchlistService, watchlistConfirm))
		api.PATCH("/watchlist/:id/note", updateNoteHandler(watchlistService))
		api.PATCH("/watchlist/:id/price", updatePriceHandler(watchlistService))
		api.DELETE("/watchlist/:id", removeFromWatchlistHandler(watchlistService))

		api.GET("/portfolio", getPortfolioHandler(portfolioService))
		api.GET("/portfolio/summary", getPortfolioSummaryHandler(portfolioService))
		api.POST("/portfolio", addHoldingHandler(portfolioService))
		api.DELETE("/portfolio/:id", removeHoldingHandler(portfolioService))
	}
}

// currentUser pulls the authenticated user the middleware put on the context.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return nil, false
	}
	userModel, ok := user.(*models.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cast user to *models.User"})
		return nil, false
	}
	return userModel, true
}
