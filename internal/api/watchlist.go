package api

import (
	"errors"
	"net/http"
	"time"

	apperrors "stockaide_go_backend/internal/errors"
	"stockaide_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func getWatchlistHandler(watchlistService *services.WatchlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		entries, err := watchlistService.GetWatchlist(user.ID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"watchlist": entries})
	}
}

// addToWatchlistHandler reports the configured confirmation window so the
// client knows how long to show the transient "added" state before reverting
// the button.
func addToWatchlistHandler(watchlistService *services.WatchlistService, confirmWindow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request services.StockSummary
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, ok := currentUser(c)
		if !ok {
			return
		}

		id, err := watchlistService.AddToWatchlist(user.ID, request)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDuplicateEntry):
				apperrors.HandleError(c, apperrors.New409Error("Stock already in watchlist"))
			case errors.Is(err, services.ErrInvalidInput):
				apperrors.HandleError(c, apperrors.New400Error("ticker is required"))
			default:
				apperrors.HandleError(c, err)
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":            id,
			"confirmMillis": confirmWindow.Milliseconds(),
		})
	}
}

func updateNoteHandler(watchlistService *services.WatchlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("invalid entry id"))
			return
		}

		var request struct {
			Note string `json:"note"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, ok := currentUser(c)
		if !ok {
			return
		}

		if err := watchlistService.UpdateNote(user.ID, entryID, request.Note); err != nil {
			handleWatchlistError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Note updated"})
	}
}

func updatePriceHandler(watchlistService *services.WatchlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("invalid entry id"))
			return
		}

		var request struct {
			CurrentPrice float64 `json:"currentPrice" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, ok := currentUser(c)
		if !ok {
			return
		}

		if err := watchlistService.UpdatePrice(user.ID, entryID, request.CurrentPrice); err != nil {
			handleWatchlistError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Price updated"})
	}
}

func removeFromWatchlistHandler(watchlistService *services.WatchlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("invalid entry id"))
			return
		}

		user, ok := currentUser(c)
		if !ok {
			return
		}

		if err := watchlistService.Remove(user.ID, entryID); err != nil {
			handleWatchlistError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Removed from watchlist"})
	}
}

func handleWatchlistError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEntryNotFound):
		apperrors.HandleError(c, apperrors.New404Error("watchlist entry not found"))
	case errors.Is(err, services.ErrInvalidInput):
		apperrors.HandleError(c, apperrors.New400Error("invalid request"))
	default:
		apperrors.HandleError(c, err)
	}
}
