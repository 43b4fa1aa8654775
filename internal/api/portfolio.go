package api

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "stockaide_go_backend/internal/errors"
	"stockaide_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func getPortfolioHandler(portfolioService *services.PortfolioService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		holdings, err := portfolioService.List(user.ID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		prices := portfolioService.CurrentPrices(c.Request.Context(), holdings)

		portfolio := make([]gin.H, len(holdings))
		for i, h := range holdings {
			entry := gin.H{
				"id":           h.ID,
				"ticker":       h.Ticker,
				"quantity":     h.Quantity,
				"entry_price":  h.EntryPrice,
				"currentPrice": nil,
			}
			if price, found := prices[h.Ticker]; found {
				entry["currentPrice"] = price
			}
			portfolio[i] = entry
		}

		c.JSON(http.StatusOK, gin.H{"portfolio": portfolio})
	}
}

func getPortfolioSummaryHandler(portfolioService *services.PortfolioService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		summary, err := portfolioService.Summary(c.Request.Context(), user.ID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}

func addHoldingHandler(portfolioService *services.PortfolioService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Ticker     string          `json:"ticker" binding:"required"`
			Quantity   int64           `json:"quantity" binding:"required"`
			EntryPrice decimal.Decimal `json:"entryPrice" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, ok := currentUser(c)
		if !ok {
			return
		}

		holding, err := portfolioService.Add(user.ID, request.Ticker, request.Quantity, request.EntryPrice)
		if err != nil {
			if errors.Is(err, services.ErrInvalidInput) {
				apperrors.HandleError(c, apperrors.New400Error("All fields required"))
				return
			}
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": holding.ID})
	}
}

func removeHoldingHandler(portfolioService *services.PortfolioService) gin.HandlerFunc {
	return func(c *gin.Context) {
		holdingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("invalid holding id"))
			return
		}

		user, ok := currentUser(c)
		if !ok {
			return
		}

		if err := portfolioService.Remove(user.ID, uint(holdingID)); err != nil {
			if errors.Is(err, services.ErrHoldingNotFound) {
				apperrors.HandleError(c, apperrors.New404Error("holding not found"))
				return
			}
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Stock removed"})
	}
}
