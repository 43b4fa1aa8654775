package services

import (
	"context"

	"stockaide_go_backend/internal/models"

	"github.com/google/uuid"
)

// StockAnalyzer is the remote analysis service as seen by the rest of the
// backend.
type StockAnalyzer interface {
	Analyze(ctx context.Context, ticker string) (*StockAnalysis, error)
	Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error)
}

// WatchlistStore is the persistence layer behind the watchlist service.
type WatchlistStore interface {
	FindByUserAndTicker(userID uuid.UUID, ticker string) (*models.WatchlistEntry, error)
	Create(entry *models.WatchlistEntry) error
	ListByUser(userID uuid.UUID) ([]models.WatchlistEntry, error)
	UpdateNote(userID, entryID uuid.UUID, note string) error
	UpdatePrice(userID, entryID uuid.UUID, currentPrice float64) error
	Delete(userID, entryID uuid.UUID) error
}

// PortfolioStore is the persistence layer behind the portfolio service.
type PortfolioStore interface {
	ListByUser(userID uuid.UUID) ([]models.Holding, error)
	Create(holding *models.Holding) error
	Delete(userID uuid.UUID, holdingID uint) error
}
