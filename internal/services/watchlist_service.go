package services

import (
	"errors"
	"strings"
	"time"

	"stockaide_go_backend/internal/models"

	"github.com/google/uuid"
)

var (
	ErrDuplicateEntry = errors.New("stock already in watchlist")
	ErrInvalidInput   = errors.New("invalid input")
)

// StockSummary is the slice of an analysis payload a caller hands over when
// adding a stock to the watchlist. Optional fields stay nil when the analysis
// omitted them.
type StockSummary struct {
	Ticker       string   `json:"ticker"`
	CompanyName  string   `json:"companyName"`
	EntryScore   *float64 `json:"entryScore"`
	QualityGrade *string  `json:"qualityGrade"`
	CurrentPrice *float64 `json:"currentPrice"`
}

// WatchlistService enforces the at-most-one-entry-per-user-per-ticker rule
// and translates store outcomes into distinct conditions for the API layer.
type WatchlistService struct {
	store WatchlistStore
}

func NewWatchlistService(store WatchlistStore) *WatchlistService {
	return &WatchlistService{store: store}
}

// AddToWatchlist creates a watchlist entry for the user unless one already
// exists for the ticker. A duplicate performs zero writes and fails with
// ErrDuplicateEntry so the caller can show the specific message.
func (s *WatchlistService) AddToWatchlist(userID uuid.UUID, summary StockSummary) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, ErrInvalidInput
	}
	ticker := strings.ToUpper(strings.TrimSpace(summary.Ticker))
	if ticker == "" {
		return uuid.Nil, ErrInvalidInput
	}

	existing, err := s.store.FindByUserAndTicker(userID, ticker)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return uuid.Nil, ErrDuplicateEntry
	}

	companyName := strings.TrimSpace(summary.CompanyName)
	if companyName == "" {
		companyName = ticker
	}

	now := time.Now().UTC()
	entry := &models.WatchlistEntry{
		UserID:         userID,
		Ticker:         ticker,
		CompanyName:    companyName,
		DateAdded:      now,
		LastAnalyzedAt: now,
		EntryScore:     summary.EntryScore,
		QualityGrade:   summary.QualityGrade,
		CurrentPrice:   summary.CurrentPrice,
		Note:           "",
		TargetPrice:    nil,
	}
	if err := s.store.Create(entry); err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}

func (s *WatchlistService) GetWatchlist(userID uuid.UUID) ([]models.WatchlistEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	entries, err := s.store.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.WatchlistEntry{}
	}
	return entries, nil
}

func (s *WatchlistService) UpdateNote(userID, entryID uuid.UUID, note string) error {
	if userID == uuid.Nil || entryID == uuid.Nil {
		return ErrInvalidInput
	}
	return s.store.UpdateNote(userID, entryID, note)
}

func (s *WatchlistService) UpdatePrice(userID, entryID uuid.UUID, currentPrice float64) error {
	if userID == uuid.Nil || entryID == uuid.Nil {
		return ErrInvalidInput
	}
	return s.store.UpdatePrice(userID, entryID, currentPrice)
}

func (s *WatchlistService) Remove(userID, entryID uuid.UUID) error {
	if userID == uuid.Nil || entryID == uuid.Nil {
		return ErrInvalidInput
	}
	return s.store.Delete(userID, entryID)
}
