package services

import (
	"errors"

	"stockaide_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEntryNotFound = errors.New("watchlist entry not found")

// DefaultWatchlistStore implements WatchlistStore on Postgres via gorm.
type DefaultWatchlistStore struct {
	db *gorm.DB
}

func NewWatchlistStore(db *gorm.DB) WatchlistStore {
	return &DefaultWatchlistStore{db: db}
}

// FindByUserAndTicker returns the entry for (userID, ticker), or nil when
// none exists.
func (s *DefaultWatchlistStore) FindByUserAndTicker(userID uuid.UUID, ticker string) (*models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	result := s.db.Where("user_id = ? AND ticker = ?", userID, ticker).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &entry, nil
}

func (s *DefaultWatchlistStore) Create(entry *models.WatchlistEntry) error {
	return s.db.Create(entry).Error
}

func (s *DefaultWatchlistStore) ListByUser(userID uuid.UUID) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	result := s.db.Where("user_id = ?", userID).Order("date_added desc").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

func (s *DefaultWatchlistStore) UpdateNote(userID, entryID uuid.UUID, note string) error {
	result := s.db.Model(&models.WatchlistEntry{}).
		Where("id = ? AND user_id = ?", entryID, userID).
		Update("note", note)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// UpdatePrice refreshes the quote on an entry and bumps lastAnalyzedAt to the
// write time.
func (s *DefaultWatchlistStore) UpdatePrice(userID, entryID uuid.UUID, currentPrice float64) error {
	result := s.db.Model(&models.WatchlistEntry{}).
		Where("id = ? AND user_id = ?", entryID, userID).
		Updates(map[string]interface{}{
			"current_price":    currentPrice,
			"last_analyzed_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *DefaultWatchlistStore) Delete(userID, entryID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.WatchlistEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}
