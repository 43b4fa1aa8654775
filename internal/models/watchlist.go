package models

import (
	"time"

	"github.com/google/uuid"
)

// WatchlistEntry is one tracked stock for one user. The pair (UserID, Ticker)
// is unique; AddToWatchlist checks before writing rather than relying on a
// database constraint so the duplicate case can be reported distinctly.
type WatchlistEntry struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index:idx_watchlist_user_ticker;not null" json:"userId"`
	Ticker         string    `gorm:"type:varchar(10);index:idx_watchlist_user_ticker;not null" json:"ticker"`
	CompanyName    string    `json:"companyName"`
	DateAdded      time.Time `json:"dateAdded"`
	LastAnalyzedAt time.Time `json:"lastAnalyzedAt"`
	EntryScore     *float64  `json:"entryScore"`
	QualityGrade   *string   `json:"qualityGrade"`
	CurrentPrice   *float64  `json:"currentPrice"`
	Note           string    `json:"note"`
	TargetPrice    *float64  `json:"targetPrice"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}
