package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is one position in a user's portfolio. EntryPrice is stored as a
// numeric column so valuation math never goes through floats.
type Holding struct {
	gorm.Model
	UserID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"userId"`
	Ticker     string          `gorm:"type:varchar(10);index;not null" json:"ticker"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	EntryPrice decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"entryPrice"`
}
