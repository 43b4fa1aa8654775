package services

import (
	"context"
	"errors"
	"strings"

	"stockaide_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrHoldingNotFound = errors.New("holding not found")

// PortfolioSummary is the valuation rollup shown at the top of the dashboard.
type PortfolioSummary struct {
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalGain     decimal.Decimal `json:"totalGain"`
	GainPercent   decimal.Decimal `json:"gainPercent"`
}

// DefaultPortfolioStore implements PortfolioStore on Postgres via gorm.
type DefaultPortfolioStore struct {
	db *gorm.DB
}

func NewPortfolioStore(db *gorm.DB) PortfolioStore {
	return &DefaultPortfolioStore{db: db}
}

func (s *DefaultPortfolioStore) ListByUser(userID uuid.UUID) ([]models.Holding, error) {
	var holdings []models.Holding
	result := s.db.Where("user_id = ?", userID).Order("created_at asc").Find(&holdings)
	if result.Error != nil {
		return nil, result.Error
	}
	return holdings, nil
}

func (s *DefaultPortfolioStore) Create(holding *models.Holding) error {
	return s.db.Create(holding).Error
}

func (s *DefaultPortfolioStore) Delete(userID uuid.UUID, holdingID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", holdingID, userID).
		Delete(&models.Holding{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHoldingNotFound
	}
	return nil
}

// PortfolioService manages holdings and computes valuations, pulling current
// prices from the analysis service.
type PortfolioService struct {
	store    PortfolioStore
	analyzer StockAnalyzer
	log      zerolog.Logger
}

func NewPortfolioService(store PortfolioStore, analyzer StockAnalyzer, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{store: store, analyzer: analyzer, log: log}
}

func (s *PortfolioService) List(userID uuid.UUID) ([]models.Holding, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	holdings, err := s.store.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	return holdings, nil
}

func (s *PortfolioService) Add(userID uuid.UUID, ticker string, quantity int64, entryPrice decimal.Decimal) (*models.Holding, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" || quantity <= 0 || entryPrice.IsNegative() || entryPrice.IsZero() {
		return nil, ErrInvalidInput
	}
	holding := &models.Holding{
		UserID:     userID,
		Ticker:     ticker,
		Quantity:   quantity,
		EntryPrice: entryPrice,
	}
	if err := s.store.Create(holding); err != nil {
		return nil, err
	}
	return holding, nil
}

func (s *PortfolioService) Remove(userID uuid.UUID, holdingID uint) error {
	if userID == uuid.Nil {
		return ErrInvalidInput
	}
	return s.store.Delete(userID, holdingID)
}

// CurrentPrices fetches one quote per distinct ticker. A ticker whose quote
// fails is left out of the map and counts as zero value, matching how the
// dashboard treats a missing price.
func (s *PortfolioService) CurrentPrices(ctx context.Context, holdings []models.Holding) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		if _, seen := prices[h.Ticker]; seen {
			continue
		}
		analysis, err := s.analyzer.Analyze(ctx, h.Ticker)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", h.Ticker).Msg("failed to fetch current price")
			continue
		}
		prices[h.Ticker] = decimal.NewFromFloat(analysis.PriceData.CurrentPrice)
	}
	return prices
}

// Summary values the holdings against current prices.
func (s *PortfolioService) Summary(ctx context.Context, userID uuid.UUID) (PortfolioSummary, error) {
	holdings, err := s.List(userID)
	if err != nil {
		return PortfolioSummary{}, err
	}
	return ComputeSummary(holdings, s.CurrentPrices(ctx, holdings)), nil
}

// ComputeSummary is the pure valuation: invested = Σ qty*entry,
// value = Σ qty*current (missing prices count zero), gain = value - invested,
// percent = gain/invested*100 rounded to two places.
func ComputeSummary(holdings []models.Holding, prices map[string]decimal.Decimal) PortfolioSummary {
	invested := decimal.Zero
	value := decimal.Zero
	for _, h := range holdings {
		qty := decimal.NewFromInt(h.Quantity)
		invested = invested.Add(qty.Mul(h.EntryPrice))
		if price, ok := prices[h.Ticker]; ok {
			value = value.Add(qty.Mul(price))
		}
	}
	gain := value.Sub(invested)
	percent := decimal.Zero
	if !invested.IsZero() {
		percent = gain.Div(invested).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return PortfolioSummary{
		TotalInvested: invested,
		TotalValue:    value,
		TotalGain:     gain,
		GainPercent:   percent,
	}
}
