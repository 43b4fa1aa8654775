package services_test

import (
	"context"
	"errors"
	"testing"

	"stockaide_go_backend/internal/models"
	"stockaide_go_backend/internal/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPortfolioService(store services.PortfolioStore, analyzer services.StockAnalyzer) *services.PortfolioService {
	return services.NewPortfolioService(store, analyzer, zerolog.Nop())
}

func priceAnalysis(ticker string, price float64) *services.StockAnalysis {
	return &services.StockAnalysis{
		Ticker:    ticker,
		PriceData: services.PriceData{CurrentPrice: price},
	}
}

func TestComputeSummary(t *testing.T) {
	holdings := []models.Holding{
		{Ticker: "AAPL", Quantity: 10, EntryPrice: decimal.RequireFromString("150.00")},
		{Ticker: "MSFT", Quantity: 5, EntryPrice: decimal.RequireFromString("300.00")},
	}

	t.Run("values holdings against current prices", func(t *testing.T) {
		prices := map[string]decimal.Decimal{
			"AAPL": decimal.RequireFromString("180.00"),
			"MSFT": decimal.RequireFromString("330.00"),
		}

		summary := services.ComputeSummary(holdings, prices)

		// invested = 10*150 + 5*300 = 3000, value = 10*180 + 5*330 = 3450
		assert.True(t, summary.TotalInvested.Equal(decimal.RequireFromString("3000")))
		assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("3450")))
		assert.True(t, summary.TotalGain.Equal(decimal.RequireFromString("450")))
		assert.True(t, summary.GainPercent.Equal(decimal.RequireFromString("15")))
	})

	t.Run("missing price counts as zero value", func(t *testing.T) {
		prices := map[string]decimal.Decimal{
			"AAPL": decimal.RequireFromString("180.00"),
		}

		summary := services.ComputeSummary(holdings, prices)

		assert.True(t, summary.TotalInvested.Equal(decimal.RequireFromString("3000")))
		assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("1800")))
		assert.True(t, summary.TotalGain.Equal(decimal.RequireFromString("-1200")))
		assert.True(t, summary.GainPercent.Equal(decimal.RequireFromString("-40")))
	})

	t.Run("percent rounds to two places", func(t *testing.T) {
		one := []models.Holding{
			{Ticker: "AAPL", Quantity: 3, EntryPrice: decimal.RequireFromString("100.00")},
		}
		prices := map[string]decimal.Decimal{"AAPL": decimal.RequireFromString("103.33")}

		summary := services.ComputeSummary(one, prices)

		assert.True(t, summary.GainPercent.Equal(decimal.RequireFromString("3.33")),
			"got %s", summary.GainPercent)
	})

	t.Run("empty portfolio has zero percent", func(t *testing.T) {
		summary := services.ComputeSummary(nil, nil)
		assert.True(t, summary.TotalInvested.IsZero())
		assert.True(t, summary.TotalValue.IsZero())
		assert.True(t, summary.GainPercent.IsZero())
	})
}

func TestCurrentPrices(t *testing.T) {
	analyzer := new(MockStockAnalyzer)
	svc := newPortfolioService(new(MockPortfolioStore), analyzer)

	holdings := []models.Holding{
		{Ticker: "AAPL", Quantity: 10},
		{Ticker: "AAPL", Quantity: 5},
		{Ticker: "MSFT", Quantity: 2},
	}

	analyzer.On("Analyze", mock.Anything, "AAPL").Return(priceAnalysis("AAPL", 180), nil).Once()
	analyzer.On("Analyze", mock.Anything, "MSFT").Return(nil, errors.New("quote unavailable")).Once()

	prices := svc.CurrentPrices(context.Background(), holdings)

	// One fetch per distinct ticker, failed tickers absent from the map.
	require.Len(t, prices, 1)
	assert.True(t, prices["AAPL"].Equal(decimal.RequireFromString("180")))
	analyzer.AssertExpectations(t)
}

func TestPortfolioAdd(t *testing.T) {
	userID := uuid.New()

	t.Run("normalizes ticker and creates", func(t *testing.T) {
		store := new(MockPortfolioStore)
		store.On("Create", mock.MatchedBy(func(h *models.Holding) bool {
			return h.UserID == userID && h.Ticker == "AAPL" && h.Quantity == 10
		})).Return(nil).Once()
		svc := newPortfolioService(store, new(MockStockAnalyzer))

		holding, err := svc.Add(userID, " aapl ", 10, decimal.RequireFromString("150.00"))
		require.NoError(t, err)
		assert.Equal(t, "AAPL", holding.Ticker)
		store.AssertExpectations(t)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		store := new(MockPortfolioStore)
		svc := newPortfolioService(store, new(MockStockAnalyzer))

		cases := []struct {
			name     string
			userID   uuid.UUID
			ticker   string
			quantity int64
			price    decimal.Decimal
		}{
			{"nil user", uuid.Nil, "AAPL", 10, decimal.RequireFromString("1")},
			{"blank ticker", userID, "  ", 10, decimal.RequireFromString("1")},
			{"zero quantity", userID, "AAPL", 0, decimal.RequireFromString("1")},
			{"negative quantity", userID, "AAPL", -3, decimal.RequireFromString("1")},
			{"zero price", userID, "AAPL", 10, decimal.Zero},
			{"negative price", userID, "AAPL", 10, decimal.RequireFromString("-1")},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Add(tc.userID, tc.ticker, tc.quantity, tc.price)
				assert.ErrorIs(t, err, services.ErrInvalidInput)
			})
		}
		store.AssertNotCalled(t, "Create", mock.Anything)
	})
}

func TestPortfolioListAndRemove(t *testing.T) {
	userID := uuid.New()

	t.Run("nil list becomes empty slice", func(t *testing.T) {
		store := new(MockPortfolioStore)
		store.On("ListByUser", userID).Return(nil, nil).Once()
		svc := newPortfolioService(store, new(MockStockAnalyzer))

		holdings, err := svc.List(userID)
		require.NoError(t, err)
		assert.NotNil(t, holdings)
		assert.Empty(t, holdings)
	})

	t.Run("remove missing holding", func(t *testing.T) {
		store := new(MockPortfolioStore)
		store.On("Delete", userID, uint(42)).Return(services.ErrHoldingNotFound).Once()
		svc := newPortfolioService(store, new(MockStockAnalyzer))

		assert.ErrorIs(t, svc.Remove(userID, 42), services.ErrHoldingNotFound)
	})
}

func TestPortfolioSummary(t *testing.T) {
	userID := uuid.New()
	store := new(MockPortfolioStore)
	analyzer := new(MockStockAnalyzer)
	svc := newPortfolioService(store, analyzer)

	store.On("ListByUser", userID).Return([]models.Holding{
		{Ticker: "AAPL", Quantity: 10, EntryPrice: decimal.RequireFromString("150.00")},
	}, nil).Once()
	analyzer.On("Analyze", mock.Anything, "AAPL").Return(priceAnalysis("AAPL", 180), nil).Once()

	summary, err := svc.Summary(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, summary.TotalGain.Equal(decimal.RequireFromString("300")))
}
