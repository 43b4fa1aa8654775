package services_test

import (
	"context"

	"stockaide_go_backend/internal/models"
	"stockaide_go_backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockStockAnalyzer struct {
	mock.Mock
}

func (m *MockStockAnalyzer) Analyze(ctx context.Context, ticker string) (*services.StockAnalysis, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.StockAnalysis), args.Error(1)
}

func (m *MockStockAnalyzer) Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	args := m.Called(ctx, message, history)
	return args.String(0), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Load(ownerID, ticker string) ([]models.ChatSession, error) {
	args := m.Called(ownerID, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatSession), args.Error(1)
}

func (m *MockSessionStore) Save(ownerID, ticker string, sessions []models.ChatSession) error {
	args := m.Called(ownerID, ticker, sessions)
	return args.Error(0)
}

func (m *MockSessionStore) Append(ownerID, ticker string, session models.ChatSession) error {
	args := m.Called(ownerID, ticker, session)
	return args.Error(0)
}

func (m *MockSessionStore) Delete(ownerID, ticker, timestamp string) error {
	args := m.Called(ownerID, ticker, timestamp)
	return args.Error(0)
}

type MockWatchlistStore struct {
	mock.Mock
}

func (m *MockWatchlistStore) FindByUserAndTicker(userID uuid.UUID, ticker string) (*models.WatchlistEntry, error) {
	args := m.Called(userID, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WatchlistEntry), args.Error(1)
}

func (m *MockWatchlistStore) Create(entry *models.WatchlistEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockWatchlistStore) ListByUser(userID uuid.UUID) ([]models.WatchlistEntry, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WatchlistEntry), args.Error(1)
}

func (m *MockWatchlistStore) UpdateNote(userID, entryID uuid.UUID, note string) error {
	args := m.Called(userID, entryID, note)
	return args.Error(0)
}

func (m *MockWatchlistStore) UpdatePrice(userID, entryID uuid.UUID, currentPrice float64) error {
	args := m.Called(userID, entryID, currentPrice)
	return args.Error(0)
}

func (m *MockWatchlistStore) Delete(userID, entryID uuid.UUID) error {
	args := m.Called(userID, entryID)
	return args.Error(0)
}

type MockPortfolioStore struct {
	mock.Mock
}

func (m *MockPortfolioStore) ListByUser(userID uuid.UUID) ([]models.Holding, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Holding), args.Error(1)
}

func (m *MockPortfolioStore) Create(holding *models.Holding) error {
	args := m.Called(holding)
	return args.Error(0)
}

func (m *MockPortfolioStore) Delete(userID uuid.UUID, holdingID uint) error {
	args := m.Called(userID, holdingID)
	return args.Error(0)
}
