package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stockaide_go_backend/internal/models"
)

// PriceData is the quote block of an analysis payload.
type PriceData struct {
	CurrentPrice  float64 `json:"currentPrice"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Insights is the AI commentary block of an analysis payload.
type Insights struct {
	EntryScore float64  `json:"entryScore"`
	Thesis     string   `json:"thesis"`
	BullCase   []string `json:"bullCase"`
	BearCase   []string `json:"bearCase"`
	KeyInsight string   `json:"keyInsight"`
}

type QualityMetrics struct {
	ROIC         string `json:"roic"`
	ROE          string `json:"roe"`
	ProfitMargin string `json:"profitMargin"`
}

type Quality struct {
	Grade       string         `json:"grade"`
	Metrics     QualityMetrics `json:"metrics"`
	Explanation string         `json:"explanation"`
}

type NewsItem struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Datetime int64  `json:"datetime"`
	URL      string `json:"url"`
}

type NetBuying struct {
	Trend       string `json:"trend"`
	Description string `json:"description"`
}

type InsiderTransaction struct {
	TransactionCode string `json:"transactionCode"`
	Name            string `json:"name"`
	Share           int64  `json:"share"`
	TransactionDate string `json:"transactionDate"`
}

type InsiderActivity struct {
	NetBuying          NetBuying            `json:"netBuying"`
	RecentTransactions []InsiderTransaction `json:"recentTransactions"`
}

// StockAnalysis is the full payload returned by the analysis service for one
// ticker.
type StockAnalysis struct {
	Ticker string `json:"ticker"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
	PriceData       PriceData       `json:"priceData"`
	Insights        Insights        `json:"insights"`
	Quality         Quality         `json:"quality"`
	RecentNews      []NewsItem      `json:"recentNews"`
	InsiderActivity InsiderActivity `json:"insiderActivity"`
}

// analyzeRequest is the request shape for the analyze endpoint.
type analyzeRequest struct {
	Ticker string `json:"ticker"`
}

// chatRequest is the request shape for the chat endpoint.
type chatRequest struct {
	Message             string               `json:"message"`
	ConversationHistory []models.ChatMessage `json:"conversationHistory"`
}

// chatResponse decodes both spellings the chat endpoint has been observed to
// use. Reply is canonical; Response is accepted as a fallback.
type chatResponse struct {
	Reply    string `json:"reply"`
	Response string `json:"response"`
}

func (r chatResponse) text() string {
	if r.Reply != "" {
		return r.Reply
	}
	return r.Response
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("analysis: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// AnalysisClient talks to the upstream stock analysis service over HTTP.
type AnalysisClient struct {
	baseURL    string
	httpClient *http.Client
}

type AnalysisOption func(*AnalysisClient)

func WithHTTPClient(httpClient *http.Client) AnalysisOption {
	return func(c *AnalysisClient) {
		c.httpClient = httpClient
	}
}

// NewAnalysisClient creates a client for the analysis service rooted at
// baseURL (e.g. "http://localhost:5000/api").
func NewAnalysisClient(baseURL string, opts ...AnalysisOption) (*AnalysisClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("analysis: base URL must not be empty")
	}
	c := &AnalysisClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Analyze fetches the full analysis payload for a ticker.
func (c *AnalysisClient) Analyze(ctx context.Context, ticker string) (*StockAnalysis, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, errors.New("analysis: ticker must not be empty")
	}

	raw, err := c.postJSON(ctx, c.baseURL+"/analysis/analyze", analyzeRequest{Ticker: ticker})
	if err != nil {
		return nil, err
	}

	var payload StockAnalysis
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return nil, fmt.Errorf("analysis: decode analyze response: %w", decErr)
	}
	if payload.Ticker == "" {
		payload.Ticker = ticker
	}
	return &payload, nil
}

// Chat sends one prompt plus prior conversation to the analysis service and
// returns the assistant's reply text.
func (c *AnalysisClient) Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("analysis: message must not be empty")
	}
	if history == nil {
		history = []models.ChatMessage{}
	}

	raw, err := c.postJSON(ctx, c.baseURL+"/analysis/chat", chatRequest{
		Message:             message,
		ConversationHistory: history,
	})
	if err != nil {
		return "", err
	}

	var payload chatResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("analysis: decode chat response: %w", decErr)
	}
	reply := payload.text()
	if reply == "" {
		return "", errors.New("analysis: empty reply in chat response")
	}
	return reply, nil
}

func (c *AnalysisClient) postJSON(ctx context.Context, url string, body interface{}) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("analysis: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("analysis: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("analysis: read response body: %w", err)
	}
	return buf, nil
}
