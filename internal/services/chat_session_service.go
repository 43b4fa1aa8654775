package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"stockaide_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FallbackAssistantMessage is appended in place of a reply whenever the
// analysis service fails. Conversational continuity wins over strict error
// surfacing, so the failure never reaches the caller as a hard error.
const FallbackAssistantMessage = "Sorry, I encountered an error. Please try again."

var (
	ErrActivationNotFound = errors.New("chat activation not found")
	ErrReplyPending       = errors.New("a reply is already pending for this session")
	ErrSessionNotFound    = errors.New("saved session not found")
)

// Activation is the live conversation for one analyzed ticker. It lives from
// the analyze action until the user leaves or re-analyzes, and is the scope
// of the one-shot persistence guard.
type Activation struct {
	ID        string                `json:"sessionId"`
	UserID    string                `json:"-"`
	Ticker    string                `json:"ticker"`
	Messages  []models.ChatMessage  `json:"messages"`
	StartedAt time.Time             `json:"startedAt"`
	analysis  *StockAnalysis
	persisted bool
	pending   bool
}

// ChatSessionService owns all live activations and commits finished exchanges
// to the session store.
type ChatSessionService struct {
	activations sync.Map
	mu          sync.Mutex
	analyzer    StockAnalyzer
	store       SessionStore
	log         zerolog.Logger
}

func NewChatSessionService(analyzer StockAnalyzer, store SessionStore, log zerolog.Logger) *ChatSessionService {
	return &ChatSessionService{
		analyzer: analyzer,
		store:    store,
		log:      log,
	}
}

// seedMessage builds the assistant message that opens every activation.
func seedMessage(analysis *StockAnalysis) models.ChatMessage {
	return models.ChatMessage{
		Role: models.RoleAssistant,
		Content: fmt.Sprintf(
			"I've analyzed %s for you. I can see the entry score is %g/10 with a quality grade of %s. What would you like to know about this stock?",
			analysis.Ticker, analysis.Insights.EntryScore, analysis.Quality.Grade,
		),
	}
}

// StartSession begins a fresh activation for a ticker: the message list is
// reset to the seed message and the persisted guard is cleared. The session
// store is not touched.
func (css *ChatSessionService) StartSession(userID string, analysis *StockAnalysis) *Activation {
	css.mu.Lock()
	defer css.mu.Unlock()

	// One activation per user+ticker; re-analyzing replaces the old one.
	css.dropActivationLocked(userID, analysis.Ticker)

	act := Activation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Ticker:    strings.ToUpper(analysis.Ticker),
		Messages:  []models.ChatMessage{seedMessage(analysis)},
		StartedAt: time.Now().UTC(),
		analysis:  analysis,
	}
	css.activations.Store(act.ID, act)
	return &act
}

func (css *ChatSessionService) dropActivationLocked(userID, ticker string) {
	ticker = strings.ToUpper(ticker)
	css.activations.Range(func(key, value interface{}) bool {
		act := value.(Activation)
		if act.UserID == userID && act.Ticker == ticker {
			css.activations.Delete(key)
		}
		return true
	})
}

// EndSession discards a live activation. Saved history is unaffected.
func (css *ChatSessionService) EndSession(activationID string) {
	css.activations.Delete(activationID)
}

// ActivationInfo returns a snapshot of a live activation.
func (css *ChatSessionService) ActivationInfo(activationID string) (Activation, bool) {
	css.mu.Lock()
	defer css.mu.Unlock()

	act, ok := css.getActivation(activationID)
	if !ok {
		return Activation{}, false
	}
	act.Messages = copyMessages(act.Messages)
	return act, true
}

func (css *ChatSessionService) getActivation(activationID string) (Activation, bool) {
	value, ok := css.activations.Load(activationID)
	if !ok {
		return Activation{}, false
	}
	return value.(Activation), true
}

// AppendUserMessage adds a user message to the active list and returns the
// updated list. Blank input is a no-op that returns the list unchanged. While
// a reply is in flight the whole send is rejected, not just the reply half;
// otherwise a concurrent send could wedge an orphaned question into the
// transcript ahead of the answer to the previous one.
func (css *ChatSessionService) AppendUserMessage(activationID, text string) ([]models.ChatMessage, error) {
	css.mu.Lock()
	defer css.mu.Unlock()

	act, ok := css.getActivation(activationID)
	if !ok {
		return nil, ErrActivationNotFound
	}
	if act.pending {
		return nil, ErrReplyPending
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return copyMessages(act.Messages), nil
	}

	act.Messages = append(act.Messages, models.ChatMessage{Role: models.RoleUser, Content: text})
	css.activations.Store(activationID, act)
	return copyMessages(act.Messages), nil
}

// RequestAssistantReply sends the pending user question to the analysis
// service and appends exactly one terminal assistant message: the reply on
// success, the fixed fallback on any upstream failure. Only one reply may be
// in flight per activation.
func (css *ChatSessionService) RequestAssistantReply(ctx context.Context, activationID string) ([]models.ChatMessage, error) {
	css.mu.Lock()
	act, ok := css.getActivation(activationID)
	if !ok {
		css.mu.Unlock()
		return nil, ErrActivationNotFound
	}
	if act.pending {
		css.mu.Unlock()
		return nil, ErrReplyPending
	}
	last := act.Messages[len(act.Messages)-1]
	if last.Role != models.RoleUser {
		css.mu.Unlock()
		return nil, errors.New("no user message awaiting a reply")
	}
	act.pending = true
	css.activations.Store(activationID, act)
	prompt := buildContextPrompt(act.analysis, last.Content)
	css.mu.Unlock()

	reply, err := css.analyzer.Chat(ctx, prompt, []models.ChatMessage{})

	css.mu.Lock()
	defer css.mu.Unlock()

	act, ok = css.getActivation(activationID)
	if !ok {
		return nil, ErrActivationNotFound
	}
	act.pending = false

	if err != nil {
		css.log.Warn().Err(err).Str("ticker", act.Ticker).Msg("chat reply failed, using fallback")
		act.Messages = append(act.Messages, models.ChatMessage{
			Role:    models.RoleAssistant,
			Content: FallbackAssistantMessage,
		})
		css.activations.Store(activationID, act)
		return copyMessages(act.Messages), nil
	}

	act.Messages = append(act.Messages, models.ChatMessage{Role: models.RoleAssistant, Content: reply})
	css.maybePersistLocked(&act)
	css.activations.Store(activationID, act)
	return copyMessages(act.Messages), nil
}

// maybePersistLocked commits the activation to the session store the first
// time the conversation grows past the seed message plus one exchange, i.e.
// once more than two messages follow the seed. The guard is one-shot per
// activation: later exchanges in the same activation are not snapshotted
// again.
func (css *ChatSessionService) maybePersistLocked(act *Activation) {
	if act.persisted || len(act.Messages)-1 <= 2 {
		return
	}
	session := models.ChatSession{
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		Messages:     copyMessages(act.Messages),
		MessageCount: len(act.Messages),
	}
	if err := css.store.Append(act.UserID, act.Ticker, session); err != nil {
		css.log.Warn().Err(err).Str("ticker", act.Ticker).Msg("failed to persist chat session")
	}
	act.persisted = true
}

// ListSavedSessions returns saved history for a ticker, newest first. Storage
// failures degrade to an empty list so chat stays usable.
func (css *ChatSessionService) ListSavedSessions(userID, ticker string) []models.ChatSession {
	sessions, err := css.store.Load(userID, ticker)
	if err != nil {
		css.log.Warn().Err(err).Str("ticker", ticker).Msg("failed to load chat history")
		return []models.ChatSession{}
	}
	if sessions == nil {
		return []models.ChatSession{}
	}
	return sessions
}

// LoadSession replaces the active message list with a saved session and marks
// the activation persisted, so re-saving the restored history verbatim is
// impossible.
func (css *ChatSessionService) LoadSession(activationID, timestamp string) ([]models.ChatMessage, error) {
	css.mu.Lock()
	defer css.mu.Unlock()

	act, ok := css.getActivation(activationID)
	if !ok {
		return nil, ErrActivationNotFound
	}

	for _, session := range css.ListSavedSessions(act.UserID, act.Ticker) {
		if session.Timestamp == timestamp {
			act.Messages = copyMessages(session.Messages)
			act.persisted = true
			css.activations.Store(activationID, act)
			return copyMessages(act.Messages), nil
		}
	}
	return nil, ErrSessionNotFound
}

// DeleteSession removes the saved session matching timestamp exactly; unknown
// timestamps are a no-op.
func (css *ChatSessionService) DeleteSession(userID, ticker, timestamp string) {
	if err := css.store.Delete(userID, ticker, timestamp); err != nil {
		css.log.Warn().Err(err).Str("ticker", ticker).Msg("failed to delete chat session")
	}
}

func copyMessages(messages []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(messages))
	copy(out, messages)
	return out
}

// buildContextPrompt embeds the analysis payload around the user's question
// so the upstream chat endpoint can answer with specifics.
func buildContextPrompt(analysis *StockAnalysis, question string) string {
	if analysis == nil {
		return question
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are helping an investor analyze %s. Here's the analysis data you have access to:\n\n", analysis.Ticker)
	fmt.Fprintf(&b, "Company: %s\n", analysis.Company.Name)
	fmt.Fprintf(&b, "Current Price: $%.2f\n", analysis.PriceData.CurrentPrice)
	fmt.Fprintf(&b, "Entry Score: %g/10\n", analysis.Insights.EntryScore)
	fmt.Fprintf(&b, "Quality Grade: %s\n\n", analysis.Quality.Grade)
	fmt.Fprintf(&b, "Investment Thesis: %s\n\n", analysis.Insights.Thesis)

	b.WriteString("Bull Case:\n")
	for i, point := range analysis.Insights.BullCase {
		fmt.Fprintf(&b, "%d. %s\n", i+1, point)
	}
	b.WriteString("\nBear Case:\n")
	for i, point := range analysis.Insights.BearCase {
		fmt.Fprintf(&b, "%d. %s\n", i+1, point)
	}

	fmt.Fprintf(&b, "\nKey Insight: %s\n\n", analysis.Insights.KeyInsight)
	b.WriteString("Financial Metrics:\n")
	fmt.Fprintf(&b, "- ROIC: %s\n", analysis.Quality.Metrics.ROIC)
	fmt.Fprintf(&b, "- ROE: %s\n", analysis.Quality.Metrics.ROE)
	fmt.Fprintf(&b, "- Profit Margin: %s\n\n", analysis.Quality.Metrics.ProfitMargin)
	fmt.Fprintf(&b, "Insider Activity: %s\n\n", analysis.InsiderActivity.NetBuying.Description)

	b.WriteString("Recent News Headlines:\n")
	news := analysis.RecentNews
	if len(news) > 3 {
		news = news[:3]
	}
	for _, item := range news {
		fmt.Fprintf(&b, "- %s\n", item.Headline)
	}

	fmt.Fprintf(&b, "\nThe investor is asking: %s\n\n", question)
	b.WriteString("Provide a helpful, concise response based on the analysis data above. Reference specific data points from the analysis when relevant.")
	return b.String()
}
