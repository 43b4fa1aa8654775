package models

// Chat message roles. The analysis service only ever produces assistant
// messages; everything typed by a person is a user message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single entry in a conversation. Messages are never edited
// once appended.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatSession is one saved, immutable snapshot of a conversation about a
// ticker. Timestamp is the RFC 3339 creation time and doubles as the
// session's identifier within its ticker's history.
type ChatSession struct {
	Timestamp    string        `json:"timestamp"`
	Messages     []ChatMessage `json:"messages"`
	MessageCount int           `json:"messageCount"`
}

// SessionIndex maps an upper-cased ticker symbol to its saved sessions,
// newest first. At most ten sessions are kept per ticker.
type SessionIndex map[string][]ChatSession
