package services

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"stockaide_go_backend/internal/models"
)

// MaxSavedSessions caps the history kept per ticker; inserting past the cap
// evicts the oldest session.
const MaxSavedSessions = 10

// SessionStore persists chat history per owner and ticker. It is independent
// of the relational store: losing it must never affect watchlist or portfolio
// data, and a corrupted index is treated as empty by callers.
type SessionStore interface {
	Load(ownerID, ticker string) ([]models.ChatSession, error)
	Save(ownerID, ticker string, sessions []models.ChatSession) error
	Append(ownerID, ticker string, session models.ChatSession) error
	Delete(ownerID, ticker, timestamp string) error
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// insertSession prepends a session and truncates to the cap, newest first.
func insertSession(sessions []models.ChatSession, session models.ChatSession) []models.ChatSession {
	out := make([]models.ChatSession, 0, len(sessions)+1)
	out = append(out, session)
	out = append(out, sessions...)
	if len(out) > MaxSavedSessions {
		out = out[:MaxSavedSessions]
	}
	return out
}

// removeSession drops the session whose timestamp matches exactly; unknown
// timestamps leave the slice unchanged.
func removeSession(sessions []models.ChatSession, timestamp string) []models.ChatSession {
	out := sessions[:0:0]
	for _, s := range sessions {
		if s.Timestamp != timestamp {
			out = append(out, s)
		}
	}
	return out
}

// FileSessionStore keeps one JSON index file per owner under a data
// directory. Writes go through a temp file and rename so a crash never leaves
// a half-written index.
type FileSessionStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileSessionStore(dir string) (*FileSessionStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("session store: data directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileSessionStore{dir: dir}, nil
}

func (s *FileSessionStore) indexPath(ownerID string) string {
	return filepath.Join(s.dir, ownerID+".json")
}

func (s *FileSessionStore) readIndex(ownerID string) (models.SessionIndex, error) {
	raw, err := os.ReadFile(s.indexPath(ownerID))
	if err != nil {
		if os.IsNotExist(err) {
			return models.SessionIndex{}, nil
		}
		return nil, err
	}
	var index models.SessionIndex
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, err
	}
	if index == nil {
		index = models.SessionIndex{}
	}
	return index, nil
}

func (s *FileSessionStore) writeIndex(ownerID string, index models.SessionIndex) error {
	raw, err := json.Marshal(index)
	if err != nil {
		return err
	}
	path := s.indexPath(ownerID)
	tmp, err := os.CreateTemp(s.dir, "index-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileSessionStore) Load(ownerID, ticker string) ([]models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.readIndex(ownerID)
	if err != nil {
		return nil, err
	}
	return index[normalizeTicker(ticker)], nil
}

func (s *FileSessionStore) Save(ownerID, ticker string, sessions []models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.readIndex(ownerID)
	if err != nil {
		// A corrupted index must not block new history; start over.
		index = models.SessionIndex{}
	}
	key := normalizeTicker(ticker)
	if len(sessions) == 0 {
		delete(index, key)
	} else {
		index[key] = sessions
	}
	return s.writeIndex(ownerID, index)
}

func (s *FileSessionStore) Append(ownerID, ticker string, session models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.readIndex(ownerID)
	if err != nil {
		index = models.SessionIndex{}
	}
	key := normalizeTicker(ticker)
	index[key] = insertSession(index[key], session)
	return s.writeIndex(ownerID, index)
}

func (s *FileSessionStore) Delete(ownerID, ticker, timestamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.readIndex(ownerID)
	if err != nil {
		return err
	}
	key := normalizeTicker(ticker)
	sessions, ok := index[key]
	if !ok {
		return nil
	}
	remaining := removeSession(sessions, timestamp)
	if len(remaining) == 0 {
		delete(index, key)
	} else {
		index[key] = remaining
	}
	return s.writeIndex(ownerID, index)
}

// MemorySessionStore is the in-process implementation used in tests and when
// no data directory is configured.
type MemorySessionStore struct {
	mu      sync.Mutex
	indexes map[string]models.SessionIndex
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{indexes: make(map[string]models.SessionIndex)}
}

func (s *MemorySessionStore) index(ownerID string) models.SessionIndex {
	index, ok := s.indexes[ownerID]
	if !ok {
		index = models.SessionIndex{}
		s.indexes[ownerID] = index
	}
	return index
}

func (s *MemorySessionStore) Load(ownerID, ticker string) ([]models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(ownerID)[normalizeTicker(ticker)], nil
}

func (s *MemorySessionStore) Save(ownerID, ticker string, sessions []models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeTicker(ticker)
	if len(sessions) == 0 {
		delete(s.index(ownerID), key)
		return nil
	}
	s.index(ownerID)[key] = sessions
	return nil
}

func (s *MemorySessionStore) Append(ownerID, ticker string, session models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.index(ownerID)
	key := normalizeTicker(ticker)
	index[key] = insertSession(index[key], session)
	return nil
}

func (s *MemorySessionStore) Delete(ownerID, ticker, timestamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.index(ownerID)
	key := normalizeTicker(ticker)
	sessions, ok := index[key]
	if !ok {
		return nil
	}
	remaining := removeSession(sessions, timestamp)
	if len(remaining) == 0 {
		delete(index, key)
	} else {
		index[key] = remaining
	}
	return nil
}
