package state

import (
	"context"
	"errors"
	"strings"
	"sync"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

var (
	ErrInvalidSession = errors.New("session id is empty")
	ErrInvalidRole    = errors.New("message role is invalid")
)

// DefaultSessionID is used when a caller does not name a session.
const DefaultSessionID = "default"

var _ contractx.HistoryStore = (*MemoryStore)(nil)

// MemoryStore keeps every session history in process memory. Nothing
// survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]contractx.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]contractx.Message, 4)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]contractx.Message, error) {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.sessions[sessionID]), nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, msgs ...contractx.Message) error {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return err
	}
	if err := validateMessages(msgs); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[string][]contractx.Message, 4)
	}
	s.sessions[sessionID] = append(s.sessions[sessionID], msgs...)
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, sessionID string) error {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func normalizeSessionID(sessionID string) (string, error) {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return "", ErrInvalidSession
	}
	return trimmed, nil
}

func validateMessages(msgs []contractx.Message) error {
	for _, m := range msgs {
		if !m.Role.Valid() {
			return ErrInvalidRole
		}
	}
	return nil
}

func cloneMessages(msgs []contractx.Message) []contractx.Message {
	out := make([]contractx.Message, len(msgs))
	copy(out, msgs)
	return out
}
