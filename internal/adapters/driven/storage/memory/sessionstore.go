package memory

import (
	"context"
	"sync"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// DefaultMaxHistory is the default number of exchanges kept per session.
const DefaultMaxHistory = 2

// SessionStore is an in-memory implementation of driven.SessionStore.
// Sessions live in process memory only and are lost on restart; this is a
// documented limitation of the conversation model, not a defect.
type SessionStore struct {
	mu         sync.RWMutex
	maxHistory int
	sessions   map[string][]domain.Exchange
}

// NewSessionStore creates a new in-memory session store. maxHistory caps
// the exchanges kept per session; values below one fall back to the
// default.
func NewSessionStore(maxHistory int) *SessionStore {
	if maxHistory < 1 {
		maxHistory = DefaultMaxHistory
	}
	return &SessionStore{
		maxHistory: maxHistory,
		sessions:   make(map[string][]domain.Exchange),
	}
}

// Append records an exchange, then drops the oldest exchanges beyond the
// per-session maximum (FIFO truncation).
func (s *SessionStore) Append(_ context.Context, sessionID string, exchange domain.Exchange) error {
	if sessionID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exchanges := append(s.sessions[sessionID], exchange)
	if len(exchanges) > s.maxHistory {
		exchanges = exchanges[len(exchanges)-s.maxHistory:]
	}
	s.sessions[sessionID] = exchanges
	return nil
}

// Exchanges returns the session's history in chronological order.
func (s *SessionStore) Exchanges(_ context.Context, sessionID string) ([]domain.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.sessions[sessionID]
	exchanges := make([]domain.Exchange, len(stored))
	copy(exchanges, stored)
	return exchanges, nil
}

// Clear removes all history for the session.
func (s *SessionStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Close releases resources.
func (s *SessionStore) Close() error {
	return nil
}
