package driven

import (
	"context"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// SessionStore keeps per-session conversation history. Histories are keyed
// strictly by session id; there is no cross-session access. Stores cap each
// session at a configured number of exchanges, evicting oldest first (FIFO
// truncation, not LRU).
//
// The default in-memory store loses all sessions on process restart. That is
// a documented limitation of the design, not a bug: sessions are cheap,
// short-lived conversational context.
type SessionStore interface {
	// Append records a completed exchange for the session, then truncates
	// the session to the most recent configured maximum.
	Append(ctx context.Context, sessionID string, exchange domain.Exchange) error

	// Exchanges returns the session's stored exchanges in chronological
	// order. An unknown session id yields an empty slice, not an error.
	Exchanges(ctx context.Context, sessionID string) ([]domain.Exchange, error)

	// Clear removes all history for the session.
	Clear(ctx context.Context, sessionID string) error

	// Close releases resources.
	Close() error
}
