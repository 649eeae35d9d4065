package driving

import (
	"context"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// AssistantService answers questions about indexed course material.
type AssistantService interface {
	// Answer runs one query through the tool-calling loop: render history,
	// complete (with at most one tool round), record the exchange, and
	// return the reply with its sources. An empty sessionID starts a new
	// session; the assigned id is returned on the answer.
	Answer(ctx context.Context, sessionID, query string) (*domain.Answer, error)

	// Stats returns the catalog read-through: course count and titles.
	Stats(ctx context.Context) (*domain.CatalogStats, error)

	// Outline returns the full catalog metadata for a (possibly partial)
	// course name.
	Outline(ctx context.Context, courseName string) (*domain.Course, error)
}
