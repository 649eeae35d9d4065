package driving

import (
	"context"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// SearchService provides direct content search to external actors
// (CLI, MCP) without going through the completion loop.
type SearchService interface {
	// Search runs a filtered nearest-neighbour search over course content.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
