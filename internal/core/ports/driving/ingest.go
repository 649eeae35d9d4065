package driving

import (
	"context"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// IngestService loads course documents into the indexes.
type IngestService interface {
	// IngestPath ingests a single file, or every file in a directory.
	// Directory ingestion continues past per-file failures and reports them
	// in the summary. A course whose title is already indexed is skipped.
	IngestPath(ctx context.Context, path string) (*domain.IngestSummary, error)

	// Watch ingests path immediately, then re-ingests whenever files under
	// it are created or modified. Blocks until the context is cancelled.
	Watch(ctx context.Context, path string) error
}
