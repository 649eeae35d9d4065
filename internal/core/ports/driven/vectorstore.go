package driven

import (
	"context"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// VectorStore provides the two logical indexes over an embedding-backed
// nearest-neighbour service: a catalog index with one record per course, and
// a content index with one record per chunk.
//
// Implementations may include:
//   - ChromaDB over its REST API
//   - An in-memory cosine-distance store (tests, offline fallback)
//
// Concurrency guarantees for the underlying index are delegated entirely to
// the backing service; this port does not strengthen them.
type VectorStore interface {
	// AddCourse inserts a course into the catalog and bulk-inserts its
	// chunks into the content index. If a course with the same title is
	// already cataloged, nothing is written and added is false. This is the
	// idempotence contract for re-ingestion, not an error.
	AddCourse(ctx context.Context, course *domain.Course, chunks []domain.Chunk) (added bool, err error)

	// ResolveCourseTitle maps a partial or fuzzy course name to the
	// canonical title of the nearest catalog entry. When the best match's
	// distance exceeds the configured threshold, it returns
	// domain.ErrCourseNotFound instead of an arbitrary nearest record.
	ResolveCourseTitle(ctx context.Context, name string) (string, error)

	// Search runs a nearest-neighbour query over the content index.
	// When opts.CourseName is set it is resolved first; an unresolvable name
	// fails the whole search with domain.ErrCourseNotFound. Resolved title
	// and lesson number are applied as exact-match metadata filters.
	// Results are ordered by ascending distance, at most opts.Limit (or the
	// store's configured maximum when zero).
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// GetCourse returns the full catalog metadata for a canonical title,
	// including lesson titles and links. Returns domain.ErrNotFound for an
	// unknown title.
	GetCourse(ctx context.Context, title string) (*domain.Course, error)

	// Stats returns the catalog read-through: total course count and all
	// canonical titles.
	Stats(ctx context.Context) (*domain.CatalogStats, error)

	// Clear removes every record from both indexes. Used for full rebuilds.
	Clear(ctx context.Context) error

	// Ping validates the backing service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
