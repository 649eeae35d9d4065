// Package memory provides an in-process vector store used by tests and as
// a zero-dependency fallback when no ChromaDB server is configured.
// Distances are cosine distances (1 - cosine similarity), matching the
// Chroma adapter's collection space.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultMaxResults  = 5
	DefaultMaxDistance = 0.8
)

// Config holds configuration for the in-memory store.
type Config struct {
	// MaxResults caps content search results (default: 5).
	MaxResults int

	// MaxDistance is the course-resolution threshold (default: 0.8).
	MaxDistance float64
}

// catalogEntry is a course plus the embedding of its title.
type catalogEntry struct {
	course    domain.Course
	embedding []float32
}

// contentEntry is a chunk plus the embedding of its contextualized text.
type contentEntry struct {
	chunk     domain.Chunk
	embedding []float32
}

// Store is an in-memory implementation of driven.VectorStore.
type Store struct {
	mu          sync.RWMutex
	embedder    driven.EmbeddingService
	maxResults  int
	maxDistance float64
	catalog     map[string]catalogEntry
	content     []contentEntry
	titles      []string // insertion order
}

// NewStore creates a new in-memory vector store.
func NewStore(cfg Config, embedder driven.EmbeddingService) (*Store, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = DefaultMaxDistance
	}

	return &Store{
		embedder:    embedder,
		maxResults:  cfg.MaxResults,
		maxDistance: cfg.MaxDistance,
		catalog:     make(map[string]catalogEntry),
	}, nil
}

// AddCourse inserts a course and its chunks. Duplicate titles are skipped.
func (s *Store) AddCourse(ctx context.Context, course *domain.Course, chunks []domain.Chunk) (bool, error) {
	s.mu.RLock()
	_, exists := s.catalog[course.Title]
	s.mu.RUnlock()
	if exists {
		return false, nil
	}

	titleEmbedding, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		return false, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	var chunkEmbeddings [][]float32
	if len(texts) > 0 {
		chunkEmbeddings, err = s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.catalog[course.Title]; exists {
		return false, nil
	}
	s.catalog[course.Title] = catalogEntry{course: *course, embedding: titleEmbedding}
	s.titles = append(s.titles, course.Title)
	for i, c := range chunks {
		s.content = append(s.content, contentEntry{chunk: c, embedding: chunkEmbeddings[i]})
	}
	return true, nil
}

// ResolveCourseTitle returns the catalog title nearest to name, or
// domain.ErrCourseNotFound when the best match exceeds the threshold.
func (s *Store) ResolveCourseTitle(ctx context.Context, name string) (string, error) {
	embedding, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	best := ""
	bestDistance := math.MaxFloat64
	for title, entry := range s.catalog {
		d := cosineDistance(embedding, entry.embedding)
		if d < bestDistance {
			best = title
			bestDistance = d
		}
	}

	if best == "" || bestDistance > s.maxDistance {
		return "", domain.ErrCourseNotFound
	}
	return best, nil
}

// Search runs a filtered nearest-neighbour scan over the content entries.
func (s *Store) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	var courseTitle string
	if opts.CourseName != "" {
		title, err := s.ResolveCourseTitle(ctx, opts.CourseName)
		if err != nil {
			return nil, err
		}
		courseTitle = title
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.SearchResult
	for _, entry := range s.content {
		if courseTitle != "" && entry.chunk.CourseTitle != courseTitle {
			continue
		}
		if opts.LessonNumber != nil {
			if entry.chunk.LessonNumber == nil || *entry.chunk.LessonNumber != *opts.LessonNumber {
				continue
			}
		}
		results = append(results, domain.SearchResult{
			Chunk:    entry.chunk,
			Distance: cosineDistance(embedding, entry.embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetCourse returns the full metadata for a canonical title.
func (s *Store) GetCourse(_ context.Context, title string) (*domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.catalog[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	course := entry.course
	return &course, nil
}

// Stats returns the catalog read-through in insertion order.
func (s *Store) Stats(_ context.Context) (*domain.CatalogStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	titles := make([]string, len(s.titles))
	copy(titles, s.titles)
	return &domain.CatalogStats{
		TotalCourses: len(titles),
		CourseTitles: titles,
	}, nil
}

// Clear removes all catalog and content entries.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = make(map[string]catalogEntry)
	s.content = nil
	s.titles = nil
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// cosineDistance returns 1 - cosine similarity. Mismatched or zero vectors
// are maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
