// Package chroma provides a vector store adapter backed by a ChromaDB
// server's REST API. Embeddings are computed client-side through the
// configured embedding service and shipped with every write and query.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "http://localhost:8000"
	DefaultMaxResults  = 5
	DefaultMaxDistance = 0.8
	DefaultTimeout     = 30 * time.Second

	// Collection names for the two logical indexes.
	catalogCollection = "course_catalog"
	contentCollection = "course_content"
)

// Config holds configuration for the Chroma store.
type Config struct {
	// BaseURL is the Chroma server URL (default: http://localhost:8000).
	BaseURL string

	// MaxResults caps content search results (default: 5).
	MaxResults int

	// MaxDistance is the course-resolution threshold. A nearest-neighbour
	// query always returns some closest record; matches farther than this
	// are treated as not found rather than silently resolving to an
	// arbitrary course (default: 0.8).
	MaxDistance float64

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store is a ChromaDB-backed vector store with two collections: a catalog
// of course metadata keyed by title, and the searchable content chunks.
// Safe for concurrent use; the MCP HTTP server shares one Store across
// requests.
type Store struct {
	client      *http.Client
	baseURL     string
	embedder    driven.EmbeddingService
	maxResults  int
	maxDistance float64

	// mu guards the lazily resolved collection ids.
	mu        sync.Mutex
	catalogID string
	contentID string
}

// collectionRequest is the create-collection request format.
type collectionRequest struct {
	Name        string         `json:"name"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	GetOrCreate bool           `json:"get_or_create"`
}

// collectionResponse is the create-collection response format.
type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// addRequest is the add-records request format.
type addRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Metadatas  []map[string]any `json:"metadatas"`
	Documents  []string         `json:"documents"`
}

// getRequest is the get-records request format.
type getRequest struct {
	IDs     []string `json:"ids,omitempty"`
	Include []string `json:"include"`
	Limit   int      `json:"limit,omitempty"`
}

// getResponse is the get-records response format.
type getResponse struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

// queryRequest is the nearest-neighbour query request format.
type queryRequest struct {
	QueryEmbeddings [][]float32    `json:"query_embeddings"`
	NResults        int            `json:"n_results"`
	Where           map[string]any `json:"where,omitempty"`
	Include         []string       `json:"include"`
}

// queryResponse is the nearest-neighbour query response format.
// Chroma returns one inner slice per query embedding.
type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// apiError is the Chroma error response format.
type apiError struct {
	Error string `json:"error"`
}

// NewStore creates a new Chroma store. The embedding service is required;
// Chroma receives pre-computed vectors, never raw text to embed.
func NewStore(cfg Config, embedder driven.EmbeddingService) (*Store, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = DefaultMaxDistance
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		embedder:    embedder,
		maxResults:  cfg.MaxResults,
		maxDistance: cfg.MaxDistance,
	}, nil
}

// AddCourse inserts a course into the catalog and its chunks into the
// content collection. An already-cataloged title is a silent skip.
func (s *Store) AddCourse(ctx context.Context, course *domain.Course, chunks []domain.Chunk) (bool, error) {
	catalogID, contentID, err := s.collections(ctx)
	if err != nil {
		return false, err
	}

	exists, err := s.courseExists(ctx, catalogID, course.Title)
	if err != nil {
		return false, err
	}
	if exists {
		logger.Debug("Course %q already cataloged, skipping", course.Title)
		return false, nil
	}

	if err := s.addCatalogRecord(ctx, catalogID, course); err != nil {
		return false, err
	}
	if err := s.addContentRecords(ctx, contentID, chunks); err != nil {
		return false, err
	}

	logger.Info("Indexed course %q (%d chunks)", course.Title, len(chunks))
	return true, nil
}

// courseExists checks the catalog for a record with the given title.
func (s *Store) courseExists(ctx context.Context, catalogID, title string) (bool, error) {
	var resp getResponse
	err := s.post(ctx, s.collectionPath(catalogID, "get"), getRequest{
		IDs:     []string{title},
		Include: []string{},
	}, &resp)
	if err != nil {
		return false, err
	}
	return len(resp.IDs) > 0, nil
}

// addCatalogRecord writes one catalog record. The title is the record id
// and the embedded document; instructor, link, and the lesson list travel
// as metadata.
func (s *Store) addCatalogRecord(ctx context.Context, catalogID string, course *domain.Course) error {
	embedding, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed catalog record: %w", err)
	}

	lessonsJSON, err := json.Marshal(course.Lessons)
	if err != nil {
		return fmt.Errorf("marshal lessons: %w", err)
	}

	return s.post(ctx, s.collectionPath(catalogID, "add"), addRequest{
		IDs:        []string{course.Title},
		Embeddings: [][]float32{embedding},
		Documents:  []string{course.Title},
		Metadatas: []map[string]any{{
			"title":        course.Title,
			"instructor":   course.Instructor,
			"course_link":  course.Link,
			"lessons_json": string(lessonsJSON),
			"lesson_count": len(course.Lessons),
		}},
	}, nil)
}

// addContentRecords bulk-inserts chunk records with their embeddings.
func (s *Store) addContentRecords(ctx context.Context, contentID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	req := addRequest{
		IDs:        make([]string, len(chunks)),
		Embeddings: embeddings,
		Documents:  texts,
		Metadatas:  make([]map[string]any, len(chunks)),
	}
	for i, c := range chunks {
		req.IDs[i] = fmt.Sprintf("%s_%d", c.CourseTitle, c.Index)
		meta := map[string]any{
			"course_title": c.CourseTitle,
			"chunk_index":  c.Index,
		}
		if c.LessonNumber != nil {
			meta["lesson_number"] = *c.LessonNumber
		}
		req.Metadatas[i] = meta
	}

	return s.post(ctx, s.collectionPath(contentID, "add"), req, nil)
}

// ResolveCourseTitle maps a partial course name to the canonical title of
// the nearest catalog record within the distance threshold.
func (s *Store) ResolveCourseTitle(ctx context.Context, name string) (string, error) {
	catalogID, _, err := s.collections(ctx)
	if err != nil {
		return "", err
	}

	embedding, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}

	var resp queryResponse
	err = s.post(ctx, s.collectionPath(catalogID, "query"), queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        1,
		Include:         []string{"distances"},
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.IDs) == 0 || len(resp.IDs[0]) == 0 {
		return "", domain.ErrCourseNotFound
	}

	distance := resp.Distances[0][0]
	title := resp.IDs[0][0]
	logger.Debug("Resolved %q -> %q (distance %.3f, threshold %.3f)",
		name, title, distance, s.maxDistance)

	if distance > s.maxDistance {
		return "", domain.ErrCourseNotFound
	}
	return title, nil
}

// Search runs a filtered nearest-neighbour query over course content.
func (s *Store) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	_, contentID, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}

	where, err := s.buildWhere(ctx, opts)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var resp queryResponse
	err = s.post(ctx, s.collectionPath(contentID, "query"), queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        limit,
		Where:           where,
		Include:         []string{"documents", "metadatas", "distances"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	results := make([]domain.SearchResult, 0, len(resp.IDs[0]))
	for i := range resp.IDs[0] {
		results = append(results, domain.SearchResult{
			Chunk:    chunkFromRecord(resp.Documents[0][i], resp.Metadatas[0][i]),
			Distance: resp.Distances[0][i],
		})
	}
	return results, nil
}

// buildWhere resolves the course filter and assembles the exact-match
// metadata filter. An unresolvable course name fails the whole search;
// it never falls through to an unfiltered query.
func (s *Store) buildWhere(ctx context.Context, opts domain.SearchOptions) (map[string]any, error) {
	var clauses []map[string]any

	if opts.CourseName != "" {
		title, err := s.ResolveCourseTitle(ctx, opts.CourseName)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, map[string]any{"course_title": map[string]any{"$eq": title}})
	}
	if opts.LessonNumber != nil {
		clauses = append(clauses, map[string]any{"lesson_number": map[string]any{"$eq": *opts.LessonNumber}})
	}

	switch len(clauses) {
	case 0:
		return nil, nil
	case 1:
		return clauses[0], nil
	default:
		return map[string]any{"$and": clauses}, nil
	}
}

// GetCourse returns full catalog metadata for a canonical title.
func (s *Store) GetCourse(ctx context.Context, title string) (*domain.Course, error) {
	catalogID, _, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}

	var resp getResponse
	err = s.post(ctx, s.collectionPath(catalogID, "get"), getRequest{
		IDs:     []string{title},
		Include: []string{"metadatas"},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 || len(resp.Metadatas) == 0 {
		return nil, domain.ErrNotFound
	}

	return courseFromMetadata(resp.Metadatas[0])
}

// Stats returns the catalog read-through.
func (s *Store) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	catalogID, _, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}

	var resp getResponse
	if err := s.post(ctx, s.collectionPath(catalogID, "get"), getRequest{Include: []string{}}, &resp); err != nil {
		return nil, err
	}

	return &domain.CatalogStats{
		TotalCourses: len(resp.IDs),
		CourseTitles: resp.IDs,
	}, nil
}

// Clear deletes both collections. They are recreated lazily on the next
// operation, which gives a full index rebuild.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{catalogCollection, contentCollection} {
		if err := s.deleteCollection(ctx, name); err != nil {
			return err
		}
	}
	s.catalogID = ""
	s.contentID = ""
	logger.Info("Cleared vector index")
	return nil
}

// deleteCollection removes a collection by name. A missing collection is
// not an error.
func (s *Store) deleteCollection(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodDelete,
		s.baseURL+"/api/v1/collections/"+name,
		http.NoBody,
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma: %w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("chroma: delete collection %q returned status %d", name, resp.StatusCode)
	}
	return nil
}

// Ping validates the Chroma server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v1/heartbeat", http.NoBody)
	if err != nil {
		return fmt.Errorf("chroma: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma: %w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chroma: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// collections resolves the two collection ids, creating the collections on
// first use. Both use cosine distance so the resolution threshold is
// comparable across embedding models. The lock covers the whole
// check-create-assign sequence so concurrent first-touch calls agree on
// one pair of ids.
func (s *Store) collections(ctx context.Context) (catalogID, contentID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalogID != "" && s.contentID != "" {
		return s.catalogID, s.contentID, nil
	}

	catalogID, err = s.getOrCreateCollection(ctx, catalogCollection)
	if err != nil {
		return "", "", err
	}
	contentID, err = s.getOrCreateCollection(ctx, contentCollection)
	if err != nil {
		return "", "", err
	}

	s.catalogID = catalogID
	s.contentID = contentID
	return catalogID, contentID, nil
}

// getOrCreateCollection returns the collection id for a name.
func (s *Store) getOrCreateCollection(ctx context.Context, name string) (string, error) {
	var resp collectionResponse
	err := s.post(ctx, "/api/v1/collections", collectionRequest{
		Name:        name,
		Metadata:    map[string]any{"hnsw:space": "cosine"},
		GetOrCreate: true,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("chroma: no id for collection %q", name)
	}
	return resp.ID, nil
}

// collectionPath builds the API path for a collection operation.
func (s *Store) collectionPath(collectionID, op string) string {
	return fmt.Sprintf("/api/v1/collections/%s/%s", collectionID, op)
}

// post sends a JSON request and decodes the JSON response into out
// (when out is non-nil).
func (s *Store) post(ctx context.Context, path string, reqBody, out any) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+path,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma: %w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// chunkFromRecord rebuilds a domain chunk from a content record.
func chunkFromRecord(document string, meta map[string]any) domain.Chunk {
	chunk := domain.Chunk{
		Content:     document,
		CourseTitle: metaString(meta, "course_title"),
		Index:       metaInt(meta, "chunk_index"),
	}
	if _, ok := meta["lesson_number"]; ok {
		n := metaInt(meta, "lesson_number")
		chunk.LessonNumber = &n
	}
	return chunk
}

// courseFromMetadata rebuilds a course from a catalog record's metadata.
func courseFromMetadata(meta map[string]any) (*domain.Course, error) {
	course := &domain.Course{
		Title:      metaString(meta, "title"),
		Instructor: metaString(meta, "instructor"),
		Link:       metaString(meta, "course_link"),
	}

	lessonsJSON := metaString(meta, "lessons_json")
	if lessonsJSON != "" {
		if err := json.Unmarshal([]byte(lessonsJSON), &course.Lessons); err != nil {
			return nil, fmt.Errorf("unmarshal lessons: %w", err)
		}
	}
	return course, nil
}

// metaString reads a string metadata field, tolerating absence.
func metaString(meta map[string]any, key string) string {
	v, ok := meta[key].(string)
	if !ok {
		return ""
	}
	return v
}

// metaInt reads a numeric metadata field. JSON numbers decode as float64.
func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
