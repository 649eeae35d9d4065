package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// stubEmbedder returns a fixed vector for any input.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (stubEmbedder) Dimensions() int              { return 3 }
func (stubEmbedder) ModelName() string            { return "stub" }
func (stubEmbedder) Ping(_ context.Context) error { return nil }
func (stubEmbedder) Close() error                 { return nil }

// fakeChroma is a scripted stand-in for the Chroma REST API. Collection
// ids are derived from names ("course_catalog" -> "course_catalog-id").
type fakeChroma struct {
	t *testing.T

	// Scripted responses, keyed by collection id.
	gets    map[string]getResponse
	queries map[string]queryResponse

	// Recorded requests, keyed by collection id.
	addCalls   map[string][]addRequest
	queryCalls map[string][]queryRequest

	deleted      []string
	deleteStatus int
}

func newFakeChroma(t *testing.T) (*fakeChroma, *Store) {
	f := &fakeChroma{
		t:            t,
		gets:         make(map[string]getResponse),
		queries:      make(map[string]queryResponse),
		addCalls:     make(map[string][]addRequest),
		queryCalls:   make(map[string][]queryRequest),
		deleteStatus: http.StatusOK,
	}

	server := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(server.Close)

	store, err := NewStore(Config{BaseURL: server.URL}, stubEmbedder{})
	require.NoError(t, err)
	return f, store
}

func (f *fakeChroma) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/heartbeat":
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/v1/collections/"):
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/api/v1/collections/"))
		w.WriteHeader(f.deleteStatus)

	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/collections":
		var req collectionRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(f.t, req.GetOrCreate)
		assert.Equal(f.t, "cosine", req.Metadata["hnsw:space"])
		writeJSON(w, collectionResponse{ID: req.Name + "-id", Name: req.Name})

	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/v1/collections/"):
		f.handleCollectionOp(w, r)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeChroma) handleCollectionOp(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/collections/"), "/")
	require.Len(f.t, parts, 2)
	id, op := parts[0], parts[1]

	switch op {
	case "get":
		writeJSON(w, f.gets[id])
	case "add":
		var req addRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.addCalls[id] = append(f.addCalls[id], req)
		writeJSON(w, map[string]any{})
	case "query":
		var req queryRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.queryCalls[id] = append(f.queryCalls[id], req)
		writeJSON(w, f.queries[id])
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

const (
	catalogID = catalogCollection + "-id"
	contentID = contentCollection + "-id"
)

func intPtr(n int) *int { return &n }

func TestStore_AddCourse(t *testing.T) {
	f, store := newFakeChroma(t)

	course := &domain.Course{
		Title:      "Introduction to MCP",
		Link:       "https://example.com/mcp",
		Instructor: "Jane Doe",
		Lessons: []domain.Lesson{
			{Number: 0, Title: "Getting Started", Link: "https://example.com/mcp/0"},
		},
	}
	chunks := []domain.Chunk{
		{Content: "chunk zero", CourseTitle: course.Title, LessonNumber: intPtr(0), Index: 0},
		{Content: "chunk one", CourseTitle: course.Title, Index: 1},
	}

	added, err := store.AddCourse(context.Background(), course, chunks)
	require.NoError(t, err)
	assert.True(t, added)

	require.Len(t, f.addCalls[catalogID], 1)
	catalog := f.addCalls[catalogID][0]
	assert.Equal(t, []string{"Introduction to MCP"}, catalog.IDs)
	assert.Equal(t, []string{"Introduction to MCP"}, catalog.Documents)
	meta := catalog.Metadatas[0]
	assert.Equal(t, "Jane Doe", meta["instructor"])
	assert.Equal(t, "https://example.com/mcp", meta["course_link"])
	assert.Equal(t, float64(1), meta["lesson_count"])
	assert.Contains(t, meta["lessons_json"], "Getting Started")

	require.Len(t, f.addCalls[contentID], 1)
	content := f.addCalls[contentID][0]
	assert.Equal(t, []string{"Introduction to MCP_0", "Introduction to MCP_1"}, content.IDs)
	assert.Equal(t, []string{"chunk zero", "chunk one"}, content.Documents)
	assert.Equal(t, float64(0), content.Metadatas[0]["lesson_number"])
	_, hasLesson := content.Metadatas[1]["lesson_number"]
	assert.False(t, hasLesson)
}

func TestStore_AddCourse_AlreadyCataloged(t *testing.T) {
	f, store := newFakeChroma(t)
	f.gets[catalogID] = getResponse{IDs: []string{"Introduction to MCP"}}

	added, err := store.AddCourse(context.Background(),
		&domain.Course{Title: "Introduction to MCP"}, nil)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, f.addCalls[catalogID])
	assert.Empty(t, f.addCalls[contentID])
}

func TestStore_ResolveCourseTitle(t *testing.T) {
	f, store := newFakeChroma(t)
	f.queries[catalogID] = queryResponse{
		IDs:       [][]string{{"Introduction to MCP"}},
		Distances: [][]float64{{0.3}},
	}

	title, err := store.ResolveCourseTitle(context.Background(), "mcp")
	require.NoError(t, err)
	assert.Equal(t, "Introduction to MCP", title)

	require.Len(t, f.queryCalls[catalogID], 1)
	assert.Equal(t, 1, f.queryCalls[catalogID][0].NResults)
}

func TestStore_ResolveCourseTitle_BeyondThreshold(t *testing.T) {
	f, store := newFakeChroma(t)
	f.queries[catalogID] = queryResponse{
		IDs:       [][]string{{"Introduction to MCP"}},
		Distances: [][]float64{{0.9}},
	}

	_, err := store.ResolveCourseTitle(context.Background(), "cooking")
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestStore_ResolveCourseTitle_EmptyCatalog(t *testing.T) {
	f, store := newFakeChroma(t)
	f.queries[catalogID] = queryResponse{IDs: [][]string{{}}}

	_, err := store.ResolveCourseTitle(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestStore_Search_Filtered(t *testing.T) {
	f, store := newFakeChroma(t)
	f.queries[catalogID] = queryResponse{
		IDs:       [][]string{{"Introduction to MCP"}},
		Distances: [][]float64{{0.2}},
	}
	f.queries[contentID] = queryResponse{
		IDs:       [][]string{{"Introduction to MCP_3"}},
		Documents: [][]string{{"tool definitions explained"}},
		Metadatas: [][]map[string]any{{{
			"course_title":  "Introduction to MCP",
			"lesson_number": float64(2),
			"chunk_index":   float64(3),
		}}},
		Distances: [][]float64{{0.42}},
	}

	results, err := store.Search(context.Background(), "tools", domain.SearchOptions{
		CourseName:   "mcp",
		LessonNumber: intPtr(2),
		Limit:        3,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "tool definitions explained", results[0].Chunk.Content)
	assert.Equal(t, "Introduction to MCP", results[0].Chunk.CourseTitle)
	require.NotNil(t, results[0].Chunk.LessonNumber)
	assert.Equal(t, 2, *results[0].Chunk.LessonNumber)
	assert.Equal(t, 3, results[0].Chunk.Index)
	assert.Equal(t, 0.42, results[0].Distance)

	require.Len(t, f.queryCalls[contentID], 1)
	query := f.queryCalls[contentID][0]
	assert.Equal(t, 3, query.NResults)
	clauses, ok := query.Where["$and"].([]any)
	require.True(t, ok)
	assert.Len(t, clauses, 2)
}

func TestStore_Search_SingleFilterClause(t *testing.T) {
	f, store := newFakeChroma(t)
	f.queries[contentID] = queryResponse{IDs: [][]string{{}}}

	_, err := store.Search(context.Background(), "tools", domain.SearchOptions{
		LessonNumber: intPtr(4),
	})
	require.NoError(t, err)

	query := f.queryCalls[contentID][0]
	lesson, ok := query.Where["lesson_number"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(4), lesson["$eq"])
}

func TestStore_Search_UnresolvableCourseFailsFast(t *testing.T) {
	f, store := newFakeChroma(t)
	f.queries[catalogID] = queryResponse{
		IDs:       [][]string{{"Introduction to MCP"}},
		Distances: [][]float64{{0.95}},
	}

	_, err := store.Search(context.Background(), "tools", domain.SearchOptions{
		CourseName: "knitting",
	})
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
	assert.Empty(t, f.queryCalls[contentID])
}

func TestStore_GetCourse(t *testing.T) {
	f, store := newFakeChroma(t)
	lessonsJSON, err := json.Marshal([]domain.Lesson{
		{Number: 0, Title: "Getting Started", Link: "https://example.com/mcp/0"},
		{Number: 1, Title: "Tools"},
	})
	require.NoError(t, err)
	f.gets[catalogID] = getResponse{
		IDs: []string{"Introduction to MCP"},
		Metadatas: []map[string]any{{
			"title":        "Introduction to MCP",
			"instructor":   "Jane Doe",
			"course_link":  "https://example.com/mcp",
			"lessons_json": string(lessonsJSON),
		}},
	}

	course, err := store.GetCourse(context.Background(), "Introduction to MCP")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", course.Instructor)
	require.Len(t, course.Lessons, 2)
	assert.Equal(t, "https://example.com/mcp/0", course.Lessons[0].Link)
}

func TestStore_GetCourse_NotFound(t *testing.T) {
	_, store := newFakeChroma(t)

	_, err := store.GetCourse(context.Background(), "Missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Stats(t *testing.T) {
	f, store := newFakeChroma(t)
	f.gets[catalogID] = getResponse{IDs: []string{"A", "B"}}

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, []string{"A", "B"}, stats.CourseTitles)
}

func TestStore_Clear(t *testing.T) {
	f, store := newFakeChroma(t)

	require.NoError(t, store.Clear(context.Background()))
	assert.Equal(t, []string{catalogCollection, contentCollection}, f.deleted)

	// The next operation recreates the collections.
	f.gets[catalogID] = getResponse{}
	_, err := store.Stats(context.Background())
	require.NoError(t, err)
}

func TestStore_Clear_MissingCollections(t *testing.T) {
	f, store := newFakeChroma(t)
	f.deleteStatus = http.StatusNotFound

	assert.NoError(t, store.Clear(context.Background()))
}

func TestStore_ConcurrentFirstUse(t *testing.T) {
	f, store := newFakeChroma(t)
	f.gets[catalogID] = getResponse{IDs: []string{"A"}}

	// The MCP HTTP server shares one store across requests, so the lazy
	// collection setup must tolerate simultaneous first calls.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, err := store.Stats(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 1, stats.TotalCourses)
		}()
	}
	wg.Wait()
}

func TestStore_Ping(t *testing.T) {
	_, store := newFakeChroma(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestStore_Ping_Unreachable(t *testing.T) {
	store, err := NewStore(Config{BaseURL: "http://127.0.0.1:1"}, stubEmbedder{})
	require.NoError(t, err)

	err = store.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
