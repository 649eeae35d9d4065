package services

import (
	"context"
	"fmt"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// mockCompletion replays scripted completions and records every request.
type mockCompletion struct {
	replies  []*driven.Completion
	err      error
	requests []driven.CompletionRequest
}

func (m *mockCompletion) Complete(_ context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return &driven.Completion{Text: "default", StopReason: driven.StopEndTurn}, nil
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

func (m *mockCompletion) ModelName() string            { return "mock-model" }
func (m *mockCompletion) Ping(_ context.Context) error { return nil }
func (m *mockCompletion) Close() error                 { return nil }

// mockVectorStore serves canned search results and records calls.
type mockVectorStore struct {
	courses      map[string]*domain.Course
	resolved     string
	resolveErr   error
	results      []domain.SearchResult
	searchErr    error
	addCalls     int
	addedCourses []string
	addedChunks  []domain.Chunk
	addResult    bool
	clearCalls   int
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{
		courses:   make(map[string]*domain.Course),
		addResult: true,
	}
}

func (m *mockVectorStore) AddCourse(_ context.Context, course *domain.Course, chunks []domain.Chunk) (bool, error) {
	m.addCalls++
	if _, exists := m.courses[course.Title]; exists {
		return false, nil
	}
	m.courses[course.Title] = course
	m.addedCourses = append(m.addedCourses, course.Title)
	m.addedChunks = append(m.addedChunks, chunks...)
	return m.addResult, nil
}

func (m *mockVectorStore) ResolveCourseTitle(_ context.Context, _ string) (string, error) {
	if m.resolveErr != nil {
		return "", m.resolveErr
	}
	return m.resolved, nil
}

func (m *mockVectorStore) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockVectorStore) GetCourse(_ context.Context, title string) (*domain.Course, error) {
	course, ok := m.courses[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return course, nil
}

func (m *mockVectorStore) Stats(_ context.Context) (*domain.CatalogStats, error) {
	titles := make([]string, 0, len(m.addedCourses))
	titles = append(titles, m.addedCourses...)
	return &domain.CatalogStats{TotalCourses: len(titles), CourseTitles: titles}, nil
}

func (m *mockVectorStore) Clear(_ context.Context) error {
	m.clearCalls++
	return nil
}

func (m *mockVectorStore) Ping(_ context.Context) error { return nil }
func (m *mockVectorStore) Close() error                 { return nil }

// mockPromptStore returns a fixed system prompt.
type mockPromptStore struct {
	prompt string
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	if m.prompt == "" {
		return "You are a course assistant.", nil
	}
	return m.prompt, nil
}

func (m *mockPromptStore) Reload() {}

// echoTool is a trivial tool for registry tests.
type echoTool struct {
	name string
	err  error
}

func (t *echoTool) Definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        t.name,
		Description: "echoes its input",
		InputSchema: map[string]any{"type": "object"},
	}
}

func (t *echoTool) Execute(_ context.Context, input map[string]any) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return fmt.Sprintf("echo: %v", input["text"]), nil
}
