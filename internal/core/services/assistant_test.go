package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagememory "github.com/lectern-labs/lectern-cli/internal/adapters/driven/storage/memory"
	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

func newTestAssistant(completion *mockCompletion, store *mockVectorStore) *AssistantService {
	registry := NewToolRegistry()
	registry.Register(NewCourseSearchTool(store, registry))
	registry.Register(NewCourseOutlineTool(store, registry))

	generator := NewAnswerGenerator(completion, registry)
	return NewAssistantService(
		generator,
		registry,
		store,
		storagememory.NewSessionStore(2),
		&mockPromptStore{},
	)
}

func TestAssistantService_Answer_AssignsSessionID(t *testing.T) {
	completion := &mockCompletion{
		replies: []*driven.Completion{
			{Text: "hello", StopReason: driven.StopEndTurn},
		},
	}
	assistant := newTestAssistant(completion, newMockVectorStore())

	answer, err := assistant.Answer(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.SessionID)
	assert.Equal(t, "hello", answer.Text)
}

func TestAssistantService_Answer_EmptyQuery(t *testing.T) {
	assistant := newTestAssistant(&mockCompletion{}, newMockVectorStore())
	_, err := assistant.Answer(context.Background(), "s1", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssistantService_Answer_HistoryRendered(t *testing.T) {
	completion := &mockCompletion{
		replies: []*driven.Completion{
			{Text: "first answer", StopReason: driven.StopEndTurn},
			{Text: "second answer", StopReason: driven.StopEndTurn},
		},
	}
	assistant := newTestAssistant(completion, newMockVectorStore())
	ctx := context.Background()

	answer, err := assistant.Answer(ctx, "", "first question")
	require.NoError(t, err)

	_, err = assistant.Answer(ctx, answer.SessionID, "second question")
	require.NoError(t, err)

	require.Len(t, completion.requests, 2)

	// First query has no history in the system prompt.
	assert.NotContains(t, completion.requests[0].System, "Previous conversation")

	// Second query carries the first exchange as a rendered transcript.
	second := completion.requests[1].System
	assert.Contains(t, second, "Previous conversation:")
	assert.Contains(t, second, "User: first question")
	assert.Contains(t, second, "Assistant: first answer")
}

func TestAssistantService_Answer_SessionsIsolated(t *testing.T) {
	completion := &mockCompletion{
		replies: []*driven.Completion{
			{Text: "a1", StopReason: driven.StopEndTurn},
			{Text: "a2", StopReason: driven.StopEndTurn},
		},
	}
	assistant := newTestAssistant(completion, newMockVectorStore())
	ctx := context.Background()

	first, err := assistant.Answer(ctx, "", "only in session one")
	require.NoError(t, err)

	second, err := assistant.Answer(ctx, "", "fresh session")
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)

	assert.NotContains(t, completion.requests[1].System, "only in session one")
}

func TestAssistantService_Answer_SourcesResetBetweenQueries(t *testing.T) {
	store := newMockVectorStore()
	store.results = []domain.SearchResult{
		{Chunk: domain.Chunk{
			Content:      "content",
			CourseTitle:  "Course A",
			LessonNumber: lessonPtr(1),
		}},
	}

	completion := &mockCompletion{
		replies: []*driven.Completion{
			// First query invokes the search tool.
			{
				StopReason: driven.StopToolUse,
				ToolUses: []driven.ToolUse{
					{ID: "tu-1", Name: "search_course_content", Input: map[string]any{"query": "x"}},
				},
			},
			{Text: "answer with sources", StopReason: driven.StopEndTurn},
			// Second query answers directly.
			{Text: "direct answer", StopReason: driven.StopEndTurn},
		},
	}
	assistant := newTestAssistant(completion, store)
	ctx := context.Background()

	first, err := assistant.Answer(ctx, "s1", "needs search")
	require.NoError(t, err)
	require.Len(t, first.Sources, 1)
	assert.Equal(t, "Course A", first.Sources[0].CourseTitle)

	second, err := assistant.Answer(ctx, "s1", "general question")
	require.NoError(t, err)
	assert.Empty(t, second.Sources)
}

func TestAssistantService_Answer_CompletionFailure(t *testing.T) {
	completion := &mockCompletion{err: assert.AnError}
	assistant := newTestAssistant(completion, newMockVectorStore())

	_, err := assistant.Answer(context.Background(), "s1", "anything")
	assert.ErrorIs(t, err, domain.ErrCompletionUnavailable)
}

func TestAssistantService_Stats(t *testing.T) {
	store := newMockVectorStore()
	store.addedCourses = []string{"A", "B"}

	assistant := newTestAssistant(&mockCompletion{}, store)
	stats, err := assistant.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, []string{"A", "B"}, stats.CourseTitles)
}

func TestAssistantService_Outline(t *testing.T) {
	store := newMockVectorStore()
	store.resolved = "Full Title"
	store.courses["Full Title"] = &domain.Course{Title: "Full Title"}

	assistant := newTestAssistant(&mockCompletion{}, store)
	course, err := assistant.Outline(context.Background(), "full")
	require.NoError(t, err)
	assert.Equal(t, "Full Title", course.Title)
}

func TestAssistantService_Outline_NotFound(t *testing.T) {
	store := newMockVectorStore()
	store.resolveErr = domain.ErrCourseNotFound

	assistant := newTestAssistant(&mockCompletion{}, store)
	_, err := assistant.Outline(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}
