package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func intPtr(n int) *int { return &n }

func sampleCourse() (*domain.Course, []domain.Chunk) {
	course := &domain.Course{
		Title:      "Introduction to MCP",
		Link:       "https://example.com/mcp",
		Instructor: "Jane Doe",
		Lessons: []domain.Lesson{
			{Number: 0, Title: "Getting Started", Link: "https://example.com/mcp/0"},
			{Number: 1, Title: "Tools"},
		},
	}
	chunks := []domain.Chunk{
		{Content: "chunk one", CourseTitle: course.Title, LessonNumber: intPtr(0), Index: 0},
		{Content: "chunk two", CourseTitle: course.Title, Index: 1},
	}
	return course, chunks
}

func TestStore_SaveAndGetCourse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	course, chunks := sampleCourse()
	require.NoError(t, store.SaveCourse(ctx, course, chunks))

	got, err := store.GetCourse(ctx, course.Title)
	require.NoError(t, err)
	assert.Equal(t, course.Title, got.Title)
	assert.Equal(t, course.Link, got.Link)
	assert.Equal(t, course.Instructor, got.Instructor)
	require.Len(t, got.Lessons, 2)
	assert.Equal(t, "https://example.com/mcp/0", got.Lessons[0].Link)
}

func TestStore_SaveCourse_EmptyTitle(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveCourse(context.Background(), &domain.Course{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_SaveCourse_Replaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	course, chunks := sampleCourse()
	require.NoError(t, store.SaveCourse(ctx, course, chunks))

	course.Instructor = "New Instructor"
	course.Lessons = course.Lessons[:1]
	require.NoError(t, store.SaveCourse(ctx, course, chunks[:1]))

	got, err := store.GetCourse(ctx, course.Title)
	require.NoError(t, err)
	assert.Equal(t, "New Instructor", got.Instructor)
	assert.Len(t, got.Lessons, 1)

	stored, err := store.GetChunks(ctx, course.Title)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestStore_GetCourse_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetCourse(context.Background(), "Missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_GetChunks_Ordered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	course, _ := sampleCourse()
	chunks := []domain.Chunk{
		{Content: "third", CourseTitle: course.Title, Index: 2},
		{Content: "first", CourseTitle: course.Title, LessonNumber: intPtr(0), Index: 0},
		{Content: "second", CourseTitle: course.Title, Index: 1},
	}
	require.NoError(t, store.SaveCourse(ctx, course, chunks))

	got, err := store.GetChunks(ctx, course.Title)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
	assert.Equal(t, "third", got[2].Content)

	require.NotNil(t, got[0].LessonNumber)
	assert.Equal(t, 0, *got[0].LessonNumber)
	assert.Nil(t, got[1].LessonNumber)
}

func TestStore_ListCourses_SortedByTitle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCourse(ctx, &domain.Course{Title: "Zeta"}, nil))
	require.NoError(t, store.SaveCourse(ctx, &domain.Course{
		Title:   "Alpha",
		Lessons: []domain.Lesson{{Number: 0, Title: "Intro"}},
	}, nil))

	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Alpha", courses[0].Title)
	assert.Equal(t, "Zeta", courses[1].Title)
	assert.Len(t, courses[0].Lessons, 1)
}

func TestStore_DeleteCourse_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	course, chunks := sampleCourse()
	require.NoError(t, store.SaveCourse(ctx, course, chunks))
	require.NoError(t, store.DeleteCourse(ctx, course.Title))

	_, err := store.GetCourse(ctx, course.Title)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := store.GetChunks(ctx, course.Title)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	course, chunks := sampleCourse()
	require.NoError(t, first.SaveCourse(ctx, course, chunks))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetCourse(ctx, course.Title)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Instructor)
}
