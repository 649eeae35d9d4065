package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagememory "github.com/lectern-labs/lectern-cli/internal/adapters/driven/storage/memory"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

const ingestDoc = `Course Title: Introduction to MCP
Course Link: https://example.com/mcp
Course Instructor: Jane Doe

Lesson 0: Getting Started
Lesson Link: https://example.com/mcp/lesson0
Welcome to the course. This lesson covers setup.

Lesson 1: Tools and Resources
This lesson covers the protocol primitives.
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestService_IngestPath_SingleFile(t *testing.T) {
	store := newMockVectorStore()
	courseStore := storagememory.NewCourseStore()
	svc := NewIngestService(store, courseStore)

	path := writeFile(t, t.TempDir(), "mcp.txt", ingestDoc)

	summary, err := svc.IngestPath(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CoursesAdded)
	assert.Equal(t, len(store.addedChunks), summary.ChunksAdded)
	require.NotEmpty(t, store.addedChunks)

	// Chunk indexes run across lessons without resets.
	for i, chunk := range store.addedChunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, "Introduction to MCP", chunk.CourseTitle)
	}

	// Ingested material is mirrored into the local course store.
	course, err := courseStore.GetCourse(context.Background(), "Introduction to MCP")
	require.NoError(t, err)
	assert.Len(t, course.Lessons, 2)
}

func TestIngestService_IngestPath_Directory(t *testing.T) {
	store := newMockVectorStore()
	svc := NewIngestService(store, nil)

	dir := t.TempDir()
	writeFile(t, dir, "mcp.txt", ingestDoc)
	writeFile(t, dir, "slides.pdf", "%PDF-1.4 binary stuff")
	writeFile(t, dir, "broken.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	summary, err := svc.IngestPath(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CoursesAdded)
	assert.Equal(t, 1, summary.FilesSkipped)
	assert.Equal(t, 1, summary.FilesFailed)
	require.Len(t, summary.Failures, 1)
	assert.NotEmpty(t, summary.Failures["broken.txt"])
}

func TestIngestService_IngestPath_FailureLoggedWithoutVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	svc := NewIngestService(newMockVectorStore(), nil)

	dir := t.TempDir()
	writeFile(t, dir, "broken.txt", "")

	_, err := svc.IngestPath(context.Background(), dir)
	require.NoError(t, err)

	// Per-file failures must reach the user even with --verbose off.
	assert.Contains(t, buf.String(), "[ERROR] Ingest broken.txt failed")
}

func TestIngestService_IngestPath_DuplicateCourse(t *testing.T) {
	store := newMockVectorStore()
	svc := NewIngestService(store, nil)

	dir := t.TempDir()
	path := writeFile(t, dir, "mcp.txt", ingestDoc)
	ctx := context.Background()

	first, err := svc.IngestPath(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CoursesAdded)

	second, err := svc.IngestPath(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 0, second.CoursesAdded)
	assert.Equal(t, 1, second.FilesSkipped)
	assert.Equal(t, 2, store.addCalls)
}

func TestIngestService_IngestPath_UnsupportedFile(t *testing.T) {
	svc := NewIngestService(newMockVectorStore(), nil)

	path := writeFile(t, t.TempDir(), "notes.docx", "not a course")

	summary, err := svc.IngestPath(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CoursesAdded)
	assert.Equal(t, 1, summary.FilesSkipped)
}

func TestIngestService_IngestPath_MissingPath(t *testing.T) {
	svc := NewIngestService(newMockVectorStore(), nil)

	_, err := svc.IngestPath(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
