package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driving"
	"github.com/lectern-labs/lectern-cli/internal/logger"
	"github.com/lectern-labs/lectern-cli/internal/normalisers/coursedoc"
	"github.com/lectern-labs/lectern-cli/internal/postprocessors/chunker"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// watchDebounce coalesces bursts of filesystem events into one re-ingest.
const watchDebounce = 500 * time.Millisecond

// supportedExtensions lists the plain-text formats the parser accepts.
// Binary formats are expected to be converted upstream.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// IngestService loads course documents: parse, chunk, index, persist.
type IngestService struct {
	normaliser  *coursedoc.Normaliser
	chunker     *chunker.Processor
	vectorStore driven.VectorStore
	courseStore driven.CourseStore
}

// NewIngestService creates an ingest service. The course store is optional;
// when nil, ingested material is only written to the vector index.
func NewIngestService(
	vectorStore driven.VectorStore,
	courseStore driven.CourseStore,
	chunkerOpts ...chunker.Option,
) *IngestService {
	return &IngestService{
		normaliser:  coursedoc.New(),
		chunker:     chunker.New(chunkerOpts...),
		vectorStore: vectorStore,
		courseStore: courseStore,
	}
}

// IngestPath ingests a single file, or every supported file in a directory.
// Directory ingestion continues past per-file failures and reports them in
// the summary.
func (s *IngestService) IngestPath(ctx context.Context, path string) (*domain.IngestSummary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	logger.Section("Ingestion")
	logger.Debug("Path: %s", path)

	if !info.IsDir() {
		return s.ingestFile(ctx, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}

	summary := &domain.IngestSummary{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filePath := filepath.Join(path, entry.Name())
		fileSummary, err := s.ingestFile(ctx, filePath)
		if err != nil {
			logger.Error("Ingest %s failed: %v", entry.Name(), err)
			summary.FilesFailed++
			summary.RecordFailure(entry.Name(), err.Error())
			continue
		}
		summary.Merge(fileSummary)
	}

	logger.Info("Ingested: %d courses, %d chunks (%d skipped, %d failed)",
		summary.CoursesAdded, summary.ChunksAdded, summary.FilesSkipped, summary.FilesFailed)
	return summary, nil
}

// ingestFile runs the pipeline for one document.
func (s *IngestService) ingestFile(ctx context.Context, path string) (*domain.IngestSummary, error) {
	summary := &domain.IngestSummary{}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		logger.Debug("Skipping unsupported file type: %s", path)
		summary.FilesSkipped++
		return summary, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	course, lessons, err := s.normaliser.Parse(path, string(data))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	chunks := s.chunkLessons(course.Title, lessons)
	logger.Debug("Parsed %q: %d lessons, %d chunks", course.Title, len(course.Lessons), len(chunks))

	added, err := s.vectorStore.AddCourse(ctx, course, chunks)
	if err != nil {
		return nil, fmt.Errorf("index course: %w", err)
	}
	if !added {
		logger.Debug("Course %q already indexed, skipping", course.Title)
		summary.FilesSkipped++
		return summary, nil
	}

	if s.courseStore != nil {
		if err := s.courseStore.SaveCourse(ctx, course, chunks); err != nil {
			// The vector index already has the course; a local-store
			// failure should not fail the ingest.
			logger.Warn("Persist course %q locally failed: %v", course.Title, err)
		}
	}

	summary.CoursesAdded++
	summary.ChunksAdded += len(chunks)
	return summary, nil
}

// chunkLessons chunks each lesson body with a course-wide running index.
func (s *IngestService) chunkLessons(courseTitle string, lessons []coursedoc.LessonBody) []domain.Chunk {
	var chunks []domain.Chunk
	index := 0
	for _, lb := range lessons {
		lessonChunks := s.chunker.ChunkLesson(courseTitle, lb.Lesson.Number, index, lb.Body)
		index += len(lessonChunks)
		chunks = append(chunks, lessonChunks...)
	}
	return chunks
}

// Watch ingests path immediately, then re-ingests on file creation or
// modification under it. Blocks until the context is cancelled.
func (s *IngestService) Watch(ctx context.Context, path string) error {
	if _, err := s.IngestPath(ctx, path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	logger.Info("Watching %s for changes", path)

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			logger.Debug("File event: %s %s", event.Op, event.Name)
			// Debounce: editors fire several events per save.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			if _, err := s.IngestPath(ctx, path); err != nil {
				logger.Error("Re-ingest failed: %v", err)
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", watchErr)
		}
	}
}
