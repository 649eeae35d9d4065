// Package memory provides in-process implementations of the storage ports.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure CourseStore implements the interface.
var _ driven.CourseStore = (*CourseStore)(nil)

// CourseStore is an in-memory implementation of driven.CourseStore.
type CourseStore struct {
	mu      sync.RWMutex
	courses map[string]domain.Course
	chunks  map[string][]domain.Chunk
}

// NewCourseStore creates a new in-memory course store.
func NewCourseStore() *CourseStore {
	return &CourseStore{
		courses: make(map[string]domain.Course),
		chunks:  make(map[string][]domain.Chunk),
	}
}

// SaveCourse stores a course and replaces its chunks.
func (s *CourseStore) SaveCourse(_ context.Context, course *domain.Course, chunks []domain.Chunk) error {
	if course.Title == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.Title] = *course
	s.chunks[course.Title] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// GetCourse retrieves a course by canonical title.
func (s *CourseStore) GetCourse(_ context.Context, title string) (*domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &course, nil
}

// GetChunks retrieves a course's chunks ordered by index.
func (s *CourseStore) GetChunks(_ context.Context, title string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := append([]domain.Chunk(nil), s.chunks[title]...)
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Index < chunks[j].Index
	})
	return chunks, nil
}

// ListCourses returns all stored courses ordered by title.
func (s *CourseStore) ListCourses(_ context.Context) ([]domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]domain.Course, 0, len(s.courses))
	for title := range s.courses {
		courses = append(courses, s.courses[title])
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].Title < courses[j].Title
	})
	return courses, nil
}

// DeleteCourse removes a course and its chunks.
func (s *CourseStore) DeleteCourse(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.courses, title)
	delete(s.chunks, title)
	return nil
}

// Close releases resources.
func (s *CourseStore) Close() error {
	return nil
}
