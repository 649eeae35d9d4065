package driven

import (
	"context"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// CourseStore persists parsed courses and their chunks locally.
// Backed by SQLite. This is the readable copy of ingested material: listing
// and displaying lesson text works without a round-trip to the vector
// backend.
type CourseStore interface {
	// SaveCourse stores a course and replaces its chunks.
	SaveCourse(ctx context.Context, course *domain.Course, chunks []domain.Chunk) error

	// GetCourse retrieves a course by canonical title.
	// Returns domain.ErrNotFound for an unknown title.
	GetCourse(ctx context.Context, title string) (*domain.Course, error)

	// GetChunks retrieves a course's chunks ordered by index.
	GetChunks(ctx context.Context, title string) ([]domain.Chunk, error)

	// ListCourses returns all stored courses ordered by title.
	ListCourses(ctx context.Context) ([]domain.Course, error)

	// DeleteCourse removes a course and its chunks.
	DeleteCourse(ctx context.Context, title string) error

	// Close releases resources.
	Close() error
}
