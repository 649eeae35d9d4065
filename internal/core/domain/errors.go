package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a course with the same title is already
	// indexed. Re-ingesting an existing course is a deliberate no-op.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCourseNotFound indicates a course name could not be resolved
	// against the catalog within the configured distance threshold.
	// Searches filtered by an unresolvable course fail fast with this error
	// rather than falling through to an unfiltered search.
	ErrCourseNotFound = errors.New("no matching course found")

	// ErrParse indicates a course document could not be parsed.
	// Ingestion skips the file and continues.
	ErrParse = errors.New("parse failed")

	// ErrCompletionUnavailable indicates the completion service call failed.
	// The query is surfaced as a single terminal error; there is no retry.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrIndexUnavailable indicates the vector index is unreachable or a
	// query against it failed.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Ingestion and search require embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrUnsupportedType indicates an unknown backend or provider name.
	ErrUnsupportedType = errors.New("unsupported type")
)
