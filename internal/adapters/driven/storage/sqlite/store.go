// Package sqlite provides a SQLite-backed course store. It holds the
// readable copy of ingested material: listing and displaying lesson text
// works without a round-trip to the vector backend.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CourseStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.CourseStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.lectern/data/courses.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lectern", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "courses.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveCourse stores a course and replaces its lessons and chunks.
func (s *Store) SaveCourse(ctx context.Context, course *domain.Course, chunks []domain.Chunk) error {
	if course.Title == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Delete-then-insert keeps the cascades simple: lessons and chunks
	// follow the course row.
	if _, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE title = ?`, course.Title); err != nil {
		return fmt.Errorf("deleting existing course: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO courses (title, link, instructor)
		VALUES (?, ?, ?)
	`, course.Title, course.Link, course.Instructor)
	if err != nil {
		return fmt.Errorf("saving course: %w", err)
	}

	for _, lesson := range course.Lessons {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO lessons (course_title, number, title, link)
			VALUES (?, ?, ?, ?)
		`, course.Title, lesson.Number, lesson.Title, lesson.Link)
		if err != nil {
			return fmt.Errorf("saving lesson %d: %w", lesson.Number, err)
		}
	}

	for _, chunk := range chunks {
		var lessonNumber sql.NullInt64
		if chunk.LessonNumber != nil {
			lessonNumber = sql.NullInt64{Int64: int64(*chunk.LessonNumber), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO chunks (course_title, chunk_index, lesson_number, content)
			VALUES (?, ?, ?, ?)
		`, chunk.CourseTitle, chunk.Index, lessonNumber, chunk.Content)
		if err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.Index, err)
		}
	}

	return tx.Commit()
}

// GetCourse retrieves a course by canonical title.
func (s *Store) GetCourse(ctx context.Context, title string) (*domain.Course, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT title, link, instructor FROM courses WHERE title = ?
	`, title)

	var course domain.Course
	if err := row.Scan(&course.Title, &course.Link, &course.Instructor); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning course: %w", err)
	}

	lessons, err := s.lessonsFor(ctx, title)
	if err != nil {
		return nil, err
	}
	course.Lessons = lessons

	return &course, nil
}

// lessonsFor loads a course's lessons ordered by number.
func (s *Store) lessonsFor(ctx context.Context, title string) ([]domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, title, link FROM lessons
		WHERE course_title = ? ORDER BY number
	`, title)
	if err != nil {
		return nil, fmt.Errorf("querying lessons: %w", err)
	}
	defer rows.Close()

	var lessons []domain.Lesson
	for rows.Next() {
		var lesson domain.Lesson
		if err := rows.Scan(&lesson.Number, &lesson.Title, &lesson.Link); err != nil {
			return nil, fmt.Errorf("scanning lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// GetChunks retrieves a course's chunks ordered by index.
func (s *Store) GetChunks(ctx context.Context, title string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT course_title, chunk_index, lesson_number, content FROM chunks
		WHERE course_title = ? ORDER BY chunk_index
	`, title)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var lessonNumber sql.NullInt64
		if err := rows.Scan(&chunk.CourseTitle, &chunk.Index, &lessonNumber, &chunk.Content); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if lessonNumber.Valid {
			n := int(lessonNumber.Int64)
			chunk.LessonNumber = &n
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// ListCourses returns all stored courses ordered by title.
func (s *Store) ListCourses(ctx context.Context) ([]domain.Course, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, link, instructor FROM courses ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var course domain.Course
		if err := rows.Scan(&course.Title, &course.Link, &course.Instructor); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range courses {
		lessons, err := s.lessonsFor(ctx, courses[i].Title)
		if err != nil {
			return nil, err
		}
		courses[i].Lessons = lessons
	}
	return courses, nil
}

// DeleteCourse removes a course; lessons and chunks cascade.
func (s *Store) DeleteCourse(ctx context.Context, title string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE title = ?`, title); err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	return nil
}
