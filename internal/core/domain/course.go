package domain

// Course represents a single course extracted from a course document.
// The title is the unique key: two documents with the same extracted title
// refer to the same course, and the second one is skipped at ingestion.
type Course struct {
	// Title is the human-readable course title and the unique key.
	Title string

	// Link is the course URL, if the document declared one.
	Link string

	// Instructor is the course instructor, if the document declared one.
	Instructor string

	// Lessons are the lessons in document order.
	Lessons []Lesson
}

// Lesson is a single lesson within a course. Lesson numbers are unique
// within their owning course.
type Lesson struct {
	// Number is the lesson number as written in the document.
	Number int

	// Title is the lesson title.
	Title string

	// Link is the lesson URL, if the document declared one.
	Link string
}

// Lesson returns the lesson with the given number, or nil if the course
// has no such lesson.
func (c *Course) Lesson(number int) *Lesson {
	for i := range c.Lessons {
		if c.Lessons[i].Number == number {
			return &c.Lessons[i]
		}
	}
	return nil
}

// Chunk is the atomic unit of semantic search: a fixed-size, overlapping,
// contextualized slice of lesson text. Chunks are immutable once created.
type Chunk struct {
	// Content is the chunk text including its contextual prefix.
	Content string

	// CourseTitle identifies the owning course.
	CourseTitle string

	// LessonNumber identifies the owning lesson. Nil when the chunk does
	// not belong to a numbered lesson.
	LessonNumber *int

	// Index is the chunk's sequence position within the course.
	Index int
}

// IngestSummary accumulates the outcome of ingesting a file or directory.
// Ingestion continues past per-file failures, so a summary can report both
// added courses and failed files.
type IngestSummary struct {
	// CoursesAdded is the number of new courses indexed.
	CoursesAdded int

	// ChunksAdded is the number of content chunks indexed.
	ChunksAdded int

	// FilesSkipped counts files whose course title was already indexed.
	FilesSkipped int

	// FilesFailed counts files that could not be parsed or indexed.
	FilesFailed int

	// Failures maps failed file paths to their error messages.
	Failures map[string]string
}

// RecordFailure notes a failed file and its error message.
func (s *IngestSummary) RecordFailure(path, message string) {
	if s.Failures == nil {
		s.Failures = make(map[string]string)
	}
	s.Failures[path] = message
}

// Merge folds another summary into this one.
func (s *IngestSummary) Merge(other *IngestSummary) {
	s.CoursesAdded += other.CoursesAdded
	s.ChunksAdded += other.ChunksAdded
	s.FilesSkipped += other.FilesSkipped
	s.FilesFailed += other.FilesFailed
	for path, msg := range other.Failures {
		if s.Failures == nil {
			s.Failures = make(map[string]string)
		}
		s.Failures[path] = msg
	}
}
