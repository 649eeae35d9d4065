package domain

import "fmt"

// SearchOptions configures a content search.
type SearchOptions struct {
	// CourseName narrows the search to a single course. The name may be
	// partial or fuzzy; it is resolved against the catalog before filtering.
	CourseName string

	// LessonNumber narrows the search to a single lesson. Nil means all
	// lessons.
	LessonNumber *int

	// Limit is the maximum number of results. Zero means the store default.
	Limit int
}

// SearchResult is a single content search hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Distance is the embedding distance to the query. Lower is better.
	Distance float64
}

// Source identifies course material that contributed to an answer.
type Source struct {
	// CourseTitle is the canonical course title.
	CourseTitle string

	// LessonNumber is the lesson the material came from, if any.
	LessonNumber *int

	// Link is the lesson link when known, otherwise the course link.
	Link string
}

// Label renders the source as displayed to users, e.g.
// "Introduction to MCP - Lesson 2".
func (s Source) Label() string {
	if s.LessonNumber == nil {
		return s.CourseTitle
	}
	return fmt.Sprintf("%s - Lesson %d", s.CourseTitle, *s.LessonNumber)
}

// CatalogStats is a read-through of the course catalog.
type CatalogStats struct {
	// TotalCourses is the number of indexed courses.
	TotalCourses int

	// CourseTitles lists the canonical titles of all indexed courses.
	CourseTitles []string
}
