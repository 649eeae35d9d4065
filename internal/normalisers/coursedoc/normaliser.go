// Package coursedoc parses structured course documents.
//
// A course document is plain text with up to three header lines followed by
// lesson sections:
//
//	Course Title: Introduction to MCP
//	Course Link: https://example.com/mcp
//	Course Instructor: Jane Doe
//
//	Lesson 0: Getting Started
//	Lesson Link: https://example.com/mcp/lesson0
//	<lesson body...>
//
//	Lesson 1: Tools and Resources
//	<lesson body...>
//
// The link and instructor headers are optional. A document without lesson
// markers is treated as a single implicit lesson holding the whole body.
package coursedoc

import (
	"bufio"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// Header prefixes recognised at the top of a document.
const (
	titlePrefix      = "Course Title:"
	linkPrefix       = "Course Link:"
	instructorPrefix = "Course Instructor:"
	lessonLinkPrefix = "Lesson Link:"
)

// lessonMarker matches lines of the form "Lesson <N>: <title>".
var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// LessonBody pairs a lesson's metadata with its raw body text.
type LessonBody struct {
	Lesson domain.Lesson
	Body   string
}

// Normaliser parses course documents into course metadata and lesson bodies.
type Normaliser struct{}

// New creates a new course document normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Parse extracts course metadata and ordered lesson bodies from raw text.
// The path is used only as a title fallback when the document has no
// parsable Course Title header. Parsing fails softly: missing optional
// fields default to absent.
func (n *Normaliser) Parse(path, text string) (*domain.Course, []LessonBody, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, fmt.Errorf("%w: empty document", domain.ErrParse)
	}

	lines := readLines(text)
	course := &domain.Course{}

	// Header block: title on the first non-empty line, then optional link
	// and instructor in any order.
	body := n.parseHeader(course, lines)
	if course.Title == "" {
		course.Title = titleFromPath(path)
	}

	bodies := n.parseLessons(course, body)
	return course, bodies, nil
}

// parseHeader consumes the header lines and returns the remaining lines.
func (n *Normaliser) parseHeader(course *domain.Course, lines []string) []string {
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, titlePrefix):
			course.Title = strings.TrimSpace(strings.TrimPrefix(line, titlePrefix))
		case strings.HasPrefix(line, linkPrefix):
			course.Link = strings.TrimSpace(strings.TrimPrefix(line, linkPrefix))
		case strings.HasPrefix(line, instructorPrefix):
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, instructorPrefix))
		default:
			// First non-header line ends the header block.
			return lines[i:]
		}
	}
	return nil
}

// parseLessons scans for lesson markers and collects each lesson's body.
// Lessons are appended to the course in marker order. A document with no
// markers becomes a single implicit lesson 0 holding the whole body; when
// markers exist, text before the first marker is preamble and belongs to
// no lesson.
func (n *Normaliser) parseLessons(course *domain.Course, lines []string) []LessonBody {
	if !hasLessonMarker(lines) {
		return n.implicitLesson(course, lines)
	}

	var bodies []LessonBody
	var current *LessonBody
	var buf []string

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(strings.Join(buf, "\n"))
		course.Lessons = append(course.Lessons, current.Lesson)
		bodies = append(bodies, *current)
		current = nil
		buf = nil
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if m := lessonMarker.FindStringSubmatch(line); m != nil {
			flush()
			number, err := strconv.Atoi(m[1])
			if err != nil {
				// Marker regexp only matches digits; treat as body text.
				buf = append(buf, lines[i])
				continue
			}
			current = &LessonBody{
				Lesson: domain.Lesson{Number: number, Title: strings.TrimSpace(m[2])},
			}

			// Optional link line directly after the marker.
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if strings.HasPrefix(next, lessonLinkPrefix) {
					current.Lesson.Link = strings.TrimSpace(strings.TrimPrefix(next, lessonLinkPrefix))
					i++
				}
			}
			continue
		}

		if current != nil {
			buf = append(buf, lines[i])
		}
		// Preamble before the first marker is dropped.
	}
	flush()

	return bodies
}

// hasLessonMarker reports whether any line is a lesson marker.
func hasLessonMarker(lines []string) bool {
	for _, line := range lines {
		if lessonMarker.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// implicitLesson wraps an unmarked document body as lesson 0.
func (n *Normaliser) implicitLesson(course *domain.Course, lines []string) []LessonBody {
	body := strings.TrimSpace(strings.Join(lines, "\n"))
	if body == "" {
		return nil
	}

	lb := LessonBody{
		Lesson: domain.Lesson{Number: 0, Title: course.Title},
		Body:   body,
	}
	course.Lessons = append(course.Lessons, lb.Lesson)
	return []LessonBody{lb}
}

// readLines splits text into lines without the trailing newline characters.
func readLines(text string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// titleFromPath derives a course title from the file name, sans extension.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
