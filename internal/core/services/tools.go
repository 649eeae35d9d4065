package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// Tool is a capability the completion model may invoke by name. Execute
// returns the formatted output that goes back to the model verbatim.
type Tool interface {
	// Definition declares the tool to the model.
	Definition() driven.ToolDefinition

	// Execute runs the tool with the model-supplied input.
	Execute(ctx context.Context, input map[string]any) (string, error)
}

// ToolRegistry holds tools keyed by name and tracks the sources surfaced
// by tool executions during the current query.
type ToolRegistry struct {
	mu      sync.Mutex
	tools   map[string]Tool
	order   []string
	sources []domain.Source
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool under its declared name. Registering the same name
// twice replaces the earlier tool.
func (r *ToolRegistry) Register(tool Tool) {
	name := tool.Definition().Name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Definitions returns all registered tool definitions in registration order.
func (r *ToolRegistry) Definitions() []driven.ToolDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	defs := make([]driven.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches an invocation to the named tool.
func (r *ToolRegistry) Execute(ctx context.Context, name string, input map[string]any) (string, error) {
	r.mu.Lock()
	tool, ok := r.tools[name]
	r.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("unknown tool %q: %w", name, domain.ErrNotFound)
	}
	return tool.Execute(ctx, input)
}

// RecordSources appends sources surfaced by a tool execution, dropping
// duplicates while preserving first-seen order.
func (r *ToolRegistry) RecordSources(sources []domain.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, src := range sources {
		if r.hasSource(src) {
			continue
		}
		r.sources = append(r.sources, src)
	}
}

// hasSource reports whether an equal source was already recorded
// (caller must hold lock).
func (r *ToolRegistry) hasSource(src domain.Source) bool {
	for _, existing := range r.sources {
		if existing.CourseTitle != src.CourseTitle || existing.Link != src.Link {
			continue
		}
		switch {
		case existing.LessonNumber == nil && src.LessonNumber == nil:
			return true
		case existing.LessonNumber != nil && src.LessonNumber != nil &&
			*existing.LessonNumber == *src.LessonNumber:
			return true
		}
	}
	return false
}

// LastSources returns the sources recorded since the last reset.
func (r *ToolRegistry) LastSources() []domain.Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ResetSources clears recorded sources. Called between queries so one
// answer never carries the previous answer's citations.
func (r *ToolRegistry) ResetSources() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = nil
}

// CourseSearchTool searches course content by semantic similarity with
// optional course and lesson filters.
type CourseSearchTool struct {
	vectorStore driven.VectorStore
	registry    *ToolRegistry
}

// NewCourseSearchTool creates the content search tool. Sources surfaced by
// executions are recorded on the registry.
func NewCourseSearchTool(vectorStore driven.VectorStore, registry *ToolRegistry) *CourseSearchTool {
	return &CourseSearchTool{
		vectorStore: vectorStore,
		registry:    registry,
	}
}

// Definition declares the search tool to the model.
func (t *CourseSearchTool) Definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP')",
				},
				"lesson_number": map[string]any{
					"type":        "integer",
					"description": "Specific lesson number to search within",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute runs the search and formats results for the model. Empty result
// sets and unresolvable course names are reported as text, not errors, so
// the model can tell the user instead of the loop aborting.
func (t *CourseSearchTool) Execute(ctx context.Context, input map[string]any) (string, error) {
	query, _ := input["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is required: %w", domain.ErrInvalidInput)
	}

	opts := domain.SearchOptions{}
	if name, ok := input["course_name"].(string); ok {
		opts.CourseName = name
	}
	// JSON numbers decode as float64
	if n, ok := input["lesson_number"].(float64); ok {
		lesson := int(n)
		opts.LessonNumber = &lesson
	}

	logger.Debug("Tool search_course_content: query=%q course=%q", query, opts.CourseName)

	results, err := t.vectorStore.Search(ctx, query, opts)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'", opts.CourseName), nil
		}
		return "", fmt.Errorf("search course content: %w", err)
	}

	if len(results) == 0 {
		return t.emptyMessage(opts), nil
	}

	return t.formatResults(ctx, results), nil
}

// emptyMessage describes an empty result set, naming the active filters.
func (t *CourseSearchTool) emptyMessage(opts domain.SearchOptions) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if opts.CourseName != "" {
		fmt.Fprintf(&b, " in course '%s'", opts.CourseName)
	}
	if opts.LessonNumber != nil {
		fmt.Fprintf(&b, " in lesson %d", *opts.LessonNumber)
	}
	b.WriteString(".")
	return b.String()
}

// formatResults renders results as bracketed context blocks and records
// one source per result on the registry.
func (t *CourseSearchTool) formatResults(ctx context.Context, results []domain.SearchResult) string {
	var blocks []string
	var sources []domain.Source

	// Cache catalog lookups per course; link resolution is best effort.
	courses := make(map[string]*domain.Course)

	for _, result := range results {
		header := result.Chunk.CourseTitle
		if result.Chunk.LessonNumber != nil {
			header = fmt.Sprintf("%s - Lesson %d", header, *result.Chunk.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", header, result.Chunk.Content))

		source := domain.Source{
			CourseTitle:  result.Chunk.CourseTitle,
			LessonNumber: result.Chunk.LessonNumber,
		}
		source.Link = t.lessonLink(ctx, courses, result.Chunk.CourseTitle, result.Chunk.LessonNumber)
		sources = append(sources, source)
	}

	if t.registry != nil {
		t.registry.RecordSources(sources)
	}

	return strings.Join(blocks, "\n\n")
}

// lessonLink resolves a lesson (or course) link from the catalog.
func (t *CourseSearchTool) lessonLink(
	ctx context.Context, cache map[string]*domain.Course, title string, lessonNumber *int,
) string {
	course, ok := cache[title]
	if !ok {
		var err error
		course, err = t.vectorStore.GetCourse(ctx, title)
		if err != nil {
			logger.Debug("Source link lookup failed for %q: %v", title, err)
			cache[title] = nil
			return ""
		}
		cache[title] = course
	}
	if course == nil {
		return ""
	}

	if lessonNumber != nil {
		if lesson := course.Lesson(*lessonNumber); lesson != nil && lesson.Link != "" {
			return lesson.Link
		}
	}
	return course.Link
}

// CourseOutlineTool returns a course's title, link and full lesson list.
type CourseOutlineTool struct {
	vectorStore driven.VectorStore
	registry    *ToolRegistry
}

// NewCourseOutlineTool creates the outline tool.
func NewCourseOutlineTool(vectorStore driven.VectorStore, registry *ToolRegistry) *CourseOutlineTool {
	return &CourseOutlineTool{
		vectorStore: vectorStore,
		registry:    registry,
	}
}

// Definition declares the outline tool to the model.
func (t *CourseOutlineTool) Definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        "get_course_outline",
		Description: "Get a course's title, link and complete lesson list",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work)",
				},
			},
			"required": []string{"course_name"},
		},
	}
}

// Execute resolves the course name and formats its outline.
func (t *CourseOutlineTool) Execute(ctx context.Context, input map[string]any) (string, error) {
	name, _ := input["course_name"].(string)
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("course_name is required: %w", domain.ErrInvalidInput)
	}

	title, err := t.vectorStore.ResolveCourseTitle(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'", name), nil
		}
		return "", fmt.Errorf("resolve course title: %w", err)
	}

	course, err := t.vectorStore.GetCourse(ctx, title)
	if err != nil {
		return "", fmt.Errorf("get course %q: %w", title, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", course.Title)
	if course.Link != "" {
		fmt.Fprintf(&b, "Link: %s\n", course.Link)
	}
	if course.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", course.Instructor)
	}
	fmt.Fprintf(&b, "Lessons (%d):\n", len(course.Lessons))
	for _, lesson := range course.Lessons {
		fmt.Fprintf(&b, "  %d. %s\n", lesson.Number, lesson.Title)
	}

	if t.registry != nil {
		t.registry.RecordSources([]domain.Source{{
			CourseTitle: course.Title,
			Link:        course.Link,
		}})
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
