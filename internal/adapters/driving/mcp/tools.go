package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// SearchInput is the input schema for the content search tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema:"what to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema:"course title to search within (partial matches work)"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema:"specific lesson number to search within"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the content search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	CourseTitle  string  `json:"course_title"`
	LessonNumber *int    `json:"lesson_number,omitempty"`
	ChunkIndex   int     `json:"chunk_index"`
	Distance     float64 `json:"distance"`
	Content      string  `json:"content"`
}

// OutlineInput is the input schema for the course outline tool.
type OutlineInput struct {
	CourseName string `json:"course_name" jsonschema:"course title to fetch the outline for (partial matches work)"`
}

// OutlineOutput is the output schema for the course outline tool.
type OutlineOutput struct {
	Title      string         `json:"title"`
	Link       string         `json:"link,omitempty"`
	Instructor string         `json:"instructor,omitempty"`
	Lessons    []LessonOutput `json:"lessons"`
}

// LessonOutput represents one lesson in an outline.
type LessonOutput struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_course_outline",
		Description: "Get a course's title, link and complete lesson list",
	}, s.handleOutline)
}

// handleSearch handles the content search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		CourseName:   input.CourseName,
		LessonNumber: input.LessonNumber,
		Limit:        input.Limit,
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			CourseTitle:  results[i].Chunk.CourseTitle,
			LessonNumber: results[i].Chunk.LessonNumber,
			ChunkIndex:   results[i].Chunk.Index,
			Distance:     results[i].Distance,
			Content:      results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleOutline handles the course outline tool invocation.
func (s *Server) handleOutline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OutlineInput,
) (*mcp.CallToolResult, OutlineOutput, error) {
	course, err := s.ports.Assistant.Outline(ctx, input.CourseName)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{
					Text: "No course found matching '" + input.CourseName + "'",
				}},
				IsError: true,
			}, OutlineOutput{}, nil
		}
		return nil, OutlineOutput{}, err
	}

	output := OutlineOutput{
		Title:      course.Title,
		Link:       course.Link,
		Instructor: course.Instructor,
		Lessons:    make([]LessonOutput, len(course.Lessons)),
	}
	for i, lesson := range course.Lessons {
		output.Lessons[i] = LessonOutput{
			Number: lesson.Number,
			Title:  lesson.Title,
			Link:   lesson.Link,
		}
	}

	return nil, output, nil
}
