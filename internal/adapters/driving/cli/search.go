package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

var (
	searchCourse string
	searchLesson int
	searchLimit  int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search course content directly",
	Long: `Runs a semantic search over indexed course content without the
assistant. Use --course to narrow to one course (partial names work) and
--lesson to narrow to one lesson.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCourse, "course", "c", "", "course title to search within")
	searchCmd.Flags().IntVarP(&searchLesson, "lesson", "l", -1, "lesson number to search within")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts := domain.SearchOptions{
		CourseName: searchCourse,
		Limit:      searchLimit,
	}
	if searchLesson >= 0 {
		lesson := searchLesson
		opts.LessonNumber = &lesson
	}

	results, err := searchService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	type resultOut struct {
		CourseTitle  string  `json:"course_title"`
		LessonNumber *int    `json:"lesson_number,omitempty"`
		ChunkIndex   int     `json:"chunk_index"`
		Distance     float64 `json:"distance"`
		Content      string  `json:"content"`
	}

	out := make([]resultOut, len(results))
	for i := range results {
		out[i] = resultOut{
			CourseTitle:  results[i].Chunk.CourseTitle,
			LessonNumber: results[i].Chunk.LessonNumber,
			ChunkIndex:   results[i].Chunk.Index,
			Distance:     results[i].Distance,
			Content:      results[i].Chunk.Content,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		header := results[i].Chunk.CourseTitle
		if results[i].Chunk.LessonNumber != nil {
			header = fmt.Sprintf("%s - Lesson %d", header, *results[i].Chunk.LessonNumber)
		}
		cmd.Printf("  [%d] %s (distance %.3f)\n", i+1, header, results[i].Distance)
		cmd.Printf("      %s\n", snippet(results[i].Chunk.Content, 200))
		cmd.Println()
	}
	return nil
}

// snippet truncates content for single-line display.
func snippet(content string, max int) string {
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}
