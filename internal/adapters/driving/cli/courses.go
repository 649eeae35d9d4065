package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

var (
	coursesJSON bool
	coursesShow string
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List indexed courses",
	Long: `Lists the titles of all indexed courses. Use --show to print one
course's outline and stored lesson text from the local store.`,
	Args: cobra.NoArgs,
	RunE: runCourses,
}

func init() {
	coursesCmd.Flags().BoolVar(&coursesJSON, "json", false, "output as JSON")
	coursesCmd.Flags().StringVar(&coursesShow, "show", "", "show one course's outline and content")
	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	if coursesShow != "" {
		return showCourse(cmd, coursesShow)
	}

	stats, err := vectorStore.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("catalog stats: %w", err)
	}

	if coursesJSON {
		data, err := json.MarshalIndent(map[string]any{
			"total_courses": stats.TotalCourses,
			"course_titles": stats.CourseTitles,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if stats.TotalCourses == 0 {
		cmd.Println("No courses indexed. Run: lectern ingest <path>")
		return nil
	}

	cmd.Printf("Courses (%d):\n", stats.TotalCourses)
	for _, title := range stats.CourseTitles {
		cmd.Printf("  %s\n", title)
	}
	return nil
}

// showCourse prints a course outline from the catalog, plus its stored
// lesson text when the local store has it.
func showCourse(cmd *cobra.Command, name string) error {
	ctx := cmd.Context()

	title, err := vectorStore.ResolveCourseTitle(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return fmt.Errorf("no course found matching %q", name)
		}
		return fmt.Errorf("resolve course: %w", err)
	}

	course, err := vectorStore.GetCourse(ctx, title)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}

	cmd.Printf("Course: %s\n", course.Title)
	if course.Instructor != "" {
		cmd.Printf("Instructor: %s\n", course.Instructor)
	}
	if course.Link != "" {
		cmd.Printf("Link: %s\n", course.Link)
	}
	cmd.Printf("Lessons (%d):\n", len(course.Lessons))
	for _, lesson := range course.Lessons {
		cmd.Printf("  %d. %s\n", lesson.Number, lesson.Title)
	}

	if courseStore == nil {
		return nil
	}
	chunks, err := courseStore.GetChunks(ctx, title)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get stored content: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	cmd.Printf("\nStored content (%d chunks):\n\n", len(chunks))
	for _, chunk := range chunks {
		cmd.Printf("%s\n\n", chunk.Content)
	}
	return nil
}
