package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

var (
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about indexed courses",
	Long: `Answers a question using the tool-calling assistant. Pass --session to
continue an earlier conversation; without it a new session id is created
and printed so follow-ups can reference it.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session id for conversation continuity")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}

	answer, err := assistService.Answer(cmd.Context(), askSession, args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range answer.Sources {
			if src.Link != "" {
				cmd.Printf("  %s (%s)\n", src.Label(), src.Link)
				continue
			}
			cmd.Printf("  %s\n", src.Label())
		}
	}
	cmd.Printf("\nSession: %s\n", answer.SessionID)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	type sourceOut struct {
		CourseTitle  string `json:"course_title"`
		LessonNumber *int   `json:"lesson_number,omitempty"`
		Link         string `json:"link,omitempty"`
	}

	sources := make([]sourceOut, len(answer.Sources))
	for i, src := range answer.Sources {
		sources[i] = sourceOut{
			CourseTitle:  src.CourseTitle,
			LessonNumber: src.LessonNumber,
			Link:         src.Link,
		}
	}

	payload := struct {
		SessionID string      `json:"session_id"`
		Answer    string      `json:"answer"`
		Sources   []sourceOut `json:"sources,omitempty"`
	}{
		SessionID: answer.SessionID,
		Answer:    answer.Text,
		Sources:   sources,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
