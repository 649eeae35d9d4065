package cli

import (
	"github.com/spf13/cobra"

	"github.com/lectern-labs/lectern-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat about your courses",
	Long: `Opens a terminal chat session with the assistant. Conversation
history is kept for the duration of the session.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}
	return tui.Run(cmd.Context(), assistService)
}
