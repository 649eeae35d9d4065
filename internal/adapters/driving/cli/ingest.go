package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	ingestWatch bool
	ingestClear bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Index course documents",
	Long: `Parses course documents and indexes them for semantic search.

Accepts a single file or a directory. Directory ingestion processes every
supported file and continues past individual failures. A course whose title
is already indexed is skipped, so re-running ingest is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when files change")
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear the index before ingesting (full rebuild)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := cmd.Context()

	if ingestClear {
		if err := vectorStore.Clear(ctx); err != nil {
			return fmt.Errorf("clear index: %w", err)
		}
		cmd.Println("Index cleared.")
	}

	if ingestWatch {
		return ingestService.Watch(ctx, path)
	}

	summary, err := ingestService.IngestPath(ctx, path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Courses added:  %d\n", summary.CoursesAdded)
	cmd.Printf("Chunks indexed: %d\n", summary.ChunksAdded)
	cmd.Printf("Files skipped:  %d\n", summary.FilesSkipped)
	if summary.FilesFailed > 0 {
		cmd.Printf("Files failed:   %d\n", summary.FilesFailed)
		names := make([]string, 0, len(summary.Failures))
		for name := range summary.Failures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cmd.Printf("  %s: %s\n", name, summary.Failures[name])
		}
	}
	return nil
}
