package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/services/diffing"
	"github.com/matburt/meeting-notes-handler/internal/core/services/extractor"
)

var diffNewOnly bool

var diffCmd = &cobra.Command{
	Use:   "diff <old-file> <new-file>",
	Short: "Diff two markdown files structurally",
	Long: `Extracts content signatures from two local markdown files and
reports what the newer one adds, changes and removes.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffNewOnly, "new-only", false, "print only the new content, rendered as markdown")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	newData, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	ext := extractor.New()
	previous := ext.Extract(domain.OccurrenceKey{SeriesID: "local", Date: "old"}, string(oldData))
	current := ext.Extract(domain.OccurrenceKey{SeriesID: "local", Date: "new"}, string(newData))

	engine := diffEngine()
	diff := engine.Diff(previous, current)

	if diffNewOnly {
		cmd.Println(engine.RenderNewContent(diff, current))
		return nil
	}
	cmd.Println(diffing.Summary(diff))
	return nil
}

// diffEngine builds the engine with configured pairing options.
func diffEngine() *diffing.Engine {
	var opts []diffing.Option
	if v := configStore.GetFloat("diff.similarity_threshold"); v > 0 {
		opts = append(opts, diffing.WithSimilarityThreshold(v))
	}
	if set, ok := configStore.Get("diff.within_section_only"); ok {
		if within, isBool := set.(bool); isBool && !within {
			opts = append(opts, diffing.WithCrossSectionPairing())
		}
	}
	return diffing.New(opts...)
}
