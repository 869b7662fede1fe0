package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse tracked series interactively",
	Long: `Opens a terminal browser over the tracked series: the list on the
left, the selected record and its latest occurrence diff on the right.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	app, err := tui.NewApp(&tui.Ports{
		Resolver: resolver,
		Cache:    sigCache,
	}, diffEngine())
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return app.WithContext(cmd.Context()).Run()
}
