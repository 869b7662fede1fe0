package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seriesJSON bool

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Inspect tracked meeting series",
}

var seriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tracked series",
	RunE:  runSeriesList,
}

var seriesShowCmd = &cobra.Command{
	Use:   "show <series-id>",
	Short: "Show one series record",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeriesShow,
}

func init() {
	seriesCmd.PersistentFlags().BoolVar(&seriesJSON, "json", false, "output as JSON")
	seriesCmd.AddCommand(seriesListCmd)
	seriesCmd.AddCommand(seriesShowCmd)
	rootCmd.AddCommand(seriesCmd)
}

func runSeriesList(cmd *cobra.Command, _ []string) error {
	series, err := resolver.List(cmd.Context())
	if err != nil {
		return err
	}

	if seriesJSON {
		return printJSON(cmd, series)
	}
	if len(series) == 0 {
		cmd.Println("No series tracked yet.")
		return nil
	}

	rows := make([][]string, 0, len(series))
	for _, s := range series {
		rows = append(rows, []string{
			s.SeriesID,
			s.Organiser,
			s.SchedulePattern,
			fmt.Sprintf("%d", len(s.Occurrences)),
			fmt.Sprintf("%.2f", s.Confidence),
		})
	}
	printTable(cmd, []string{"SERIES", "ORGANISER", "SCHEDULE", "OCCURRENCES", "CONFIDENCE"}, rows)
	return nil
}

func runSeriesShow(cmd *cobra.Command, args []string) error {
	series, err := resolver.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if seriesJSON {
		return printJSON(cmd, series)
	}

	cmd.Printf("Series:      %s\n", series.SeriesID)
	cmd.Printf("Title:       %s\n", series.NormalisedTitle)
	cmd.Printf("Organiser:   %s\n", series.Organiser)
	cmd.Printf("Schedule:    %s\n", series.SchedulePattern)
	cmd.Printf("Fingerprint: %s\n", series.AttendeeFingerprint)
	cmd.Printf("First seen:  %s\n", series.FirstSeen.Format("2006-01-02"))
	cmd.Printf("Last seen:   %s\n", series.LastSeen.Format("2006-01-02"))
	cmd.Printf("Confidence:  %.2f\n", series.Confidence)
	cmd.Printf("Occurrences: %d\n", len(series.Occurrences))
	for _, occ := range series.Occurrences {
		if occ.FilePath != "" {
			cmd.Printf("  %s  %s\n", occ.Date, occ.FilePath)
		} else {
			cmd.Printf("  %s\n", occ.Date)
		}
	}
	return nil
}
