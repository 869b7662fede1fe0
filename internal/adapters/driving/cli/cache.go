package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	cacheJSON          bool
	cacheRetentionDays int
	cacheSweepDryRun   bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Signature cache maintenance",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the signature cache",
	RunE:  runCacheStats,
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove cached signatures older than the retention window",
	RunE:  runCacheSweep,
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheJSON, "json", false, "output as JSON")
	cacheSweepCmd.Flags().IntVar(&cacheRetentionDays, "retention", 0, "retention window in days (default from config)")
	cacheSweepCmd.Flags().BoolVar(&cacheSweepDryRun, "dry-run", false, "report what would be removed without removing")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheSweepCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	stats, err := cacheAdmin.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if cacheJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Series:     %d\n", stats.TotalSeries)
	cmd.Printf("Signatures: %d\n", stats.TotalSignatures)
	cmd.Printf("Size:       %s\n", formatBytes(stats.TotalSizeBytes))
	if len(stats.Series) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(stats.Series))
	for _, s := range stats.Series {
		rows = append(rows, []string{
			s.SeriesID,
			fmt.Sprintf("%d", s.SignatureCount),
			s.OldestDate,
			s.NewestDate,
			formatBytes(s.SizeBytes),
		})
	}
	cmd.Println()
	printTable(cmd, []string{"SERIES", "SIGNATURES", "OLDEST", "NEWEST", "SIZE"}, rows)
	return nil
}

func runCacheSweep(cmd *cobra.Command, _ []string) error {
	retention := retentionFromConfig()
	if cacheRetentionDays > 0 {
		retention = time.Duration(cacheRetentionDays) * 24 * time.Hour
	}

	if cacheSweepDryRun {
		return sweepDryRun(cmd, retention)
	}

	report, err := cacheAdmin.Sweep(cmd.Context(), retention)
	if err != nil {
		return err
	}
	cmd.Printf("Removed %d signatures and %d empty series.\n",
		report.RemovedEntries, report.RemovedSeries)
	return nil
}

// sweepDryRun counts what a sweep would remove from the stats, without
// touching the cache.
func sweepDryRun(cmd *cobra.Command, retention time.Duration) error {
	stats, err := cacheAdmin.Stats(cmd.Context())
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-retention).Format("2006-01-02")
	stale := 0
	for _, s := range stats.Series {
		// Without per-entry dates only whole-series staleness is exact;
		// a series whose newest entry predates the cutoff is all stale.
		if s.NewestDate != "" && s.NewestDate < cutoff {
			stale += s.SignatureCount
		}
	}
	cmd.Printf("Would remove at least %d signatures older than %s.\n", stale, cutoff)
	return nil
}
