package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matburt/meeting-notes-handler/internal/connectors/google"
	googlecalendar "github.com/matburt/meeting-notes-handler/internal/connectors/google/calendar"
	googledocs "github.com/matburt/meeting-notes-handler/internal/connectors/google/docs"
	"github.com/matburt/meeting-notes-handler/internal/core/services/fetch"
)

var (
	fetchDays        int
	fetchDryRun      bool
	fetchAccepted    bool
	fetchForce       bool
	fetchGeminiOnly  bool
	fetchSmartFilter bool
)

// newFetchService builds the Google-backed pipeline. Swapped out by
// tests.
var newFetchService = buildFetchService

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch recent meeting notes from Google Calendar",
	Long: `Scans the calendar for recent Google Meet meetings, converts their
attached note documents to markdown and saves them organised by week.

With --smart-filter, persistent documents are diffed against the
series history and only genuinely new content is kept.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchDays, "days", 0, "days back to scan (default from config)")
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "convert and filter but save nothing")
	fetchCmd.Flags().BoolVar(&fetchAccepted, "accepted", false, "skip meetings you declined")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "reprocess already-saved meetings")
	fetchCmd.Flags().BoolVar(&fetchGeminiOnly, "gemini-only", false, "keep only Gemini notes and transcripts")
	fetchCmd.Flags().BoolVar(&fetchSmartFilter, "smart-filter", false, "diff against series history, keep only new content")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	svc, err := newFetchService(ctx)
	if err != nil {
		return err
	}

	days := fetchDays
	if days <= 0 {
		days = configStore.GetInt("calendar.days_back")
	}
	if days <= 0 {
		days = 7
	}

	summary, err := svc.Fetch(ctx, fetch.Options{
		Since:        time.Now().AddDate(0, 0, -days),
		AcceptedOnly: fetchAccepted,
		GeminiOnly:   fetchGeminiOnly,
		Force:        fetchForce,
		DryRun:       fetchDryRun,
		SmartFilter:  fetchSmartFilter,
	})
	if err != nil {
		return err
	}

	printFetchSummary(cmd, summary)
	return nil
}

// printFetchSummary renders the run report.
func printFetchSummary(cmd *cobra.Command, summary *fetch.Summary) {
	cmd.Printf("Meetings found:     %d\n", summary.Found)
	cmd.Printf("Meetings processed: %d\n", summary.Processed)
	cmd.Printf("Meetings skipped:   %d\n", summary.Skipped)
	cmd.Printf("Notes saved:        %d\n", summary.WithNotes)
	cmd.Printf("Documents total:    %d\n", summary.TotalDocs)

	if summary.OriginalWords > 0 {
		reduced := summary.OriginalWords - summary.FilteredWords
		percent := float64(reduced) / float64(summary.OriginalWords) * 100
		cmd.Printf("Smart filter:       %d of %d words removed (%.0f%%)\n",
			reduced, summary.OriginalWords, percent)
	}

	for _, path := range summary.SavedFiles {
		cmd.Printf("  saved %s\n", path)
	}
	if len(summary.Errors) > 0 {
		cmd.Printf("Errors (%d):\n", len(summary.Errors))
		for _, e := range summary.Errors {
			cmd.Printf("  %s\n", e)
		}
	}
}

// buildFetchService authenticates against Google and wires the fetch
// pipeline.
func buildFetchService(ctx context.Context) (*fetch.Service, error) {
	ts, err := google.NewTokenSource(ctx,
		configStore.GetString("google.credentials_file"),
		configStore.GetString("google.token_file"))
	if err != nil {
		return nil, err
	}

	calendarSvc, err := google.NewCalendarService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	driveSvc, err := google.NewDriveService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	docsSvc, err := google.NewDocsService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create docs service: %w", err)
	}

	fetcherCfg := googlecalendar.DefaultConfig()
	if kw := configStore.GetStringSlice("calendar.keywords"); len(kw) > 0 {
		fetcherCfg.MeetKeywords = kw
	}
	if kw := configStore.GetStringSlice("gemini.keywords"); len(kw) > 0 {
		fetcherCfg.GeminiKeywords = kw
	}

	converterCfg := googledocs.Config{
		UseNativeExport:  configStore.GetBool("docs.use_native_export"),
		FallbackToManual: configStore.GetBool("docs.fallback_to_manual"),
	}

	return fetch.New(
		googlecalendar.NewFetcher(calendarSvc, fetcherCfg),
		googledocs.NewConverter(driveSvc, docsSvc, converterCfg),
		notesStore,
		docFilter,
		resolver,
		normaliser,
	), nil
}
