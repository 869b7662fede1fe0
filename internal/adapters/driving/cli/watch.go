package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// settleDelay gives editors and download managers time to finish
// writing before the file is read.
const settleDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <inbox-dir>",
	Short: "Watch a directory and filter dropped markdown files",
	Long: `Watches an inbox directory. Each markdown file dropped into it is
classified, smart-filtered against its series history and saved as a
meeting occurrence, as if it had been fetched.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	inbox := args[0]
	if err := os.MkdirAll(inbox, 0700); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(inbox); err != nil {
		return fmt.Errorf("watch %s: %w", inbox, err)
	}

	cmd.Printf("Watching %s (ctrl-c to stop)\n", inbox)
	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			time.Sleep(settleDelay)
			if err := processInboxFile(ctx, event.Name); err != nil {
				logger.Error("process %s: %v", event.Name, err)
				continue
			}
			cmd.Printf("processed %s\n", filepath.Base(event.Name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// processInboxFile runs one dropped markdown file through the filter
// and saves the outcome as an occurrence dated now.
func processInboxFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read inbox file: %w", err)
	}
	content := string(data)

	title := normaliser.Title(content)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), ".md")
	}

	meeting := &domain.Meeting{
		ID:        "inbox-" + uuid.NewString(),
		Title:     title,
		StartTime: time.Now(),
	}
	docs := []domain.NoteDocument{{
		Title:   title,
		URL:     "file://" + path,
		Content: content,
	}}

	result, err := docFilter.Process(ctx, meeting, docs)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	body := ""
	for _, doc := range result.Documents {
		if doc.Kind == domain.ChangeUnchanged {
			body = fmt.Sprintf("*%s*", doc.DiffSummary)
			continue
		}
		body = doc.Content
	}

	relPath, err := notesStore.Save(ctx, meeting, body)
	if err != nil {
		return fmt.Errorf("save notes: %w", err)
	}

	date := meeting.StartTime.Format("2006-01-02")
	if err := resolver.RecordOccurrence(ctx, result.SeriesID, date, relPath); err != nil {
		logger.Warn("could not record occurrence for %s: %v", result.SeriesID, err)
	}
	return nil
}
