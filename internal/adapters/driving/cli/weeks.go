package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "List weeks that have saved meeting notes",
	RunE:  runWeeks,
}

var meetingsCmd = &cobra.Command{
	Use:   "meetings <week>",
	Short: "List saved meeting notes in a week (e.g. 2024-W29)",
	Args:  cobra.ExactArgs(1),
	RunE:  runMeetings,
}

func init() {
	rootCmd.AddCommand(weeksCmd)
	rootCmd.AddCommand(meetingsCmd)
}

func runWeeks(cmd *cobra.Command, _ []string) error {
	weeks, err := notesStore.ListWeeks()
	if err != nil {
		return err
	}
	if len(weeks) == 0 {
		cmd.Println("No meeting notes saved yet.")
		return nil
	}

	rows := make([][]string, 0, len(weeks))
	for _, week := range weeks {
		files, err := notesStore.ListMeetings(week)
		if err != nil {
			return err
		}
		rows = append(rows, []string{week, fmt.Sprintf("%d", len(files))})
	}
	printTable(cmd, []string{"WEEK", "MEETINGS"}, rows)
	return nil
}

func runMeetings(cmd *cobra.Command, args []string) error {
	week := args[0]
	files, err := notesStore.ListMeetings(week)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Printf("No meeting notes in %s.\n", week)
		return nil
	}

	rows := make([][]string, 0, len(files))
	for _, file := range files {
		rows = append(rows, []string{
			file.Name,
			formatBytes(file.SizeBytes),
			file.ModifiedAt.Format("2006-01-02 15:04"),
		})
	}
	printTable(cmd, []string{"FILE", "SIZE", "MODIFIED"}, rows)
	return nil
}
