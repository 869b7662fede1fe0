package cli

import (
	"github.com/spf13/cobra"

	"github.com/matburt/meeting-notes-handler/internal/connectors/google"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise access to Google Calendar, Drive and Docs",
	Long: `Runs the installed-app OAuth flow: opens a browser authorisation
URL and caches the resulting token for later fetch runs.

Requires a Google Cloud OAuth client credentials file; the path is
taken from google.credentials_file in the configuration.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	err := google.Authorise(cmd.Context(),
		configStore.GetString("google.credentials_file"),
		configStore.GetString("google.token_file"),
		func(url string) {
			cmd.Println("Open this URL in your browser to authorise access:")
			cmd.Println()
			cmd.Println("  " + url)
			cmd.Println()
		})
	if err != nil {
		return err
	}
	cmd.Println("Authorisation complete.")
	return nil
}
