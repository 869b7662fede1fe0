package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	RunE:  runConfigList,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	val, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: no such key %q", domain.ErrNotFound, args[0])
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, raw)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	cmd.Printf("# %s\n", configStore.Path())

	keys := configKeys()
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		val, _ := configStore.Get(key)
		rows = append(rows, []string{key, fmt.Sprintf("%v", val)})
	}
	printTable(cmd, []string{"KEY", "VALUE"}, rows)
	return nil
}

// configKeys lists the known keys, sorted. The store has no listing
// method, so this walks the documented key set plus whatever Get finds.
func configKeys() []string {
	known := []string{
		"output.directory",
		"calendar.days_back",
		"calendar.keywords",
		"gemini.keywords",
		"google.credentials_file",
		"google.token_file",
		"docs.use_native_export",
		"docs.fallback_to_manual",
		"cache.backend",
		"cache.retention_days",
		"matching.similarity",
		"matching.strong_similarity",
		"matching.epsilon",
		"matching.confidence_decay",
		"diff.similarity_threshold",
		"diff.within_section_only",
	}
	sort.Strings(known)
	return known
}

// parseConfigValue interprets a CLI-supplied string as bool, int, float
// or string.
func parseConfigValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && isBoolLiteral(raw) {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// isBoolLiteral restricts bool parsing to the spelled-out forms so "1"
// stays an integer.
func isBoolLiteral(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "false":
		return true
	}
	return false
}
