// Package cli implements the meeting-notes command line interface.
//
// Commands are thin: they parse flags, call the core services through
// the driving ports, and print. Services are wired once in initApp,
// except the Google-backed fetch pipeline which is built lazily so
// local commands never touch credentials.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	cachefsblob "github.com/matburt/meeting-notes-handler/internal/adapters/driven/cache/fsblob"
	cachesqlite "github.com/matburt/meeting-notes-handler/internal/adapters/driven/cache/sqlite"
	configfile "github.com/matburt/meeting-notes-handler/internal/adapters/driven/config/file"
	"github.com/matburt/meeting-notes-handler/internal/adapters/driven/notes/week"
	registryfile "github.com/matburt/meeting-notes-handler/internal/adapters/driven/registry/file"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driving"
	"github.com/matburt/meeting-notes-handler/internal/core/services/filter"
	"github.com/matburt/meeting-notes-handler/internal/core/services/tracker"
	"github.com/matburt/meeting-notes-handler/internal/logger"
	"github.com/matburt/meeting-notes-handler/internal/normalisers/markdown"
)

var version = "dev"

// Wired services. Tests pre-set these; initApp fills whatever is nil.
var (
	configStore driven.ConfigStore
	notesStore  driven.NotesStore
	sigCache    driven.SignatureCache
	resolver    driving.SeriesResolver
	docFilter   driving.DocumentFilter
	cacheAdmin  driving.CacheAdmin
	normaliser  driven.MarkdownNormaliser
)

var (
	flagConfigDir string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "meeting-notes",
	Short: "Fetch, filter and organise recurring meeting notes",
	Long: `meeting-notes fetches Google Meet meeting documents, tracks
recurring meeting series, and uses structural content diffing to keep
only what is genuinely new in each occurrence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		return initApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "configuration directory (default ~/.meeting-notes)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
}

// Execute runs the CLI.
func Execute(v string) error {
	return ExecuteContext(context.Background(), v)
}

// ExecuteContext runs the CLI with a cancellable context, so the
// long-running commands stop on signals.
func ExecuteContext(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.ExecuteContext(ctx)
}

// initApp wires the local services. Fields already set (by tests) are
// left alone.
func initApp() error {
	if configStore == nil {
		store, err := configfile.NewConfigStore(flagConfigDir)
		if err != nil {
			return fmt.Errorf("open config: %w", err)
		}
		configStore = store
	}

	if notesStore == nil {
		store, err := week.NewStore(configStore.GetString("output.directory"))
		if err != nil {
			return fmt.Errorf("open notes store: %w", err)
		}
		notesStore = store
	}

	if resolver == nil {
		registry, err := registryfile.NewRegistry(filepath.Join(configDir(), registryfile.DefaultFileName))
		if err != nil {
			return fmt.Errorf("open series registry: %w", err)
		}
		resolver = tracker.New(registry, trackerOptions())
	}

	if sigCache == nil {
		cache, err := openCache()
		if err != nil {
			return fmt.Errorf("open signature cache: %w", err)
		}
		sigCache = cache
	}

	if docFilter == nil {
		docFilter = filter.New(resolver, sigCache)
	}
	if cacheAdmin == nil {
		cacheAdmin = sigCache
	}
	if normaliser == nil {
		normaliser = markdown.New()
	}
	return nil
}

// configDir is the directory holding config, registry and cache.
func configDir() string {
	return filepath.Dir(configStore.Path())
}

// trackerOptions reads the matching thresholds from configuration.
func trackerOptions() tracker.Options {
	opts := tracker.DefaultOptions()
	if v := configStore.GetFloat("matching.similarity"); v > 0 {
		opts.SimilarityThreshold = v
	}
	if v := configStore.GetFloat("matching.strong_similarity"); v > 0 {
		opts.StrongSimilarity = v
	}
	if v := configStore.GetFloat("matching.epsilon"); v > 0 {
		opts.Epsilon = v
	}
	if v := configStore.GetFloat("matching.confidence_decay"); v > 0 {
		opts.Decay = v
	}
	return opts
}

// openCache builds the configured signature cache backend.
func openCache() (driven.SignatureCache, error) {
	switch backend := configStore.GetString("cache.backend"); backend {
	case "", "fsblob":
		return cachefsblob.New(filepath.Join(configDir(), "signature_cache"))
	case "sqlite":
		return cachesqlite.New(filepath.Join(configDir(), "signatures.db"))
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", domain.ErrInvalidInput, backend)
	}
}

// retentionFromConfig returns the configured cache retention window.
func retentionFromConfig() time.Duration {
	days := configStore.GetInt("cache.retention_days")
	if days <= 0 {
		days = 180
	}
	return time.Duration(days) * 24 * time.Hour
}
