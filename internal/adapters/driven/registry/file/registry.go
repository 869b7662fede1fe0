// Package file provides the JSON-file implementation of the series
// registry. The whole registry lives in one file; every mutation
// rewrites it atomically through a temp file and rename.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.SeriesRegistry = (*Registry)(nil)

// DefaultFileName is the registry file within the notes directory. The
// leading dot keeps it out of week listings.
const DefaultFileName = ".meeting_series_registry.json"

// registryVersion is the on-disk format version.
const registryVersion = "1.0"

// registryFile is the on-disk shape of the whole registry.
type registryFile struct {
	Version string                   `json:"version"`
	Series  map[string]domain.Series `json:"series"`
}

// Registry is a file-backed implementation of driven.SeriesRegistry.
// State is held in memory and flushed on every save; a single writer
// lock serialises rewrites of the registry file.
type Registry struct {
	mu       sync.RWMutex
	filePath string
	series   map[string]domain.Series
}

// NewRegistry opens (or initialises) the registry file at the given
// path. A corrupt file is treated as absent with a warning rather than
// failing the run: losing series history degrades filtering to
// first-occurrence behaviour, which is recoverable, while refusing to
// start is not.
func NewRegistry(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create registry directory: %w", err)
	}

	r := &Registry{
		filePath: path,
		series:   make(map[string]domain.Series),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var loaded registryFile
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warn("series registry %s is corrupt, starting empty: %v", path, err)
		return r, nil
	}
	if loaded.Series != nil {
		r.series = loaded.Series
	}
	return r, nil
}

// Get retrieves a series by id.
func (r *Registry) Get(_ context.Context, seriesID string) (*domain.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	series, ok := r.series[seriesID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := series
	copied.Occurrences = append([]domain.Occurrence(nil), series.Occurrences...)
	return &copied, nil
}

// List returns all registered series, ordered by series id.
func (r *Registry) List(_ context.Context) ([]domain.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Series, 0, len(r.series))
	for _, series := range r.series {
		result = append(result, series)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SeriesID < result[j].SeriesID })
	return result, nil
}

// Save stores or updates a series record and rewrites the file.
func (r *Registry) Save(_ context.Context, series *domain.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *series
	copied.Occurrences = append([]domain.Occurrence(nil), series.Occurrences...)
	r.series[series.SeriesID] = copied

	return r.flush()
}

// flush writes the registry atomically (caller must hold the lock).
// A uuid-suffixed temp file in the same directory keeps the rename
// atomic and concurrent writers from colliding.
func (r *Registry) flush() error {
	data, err := json.MarshalIndent(registryFile{
		Version: registryVersion,
		Series:  r.series,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	tmpPath := r.filePath + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write registry temp file: %w", err)
	}
	if err := os.Rename(tmpPath, r.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.filePath
}
