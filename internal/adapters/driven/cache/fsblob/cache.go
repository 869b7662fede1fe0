// Package fsblob stores content signatures as gzip-compressed JSON
// blobs on the local filesystem, one directory per series and one file
// per occurrence date.
package fsblob

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/services/keylock"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.SignatureCache = (*Cache)(nil)

// blobSuffix is appended to the occurrence date to form the blob file
// name, e.g. 2024-07-15_signature.json.gz.
const blobSuffix = "_signature.json.gz"

// DefaultRetention is how long signatures are kept by a sweep unless
// configured otherwise.
const DefaultRetention = 180 * 24 * time.Hour

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Cache is the filesystem-blob implementation of driven.SignatureCache.
// Writes go through a temp file and rename so readers never observe a
// half-written blob; a per-series lock serialises writers of the same
// series without blocking others.
type Cache struct {
	root  string
	locks *keylock.KeyLock

	// sweepMu makes a sweep exclusive against other sweeps; Put/Get for
	// individual series only take their series lock.
	sweepMu sync.Mutex
}

// New creates a signature cache rooted at dir.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{root: dir, locks: keylock.New()}, nil
}

// Root returns the cache directory.
func (c *Cache) Root() string {
	return c.root
}

func (c *Cache) seriesDir(seriesID string) string {
	return filepath.Join(c.root, seriesID)
}

func (c *Cache) blobPath(seriesID, date string) string {
	return filepath.Join(c.seriesDir(seriesID), date+blobSuffix)
}

// Put stores the signature for (seriesID, date), replacing any prior
// blob for the same key.
func (c *Cache) Put(_ context.Context, seriesID, date string, sig *domain.Signature) error {
	if seriesID == "" || !dateRe.MatchString(date) {
		return fmt.Errorf("%w: cache key %q/%q", domain.ErrInvalidInput, seriesID, date)
	}

	release := c.locks.Acquire(seriesID)
	defer release()

	dir := c.seriesDir(seriesID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create series directory: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(sig); err != nil {
		return fmt.Errorf("encode signature: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress signature: %w", err)
	}

	final := c.blobPath(seriesID, date)
	tmp := final + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write signature temp file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace signature blob: %w", err)
	}
	return nil
}

// Get retrieves the signature for (seriesID, date). Absent, corrupt and
// schema-incompatible blobs all come back as domain.ErrNotFound: the
// caller's fallback is the same in every case, diff from scratch.
func (c *Cache) Get(_ context.Context, seriesID, date string) (*domain.Signature, error) {
	sig, err := c.readBlob(c.blobPath(seriesID, date))
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// LatestN returns up to n signatures for the series, ordered oldest to
// newest. Corrupt entries are skipped.
func (c *Cache) LatestN(_ context.Context, seriesID string, n int) ([]domain.Signature, error) {
	dates, err := c.seriesDates(seriesID)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(dates) > n {
		dates = dates[len(dates)-n:]
	}

	result := make([]domain.Signature, 0, len(dates))
	for _, date := range dates {
		sig, err := c.readBlob(c.blobPath(seriesID, date))
		if err != nil {
			continue
		}
		result = append(result, *sig)
	}
	return result, nil
}

// seriesDates lists the blob dates of one series, sorted ascending.
func (c *Cache) seriesDates(seriesID string) ([]string, error) {
	entries, err := os.ReadDir(c.seriesDir(seriesID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read series directory: %w", err)
	}

	var dates []string
	for _, entry := range entries {
		date, ok := strings.CutSuffix(entry.Name(), blobSuffix)
		if !ok || !dateRe.MatchString(date) {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// readBlob decodes one signature blob. Every failure mode maps to
// ErrNotFound after a warning; the blob stays on disk for inspection
// except when its schema is from a different major version.
func (c *Cache) readBlob(path string) (*domain.Signature, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		logger.Warn("signature blob %s unreadable: %v", path, err)
		return nil, domain.ErrNotFound
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		logger.Warn("signature blob %s corrupt: %v", path, err)
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	defer gz.Close()

	var sig domain.Signature
	if err := json.NewDecoder(gz).Decode(&sig); err != nil && err != io.EOF {
		logger.Warn("signature blob %s corrupt: %v", path, err)
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}

	if !domain.SchemaCompatible(sig.SchemaVersion) {
		logger.Warn("signature blob %s has unsupported schema %s", path, sig.SchemaVersion)
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return &sig, nil
}

// Sweep removes blobs older than the retention window and series
// directories the removal leaves empty.
func (c *Cache) Sweep(_ context.Context, retention time.Duration) (domain.SweepReport, error) {
	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()

	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := time.Now().Add(-retention).Format("2006-01-02")

	var report domain.SweepReport
	seriesIDs, err := c.listSeries()
	if err != nil {
		return report, err
	}

	for _, seriesID := range seriesIDs {
		release := c.locks.Acquire(seriesID)

		dates, err := c.seriesDates(seriesID)
		if err != nil {
			release()
			return report, err
		}
		removed := 0
		for _, date := range dates {
			if date >= cutoff {
				continue
			}
			if err := os.Remove(c.blobPath(seriesID, date)); err != nil {
				logger.Warn("sweep could not remove %s/%s: %v", seriesID, date, err)
				continue
			}
			removed++
		}
		report.RemovedEntries += removed

		if removed == len(dates) && removed > 0 {
			// Only remove a directory the sweep itself emptied.
			if err := os.Remove(c.seriesDir(seriesID)); err == nil {
				report.RemovedSeries++
			}
		}
		release()
	}

	logger.Info("cache sweep removed %d signatures across %d emptied series", report.RemovedEntries, report.RemovedSeries)
	return report, nil
}

// Stats summarises the cache for operational reporting.
func (c *Cache) Stats(_ context.Context) (domain.CacheStats, error) {
	var stats domain.CacheStats

	seriesIDs, err := c.listSeries()
	if err != nil {
		return stats, err
	}

	for _, seriesID := range seriesIDs {
		dates, err := c.seriesDates(seriesID)
		if err != nil {
			return stats, err
		}
		if len(dates) == 0 {
			continue
		}

		detail := domain.SeriesCacheDetail{
			SeriesID:       seriesID,
			SignatureCount: len(dates),
			OldestDate:     dates[0],
			NewestDate:     dates[len(dates)-1],
		}
		for _, date := range dates {
			if info, err := os.Stat(c.blobPath(seriesID, date)); err == nil {
				detail.SizeBytes += info.Size()
			}
		}

		stats.TotalSeries++
		stats.TotalSignatures += detail.SignatureCount
		stats.TotalSizeBytes += detail.SizeBytes
		stats.Series = append(stats.Series, detail)
	}
	return stats, nil
}

// listSeries returns the series directory names, sorted.
func (c *Cache) listSeries() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}
