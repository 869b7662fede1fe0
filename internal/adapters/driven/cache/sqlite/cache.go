// Package sqlite provides a SQLite-backed signature cache. Signatures
// are stored as gzip-compressed JSON blobs in a single table keyed by
// series id and occurrence date, which keeps thousands of occurrences
// out of the directory tree that the filesystem cache would create.
package sqlite

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/matburt/meeting-notes-handler/internal/adapters/driven/cache/sqlite/migrations"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.SignatureCache = (*Cache)(nil)

// Cache is the SQLite implementation of driven.SignatureCache.
type Cache struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the cache database at the given path and runs
// pending migrations.
func New(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	// WAL mode keeps concurrent readers from blocking the writer.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	c := &Cache{db: db, path: path}
	if err := c.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// migrate runs all pending migrations.
func (c *Cache) migrate(fsys embed.FS) error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := c.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := c.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Put stores the signature for (seriesID, date), replacing any prior
// row for the same key.
func (c *Cache) Put(ctx context.Context, seriesID, date string, sig *domain.Signature) error {
	if seriesID == "" || date == "" {
		return fmt.Errorf("%w: cache key %q/%q", domain.ErrInvalidInput, seriesID, date)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(sig); err != nil {
		return fmt.Errorf("encode signature: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress signature: %w", err)
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO signatures (series_id, date, schema_version, blob, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(series_id, date) DO UPDATE SET
			schema_version = excluded.schema_version,
			blob = excluded.blob,
			stored_at = excluded.stored_at
	`, seriesID, date, sig.SchemaVersion, buf.Bytes(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving signature: %w", err)
	}
	return nil
}

// Get retrieves the signature for (seriesID, date). Corrupt and
// schema-incompatible rows come back as domain.ErrNotFound.
func (c *Cache) Get(ctx context.Context, seriesID, date string) (*domain.Signature, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `
		SELECT blob FROM signatures WHERE series_id = ? AND date = ?
	`, seriesID, date).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying signature: %w", err)
	}

	sig, err := decodeBlob(blob)
	if err != nil {
		logger.Warn("signature %s/%s corrupt: %v", seriesID, date, err)
		return nil, domain.ErrNotFound
	}
	return sig, nil
}

// LatestN returns up to n signatures for the series, ordered oldest to
// newest. Corrupt rows are skipped.
func (c *Cache) LatestN(ctx context.Context, seriesID string, n int) ([]domain.Signature, error) {
	query := `SELECT date, blob FROM signatures WHERE series_id = ? ORDER BY date DESC`
	args := []any{seriesID}
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying signatures: %w", err)
	}
	defer rows.Close()

	var result []domain.Signature //nolint:prealloc // size unknown from query
	for rows.Next() {
		var date string
		var blob []byte
		if err := rows.Scan(&date, &blob); err != nil {
			return nil, fmt.Errorf("scanning signature: %w", err)
		}
		sig, err := decodeBlob(blob)
		if err != nil {
			logger.Warn("signature %s/%s corrupt: %v", seriesID, date, err)
			continue
		}
		result = append(result, *sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating signatures: %w", err)
	}

	// The query walked newest-first to apply the limit; callers want
	// oldest-first.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

// Sweep removes rows older than the retention window.
func (c *Cache) Sweep(ctx context.Context, retention time.Duration) (domain.SweepReport, error) {
	var report domain.SweepReport
	cutoff := time.Now().Add(-retention).Format("2006-01-02")

	before, err := c.countSeries(ctx)
	if err != nil {
		return report, err
	}

	res, err := c.db.ExecContext(ctx, "DELETE FROM signatures WHERE date < ?", cutoff)
	if err != nil {
		return report, fmt.Errorf("sweeping signatures: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return report, fmt.Errorf("counting swept rows: %w", err)
	}
	report.RemovedEntries = int(removed)

	after, err := c.countSeries(ctx)
	if err != nil {
		return report, err
	}
	report.RemovedSeries = before - after

	logger.Info("cache sweep removed %d signatures across %d emptied series", report.RemovedEntries, report.RemovedSeries)
	return report, nil
}

func (c *Cache) countSeries(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT series_id) FROM signatures").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting series: %w", err)
	}
	return count, nil
}

// Stats summarises the cache for operational reporting.
func (c *Cache) Stats(ctx context.Context) (domain.CacheStats, error) {
	var stats domain.CacheStats

	rows, err := c.db.QueryContext(ctx, `
		SELECT series_id, COUNT(*), COALESCE(SUM(LENGTH(blob)), 0), MIN(date), MAX(date)
		FROM signatures
		GROUP BY series_id
		ORDER BY series_id
	`)
	if err != nil {
		return stats, fmt.Errorf("querying cache stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var detail domain.SeriesCacheDetail
		if err := rows.Scan(&detail.SeriesID, &detail.SignatureCount, &detail.SizeBytes,
			&detail.OldestDate, &detail.NewestDate); err != nil {
			return stats, fmt.Errorf("scanning cache stats: %w", err)
		}
		stats.TotalSeries++
		stats.TotalSignatures += detail.SignatureCount
		stats.TotalSizeBytes += detail.SizeBytes
		stats.Series = append(stats.Series, detail)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterating cache stats: %w", err)
	}
	return stats, nil
}

// decodeBlob decompresses and decodes one signature blob, rejecting
// schemas from a different major version.
func decodeBlob(blob []byte) (*domain.Signature, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("decompress signature: %w", err)
	}
	defer gz.Close()

	var sig domain.Signature
	if err := json.NewDecoder(gz).Decode(&sig); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	if !domain.SchemaCompatible(sig.SchemaVersion) {
		return nil, fmt.Errorf("%w: schema %s", domain.ErrUnsupportedSchema, sig.SchemaVersion)
	}
	return &sig, nil
}
