package domain

// CacheStats summarises the signature cache for operational reporting.
type CacheStats struct {
	// TotalSeries counts per-series containers.
	TotalSeries int `json:"total_series"`

	// TotalSignatures counts stored signature blobs.
	TotalSignatures int `json:"total_signatures"`

	// TotalSizeBytes is the approximate on-disk size of all blobs.
	TotalSizeBytes int64 `json:"total_size_bytes"`

	// Series holds per-series detail, ordered by series id.
	Series []SeriesCacheDetail `json:"series"`
}

// SeriesCacheDetail is the cache summary for one series.
type SeriesCacheDetail struct {
	SeriesID       string `json:"series_id"`
	SignatureCount int    `json:"signature_count"`
	SizeBytes      int64  `json:"size_bytes"`

	// OldestDate and NewestDate bound the stored occurrence dates,
	// YYYY-MM-DD. Empty when the series has no entries.
	OldestDate string `json:"oldest_date"`
	NewestDate string `json:"newest_date"`
}

// SweepReport is the outcome of a retention sweep.
type SweepReport struct {
	// RemovedEntries counts deleted signature blobs.
	RemovedEntries int `json:"removed_entries"`

	// RemovedSeries counts per-series containers deleted because the
	// sweep left them empty.
	RemovedSeries int `json:"removed_series"`
}
