package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptEntry indicates persisted state failed to decode.
	// Readers treat the entry as absent and warn rather than abort.
	ErrCorruptEntry = errors.New("corrupt entry")

	// ErrUnsupportedSchema indicates a persisted signature carries an
	// unknown major schema version. The entry is skipped, never guessed at.
	ErrUnsupportedSchema = errors.New("unsupported schema version")

	// Fetching Errors.

	// ErrAuthRequired indicates no Google credentials are available.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoDocuments indicates a meeting carries no note document links.
	ErrNoDocuments = errors.New("no note documents attached")

	// ErrExportTooLarge indicates a document export exceeded the size cap.
	ErrExportTooLarge = errors.New("document export too large")
)
