// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// SeriesLoaded carries the tracked series list back to the model.
type SeriesLoaded struct {
	Series []domain.Series
	Err    error
}

// SeriesSelected is sent when a series is chosen from the list.
type SeriesSelected struct {
	Series domain.Series
}

// DiffLoaded carries the latest-occurrence diff summary for the
// selected series.
type DiffLoaded struct {
	SeriesID string
	Summary  string
	Err      error
}

// ErrorOccurred is sent when an operation fails.
type ErrorOccurred struct {
	Err error
}
