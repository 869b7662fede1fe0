// Package tui provides a terminal browser for tracked meeting series.
// It shows the series list on the left and the selected series' record
// with its latest occurrence diff on the right.
package tui

import "errors"

// ErrMissingResolver is returned when the series resolver is not provided.
var ErrMissingResolver = errors.New("tui: series resolver is required")

// ErrMissingCache is returned when the signature cache is not provided.
var ErrMissingCache = errors.New("tui: signature cache is required")
