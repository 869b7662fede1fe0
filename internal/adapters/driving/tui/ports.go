package tui

import (
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Resolver exposes the tracked series registry.
	Resolver driving.SeriesResolver

	// Cache holds the content signatures the detail pane diffs.
	Cache driven.SignatureCache
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Resolver == nil {
		return ErrMissingResolver
	}
	if p.Cache == nil {
		return ErrMissingCache
	}
	return nil
}
