package mcp

import (
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Resolver exposes the tracked series registry.
	Resolver driving.SeriesResolver

	// Cache holds the per-occurrence content signatures the diff and
	// stats tools read from.
	Cache driven.SignatureCache

	// Notes lists the stored notes files for the week resources.
	Notes driven.NotesStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Resolver == nil {
		return ErrMissingResolver
	}
	if p.Cache == nil {
		return ErrMissingCache
	}
	// Notes only backs the optional week resources.
	return nil
}
