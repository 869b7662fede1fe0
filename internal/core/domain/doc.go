// Package domain defines the core business entities for the meeting
// notes handler.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Series: A recognised recurring meeting across occurrences
//   - EventDescriptor: Calendar-derived identity of one occurrence
//   - Signature: Structural fingerprint of one occurrence's document text
//   - DiffResult: Section/paragraph-level comparison of two signatures
//   - Meeting: A calendar event with its attached note documents
//   - FilterResult: Outcome of smart content filtering for a meeting
//
// Types persisted as JSON (Series, Signature and their children) carry
// struct tags; the tag names are the on-disk contract and keep American
// spelling regardless of identifier spelling.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
