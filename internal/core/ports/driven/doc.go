// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for filtering to function:
//
//   - SeriesRegistry: Series record persistence (JSON registry file)
//   - SignatureCache: Compressed signature persistence (flat files or SQLite)
//   - NotesStore: Week-organised notes file persistence
//   - ConfigStore: Application configuration
//
// # Fetch-only Interfaces
//
// These are needed only by the fetch pipeline; the diff, series and
// cache commands work without them:
//
//   - MeetingSource: Calendar scan for recent meetings (Google Calendar)
//   - DocConverter: Remote document to markdown conversion (Google Docs)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
