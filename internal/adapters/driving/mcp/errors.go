// Package mcp provides an MCP (Model Context Protocol) server adapter
// for the meeting notes handler. It lets AI assistants inspect tracked
// meeting series, diff occurrences and read stored notes.
package mcp

import "errors"

// ErrMissingResolver is returned when the series resolver is not provided.
var ErrMissingResolver = errors.New("mcp: series resolver is required")

// ErrMissingCache is returned when the signature cache is not provided.
var ErrMissingCache = errors.New("mcp: signature cache is required")
