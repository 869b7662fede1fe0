// Package file provides the TOML-backed configuration store.
// Configuration lives in config.toml inside the meeting-notes config
// directory; unset keys fall back to compiled-in defaults.
package file
