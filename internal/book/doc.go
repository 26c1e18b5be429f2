// Package book holds the format-agnostic audiobook domain types.
//
// Key types:
//   - Metadata: normalized book-level metadata, loaded once per run
//   - Chapter: a named time range within a container, in fractional seconds
//
// Primary entry points:
//   - LoadMetadata: reads metadata.toml from a source directory with
//     directory-name fallback for the title
//   - BuildTimeline: turns ordered (title, duration) pairs into
//     contiguous chapter boundaries
//
// Everything in this package is pure or read-only; containers and tags are
// handled elsewhere.
package book
