// Package logging builds the slog loggers used across bookforge.
//
// Two handler flavors are provided: a console handler that renders compact
// human-readable lines for interactive runs, and a JSON handler for log files
// and non-TTY output. The "auto" format picks between them based on whether
// stdout is a terminal.
//
// Attr helpers mirror the slog constructors so call sites stay terse and the
// handler implementation can change without touching callers.
package logging
