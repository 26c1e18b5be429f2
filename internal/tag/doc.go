// Package tag projects the normalized metadata record onto container-native
// tag schemes: ID3v2 frames for MP3 targets and MP4 atoms (standard plus
// iTunes freeform) for M4B targets.
//
// A closed Field enum with explicit per-format mapping tables replaces the
// stringly-typed tag dispatch an ad-hoc implementation tends to grow; an
// unsupported field is a missing table entry, visible at a glance.
//
// Tagging a file is a staged state machine: standard tags, then vendor
// atoms, then the cover, each a separate write. A failure in a later stage
// leaves the file in its last successful state; staged part files are
// disposable intermediates, so there is no rollback.
package tag
