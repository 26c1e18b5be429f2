// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no bookforge-specific dependencies beyond the chapter
// type and could be extracted as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams, format metadata,
//     and container chapters
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result cover duration/size/bitrate parsing and convert
// container chapters into the domain chapter type.
package ffprobe
