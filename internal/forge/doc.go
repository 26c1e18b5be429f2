// Package forge assembles a directory of MP3 chapter files into a single
// chaptered M4B audiobook.
//
// The pipeline probes every source file, derives a target AAC bitrate from the
// mean source bitrate, transcodes the chapters concurrently into a staging
// directory, and merges the intermediates with an ffmetadata chapter document.
// A per-directory lock prevents two builds from racing over the same book, and
// staging space is reclaimed whether the build succeeds or fails.
package forge
