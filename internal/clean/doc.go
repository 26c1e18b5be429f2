// Package clean scrubs source MP3 files before a build.
//
// It removes embedded cover images so the assembled book carries exactly one
// cover, injected later from the directory's cover file, and can optionally
// strip all ID3 tags. Each file is rewritten through a temp-and-replace remux,
// and per-file failures are collected rather than aborting the whole sweep.
package clean
