// Package mp4tag edits iTunes-style metadata (the moov.udta.meta.ilst atom)
// in MP4-family containers without re-muxing.
//
// The editor reads the moov atom into memory, merges the requested tag items
// into the existing ilst (creating udta/meta/ilst when absent), rebuilds
// moov, and rewrites the file atomically. Because audiobook containers are
// written faststart (moov before mdat), resizing moov shifts the media data;
// every stco/co64 chunk-offset table is patched by the size delta so players
// keep finding their samples.
//
// Supported data atoms:
//   - UTF-8 text (well-known type 1) for standard codes like ©nam
//   - binary pairs (type 0) for trkn/disk current/total tuples
//   - JPEG (13) and PNG (14) payloads for covr
//   - ---- freeform atoms with a reverse-DNS mean and a free name
package mp4tag
