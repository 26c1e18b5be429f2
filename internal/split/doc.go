// Package split partitions an assembled M4B into size-bounded parts.
//
// Planning is a pure computation over the container's chapter list and byte
// size: a uniform bytes-per-second estimate assigns each chapter a size, and
// chapters accumulate into contiguous parts that stay under the target. Chapter
// boundaries are never cut, so a single chapter larger than the target becomes
// a part of its own. Rendering then cuts each part out of the source container
// with stream copy, carrying the cover image across and rebasing the chapter
// timeline of every part to start at zero.
package split
