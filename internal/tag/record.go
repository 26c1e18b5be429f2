package tag

import "bookforge/internal/book"

// Record is one tagging request: the immutable book metadata plus the
// per-part track/disc numbering.
//
// Track is the part's 1-based sequence index among all parts of the same
// audiobook, not the original source file count. Zero means untracked.
type Record struct {
	Meta       book.Metadata
	Track      int
	TrackTotal int
	Disc       int
	DiscTotal  int
}

// Writer projects a Record onto one container format's tag scheme. The
// three methods are the three stages of the tagging state machine and each
// performs its own complete open-modify-save cycle.
type Writer interface {
	WriteStandard(path string, rec Record) error
	WriteVendor(path string, rec Record) error
	WriteCover(path string, image []byte) error
}
