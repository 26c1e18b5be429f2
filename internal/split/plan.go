package split

import (
	"fmt"

	"bookforge/internal/book"
)

// PlannedPart is one contiguous chapter group bound for a single output file.
// Chapters keep their original timeline; rebasing happens at render time.
type PlannedPart struct {
	Index          int
	Chapters       []book.Chapter
	EstimatedBytes int64
}

// Start returns the part's begin position on the original timeline.
func (p PlannedPart) Start() float64 {
	return p.Chapters[0].Start
}

// End returns the part's end position on the original timeline.
func (p PlannedPart) End() float64 {
	return p.Chapters[len(p.Chapters)-1].End
}

// Plan partitions chapters into parts whose estimated sizes stay within
// targetBytes. Sizes are estimated from a uniform bytes-per-second rate, which
// holds because assembly encodes every chapter at one fixed bitrate. A part is
// closed when the next chapter would push it past the target; a chapter whose
// own estimate exceeds the target still becomes a (single-chapter) part, and
// the last chapter always closes the last part.
func Plan(chapters []book.Chapter, totalBytes, targetBytes int64) ([]PlannedPart, error) {
	if len(chapters) == 0 {
		return nil, fmt.Errorf("plan split: no chapters")
	}
	if totalBytes <= 0 {
		return nil, fmt.Errorf("plan split: container size %d is not positive", totalBytes)
	}
	if targetBytes <= 0 {
		return nil, fmt.Errorf("plan split: target size %d is not positive", targetBytes)
	}
	if err := book.ValidateTimeline(chapters); err != nil {
		return nil, fmt.Errorf("plan split: %w", err)
	}

	totalDuration := chapters[len(chapters)-1].End
	bytesPerSecond := float64(totalBytes) / totalDuration

	var parts []PlannedPart
	var current []book.Chapter
	var currentBytes int64

	flush := func() {
		if len(current) == 0 {
			return
		}
		parts = append(parts, PlannedPart{
			Index:          len(parts) + 1,
			Chapters:       current,
			EstimatedBytes: currentBytes,
		})
		current = nil
		currentBytes = 0
	}

	for _, ch := range chapters {
		size := int64(ch.Duration() * bytesPerSecond)
		if len(current) > 0 && currentBytes+size > targetBytes {
			flush()
		}
		current = append(current, ch)
		currentBytes += size
	}
	flush()

	return parts, nil
}
