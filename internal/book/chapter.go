package book

import (
	"errors"
	"fmt"
	"strings"
)

// Chapter is a named time range within an audiobook container. Start and End
// are fractional seconds; the millisecond timebase some containers use is a
// serialization detail, not part of the domain model.
type Chapter struct {
	Index int
	Start float64
	End   float64
	Title string
}

// Duration returns the chapter length in seconds.
func (c Chapter) Duration() float64 {
	return c.End - c.Start
}

// TimelineEntry is one source file's contribution to the chapter timeline.
type TimelineEntry struct {
	Title    string
	Duration float64
}

// BuildTimeline accumulates cumulative chapter boundaries from ordered
// (title, duration) pairs. The first chapter starts at zero, chapters are
// contiguous, and the last chapter ends at the total duration.
//
// Zero-duration entries are skipped rather than emitted as empty chapters.
// An input with no positive-duration entries is a validation error.
func BuildTimeline(entries []TimelineEntry) ([]Chapter, error) {
	chapters := make([]Chapter, 0, len(entries))
	cursor := 0.0
	for _, entry := range entries {
		if entry.Duration < 0 {
			return nil, fmt.Errorf("chapter %q: negative duration %f", entry.Title, entry.Duration)
		}
		if entry.Duration == 0 {
			continue
		}
		chapters = append(chapters, Chapter{
			Index: len(chapters),
			Start: cursor,
			End:   cursor + entry.Duration,
			Title: strings.TrimSpace(entry.Title),
		})
		cursor += entry.Duration
	}
	if len(chapters) == 0 {
		return nil, errors.New("timeline: no chapters with positive duration")
	}
	return chapters, nil
}

// Rebase shifts chapters so the first one starts at zero, renumbering
// indexes from zero. Used when a chapter run becomes its own container.
func Rebase(chapters []Chapter) []Chapter {
	if len(chapters) == 0 {
		return nil
	}
	offset := chapters[0].Start
	rebased := make([]Chapter, len(chapters))
	for i, ch := range chapters {
		rebased[i] = Chapter{
			Index: i,
			Start: ch.Start - offset,
			End:   ch.End - offset,
			Title: ch.Title,
		}
	}
	return rebased
}

// ValidateTimeline checks the contiguity invariants on an ordered chapter
// list: first start at zero, no gaps or overlaps, strictly increasing ends.
func ValidateTimeline(chapters []Chapter) error {
	if len(chapters) == 0 {
		return errors.New("timeline: empty chapter list")
	}
	if chapters[0].Start != 0 {
		return fmt.Errorf("timeline: first chapter starts at %f, want 0", chapters[0].Start)
	}
	for i, ch := range chapters {
		if ch.End <= ch.Start {
			return fmt.Errorf("timeline: chapter %d (%q) has non-positive duration", i, ch.Title)
		}
		if i > 0 && ch.Start != chapters[i-1].End {
			return fmt.Errorf("timeline: gap between chapter %d and %d", i-1, i)
		}
	}
	return nil
}
