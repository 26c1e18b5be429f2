package tag

import (
	"fmt"

	"bookforge/internal/mp4tag"
)

// MP4Writer writes ilst atoms for M4B targets through the mp4tag editor.
type MP4Writer struct{}

func (MP4Writer) WriteStandard(path string, rec Record) error {
	err := mp4tag.Edit(path, func(tags *mp4tag.Tags) {
		vals := values(rec)
		for field, code := range mp4Atoms {
			if value, ok := vals[field]; ok {
				tags.SetText(code, value)
			}
		}
		if rec.Track > 0 {
			tags.SetPair("trkn", rec.Track, rec.TrackTotal)
		}
		if rec.Disc > 0 {
			tags.SetPair("disk", rec.Disc, rec.DiscTotal)
		}
	})
	if err != nil {
		return fmt.Errorf("write atoms %s: %w", path, err)
	}
	return nil
}

func (MP4Writer) WriteVendor(path string, rec Record) error {
	err := mp4tag.Edit(path, func(tags *mp4tag.Tags) {
		vals := values(rec)
		for field, name := range mp4Freeform {
			if value, ok := vals[field]; ok {
				tags.SetFreeform(name, value)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("write freeform atoms %s: %w", path, err)
	}
	return nil
}

func (MP4Writer) WriteCover(path string, image []byte) error {
	format, _ := CoverFormatOf(image)
	err := mp4tag.Edit(path, func(tags *mp4tag.Tags) {
		tags.SetCover(image, format)
	})
	if err != nil {
		return fmt.Errorf("write cover %s: %w", path, err)
	}
	return nil
}
