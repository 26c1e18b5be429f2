package tag

import (
	"fmt"
	"strconv"

	"github.com/bogem/id3v2"
)

// ID3Writer writes ID3v2 frames for MP3 targets.
type ID3Writer struct{}

func (ID3Writer) WriteStandard(path string, rec Record) error {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 %s: %w", path, err)
	}
	defer t.Close()
	t.SetDefaultEncoding(id3v2.EncodingUTF8)

	vals := values(rec)
	for field, frameID := range id3TextFrames {
		if value, ok := vals[field]; ok {
			t.AddTextFrame(frameID, id3v2.EncodingUTF8, value)
		}
	}
	if rec.Track > 0 {
		t.AddTextFrame("TRCK", id3v2.EncodingUTF8, trackText(rec.Track, rec.TrackTotal))
	}
	if rec.Disc > 0 {
		t.AddTextFrame("TPOS", id3v2.EncodingUTF8, trackText(rec.Disc, rec.DiscTotal))
	}

	// Comment-like fields share the COMM frame, distinguished by the
	// description sub-field.
	t.DeleteFrames(t.CommonID("Comments"))
	for desc, field := range map[string]Field{"": FieldComment, "description": FieldDescription, "synopsis": FieldSynopsis} {
		if value, ok := vals[field]; ok {
			t.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: desc,
				Text:        value,
			})
		}
	}

	if err := t.Save(); err != nil {
		return fmt.Errorf("save id3 %s: %w", path, err)
	}
	return nil
}

func (ID3Writer) WriteVendor(path string, rec Record) error {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 %s: %w", path, err)
	}
	defer t.Close()
	t.SetDefaultEncoding(id3v2.EncodingUTF8)

	vals := values(rec)
	for field, desc := range id3UserFrames {
		if value, ok := vals[field]; ok {
			t.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
				Encoding:    id3v2.EncodingUTF8,
				Description: desc,
				Value:       value,
			})
		}
	}
	if lyrics, ok := vals[FieldLyrics]; ok {
		t.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding:          id3v2.EncodingUTF8,
			Language:          "eng",
			ContentDescriptor: "",
			Lyrics:            lyrics,
		})
	}

	if err := t.Save(); err != nil {
		return fmt.Errorf("save id3 %s: %w", path, err)
	}
	return nil
}

func (ID3Writer) WriteCover(path string, image []byte) error {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 %s: %w", path, err)
	}
	defer t.Close()

	_, mime := CoverFormatOf(image)
	t.DeleteFrames(t.CommonID("Attached picture"))
	t.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mime,
		PictureType: id3v2.PTFrontCover,
		Description: "Front Cover",
		Picture:     image,
	})

	if err := t.Save(); err != nil {
		return fmt.Errorf("save id3 cover %s: %w", path, err)
	}
	return nil
}

func trackText(current, total int) string {
	if total > 0 {
		return strconv.Itoa(current) + "/" + strconv.Itoa(total)
	}
	return strconv.Itoa(current)
}
