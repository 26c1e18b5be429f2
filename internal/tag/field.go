package tag

import "strconv"

// Field enumerates every metadata field the injector knows how to write.
type Field int

const (
	FieldTitle Field = iota
	FieldSubtitle
	FieldArtist
	FieldAlbumArtist
	FieldAlbum
	FieldComposer
	FieldGenre
	FieldYear
	FieldLanguage
	FieldPublisher
	FieldCopyright
	FieldComment
	FieldDescription
	FieldSynopsis
	FieldSeries
	FieldSeriesPart
	FieldISBN
	FieldASIN
	FieldLyrics
)

// id3TextFrames maps fields carried by plain ID3v2 text frames.
var id3TextFrames = map[Field]string{
	FieldTitle:       "TIT2",
	FieldSubtitle:    "TIT3",
	FieldArtist:      "TPE1",
	FieldAlbumArtist: "TPE2",
	FieldAlbum:       "TALB",
	FieldComposer:    "TCOM",
	FieldGenre:       "TCON",
	FieldYear:        "TDRC",
	FieldLanguage:    "TLAN",
	FieldPublisher:   "TPUB",
	FieldCopyright:   "TCOP",
}

// id3UserFrames maps fields that have no reserved frame and ride in TXXX,
// keyed by description.
var id3UserFrames = map[Field]string{
	FieldSeries:     "series",
	FieldSeriesPart: "series-part",
	FieldISBN:       "isbn",
	FieldASIN:       "asin",
}

// mp4Atoms maps fields carried by reserved ilst atom codes.
var mp4Atoms = map[Field]string{
	FieldTitle:       "\xa9nam",
	FieldArtist:      "\xa9ART",
	FieldAlbumArtist: "aART",
	FieldAlbum:       "\xa9alb",
	FieldComposer:    "\xa9wrt",
	FieldGenre:       "\xa9gen",
	FieldYear:        "\xa9day",
	FieldLanguage:    "\xa9lan",
	FieldPublisher:   "\xa9pub",
	FieldCopyright:   "cprt",
	FieldComment:     "\xa9cmt",
	FieldDescription: "\xa9des",
	FieldSynopsis:    "desc",
}

// mp4Freeform maps fields written as ----:com.apple.iTunes:<name> atoms.
var mp4Freeform = map[Field]string{
	FieldSeries:     "SERIES",
	FieldSeriesPart: "SERIES-PART",
	FieldSubtitle:   "SUBTITLE",
	FieldLanguage:   "LANGUAGE",
	FieldISBN:       "ISBN",
	FieldASIN:       "ASIN",
	FieldLyrics:     "LYRICS",
}

// values flattens a metadata record into per-field strings. Absent optional
// fields produce no entry; a present volume always does, so volume zero is
// written rather than dropped.
func values(rec Record) map[Field]string {
	out := map[Field]string{
		FieldTitle:       rec.Meta.Title,
		FieldAlbum:       rec.Meta.Title,
		FieldArtist:      rec.Meta.Authors,
		FieldAlbumArtist: rec.Meta.Authors,
		FieldComposer:    rec.Meta.Narrators,
		FieldGenre:       rec.Meta.Genres,
		FieldSubtitle:    rec.Meta.Subtitle,
		FieldLanguage:    rec.Meta.Language,
		FieldPublisher:   rec.Meta.Publisher,
		FieldCopyright:   rec.Meta.Copyright,
		FieldComment:     rec.Meta.Description,
		FieldDescription: rec.Meta.Description,
		FieldSynopsis:    rec.Meta.Description,
		FieldSeries:      rec.Meta.Series,
		FieldISBN:        rec.Meta.ISBN,
		FieldASIN:        rec.Meta.ASIN,
		FieldLyrics:      rec.Meta.Lyrics,
	}
	for field, value := range out {
		if value == "" {
			delete(out, field)
		}
	}
	if rec.Meta.Year != nil {
		out[FieldYear] = strconv.Itoa(*rec.Meta.Year)
	}
	if rec.Meta.HasVolume() {
		out[FieldSeriesPart] = strconv.Itoa(*rec.Meta.Volume)
	}
	return out
}
