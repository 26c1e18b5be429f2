package tag

import (
	"testing"

	"bookforge/internal/book"
)

func intPtr(v int) *int { return &v }

func TestValuesIncludesVolumeZero(t *testing.T) {
	rec := Record{Meta: book.Metadata{Title: "Book", Series: "Saga", Volume: intPtr(0)}}
	vals := values(rec)
	got, ok := vals[FieldSeriesPart]
	if !ok {
		t.Fatal("volume 0 omitted; must be written explicitly")
	}
	if got != "0" {
		t.Fatalf("series part %q, want \"0\"", got)
	}
}

func TestValuesOmitsAbsentVolume(t *testing.T) {
	rec := Record{Meta: book.Metadata{Title: "Book"}}
	if _, ok := values(rec)[FieldSeriesPart]; ok {
		t.Fatal("absent volume produced a series-part value")
	}
}

func TestValuesMirrorsTitleToAlbumAndAuthorsToAlbumArtist(t *testing.T) {
	rec := Record{Meta: book.Metadata{Title: "Book", Authors: "A. Writer", Year: intPtr(1999)}}
	vals := values(rec)
	if vals[FieldAlbum] != "Book" {
		t.Fatalf("album %q", vals[FieldAlbum])
	}
	if vals[FieldAlbumArtist] != "A. Writer" {
		t.Fatalf("album artist %q", vals[FieldAlbumArtist])
	}
	if vals[FieldYear] != "1999" {
		t.Fatalf("year %q", vals[FieldYear])
	}
}

func TestValuesDropsEmptyFields(t *testing.T) {
	vals := values(Record{Meta: book.Metadata{Title: "Book"}})
	for _, field := range []Field{FieldArtist, FieldGenre, FieldSeries, FieldISBN, FieldLyrics} {
		if _, ok := vals[field]; ok {
			t.Fatalf("empty field %d present in values", field)
		}
	}
}

func TestMappingTablesCoverVendorFields(t *testing.T) {
	for _, field := range []Field{FieldSeries, FieldSeriesPart, FieldISBN, FieldASIN} {
		if _, ok := id3UserFrames[field]; !ok {
			t.Fatalf("field %d missing from TXXX table", field)
		}
		if _, ok := mp4Freeform[field]; !ok {
			t.Fatalf("field %d missing from freeform table", field)
		}
	}
	// Standard fields must not leak into the freeform table.
	if _, ok := mp4Freeform[FieldTitle]; ok {
		t.Fatal("title mapped as freeform atom")
	}
}

func TestTrackText(t *testing.T) {
	if got := trackText(2, 5); got != "2/5" {
		t.Fatalf("track %q", got)
	}
	if got := trackText(3, 0); got != "3" {
		t.Fatalf("track without total %q", got)
	}
}
