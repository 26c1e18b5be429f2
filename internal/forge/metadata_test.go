package forge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookforge/internal/book"
)

func TestWriteChapterDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.ffm")
	chapters := []book.Chapter{
		{Index: 1, Start: 0, End: 12.5, Title: "Intro"},
		{Index: 2, Start: 12.5, End: 40, Title: "Q=A; #2"},
	}
	if err := WriteChapterDocument(path, chapters); err != nil {
		t.Fatalf("WriteChapterDocument: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	doc := string(data)

	if !strings.HasPrefix(doc, ";FFMETADATA1\n") {
		t.Fatalf("missing header: %q", doc)
	}
	if strings.Count(doc, "[CHAPTER]") != 2 {
		t.Fatalf("expected 2 chapter sections: %q", doc)
	}
	if !strings.Contains(doc, "TIMEBASE=1/1000") {
		t.Fatalf("missing millisecond timebase: %q", doc)
	}
	if !strings.Contains(doc, "START=12500") || !strings.Contains(doc, "END=40000") {
		t.Fatalf("timestamps not in milliseconds: %q", doc)
	}
	if !strings.Contains(doc, `title=Q\=A\; \#2`) {
		t.Fatalf("reserved characters not escaped: %q", doc)
	}
}

func TestWriteConcatList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapters.txt")
	if err := writeConcatList(path, []string{"chap_0001.m4a", "it's here.m4a"}); err != nil {
		t.Fatalf("writeConcatList: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %v", lines)
	}
	if lines[0] != "file 'chap_0001.m4a'" {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if lines[1] != `file 'it'\''s here.m4a'` {
		t.Fatalf("single quote not escaped: %q", lines[1])
	}
}
