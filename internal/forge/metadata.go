package forge

import (
	"fmt"
	"os"
	"strings"

	"bookforge/internal/book"
)

// WriteChapterDocument renders chapters as an ffmetadata document at path.
// Timestamps use a millisecond timebase so chapter marks survive the remux.
func WriteChapterDocument(path string, chapters []book.Chapter) error {
	var sb strings.Builder
	sb.WriteString(";FFMETADATA1\n")
	for _, ch := range chapters {
		sb.WriteString("\n[CHAPTER]\n")
		sb.WriteString("TIMEBASE=1/1000\n")
		fmt.Fprintf(&sb, "START=%d\n", int64(ch.Start*1000))
		fmt.Fprintf(&sb, "END=%d\n", int64(ch.End*1000))
		fmt.Fprintf(&sb, "title=%s\n", escapeMetadataValue(ch.Title))
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write chapter document: %w", err)
	}
	return nil
}

// writeConcatList renders a concat-demuxer input list at path. Entries are
// resolved relative to the list file, so callers pass bare staging filenames.
func writeConcatList(path string, entries []string) error {
	var sb strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(entry, "'", `'\''`))
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// escapeMetadataValue escapes the characters the ffmetadata grammar reserves.
func escapeMetadataValue(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"=", `\=`,
		";", `\;`,
		"#", `\#`,
		"\n", `\`+"\n",
	)
	return replacer.Replace(value)
}
