package forge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanSources lists the MP3 files of dir in lexical order. The order defines
// both the chapter sequence and the chapter indices.
func ScanSources(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, Wrap(ErrNotFound, "scan", fmt.Sprintf("stat %s", dir), err)
	}
	if !info.IsDir() {
		return nil, Wrap(ErrValidation, "scan", fmt.Sprintf("%s is not a directory", dir), nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Wrap(ErrTransient, "scan", fmt.Sprintf("read %s", dir), err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp3") {
			sources = append(sources, filepath.Join(dir, entry.Name()))
		}
	}
	if len(sources) == 0 {
		return nil, Wrap(ErrNotFound, "scan", fmt.Sprintf("no MP3 files in %s", dir), nil)
	}
	sort.Strings(sources)
	return sources, nil
}

// titleStem derives a chapter title from a source filename.
func titleStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
