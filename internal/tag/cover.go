package tag

import (
	"bytes"
	"os"
	"path/filepath"

	"bookforge/internal/mp4tag"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// CoverFormatOf detects the image encoding by magic bytes: the PNG
// signature wins, everything else is treated as JPEG.
func CoverFormatOf(data []byte) (mp4tag.CoverFormat, string) {
	if bytes.HasPrefix(data, pngSignature) {
		return mp4tag.CoverPNG, "image/png"
	}
	return mp4tag.CoverJPEG, "image/jpeg"
}

// coverNames are the cover image files recognized in a source directory,
// in lookup order.
var coverNames = []string{"cover.jpg", "cover.jpeg", "cover.png"}

// FindCover returns the path of the source directory's cover image, or ""
// when none exists.
func FindCover(dir string) string {
	for _, name := range coverNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
