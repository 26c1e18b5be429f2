package mp4tag

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// maxMoovSize guards against loading a corrupt size field into memory.
const maxMoovSize = 256 << 20

type topAtom struct {
	typ    string
	offset int64
	size   int64
}

// ReadTags parses the ilst metadata of the container at path. A container
// without an ilst yields empty Tags.
func ReadTags(path string) (*Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	moov, _, err := loadMoov(f)
	if err != nil {
		return nil, err
	}
	return extractTags(moov)
}

// Edit merges tag changes into the container at path. The apply callback
// receives the existing items and mutates them through the Tags setters; the
// file is then rewritten atomically with chunk offsets re-based.
func Edit(path string, apply func(*Tags)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	atoms, err := scanTopLevel(f)
	if err != nil {
		return err
	}
	moovAtom, ok := findTop(atoms, "moov")
	if !ok {
		return fmt.Errorf("%s: no moov atom", path)
	}

	moov := make([]byte, moovAtom.size)
	if _, err := f.ReadAt(moov, moovAtom.offset); err != nil {
		return fmt.Errorf("read moov: %w", err)
	}

	tags, err := extractTags(moov)
	if err != nil {
		return err
	}
	apply(tags)

	newMoov, err := rebuildMoov(moov, tags.build())
	if err != nil {
		return err
	}
	delta := int64(len(newMoov)) - moovAtom.size
	if delta != 0 {
		if err := patchChunkOffsets(newMoov, moovAtom.offset, delta); err != nil {
			return err
		}
	}

	return rewrite(f, path, moovAtom, newMoov)
}

func loadMoov(f *os.File) ([]byte, int64, error) {
	atoms, err := scanTopLevel(f)
	if err != nil {
		return nil, 0, err
	}
	moovAtom, ok := findTop(atoms, "moov")
	if !ok {
		return nil, 0, errors.New("no moov atom")
	}
	moov := make([]byte, moovAtom.size)
	if _, err := f.ReadAt(moov, moovAtom.offset); err != nil {
		return nil, 0, fmt.Errorf("read moov: %w", err)
	}
	return moov, moovAtom.offset, nil
}

func scanTopLevel(f *os.File) ([]topAtom, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	fileSize := info.Size()

	var atoms []topAtom
	var header [16]byte
	offset := int64(0)
	for offset < fileSize {
		if _, err := f.ReadAt(header[:8], offset); err != nil {
			return nil, fmt.Errorf("atom header at %d: %w", offset, err)
		}
		size := int64(binary.BigEndian.Uint32(header[0:4]))
		typ := string(header[4:8])
		switch size {
		case 0:
			size = fileSize - offset
		case 1:
			if _, err := f.ReadAt(header[8:16], offset+8); err != nil {
				return nil, fmt.Errorf("extended atom size at %d: %w", offset, err)
			}
			size = int64(binary.BigEndian.Uint64(header[8:16]))
		}
		if size < 8 || offset+size > fileSize {
			return nil, fmt.Errorf("atom %q at %d has invalid size %d", typ, offset, size)
		}
		if typ == "moov" && size > maxMoovSize {
			return nil, fmt.Errorf("moov atom of %d bytes exceeds sanity limit", size)
		}
		atoms = append(atoms, topAtom{typ: typ, offset: offset, size: size})
		offset += size
	}
	return atoms, nil
}

func findTop(atoms []topAtom, typ string) (topAtom, bool) {
	for _, a := range atoms {
		if a.typ == typ {
			return a, true
		}
	}
	return topAtom{}, false
}

func extractTags(moov []byte) (*Tags, error) {
	children, err := parseAtoms(moov, 8, len(moov))
	if err != nil {
		return nil, err
	}
	udta, ok := findAtom(children, "udta")
	if !ok {
		return &Tags{}, nil
	}
	udtaChildren, err := parseAtoms(moov, udta.start+8, udta.end)
	if err != nil {
		return nil, err
	}
	meta, ok := findAtom(udtaChildren, "meta")
	if !ok {
		return &Tags{}, nil
	}
	metaChildren, err := parseAtoms(moov, meta.start+8+fullAtomExtra, meta.end)
	if err != nil {
		return nil, err
	}
	ilst, ok := findAtom(metaChildren, "ilst")
	if !ok {
		return &Tags{}, nil
	}
	return parseIlst(moov, ilst.start+8, ilst.end)
}

func rebuildMoov(moov []byte, newIlst []byte) ([]byte, error) {
	children, err := parseAtoms(moov, 8, len(moov))
	if err != nil {
		return nil, err
	}
	var payload []byte
	replaced := false
	for _, child := range children {
		if child.typ == "udta" {
			rebuilt, err := rebuildUdta(moov, child, newIlst)
			if err != nil {
				return nil, err
			}
			payload = append(payload, rebuilt...)
			replaced = true
			continue
		}
		payload = append(payload, moov[child.start:child.end]...)
	}
	if !replaced {
		payload = append(payload, newUdta(newIlst)...)
	}
	return wrapAtom("moov", payload), nil
}

func rebuildUdta(moov []byte, udta span, newIlst []byte) ([]byte, error) {
	children, err := parseAtoms(moov, udta.start+8, udta.end)
	if err != nil {
		return nil, err
	}
	var payload []byte
	replaced := false
	for _, child := range children {
		if child.typ == "meta" {
			rebuilt, err := rebuildMeta(moov, child, newIlst)
			if err != nil {
				return nil, err
			}
			payload = append(payload, rebuilt...)
			replaced = true
			continue
		}
		payload = append(payload, moov[child.start:child.end]...)
	}
	if !replaced {
		payload = append(payload, newMeta(newIlst)...)
	}
	return wrapAtom("udta", payload), nil
}

func rebuildMeta(moov []byte, meta span, newIlst []byte) ([]byte, error) {
	children, err := parseAtoms(moov, meta.start+8+fullAtomExtra, meta.end)
	if err != nil {
		return nil, err
	}
	payload := append([]byte(nil), moov[meta.start+8:meta.start+8+fullAtomExtra]...)
	replaced := false
	for _, child := range children {
		if child.typ == "ilst" {
			payload = append(payload, newIlst...)
			replaced = true
			continue
		}
		payload = append(payload, moov[child.start:child.end]...)
	}
	if !replaced {
		payload = append(payload, newIlst...)
	}
	return wrapAtom("meta", payload), nil
}

func newUdta(newIlst []byte) []byte {
	return wrapAtom("udta", newMeta(newIlst))
}

// newMeta builds a meta atom with the mdir handler iTunes-style players
// expect before the item list.
func newMeta(newIlst []byte) []byte {
	hdlr := make([]byte, 0, 33)
	hdlr = append(hdlr, make([]byte, 4)...) // version + flags
	hdlr = append(hdlr, make([]byte, 4)...) // pre_defined
	hdlr = append(hdlr, "mdir"...)
	hdlr = append(hdlr, "appl"...)
	hdlr = append(hdlr, make([]byte, 9)...) // reserved + null name

	payload := make([]byte, 4) // meta version + flags
	payload = append(payload, wrapAtom("hdlr", hdlr)...)
	payload = append(payload, newIlst...)
	return wrapAtom("meta", payload)
}

func rewrite(src *os.File, path string, moovAtom topAtom, newMoov []byte) error {
	tmpPath := path + ".mp4tag.tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := io.Copy(tmp, io.NewSectionReader(src, 0, moovAtom.offset)); err != nil {
		cleanup()
		return fmt.Errorf("copy prefix: %w", err)
	}
	if _, err := tmp.Write(newMoov); err != nil {
		cleanup()
		return fmt.Errorf("write moov: %w", err)
	}
	info, err := src.Stat()
	if err != nil {
		cleanup()
		return err
	}
	suffixStart := moovAtom.offset + moovAtom.size
	if _, err := io.Copy(tmp, io.NewSectionReader(src, suffixStart, info.Size()-suffixStart)); err != nil {
		cleanup()
		return fmt.Errorf("copy suffix: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
