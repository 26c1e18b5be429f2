package mp4tag

import (
	"encoding/binary"
	"fmt"
)

// span marks one atom inside a byte buffer, header included.
type span struct {
	start int
	end   int
	typ   string
}

func (s span) payload(headerExtra int) (int, int) {
	return s.start + 8 + headerExtra, s.end
}

// fullAtomExtra is the version+flags prefix carried by "full" atoms (meta,
// stco, co64, data).
const fullAtomExtra = 4

// parseAtoms walks the direct children of buf[start:end] and returns them in
// order. headerExtra skips a full-atom prefix on the parent (meta).
func parseAtoms(buf []byte, start, end int) ([]span, error) {
	var atoms []span
	offset := start
	for offset < end {
		if end-offset < 8 {
			return nil, fmt.Errorf("mp4: truncated atom header at %d", offset)
		}
		size := int(binary.BigEndian.Uint32(buf[offset : offset+4]))
		typ := string(buf[offset+4 : offset+8])
		if size == 0 {
			// Atom extends to the end of the enclosing box.
			size = end - offset
		}
		if size == 1 {
			return nil, fmt.Errorf("mp4: 64-bit atom %q not supported inside moov", typ)
		}
		if size < 8 || offset+size > end {
			return nil, fmt.Errorf("mp4: atom %q has invalid size %d", typ, size)
		}
		atoms = append(atoms, span{start: offset, end: offset + size, typ: typ})
		offset += size
	}
	return atoms, nil
}

// findAtom returns the first direct child of the given type.
func findAtom(atoms []span, typ string) (span, bool) {
	for _, a := range atoms {
		if a.typ == typ {
			return a, true
		}
	}
	return span{}, false
}

// wrapAtom prefixes payload with a size+type header.
func wrapAtom(typ string, payload []byte) []byte {
	out := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(out[0:4], uint32(8+len(payload)))
	copy(out[4:8], typ)
	copy(out[8:], payload)
	return out
}

// sampleTableContainers are the atoms descended into when hunting for
// chunk-offset tables.
var sampleTableContainers = map[string]bool{
	"moov": true,
	"trak": true,
	"mdia": true,
	"minf": true,
	"stbl": true,
}

// patchChunkOffsets walks every stco/co64 table under buf (a complete moov
// atom) and shifts offsets at or beyond threshold by delta. Offsets before
// threshold belong to data preceding moov and are left alone.
func patchChunkOffsets(buf []byte, threshold int64, delta int64) error {
	return patchOffsetsIn(buf, 8, len(buf), threshold, delta)
}

func patchOffsetsIn(buf []byte, start, end int, threshold, delta int64) error {
	atoms, err := parseAtoms(buf, start, end)
	if err != nil {
		return err
	}
	for _, atom := range atoms {
		switch {
		case atom.typ == "stco":
			if err := patchTable(buf, atom, 4, threshold, delta); err != nil {
				return err
			}
		case atom.typ == "co64":
			if err := patchTable(buf, atom, 8, threshold, delta); err != nil {
				return err
			}
		case sampleTableContainers[atom.typ]:
			if err := patchOffsetsIn(buf, atom.start+8, atom.end, threshold, delta); err != nil {
				return err
			}
		}
	}
	return nil
}

func patchTable(buf []byte, atom span, width int, threshold, delta int64) error {
	payloadStart, payloadEnd := atom.payload(fullAtomExtra)
	if payloadEnd-payloadStart < 4 {
		return fmt.Errorf("mp4: truncated %s atom", atom.typ)
	}
	count := int(binary.BigEndian.Uint32(buf[payloadStart : payloadStart+4]))
	tableStart := payloadStart + 4
	if tableStart+count*width > payloadEnd {
		return fmt.Errorf("mp4: %s entry count %d exceeds atom bounds", atom.typ, count)
	}
	for i := 0; i < count; i++ {
		pos := tableStart + i*width
		if width == 4 {
			offset := int64(binary.BigEndian.Uint32(buf[pos : pos+4]))
			if offset >= threshold {
				binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(offset+delta))
			}
		} else {
			offset := int64(binary.BigEndian.Uint64(buf[pos : pos+8]))
			if offset >= threshold {
				binary.BigEndian.PutUint64(buf[pos:pos+8], uint64(offset+delta))
			}
		}
	}
	return nil
}
