package mp4tag

import (
	"encoding/binary"
	"fmt"
)

// Well-known data atom type flags.
const (
	dataBinary uint32 = 0
	dataUTF8   uint32 = 1
	dataJPEG   uint32 = 13
	dataPNG    uint32 = 14
)

// iTunesMean is the reverse-DNS namespace vendor atoms live under.
const iTunesMean = "com.apple.iTunes"

// CoverFormat identifies the embedded cover image encoding.
type CoverFormat uint32

// Cover formats map directly onto data atom type flags.
const (
	CoverJPEG CoverFormat = CoverFormat(dataJPEG)
	CoverPNG  CoverFormat = CoverFormat(dataPNG)
)

// item is one ilst entry: either a standard four-character code or a ----
// freeform atom addressed by mean+name.
type item struct {
	code    string
	mean    string
	name    string
	flag    uint32
	payload []byte
}

// Tags accumulates ilst items. Items parsed from an existing ilst are kept
// in order; setters replace a matching item in place or append, so staged
// writes (standard tags, then freeform atoms, then cover) compose instead of
// clobbering each other.
type Tags struct {
	items []item
}

// SetText sets a UTF-8 text item for a standard code such as "\xa9nam".
func (t *Tags) SetText(code, value string) {
	t.set(item{code: code, flag: dataUTF8, payload: []byte(value)})
}

// SetPair sets a (current, total) tuple for trkn or disk.
func (t *Tags) SetPair(code string, current, total int) {
	width := 6
	if code == "trkn" {
		width = 8
	}
	payload := make([]byte, width)
	binary.BigEndian.PutUint16(payload[2:4], uint16(current))
	binary.BigEndian.PutUint16(payload[4:6], uint16(total))
	t.set(item{code: code, flag: dataBinary, payload: payload})
}

// SetFreeform sets a vendor atom ----:com.apple.iTunes:<name> with a UTF-8
// encoded payload.
func (t *Tags) SetFreeform(name, value string) {
	t.set(item{code: "----", mean: iTunesMean, name: name, flag: dataUTF8, payload: []byte(value)})
}

// SetCover replaces the embedded cover image. A single covr item is kept,
// so injecting overwrites rather than appending duplicates.
func (t *Tags) SetCover(data []byte, format CoverFormat) {
	t.set(item{code: "covr", flag: uint32(format), payload: data})
}

// Get returns the UTF-8 payload for a standard code, or "" when absent.
func (t *Tags) Get(code string) string {
	for _, it := range t.items {
		if it.code == code && it.code != "----" {
			return string(it.payload)
		}
	}
	return ""
}

// GetFreeform returns the payload of a vendor atom by name, or "" when absent.
func (t *Tags) GetFreeform(name string) string {
	for _, it := range t.items {
		if it.code == "----" && it.name == name {
			return string(it.payload)
		}
	}
	return ""
}

// HasCover reports whether a covr item is present.
func (t *Tags) HasCover() bool {
	for _, it := range t.items {
		if it.code == "covr" {
			return true
		}
	}
	return false
}

func (t *Tags) set(next item) {
	for i, existing := range t.items {
		if existing.code != next.code {
			continue
		}
		if next.code == "----" && (existing.mean != next.mean || existing.name != next.name) {
			continue
		}
		t.items[i] = next
		return
	}
	t.items = append(t.items, next)
}

// parseIlst decodes the items of an ilst atom payload.
func parseIlst(buf []byte, start, end int) (*Tags, error) {
	tags := &Tags{}
	atoms, err := parseAtoms(buf, start, end)
	if err != nil {
		return nil, err
	}
	for _, atom := range atoms {
		children, err := parseAtoms(buf, atom.start+8, atom.end)
		if err != nil {
			return nil, err
		}
		entry := item{code: atom.typ}
		if atom.typ == "----" {
			if mean, ok := findAtom(children, "mean"); ok {
				entry.mean = string(buf[mean.start+8+fullAtomExtra : mean.end])
			}
			if name, ok := findAtom(children, "name"); ok {
				entry.name = string(buf[name.start+8+fullAtomExtra : name.end])
			}
		}
		data, ok := findAtom(children, "data")
		if !ok {
			// Item without a data child; preserve nothing, players ignore it.
			continue
		}
		payloadStart, payloadEnd := data.payload(fullAtomExtra + 4)
		if payloadStart > payloadEnd {
			return nil, fmt.Errorf("mp4: malformed data atom under %q", atom.typ)
		}
		entry.flag = binary.BigEndian.Uint32(buf[data.start+8:data.start+12]) & 0x00ffffff
		entry.payload = append([]byte(nil), buf[payloadStart:payloadEnd]...)
		tags.items = append(tags.items, entry)
	}
	return tags, nil
}

// build serializes the items back into a complete ilst atom.
func (t *Tags) build() []byte {
	var body []byte
	for _, it := range t.items {
		var inner []byte
		if it.code == "----" {
			inner = append(inner, wrapAtom("mean", append(make([]byte, fullAtomExtra), it.mean...))...)
			inner = append(inner, wrapAtom("name", append(make([]byte, fullAtomExtra), it.name...))...)
		}
		data := make([]byte, 8, 8+len(it.payload))
		binary.BigEndian.PutUint32(data[0:4], it.flag)
		data = append(data, it.payload...)
		inner = append(inner, wrapAtom("data", data)...)
		body = append(body, wrapAtom(it.code, inner)...)
	}
	return wrapAtom("ilst", body)
}
