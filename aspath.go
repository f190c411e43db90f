package bgp

import (
	"bytes"
	"io"
)

// SegmentType distinguishes an AS_SET from an AS_SEQUENCE (§3).
type SegmentType uint8

const (
	SegmentSet      SegmentType = 1
	SegmentSequence SegmentType = 2
)

// Segment is one AS_PATH segment: a type tag and its ordered ASNs.
type Segment struct {
	Type SegmentType
	ASNs []uint32
}

// ASPath is an ordered sequence of Segments (§3). origin() and
// sequence() are query-only derived views, never mutating state.
type ASPath struct {
	Segments []Segment
}

// Origin returns the last ASN of a trailing AS_SEQUENCE, or (0, false)
// if the path is empty or ends in an AS_SET.
func (a ASPath) Origin() (uint32, bool) {
	if len(a.Segments) == 0 {
		return 0, false
	}
	last := a.Segments[len(a.Segments)-1]
	if last.Type != SegmentSequence || len(last.ASNs) == 0 {
		return 0, false
	}
	return last.ASNs[len(last.ASNs)-1], true
}

// Sequence flattens every segment's ASNs into one ordered list, or
// returns (nil, false) if any segment is an AS_SET.
func (a ASPath) Sequence() ([]uint32, bool) {
	out := make([]uint32, 0, len(a.Segments))
	for _, seg := range a.Segments {
		if seg.Type == SegmentSet {
			return nil, false
		}
		out = append(out, seg.ASNs...)
	}
	return out, true
}

// ParseASPathFixed decodes an AS_PATH (or AS4_PATH) body of known ASN
// width — used when the negotiated capability already pins the width
// (AS4_PATH is always 4-byte; a session with FOUR_OCTET_ASN_SUPPORT
// negotiated removes the ambiguity for AS_PATH too).
func ParseASPathFixed(body []byte, width int) (ASPath, error) {
	r := bytes.NewReader(body)
	var path ASPath
	for r.Len() > 0 {
		segType, err := readU8(r)
		if err != nil {
			return ASPath{}, err
		}
		count, err := readU8(r)
		if err != nil {
			return ASPath{}, err
		}
		asns := make([]uint32, count)
		for i := range asns {
			v, err := readWidth(r, width)
			if err != nil {
				return ASPath{}, err
			}
			asns[i] = v
		}
		path.Segments = append(path.Segments, Segment{Type: SegmentType(segType), ASNs: asns})
	}
	return path, nil
}

// ParseASPathAmbiguous implements §4.8: when the ASN width is not
// determined by capability state, try both 2- and 4-byte widths and
// pick the one whose structural walk ends exactly at the declared
// length, preferring 4-byte if both validate.
func ParseASPathAmbiguous(body []byte) (ASPath, error) {
	path4, ok4 := tryASPathWidth(body, 4)
	path2, ok2 := tryASPathWidth(body, 2)
	switch {
	case ok4:
		return path4, nil
	case ok2:
		return path2, nil
	default:
		return ASPath{}, newErr(KindMalformedAsPath, "neither 2-byte nor 4-byte ASN width validates for %d declared bytes", len(body))
	}
}

// tryASPathWidth performs the structural walk for one candidate width,
// reporting whether it consumed exactly len(body) bytes and every
// segment after the first had a type in {AS_SET, AS_SEQUENCE}.
func tryASPathWidth(body []byte, width int) (ASPath, bool) {
	var path ASPath
	cursor := 0
	n := len(body)
	first := true
	for cursor < n {
		if cursor+2 > n {
			return ASPath{}, false
		}
		segType := body[cursor]
		count := int(body[cursor+1])
		if !first && (segType < 1 || segType > 2) {
			return ASPath{}, false
		}
		first = false
		need := 2 + count*width
		if cursor+need > n {
			return ASPath{}, false
		}
		asns := make([]uint32, count)
		for i := 0; i < count; i++ {
			off := cursor + 2 + i*width
			if width == 2 {
				asns[i] = uint32(body[off])<<8 | uint32(body[off+1])
			} else {
				asns[i] = uint32(body[off])<<24 | uint32(body[off+1])<<16 | uint32(body[off+2])<<8 | uint32(body[off+3])
			}
		}
		path.Segments = append(path.Segments, Segment{Type: SegmentType(segType), ASNs: asns})
		cursor += need
	}
	return path, cursor == n
}

func readWidth(r io.Reader, width int) (uint32, error) {
	if width == 2 {
		v, err := readU16(r)
		return uint32(v), err
	}
	return readU32(r)
}

// Encode always writes 4-byte ASNs (the modern, 4-octet-ASN wire form);
// a session still running 2-byte AS_PATH negotiates AS4_PATH instead.
func (a ASPath) Encode(w io.Writer) error {
	for _, seg := range a.Segments {
		if err := writeU8(w, uint8(seg.Type)); err != nil {
			return err
		}
		if len(seg.ASNs) > 255 {
			return newErr(KindEncodeOverflow, "as_path segment has %d ASNs, max 255", len(seg.ASNs))
		}
		if err := writeU8(w, uint8(len(seg.ASNs))); err != nil {
			return err
		}
		for _, asn := range seg.ASNs {
			if err := writeU32(w, asn); err != nil {
				return err
			}
		}
	}
	return nil
}
