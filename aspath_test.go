package bgp

import "testing"

func TestASPathAmbiguousPrefers4ByteOnTie(t *testing.T) {
	// A zero-entry AS_SET segment's 2-byte header (type, count) validates
	// identically under both ASN widths, since neither consumes any ASN
	// bytes. Per §4.8 the ambiguity is resolved in favor of 4-byte.
	body := []byte{1, 0} // AS_SET, 0 entries
	path4, ok4 := tryASPathWidth(body, 4)
	path2, ok2 := tryASPathWidth(body, 2)
	if !ok4 || !ok2 {
		t.Fatalf("expected both widths to validate the tie fixture: ok4=%v ok2=%v", ok4, ok2)
	}
	_ = path2

	path, err := ParseASPathAmbiguous(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path.Segments) != len(path4.Segments) {
		t.Fatalf("expected the 4-byte interpretation to win the tie")
	}
}

func TestASPathAmbiguous4ByteOnly(t *testing.T) {
	body := []byte{
		2, 1, // AS_SEQUENCE, 1 entry
		0x00, 0x01, 0x00, 0x00, // ASN 65536, only valid as 4-byte width
	}
	path, err := ParseASPathAmbiguous(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Segments[0].ASNs[0] != 0x00010000 {
		t.Fatalf("got asn %d", path.Segments[0].ASNs[0])
	}
}

func TestASPathEncodeRoundTripFixed4(t *testing.T) {
	path := ASPath{Segments: []Segment{
		{Type: SegmentSequence, ASNs: []uint32{65000, 65001}},
		{Type: SegmentSet, ASNs: []uint32{65002}},
	}}
	var buf []byte
	w := &sliceWriter{buf: &buf}
	if err := path.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := ParseASPathFixed(buf, 4)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(decoded.Segments))
	}
	origin, ok := decoded.Origin()
	if ok {
		t.Fatalf("expected no origin (path ends in AS_SET), got %d", origin)
	}
}

// sliceWriter is a minimal io.Writer over a *[]byte, used where pulling
// in bytes.Buffer would be overkill for a single append.
type sliceWriter struct{ buf *[]byte }

func (w *sliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
