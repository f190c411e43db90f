package bgp

import (
	"bytes"
	"testing"
)

func TestRouteRefreshBareRoundTrip(t *testing.T) {
	rr := RouteRefresh{AFI: AFI_IPV4, SAFI: SAFI_UNICAST}
	var buf bytes.Buffer
	if err := rr.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf.Len() != 4 {
		t.Fatalf("expected 4-byte bare route-refresh body, got %d", buf.Len())
	}
	got, err := ParseRouteRefresh(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AFI != AFI_IPV4 || got.SAFI != SAFI_UNICAST || got.HasORF {
		t.Fatalf("unexpected route-refresh: %+v", got)
	}
}

func TestRouteRefreshORFRoundTrip(t *testing.T) {
	rr := RouteRefresh{
		AFI: AFI_IPV4, SAFI: SAFI_UNICAST,
		HasORF: true, WhenToRefresh: ORFImmediate, ORFType: 64,
		ORFEntries: []ORFEntry{{AFI: AFI_IPV4, SAFI: SAFI_UNICAST, Type: 64, Direction: AddPathSendReceive}},
	}
	var buf bytes.Buffer
	if err := rr.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseRouteRefresh(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.HasORF || got.WhenToRefresh != ORFImmediate || len(got.ORFEntries) != 1 {
		t.Fatalf("unexpected route-refresh: %+v", got)
	}
	if got.ORFEntries[0].Direction != AddPathSendReceive {
		t.Fatalf("unexpected orf entry: %+v", got.ORFEntries[0])
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeHeader(&buf, 10, MsgUpdate); err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf.Write(make([]byte, 10))

	hdr, err := ReadHeader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hdr.Type != MsgUpdate || hdr.Length != 29 {
		t.Fatalf("unexpected header: %+v", hdr)
	}
}

func TestHeaderRejectsOutOfRangeLength(t *testing.T) {
	var marker [16]byte
	for i := range marker {
		marker[i] = 0xFF
	}
	body := append(append([]byte{}, marker[:]...), 0x00, 0x05, byte(MsgKeepalive))
	if _, err := ReadHeader(bytes.NewReader(body)); err == nil {
		t.Fatalf("expected error for declared length below minimum")
	}
}
