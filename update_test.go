package bgp

import (
	"bytes"
	"net"
	"testing"
)

func TestUpdateRoundTripPlain(t *testing.T) {
	withdrawn := []NLRIEncoding{IP(NewPrefix(AFI_IPV4, 8, []byte{10}))}
	attrs := []PathAttribute{
		{Type: AttrOrigin, OriginValue: OriginIGP},
		{Type: AttrASPath, ASPathValue: ASPath{Segments: []Segment{{Type: SegmentSequence, ASNs: []uint32{65001, 65002}}}}},
		{Type: AttrNextHop, NextHop: net.IPv4(192, 0, 2, 1)},
	}
	announced := []NLRIEncoding{IP(NewPrefix(AFI_IPV4, 24, []byte{10, 0, 1}))}

	original := Update{WithdrawnRoutes: withdrawn, Attributes: attrs, NLRI: announced}

	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := ParseUpdate(buf.Bytes(), Capabilities{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.WithdrawnRoutes) != 1 || decoded.WithdrawnRoutes[0].Prefix.String() != "10.0.0.0/8" {
		t.Fatalf("unexpected withdrawn: %+v", decoded.WithdrawnRoutes)
	}
	if len(decoded.NLRI) != 1 || decoded.NLRI[0].Prefix.String() != "10.0.1.0/24" {
		t.Fatalf("unexpected nlri: %+v", decoded.NLRI)
	}
	if len(decoded.Attributes) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(decoded.Attributes))
	}
	if !decoded.IsAnnouncement() || !decoded.IsWithdrawal() {
		t.Fatalf("expected both announcement and withdrawal flags set")
	}
}

func TestUpdateEndOfRIB(t *testing.T) {
	var buf bytes.Buffer
	if err := (Update{}).Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := ParseUpdate(buf.Bytes(), Capabilities{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.IsEndOfRIB() {
		t.Fatalf("expected empty UPDATE to be End-of-RIB")
	}
}

func TestUpdateAddPathNegotiated(t *testing.T) {
	caps := Capabilities{AddPath: map[AfiSafi]AddPathDirection{ipv4Unicast: AddPathSendReceive}}

	original := Update{
		NLRI: []NLRIEncoding{IPWithPathID(NewPrefix(AFI_IPV4, 24, []byte{10, 0, 1}), 9)},
	}
	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := ParseUpdate(buf.Bytes(), caps)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.NLRI) != 1 || decoded.NLRI[0].PathID != 9 {
		t.Fatalf("unexpected nlri: %+v", decoded.NLRI)
	}
}

func TestUpdateNormalizeFlattensMPReach(t *testing.T) {
	prefix := NewPrefix(AFI_IPV6, 64, net.ParseIP("2001:db8::").To16()[:8])
	original := Update{
		Attributes: []PathAttribute{
			{Type: AttrOrigin, OriginValue: OriginIGP},
			{Type: AttrMPReachNLRI, MPAFI: AFI_IPV6, MPSAFI: SAFI_UNICAST, MPNextHop: net.ParseIP("2001:db8::1").To16(), MPNLRI: []NLRIEncoding{IP(prefix)}},
		},
	}
	flat := original.Normalize()
	if len(flat.NLRI) != 1 || flat.NLRI[0].Prefix.String() != prefix.String() {
		t.Fatalf("expected normalized nlri to contain the mp_reach prefix, got %+v", flat.NLRI)
	}
	if len(flat.Attributes) != 1 || flat.Attributes[0].Type != AttrOrigin {
		t.Fatalf("expected mp_reach_nlri removed from attributes, got %+v", flat.Attributes)
	}
}
