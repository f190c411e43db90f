package bgp

import (
	"bytes"
	"net"
	"testing"
)

func TestPathAttributeRoundTripOrigin(t *testing.T) {
	a := PathAttribute{Type: AttrOrigin, OriginValue: OriginIncomplete}
	var buf bytes.Buffer
	if err := a.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParsePathAttribute(&buf, Capabilities{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OriginValue != OriginIncomplete {
		t.Fatalf("origin = %d, want %d", got.OriginValue, OriginIncomplete)
	}
	if !got.Flags.Transitive() || got.Flags.Optional() {
		t.Fatalf("unexpected flags %08b for well-known mandatory attribute", got.Flags)
	}
}

func TestPathAttributeRoundTripNextHop(t *testing.T) {
	a := PathAttribute{Type: AttrNextHop, NextHop: net.IPv4(192, 0, 2, 1)}
	var buf bytes.Buffer
	if err := a.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParsePathAttribute(&buf, Capabilities{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.NextHop.Equal(net.IPv4(192, 0, 2, 1)) {
		t.Fatalf("next_hop = %s", got.NextHop)
	}
}

func TestPathAttributeAggregatorWidths(t *testing.T) {
	classic := PathAttribute{Type: AttrAggregator, Aggregator: Aggregator{ASN: 65000, Address: net.IPv4(1, 2, 3, 4)}}
	var buf bytes.Buffer
	classic.Flags = FlagOptional | FlagTransitive
	// Force the 2-byte shape by hand-encoding, since Encode always emits
	// the 4-byte (AS4_AGGREGATOR-compatible) form.
	buf.Write([]byte{uint8(FlagOptional | FlagTransitive), uint8(AttrAggregator), 6})
	_ = writeU16(&buf, 65000)
	buf.Write([]byte{1, 2, 3, 4})

	got, err := ParsePathAttribute(&buf, Capabilities{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Aggregator.ASN != 65000 || !got.Aggregator.Address.Equal(net.IPv4(1, 2, 3, 4)) {
		t.Fatalf("unexpected aggregator: %+v", got.Aggregator)
	}

	var buf2 bytes.Buffer
	if err := classic.Encode(&buf2); err != nil {
		t.Fatalf("encode 4-byte: %v", err)
	}
	got2, err := ParsePathAttribute(&buf2, Capabilities{})
	if err != nil {
		t.Fatalf("decode 4-byte: %v", err)
	}
	if got2.Aggregator.ASN != 65000 {
		t.Fatalf("unexpected 4-byte aggregator asn %d", got2.Aggregator.ASN)
	}
}

func TestPathAttributeMPReachNLRIRoundTrip(t *testing.T) {
	prefix := NewPrefix(AFI_IPV6, 64, net.ParseIP("2001:db8::").To16()[:8])
	a := PathAttribute{
		Type:      AttrMPReachNLRI,
		MPAFI:     AFI_IPV6,
		MPSAFI:    SAFI_UNICAST,
		MPNextHop: net.ParseIP("2001:db8::1").To16(),
		MPNLRI:    []NLRIEncoding{IP(prefix)},
	}
	var buf bytes.Buffer
	if err := a.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParsePathAttribute(&buf, Capabilities{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MPAFI != AFI_IPV6 || got.MPSAFI != SAFI_UNICAST {
		t.Fatalf("unexpected afi/safi: %v/%v", got.MPAFI, got.MPSAFI)
	}
	if len(got.MPNLRI) != 1 || got.MPNLRI[0].Prefix.String() != prefix.String() {
		t.Fatalf("unexpected nlri: %+v", got.MPNLRI)
	}
}

func TestPathAttributeUnknownReturnsError(t *testing.T) {
	a := PathAttribute{Type: AttributeType(250), Flags: FlagOptional, RawValue: []byte{1, 2, 3, 4, 5}}
	var buf bytes.Buffer
	if err := a.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err := ParsePathAttribute(&buf, Capabilities{})
	if err == nil {
		t.Fatalf("expected KindUnknownAttribute error, got nil")
	}
	if kind, ok := KindOf(err); !ok || kind != KindUnknownAttribute {
		t.Fatalf("expected KindUnknownAttribute, got %v (ok=%v)", kind, ok)
	}
}

func TestPathAttributeAIGPRoundTrip(t *testing.T) {
	a := PathAttribute{Type: AttrAIGP, AIGPType: 1, AIGPValue: []byte{0, 0, 0, 0, 0, 0, 0, 100}}
	var buf bytes.Buffer
	if err := a.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParsePathAttribute(&buf, Capabilities{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AIGPType != 1 || !bytes.Equal(got.AIGPValue, a.AIGPValue) {
		t.Fatalf("unexpected aigp: type=%d value=%v", got.AIGPType, got.AIGPValue)
	}
}

func TestPathAttributeAIGPInnerLengthBelowThreeIsMalformed(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{uint8(FlagOptional), uint8(AttrAIGP), 3})
	buf.Write([]byte{1, 0, 2}) // type=1, inner_length=2 (< 3)

	_, err := ParsePathAttribute(&buf, Capabilities{})
	if err == nil {
		t.Fatalf("expected KindMalformedAigp error, got nil")
	}
	if kind, ok := KindOf(err); !ok || kind != KindMalformedAigp {
		t.Fatalf("expected KindMalformedAigp, got %v (ok=%v)", kind, ok)
	}
}
