package bgp

import (
	"bytes"
	"testing"
)

func TestParseNLRIBlockPlainIPv4(t *testing.T) {
	// 10.0.0.0/8, 172.16.0.0/12
	buf := []byte{8, 10, 12, 172, 16}
	records, err := ParseNLRIBlock(buf, AFI_IPV4, SAFI_UNICAST, false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Prefix.String() != "10.0.0.0/8" {
		t.Fatalf("record 0 = %s, want 10.0.0.0/8", records[0].Prefix.String())
	}
	if records[1].Prefix.String() != "172.16.0.0/12" {
		t.Fatalf("record 1 = %s, want 172.16.0.0/12", records[1].Prefix.String())
	}
}

func TestParseNLRIBlockAddPath(t *testing.T) {
	buf := []byte{
		0, 0, 0, 7, 8, 10, // path id 7, 10.0.0.0/8
	}
	records, err := ParseNLRIBlock(buf, AFI_IPV4, SAFI_UNICAST, true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 || records[0].PathID != 7 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestMPLSRoundTrip(t *testing.T) {
	prefix := NewPrefix(AFI_IPV4, 24, []byte{10, 0, 1})
	original := IPMPLS(prefix, 1000)

	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	records, err := ParseNLRIBlock(buf.Bytes(), AFI_IPV4, SAFI_MPLS, false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Label != 1000 {
		t.Fatalf("label = %d, want 1000", got.Label)
	}
	if got.Prefix.String() != prefix.String() {
		t.Fatalf("prefix = %s, want %s", got.Prefix.String(), prefix.String())
	}
}

func TestMPLSVPNRoundTrip(t *testing.T) {
	prefix := NewPrefix(AFI_IPV4, 32, []byte{192, 168, 1, 1})
	original := IPVPNMPLS(0x0102030405060708, prefix, 42)

	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	records, err := ParseNLRIBlock(buf.Bytes(), AFI_IPV4, SAFI_MPLS_VPN, false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.RouteDistinguisher != 0x0102030405060708 {
		t.Fatalf("rd = %#x", got.RouteDistinguisher)
	}
	if got.Label != 42 {
		t.Fatalf("label = %d, want 42", got.Label)
	}
}

func TestL2VPNRoundTrip(t *testing.T) {
	original := L2VPN(0xAABBCCDDEEFF0011, 5, 0, 100, 2000)

	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	records, err := ParseNLRIBlock(buf.Bytes(), AFI_L2VPN, SAFI_VPLS, false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.VEID != 5 || got.BlockSize != 100 || got.BaseLabel != 2000 {
		t.Fatalf("unexpected record: %+v", got)
	}
}
