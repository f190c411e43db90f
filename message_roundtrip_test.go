package bgp

import (
	"net"
	"testing"
)

func TestMessageRoundTripAllKinds(t *testing.T) {
	messages := []Message{
		Keepalive(),
		{Kind: MessageKindOpen, Open: Open{
			Version: 4, ASN: 65000, HoldTime: 90, BGPIdentifier: 0x0A000001,
		}},
		{Kind: MessageKindUpdate, Update: Update{
			Attributes: []PathAttribute{{Type: AttrOrigin, OriginValue: OriginIGP}},
			NLRI:       []NLRIEncoding{IP(NewPrefix(AFI_IPV4, 24, []byte{192, 0, 2}))},
		}},
		{Kind: MessageKindNotification, Notification: Notification{Major: 6, Minor: 3}},
		{Kind: MessageKindRouteRefresh, RouteRefresh: RouteRefresh{AFI: AFI_IPV4, SAFI: SAFI_UNICAST}},
	}

	for _, want := range messages {
		buf, err := want.EncodeToBytes()
		if err != nil {
			t.Fatalf("kind %v: encode: %v", want.Kind, err)
		}
		got, err := DecodeMessageBytes(buf, Capabilities{})
		if err != nil {
			t.Fatalf("kind %v: decode: %v", want.Kind, err)
		}
		if got.Kind != want.Kind {
			t.Fatalf("kind mismatch: got %v, want %v", got.Kind, want.Kind)
		}
	}
}

func TestMessageRoundTripUpdatePreservesNextHop(t *testing.T) {
	msg := Message{Kind: MessageKindUpdate, Update: Update{
		Attributes: []PathAttribute{{Type: AttrNextHop, NextHop: net.IPv4(198, 51, 100, 1)}},
		NLRI:       []NLRIEncoding{IP(NewPrefix(AFI_IPV4, 32, []byte{198, 51, 100, 2}))},
	}}
	buf, err := msg.EncodeToBytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMessageBytes(buf, Capabilities{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	nh, ok := got.Update.Attribute(AttrNextHop)
	if !ok || !nh.NextHop.Equal(net.IPv4(198, 51, 100, 1)) {
		t.Fatalf("unexpected next-hop attribute: %+v", nh)
	}
}

func TestDecodeMessageRejectsTruncatedBody(t *testing.T) {
	var buf []byte
	if err := EncodeHeader(sliceWriterFor(&buf), 5, MsgKeepalive); err != nil {
		t.Fatalf("encode header: %v", err)
	}
	// Declared length implies a 5-byte body but none is appended.
	if _, err := DecodeMessageBytes(buf, Capabilities{}); err == nil {
		t.Fatalf("expected error decoding truncated message")
	}
}

func sliceWriterFor(b *[]byte) *sliceWriter {
	return &sliceWriter{buf: b}
}
