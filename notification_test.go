package bgp

import "testing"

func TestNotificationDisplay(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
		want string
	}{
		{
			name: "cease, no data",
			n:    Notification{Major: 6, Minor: 3, Data: nil},
			want: "Cease / 3 ",
		},
		{
			name: "open message error with attached reason",
			n:    Notification{Major: 2, Minor: 1, Data: []byte("Unsupported Capability")},
			want: "OPEN Message Error / 1 Unsupported Capability",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotificationEncodeDecodeRoundTrip(t *testing.T) {
	n := Notification{Major: 6, Minor: 2, Data: []byte("peer reset")}
	var buf []byte
	w := &sliceWriter{buf: &buf}
	if err := n.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := ParseNotification(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Major != n.Major || decoded.Minor != n.Minor || string(decoded.Data) != string(n.Data) {
		t.Fatalf("round trip mismatch: got %+v", decoded)
	}
}
