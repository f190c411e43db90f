package bgp

import "io"

// MessageType identifies a BGP message's wire type (§4.1).
type MessageType uint8

const (
	MsgOpen         MessageType = 1
	MsgUpdate       MessageType = 2
	MsgNotification MessageType = 3
	MsgKeepalive    MessageType = 4
	MsgRouteRefresh MessageType = 5
)

func (t MessageType) String() string {
	switch t {
	case MsgOpen:
		return "OPEN"
	case MsgUpdate:
		return "UPDATE"
	case MsgNotification:
		return "NOTIFICATION"
	case MsgKeepalive:
		return "KEEPALIVE"
	case MsgRouteRefresh:
		return "ROUTE-REFRESH"
	default:
		return "UNKNOWN"
	}
}

const (
	headerLength    = 19
	markerLength    = 16
	maxMessageLength = 4096
	minMessageLength = headerLength
)

// Header is the 16-byte-marker + length + type framing every BGP
// message shares (§4.1). The marker is not validated here — it carries
// no information once authentication is out of scope, per the
// synchronous-codec boundary this library draws.
type Header struct {
	Length uint16
	Type   MessageType
}

// ReadHeader reads exactly 19 bytes from r and returns the parsed
// header; the declared body length is Length - 19.
func ReadHeader(r io.Reader) (Header, error) {
	buf, err := readN(r, headerLength)
	if err != nil {
		return Header{}, err
	}
	length := uint16(buf[16])<<8 | uint16(buf[17])
	if length < minMessageLength || length > maxMessageLength {
		return Header{}, newErr(KindMalformedMessage, "declared message length %d out of range [%d, %d]", length, minMessageLength, maxMessageLength)
	}
	return Header{Length: length, Type: MessageType(buf[18])}, nil
}

// EncodeHeader writes the 16-byte all-ones marker followed by the
// length and type fields.
func EncodeHeader(w io.Writer, bodyLength int, msgType MessageType) error {
	total := bodyLength + headerLength
	if total > maxMessageLength {
		return newErr(KindEncodeOverflow, "message length %d exceeds maximum %d", total, maxMessageLength)
	}
	var marker [markerLength]byte
	for i := range marker {
		marker[i] = 0xFF
	}
	if _, err := w.Write(marker[:]); err != nil {
		return err
	}
	if err := writeU16(w, uint16(total)); err != nil {
		return err
	}
	return writeU8(w, uint8(msgType))
}
