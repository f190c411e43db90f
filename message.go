package bgp

import (
	"bytes"
	"io"
)

// MessageKind tags which Message variant is populated.
type MessageKind int

const (
	MessageKindOpen MessageKind = iota + 1
	MessageKindUpdate
	MessageKindNotification
	MessageKindKeepalive
	MessageKindRouteRefresh
)

func (k MessageKind) String() string {
	switch k {
	case MessageKindOpen:
		return "OPEN"
	case MessageKindUpdate:
		return "UPDATE"
	case MessageKindNotification:
		return "NOTIFICATION"
	case MessageKindKeepalive:
		return "KEEPALIVE"
	case MessageKindRouteRefresh:
		return "ROUTE-REFRESH"
	default:
		return "UNKNOWN"
	}
}

// Message is the closed sum type over every BGP message this codec
// decodes (§4.1). Exactly the field matching Kind is populated.
type Message struct {
	Kind MessageKind

	Open         Open
	Update       Update
	Notification Notification
	RouteRefresh RouteRefresh
}

// DecodeMessage reads one length-prefixed BGP message from r. caps
// supplies the session's negotiated Capabilities, used only while
// decoding UPDATE bodies (to resolve ADD-PATH and AS_PATH width
// ambiguity per §4.7/§4.8); pass the zero value if none is known, and
// the codec falls back to the structural heuristics alone.
func DecodeMessage(r io.Reader, caps Capabilities) (Message, error) {
	hdr, err := ReadHeader(r)
	if err != nil {
		return Message{}, err
	}
	bodyLen := int(hdr.Length) - headerLength
	body, err := readN(r, bodyLen)
	if err != nil {
		return Message{}, err
	}
	return decodeBody(hdr.Type, body, caps)
}

// DecodeMessageBytes decodes a single complete message (header + body)
// already buffered in memory.
func DecodeMessageBytes(buf []byte, caps Capabilities) (Message, error) {
	return DecodeMessage(bytes.NewReader(buf), caps)
}

func decodeBody(msgType MessageType, body []byte, caps Capabilities) (Message, error) {
	switch msgType {
	case MsgOpen:
		open, err := ParseOpen(body)
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: MessageKindOpen, Open: open}, nil

	case MsgUpdate:
		update, err := ParseUpdate(body, caps)
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: MessageKindUpdate, Update: update}, nil

	case MsgNotification:
		notif, err := ParseNotification(body)
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: MessageKindNotification, Notification: notif}, nil

	case MsgKeepalive:
		if len(body) != 0 {
			return Message{}, newErr(KindMalformedMessage, "keepalive body %d bytes, expected 0", len(body))
		}
		return Message{Kind: MessageKindKeepalive}, nil

	case MsgRouteRefresh:
		rr, err := ParseRouteRefresh(body)
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: MessageKindRouteRefresh, RouteRefresh: rr}, nil

	default:
		return Message{}, newErr(KindUnknownMessageType, "unrecognized message type %d", msgType)
	}
}

// Encode writes the message's full wire form (header + body) to w.
func (m Message) Encode(w io.Writer) error {
	var body bytes.Buffer
	var msgType MessageType

	switch m.Kind {
	case MessageKindOpen:
		msgType = MsgOpen
		if err := m.Open.Encode(&body); err != nil {
			return err
		}
	case MessageKindUpdate:
		msgType = MsgUpdate
		if err := m.Update.Encode(&body); err != nil {
			return err
		}
	case MessageKindNotification:
		msgType = MsgNotification
		if err := m.Notification.Encode(&body); err != nil {
			return err
		}
	case MessageKindKeepalive:
		msgType = MsgKeepalive
	case MessageKindRouteRefresh:
		msgType = MsgRouteRefresh
		if err := m.RouteRefresh.Encode(&body); err != nil {
			return err
		}
	default:
		return newErr(KindEncodeOverflow, "unknown message kind %d", m.Kind)
	}

	if err := EncodeHeader(w, body.Len(), msgType); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

// EncodeToBytes is a convenience wrapper returning the encoded message
// as a standalone byte slice.
func (m Message) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Keepalive constructs a KEEPALIVE message (always a bare 19-byte
// header — §4.4 Scenario: "FF×16 00 13 04").
func Keepalive() Message { return Message{Kind: MessageKindKeepalive} }
