package bgp

import (
	"fmt"
	"io"
)

// Notification is a parsed NOTIFICATION message (§4.4): an error major
// code, a minor (sub)code whose meaning depends on the major code, and
// whatever diagnostic data the sender chose to attach (often empty,
// sometimes a human-readable shutdown reason, sometimes raw binary the
// sender never intended to be displayed).
type Notification struct {
	Major uint8
	Minor uint8
	Data  []byte
}

// ParseNotification decodes a NOTIFICATION message body.
func ParseNotification(body []byte) (Notification, error) {
	if len(body) < 2 {
		return Notification{}, newErr(KindMalformedMessage, "notification body %d bytes, need at least 2", len(body))
	}
	return Notification{Major: body[0], Minor: body[1], Data: append([]byte(nil), body[2:]...)}, nil
}

// Encode writes the NOTIFICATION message body.
func (n Notification) Encode(w io.Writer) error {
	if err := writeU8(w, n.Major); err != nil {
		return err
	}
	if err := writeU8(w, n.Minor); err != nil {
		return err
	}
	_, err := w.Write(n.Data)
	return err
}

var notificationMajorNames = map[uint8]string{
	1: "Message Header Error",
	2: "OPEN Message Error",
	3: "UPDATE Message Error",
	4: "Hold Timer Expired",
	5: "Finite State Machine Error",
	6: "Cease",
}

// MajorName returns the RFC 4271/4486 name for the major error code, or
// a placeholder for an unrecognized one.
func (n Notification) MajorName() string {
	if name, ok := notificationMajorNames[n.Major]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", n.Major)
}

// Message renders whatever diagnostic bytes the sender attached as
// text. Most Cease subcodes carry none; Administrative Shutdown/Reset
// commonly carry a human-readable reason string (RFC 8203), which is
// exactly what this returns verbatim.
func (n Notification) Message() string {
	return string(n.Data)
}

// String renders "<Major Name> / <minor code> <message>", matching the
// diagnostic text BGP implementations log on session teardown.
func (n Notification) String() string {
	return fmt.Sprintf("%s / %d %s", n.MajorName(), n.Minor, n.Message())
}
