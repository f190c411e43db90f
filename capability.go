package bgp

import (
	"bytes"
	"io"
)

// AddPathDirection describes which direction(s) ADD-PATH is negotiated
// for a given (AFI, SAFI): receive, send, or both.
type AddPathDirection uint8

const (
	AddPathReceive     AddPathDirection = 1
	AddPathSend        AddPathDirection = 2
	AddPathSendReceive AddPathDirection = 3
)

func parseAddPathDirection(v uint8) (AddPathDirection, error) {
	switch AddPathDirection(v) {
	case AddPathReceive, AddPathSend, AddPathSendReceive:
		return AddPathDirection(v), nil
	default:
		return 0, newErr(KindMalformedMessage, "invalid add-path direction %d", v)
	}
}

// CapabilityCode identifies an OpenCapability's wire type.
type CapabilityCode uint8

const (
	CapMultiProtocol           CapabilityCode = 1
	CapRouteRefresh            CapabilityCode = 2
	CapOutboundRouteFiltering  CapabilityCode = 3
	CapMultipleLabels          CapabilityCode = 8
	CapFourByteASN             CapabilityCode = 65
	CapAddPath                 CapabilityCode = 69
	CapEnhancedRouteRefresh    CapabilityCode = 70
	CapLongLivedGracefulReStrt CapabilityCode = 71
	CapGracefulRestart         CapabilityCode = 64
)

// ORFEntry is one (AFI, SAFI, type, direction) outbound-route-filtering
// tuple advertised in an OutboundRouteFiltering capability.
type ORFEntry struct {
	AFI       AFI
	SAFI      SAFI
	Type      uint8
	Direction AddPathDirection
}

// MultipleLabelsEntry is one (AFI, SAFI, count) tuple.
type MultipleLabelsEntry struct {
	AFI   AFI
	SAFI  SAFI
	Count uint8
}

// AddPathEntry is one (AFI, SAFI, direction) tuple.
type AddPathEntry struct {
	AFI       AFI
	SAFI      SAFI
	Direction AddPathDirection
}

// OpenCapability is a single capability TLV from an OPEN's Capabilities
// parameter (§4.2). Known codes decode into their typed fields; every
// other code is preserved as Unknown so information is never discarded.
type OpenCapability struct {
	Code CapabilityCode

	MultiProtocol AfiSafi // code 1

	// code 2 (RouteRefresh) carries no payload

	ORF []ORFEntry // code 3

	MultipleLabels []MultipleLabelsEntry // code 8

	FourByteASN uint32 // code 65

	AddPath []AddPathEntry // code 69

	// Unknown carries the raw TLV for any code not decoded above.
	UnknownCode   uint8
	UnknownLength uint8
	UnknownValue  []byte
	isUnknown     bool
}

// ParseOpenCapability reads one (code, length, value) capability TLV.
func ParseOpenCapability(r io.Reader) (OpenCapability, error) {
	code, err := readU8(r)
	if err != nil {
		return OpenCapability{}, err
	}
	length, err := readU8(r)
	if err != nil {
		return OpenCapability{}, err
	}
	body, err := readN(r, int(length))
	if err != nil {
		return OpenCapability{}, err
	}
	br := bytes.NewReader(body)

	switch CapabilityCode(code) {
	case CapMultiProtocol:
		if length != 4 {
			return OpenCapability{}, newErr(KindMalformedMessage, "multiprotocol capability length %d != 4", length)
		}
		afiRaw, _ := readU16(br)
		_, _ = readU8(br) // reserved
		safiRaw, _ := readU8(br)
		afi, err := ParseAFI(afiRaw)
		if err != nil {
			return OpenCapability{}, err
		}
		safi, err := ParseSAFI(safiRaw)
		if err != nil {
			return OpenCapability{}, err
		}
		return OpenCapability{Code: CapMultiProtocol, MultiProtocol: AfiSafi{AFI: afi, SAFI: safi}}, nil

	case CapRouteRefresh, CapEnhancedRouteRefresh:
		if length != 0 {
			return OpenCapability{}, newErr(KindMalformedMessage, "route-refresh capability length %d != 0", length)
		}
		return OpenCapability{Code: CapabilityCode(code)}, nil

	case CapOutboundRouteFiltering:
		if length < 5 || (int(length)-5)%2 != 0 {
			return OpenCapability{}, newErr(KindMalformedMessage, "orf capability length %d invalid", length)
		}
		afiRaw, _ := readU16(br)
		_, _ = readU8(br) // reserved
		safiRaw, _ := readU8(br)
		count, _ := readU8(br)
		afi, err := ParseAFI(afiRaw)
		if err != nil {
			return OpenCapability{}, err
		}
		safi, err := ParseSAFI(safiRaw)
		if err != nil {
			return OpenCapability{}, err
		}
		entries := make([]ORFEntry, 0, count)
		for i := 0; i < int(count); i++ {
			orfType, err := readU8(br)
			if err != nil {
				return OpenCapability{}, err
			}
			dirRaw, err := readU8(br)
			if err != nil {
				return OpenCapability{}, err
			}
			dir, err := parseAddPathDirection(dirRaw)
			if err != nil {
				return OpenCapability{}, err
			}
			entries = append(entries, ORFEntry{AFI: afi, SAFI: safi, Type: orfType, Direction: dir})
		}
		return OpenCapability{Code: CapOutboundRouteFiltering, ORF: entries}, nil

	case CapMultipleLabels:
		if length%4 != 0 {
			return OpenCapability{}, newErr(KindMalformedMessage, "multiple-labels capability length %d not a multiple of 4", length)
		}
		var entries []MultipleLabelsEntry
		for br.Len() > 0 {
			afiRaw, err := readU16(br)
			if err != nil {
				return OpenCapability{}, err
			}
			safiRaw, err := readU8(br)
			if err != nil {
				return OpenCapability{}, err
			}
			count, err := readU8(br)
			if err != nil {
				return OpenCapability{}, err
			}
			afi, err := ParseAFI(afiRaw)
			if err != nil {
				return OpenCapability{}, err
			}
			safi, err := ParseSAFI(safiRaw)
			if err != nil {
				return OpenCapability{}, err
			}
			entries = append(entries, MultipleLabelsEntry{AFI: afi, SAFI: safi, Count: count})
		}
		return OpenCapability{Code: CapMultipleLabels, MultipleLabels: entries}, nil

	case CapFourByteASN:
		if length != 4 {
			return OpenCapability{}, newErr(KindMalformedMessage, "four-byte-asn capability length %d != 4", length)
		}
		asn, _ := readU32(br)
		return OpenCapability{Code: CapFourByteASN, FourByteASN: asn}, nil

	case CapAddPath:
		if length%4 != 0 {
			return OpenCapability{}, newErr(KindMalformedMessage, "add-path capability length %d not a multiple of 4", length)
		}
		var entries []AddPathEntry
		for br.Len() > 0 {
			afiRaw, err := readU16(br)
			if err != nil {
				return OpenCapability{}, err
			}
			safiRaw, err := readU8(br)
			if err != nil {
				return OpenCapability{}, err
			}
			dirRaw, err := readU8(br)
			if err != nil {
				return OpenCapability{}, err
			}
			afi, err := ParseAFI(afiRaw)
			if err != nil {
				return OpenCapability{}, err
			}
			safi, err := ParseSAFI(safiRaw)
			if err != nil {
				return OpenCapability{}, err
			}
			dir, err := parseAddPathDirection(dirRaw)
			if err != nil {
				return OpenCapability{}, err
			}
			entries = append(entries, AddPathEntry{AFI: afi, SAFI: safi, Direction: dir})
		}
		return OpenCapability{Code: CapAddPath, AddPath: entries}, nil

	default:
		return OpenCapability{Code: CapabilityCode(code), UnknownCode: code, UnknownLength: length, UnknownValue: body, isUnknown: true}, nil
	}
}

// Encode writes the capability's (code, length, value) TLV.
func (c OpenCapability) Encode(w io.Writer) error {
	var body bytes.Buffer
	switch {
	case c.isUnknown:
		body.Write(c.UnknownValue)
	case c.Code == CapMultiProtocol:
		_ = writeU16(&body, uint16(c.MultiProtocol.AFI))
		_ = writeU8(&body, 0)
		_ = writeU8(&body, uint8(c.MultiProtocol.SAFI))
	case c.Code == CapRouteRefresh || c.Code == CapEnhancedRouteRefresh:
		// no payload
	case c.Code == CapOutboundRouteFiltering:
		if len(c.ORF) > 0 {
			_ = writeU16(&body, uint16(c.ORF[0].AFI))
			_ = writeU8(&body, 0)
			_ = writeU8(&body, uint8(c.ORF[0].SAFI))
		}
		_ = writeU8(&body, uint8(len(c.ORF)))
		for _, e := range c.ORF {
			_ = writeU8(&body, e.Type)
			_ = writeU8(&body, uint8(e.Direction))
		}
	case c.Code == CapMultipleLabels:
		for _, e := range c.MultipleLabels {
			_ = writeU16(&body, uint16(e.AFI))
			_ = writeU8(&body, uint8(e.SAFI))
			_ = writeU8(&body, e.Count)
		}
	case c.Code == CapFourByteASN:
		_ = writeU32(&body, c.FourByteASN)
	case c.Code == CapAddPath:
		for _, e := range c.AddPath {
			_ = writeU16(&body, uint16(e.AFI))
			_ = writeU8(&body, uint8(e.SAFI))
			_ = writeU8(&body, uint8(e.Direction))
		}
	}
	if body.Len() > 255 {
		return newErr(KindEncodeOverflow, "capability %d body %d bytes exceeds 255", c.Code, body.Len())
	}
	code := c.Code
	if c.isUnknown && code == 0 {
		code = CapabilityCode(c.UnknownCode)
	}
	if err := writeU8(w, uint8(code)); err != nil {
		return err
	}
	if err := writeU8(w, uint8(body.Len())); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}
