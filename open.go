package bgp

import (
	"bytes"
	"io"
)

// OpenParameter is one (type, length, value) parameter in an OPEN
// message's Optional Parameters. Type 2 is Capabilities; every other
// type is preserved raw since this codec never needs to act on it.
type OpenParameter struct {
	Type         uint8
	Capabilities []OpenCapability // Type == 2
	RawValue     []byte           // Type != 2
}

const openParamCapabilities = 2

func parseOpenParameter(r io.Reader) (OpenParameter, error) {
	paramType, err := readU8(r)
	if err != nil {
		return OpenParameter{}, err
	}
	length, err := readU8(r)
	if err != nil {
		return OpenParameter{}, err
	}
	body, err := readN(r, int(length))
	if err != nil {
		return OpenParameter{}, err
	}
	if paramType != openParamCapabilities {
		return OpenParameter{Type: paramType, RawValue: body}, nil
	}
	br := bytes.NewReader(body)
	var caps []OpenCapability
	for br.Len() > 0 {
		cap, err := ParseOpenCapability(br)
		if err != nil {
			return OpenParameter{}, err
		}
		caps = append(caps, cap)
	}
	return OpenParameter{Type: paramType, Capabilities: caps}, nil
}

func (p OpenParameter) Encode(w io.Writer) error {
	var body bytes.Buffer
	if p.Type == openParamCapabilities {
		for _, c := range p.Capabilities {
			if err := c.Encode(&body); err != nil {
				return err
			}
		}
	} else {
		body.Write(p.RawValue)
	}
	if body.Len() > 255 {
		return newErr(KindEncodeOverflow, "open parameter %d body %d bytes exceeds 255", p.Type, body.Len())
	}
	if err := writeU8(w, p.Type); err != nil {
		return err
	}
	if err := writeU8(w, uint8(body.Len())); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

// Open is a parsed OPEN message (§4.2).
type Open struct {
	Version       uint8
	ASN           uint16 // the 2-byte legacy field; see the FourByteASN capability (OpenCapability.FourByteASN) for the real ASN
	HoldTime      uint16
	BGPIdentifier uint32
	Parameters    []OpenParameter
}

// ParseOpen decodes an OPEN message body (the header is already
// stripped by the caller).
func ParseOpen(body []byte) (Open, error) {
	r := bytes.NewReader(body)
	version, err := readU8(r)
	if err != nil {
		return Open{}, err
	}
	asn, err := readU16(r)
	if err != nil {
		return Open{}, err
	}
	holdTime, err := readU16(r)
	if err != nil {
		return Open{}, err
	}
	bgpID, err := readU32(r)
	if err != nil {
		return Open{}, err
	}
	paramsLen, err := readU8(r)
	if err != nil {
		return Open{}, err
	}
	if int(paramsLen) > r.Len() {
		return Open{}, newErr(KindInvalidParameterLength, "declared parameters length %d exceeds %d remaining bytes", paramsLen, r.Len())
	}
	paramsBody, err := readN(r, int(paramsLen))
	if err != nil {
		return Open{}, err
	}
	if r.Len() != 0 {
		return Open{}, newErr(KindInvalidParameterLength, "open message has %d trailing bytes after parameters", r.Len())
	}
	pr := bytes.NewReader(paramsBody)
	var params []OpenParameter
	for pr.Len() > 0 {
		p, err := parseOpenParameter(pr)
		if err != nil {
			return Open{}, err
		}
		params = append(params, p)
	}
	return Open{Version: version, ASN: asn, HoldTime: holdTime, BGPIdentifier: bgpID, Parameters: params}, nil
}

// Encode writes the OPEN message body.
func (o Open) Encode(w io.Writer) error {
	if err := writeU8(w, o.Version); err != nil {
		return err
	}
	if err := writeU16(w, o.ASN); err != nil {
		return err
	}
	if err := writeU16(w, o.HoldTime); err != nil {
		return err
	}
	if err := writeU32(w, o.BGPIdentifier); err != nil {
		return err
	}
	var params bytes.Buffer
	for _, p := range o.Parameters {
		if err := p.Encode(&params); err != nil {
			return err
		}
	}
	if params.Len() > 255 {
		return newErr(KindEncodeOverflow, "open parameters %d bytes exceeds 255", params.Len())
	}
	if err := writeU8(w, uint8(params.Len())); err != nil {
		return err
	}
	_, err := w.Write(params.Bytes())
	return err
}

// AllCapabilities flattens every Capabilities-type parameter's entries.
func (o Open) AllCapabilities() []OpenCapability {
	var out []OpenCapability
	for _, p := range o.Parameters {
		out = append(out, p.Capabilities...)
	}
	return out
}

// Capabilities is the negotiated-or-advertised session capability
// descriptor derived from an OPEN's parameters (§4.2, §9 Open Question
// resolved in DESIGN.md: callers build one from each side's Open and
// Intersect them to get the actual negotiated set before decoding
// UPDATE bodies with it).
type Capabilities struct {
	FourByteASN    bool
	RouteRefresh   bool
	MultiProtocol  map[AfiSafi]bool
	AddPath        map[AfiSafi]AddPathDirection
	MultipleLabels map[AfiSafi]uint8
}

// FromParameters builds a Capabilities descriptor from one OPEN's
// advertised capabilities. It reflects what one side offered, not what
// was negotiated — call Intersect with the peer's to get that.
func FromParameters(o Open) Capabilities {
	c := Capabilities{
		MultiProtocol:  map[AfiSafi]bool{},
		AddPath:        map[AfiSafi]AddPathDirection{},
		MultipleLabels: map[AfiSafi]uint8{},
	}
	for _, cap := range o.AllCapabilities() {
		switch cap.Code {
		case CapFourByteASN:
			c.FourByteASN = true
		case CapRouteRefresh, CapEnhancedRouteRefresh:
			c.RouteRefresh = true
		case CapMultiProtocol:
			c.MultiProtocol[cap.MultiProtocol] = true
		case CapAddPath:
			for _, e := range cap.AddPath {
				c.AddPath[AfiSafi{AFI: e.AFI, SAFI: e.SAFI}] = e.Direction
			}
		case CapMultipleLabels:
			for _, e := range cap.MultipleLabels {
				c.MultipleLabels[AfiSafi{AFI: e.AFI, SAFI: e.SAFI}] = e.Count
			}
		}
	}
	return c
}

// Intersect returns the capability set actually usable on the session:
// booleans require both sides, per-family sets/maps keep only the
// families both sides listed (ADD-PATH direction is ANDed bit-wise so a
// one-sided "send" offer against a "receive" offer collapses correctly).
func (c Capabilities) Intersect(other Capabilities) Capabilities {
	out := Capabilities{
		FourByteASN:    c.FourByteASN && other.FourByteASN,
		RouteRefresh:   c.RouteRefresh && other.RouteRefresh,
		MultiProtocol:  map[AfiSafi]bool{},
		AddPath:        map[AfiSafi]AddPathDirection{},
		MultipleLabels: map[AfiSafi]uint8{},
	}
	for k := range c.MultiProtocol {
		if other.MultiProtocol[k] {
			out.MultiProtocol[k] = true
		}
	}
	for k, dir := range c.AddPath {
		if od, ok := other.AddPath[k]; ok {
			merged := dir & od
			if merged != 0 {
				out.AddPath[k] = merged
			}
		}
	}
	for k, count := range c.MultipleLabels {
		if oc, ok := other.MultipleLabels[k]; ok {
			if oc < count {
				count = oc
			}
			out.MultipleLabels[k] = count
		}
	}
	return out
}

// AddPathNegotiated reports whether ADD-PATH is usable in the given
// direction for (afi, safi).
func (c Capabilities) AddPathNegotiated(afiSafi AfiSafi, dir AddPathDirection) bool {
	got, ok := c.AddPath[afiSafi]
	return ok && got&dir != 0
}
