package bgp

import (
	"bytes"
	"io"
	"net"
)

// AttributeFlags packs the four flag bits that precede every path
// attribute's type code (§4.3): Optional, Transitive, Partial, and
// Extended Length (the length field is 2 bytes instead of 1).
type AttributeFlags uint8

const (
	FlagOptional        AttributeFlags = 0x80
	FlagTransitive      AttributeFlags = 0x40
	FlagPartial         AttributeFlags = 0x20
	FlagExtendedLength  AttributeFlags = 0x10
)

func (f AttributeFlags) Optional() bool       { return f&FlagOptional != 0 }
func (f AttributeFlags) Transitive() bool     { return f&FlagTransitive != 0 }
func (f AttributeFlags) Partial() bool        { return f&FlagPartial != 0 }
func (f AttributeFlags) ExtendedLength() bool { return f&FlagExtendedLength != 0 }

// AttributeType is a path attribute's type code (§4.3).
type AttributeType uint8

const (
	AttrOrigin               AttributeType = 1
	AttrASPath               AttributeType = 2
	AttrNextHop              AttributeType = 3
	AttrMultiExitDisc        AttributeType = 4
	AttrLocalPref            AttributeType = 5
	AttrAtomicAggregate      AttributeType = 6
	AttrAggregator           AttributeType = 7
	AttrCommunities          AttributeType = 8
	AttrOriginatorID         AttributeType = 9
	AttrClusterList          AttributeType = 10
	AttrDPA                  AttributeType = 11
	AttrMPReachNLRI          AttributeType = 14
	AttrMPUnreachNLRI        AttributeType = 15
	AttrExtendedCommunities  AttributeType = 16
	AttrAS4Path              AttributeType = 17
	AttrAS4Aggregator        AttributeType = 18
	AttrConnector            AttributeType = 20
	AttrASPathLimit          AttributeType = 21
	AttrPMSITunnel           AttributeType = 22
	AttrTunnelEncapsulation  AttributeType = 23
	AttrIPv6SpecificExtComm  AttributeType = 25
	AttrAIGP                 AttributeType = 26
	AttrPEDistinguisherLabels AttributeType = 27
	AttrEntropyLabelCapability AttributeType = 28
	AttrBGPLS                AttributeType = 29
	AttrLargeCommunities     AttributeType = 32
	AttrBGPSECPath           AttributeType = 33
	AttrBGPPrefixSID         AttributeType = 34
	AttrAttrSet              AttributeType = 128
)

// defaultFlags gives each known attribute type its canonical flag
// byte, used when a caller builds a PathAttribute programmatically
// rather than round-tripping one just decoded.
var defaultFlags = map[AttributeType]AttributeFlags{
	AttrOrigin:              FlagTransitive,
	AttrASPath:              FlagTransitive,
	AttrNextHop:             FlagTransitive,
	AttrMultiExitDisc:       FlagOptional,
	AttrLocalPref:           FlagTransitive,
	AttrAtomicAggregate:     FlagTransitive,
	AttrAggregator:          FlagOptional | FlagTransitive,
	AttrCommunities:         FlagOptional | FlagTransitive,
	AttrOriginatorID:        FlagOptional,
	AttrClusterList:         FlagOptional,
	AttrDPA:                 FlagOptional | FlagTransitive,
	AttrMPReachNLRI:         FlagOptional,
	AttrMPUnreachNLRI:       FlagOptional,
	AttrExtendedCommunities: FlagOptional | FlagTransitive,
	AttrAS4Path:             FlagOptional | FlagTransitive,
	AttrAS4Aggregator:       FlagOptional | FlagTransitive,
	AttrConnector:           FlagOptional | FlagTransitive,
	AttrASPathLimit:         FlagOptional | FlagTransitive,
	AttrPMSITunnel:          FlagOptional | FlagTransitive,
	AttrTunnelEncapsulation: FlagOptional | FlagTransitive,
	AttrIPv6SpecificExtComm: FlagOptional | FlagTransitive,
	AttrAIGP:                FlagOptional,
	AttrPEDistinguisherLabels:  FlagOptional | FlagTransitive,
	AttrEntropyLabelCapability: FlagOptional,
	AttrBGPLS:                  FlagOptional,
	AttrLargeCommunities:       FlagOptional | FlagTransitive,
	AttrBGPSECPath:             FlagOptional | FlagTransitive,
	AttrBGPPrefixSID:           FlagOptional | FlagTransitive,
	AttrAttrSet:                FlagOptional | FlagTransitive,
}

// Origin is the well-known ORIGIN attribute's value (§4.3).
type Origin uint8

const (
	OriginIGP        Origin = 0
	OriginEGP        Origin = 1
	OriginIncomplete Origin = 2
)

// ExtendedCommunity is one 8-byte extended community value, kept as
// the raw type/subtype-tagged byte layout rather than decoded further
// (the type byte's high bit and the many registered subtypes are a
// classification concern for callers, not this codec).
type ExtendedCommunity [8]byte

// LargeCommunity is one 12-byte large community (RFC 8092).
type LargeCommunity struct {
	GlobalAdmin uint32
	LocalData1  uint32
	LocalData2  uint32
}

// Aggregator is the (ASN, speaker address) pair from AGGREGATOR/
// AS4_AGGREGATOR. Width ambiguity on the plain AGGREGATOR attribute
// (2-byte vs 4-byte ASN) is resolved the same way CONNECTOR's dual
// shape is: by the declared attribute length.
type Aggregator struct {
	ASN     uint32
	Address net.IP
}

// Connector carries an 8-byte vendor/route-distinguisher area alongside
// an IPv4 connector address. The attribute was never standardized to a
// single shape; this codec accepts both the bare 6-byte (2-byte padding
// + address) and the 14-byte (2-byte padding + 8-byte area + address)
// forms seen in the wild, keyed by declared length, and always encodes
// the 14-byte form.
type Connector struct {
	RouteDistinguisher uint64
	Address            net.IP
}

// DPA is the (ASN, value) pair carried by the deprecated DPA attribute.
type DPA struct {
	ASN   uint16
	Value uint32
}

// ASPathLimit is the (route-count limit, limiting ASN) pair carried by
// AS_PATHLIMIT.
type ASPathLimit struct {
	Limit uint8
	ASN   uint32
}

// IPv6SpecificExtendedCommunity is one 20-byte IPv6-address-keyed
// extended community (RFC 5701): a transitive/type byte, a subtype
// byte, a 16-byte global administrator, and a 2-byte local
// administrator.
type IPv6SpecificExtendedCommunity struct {
	Transitive  uint8
	Subtype     uint8
	GlobalAdmin net.IP
	LocalAdmin  uint16
}

// PathAttribute is the closed sum type over every attribute kind this
// codec decodes (§4.3). Exactly the fields relevant to Type are
// populated. An unrecognized type code is not represented: decoding it
// fails with KindUnknownAttribute (see RawValue below).
type PathAttribute struct {
	Flags AttributeFlags
	Type  AttributeType

	OriginValue Origin
	ASPathValue ASPath
	NextHop     net.IP
	MED         uint32
	LocalPref   uint32
	Aggregator  Aggregator
	Communities []uint32
	OriginatorID uint32
	ClusterList []uint32

	MPAFI     AFI
	MPSAFI    SAFI
	MPNextHop []byte
	MPNLRI    []NLRIEncoding

	ExtComms  []ExtendedCommunity
	Connector Connector

	PMSITunnelType uint8
	PMSIFlags      uint8
	PMSILabel      uint32
	PMSITunnelID   []byte

	LargeComms []LargeCommunity

	AttrSetOriginAS  uint32
	AttrSetInner     []PathAttribute
	AttrSetRawTail   []byte

	DPA                   DPA
	ASPathLimit           ASPathLimit
	IPv6ExtComm           IPv6SpecificExtendedCommunity
	AIGPType              uint8
	AIGPValue             []byte
	TunnelEncapType       uint16

	// RawValue carries undecoded attribute bytes: for Unknown type
	// codes (decode fails with KindUnknownAttribute and this field is
	// unused), and for type codes this codec recognizes but does not
	// further interpret — TUNNEL_ENCAPSULATION's inner TLVs (beyond its
	// TunnelEncapType), ENTROPY_LABEL_CAPABILITY, and the
	// PE_DISTINGUISHER_LABELS/BGP_LS/BGPSEC_PATH/BGP_PREFIX_SID
	// families, none of which this codec's grounding sources define a
	// concrete payload shape for.
	RawValue []byte
}

// ParsePathAttribute reads one (flags, type, length, value) attribute.
// caps resolves the AS_PATH ASN width and the ADD-PATH ambiguity inside
// MP_REACH_NLRI/MP_UNREACH_NLRI's NLRI; pass the zero Capabilities to
// fall back on the structural heuristics alone.
func ParsePathAttribute(r io.Reader, caps Capabilities) (PathAttribute, error) {
	flagsByte, err := readU8(r)
	if err != nil {
		return PathAttribute{}, err
	}
	typeByte, err := readU8(r)
	if err != nil {
		return PathAttribute{}, err
	}
	flags := AttributeFlags(flagsByte)
	var length int
	if flags.ExtendedLength() {
		v, err := readU16(r)
		if err != nil {
			return PathAttribute{}, err
		}
		length = int(v)
	} else {
		v, err := readU8(r)
		if err != nil {
			return PathAttribute{}, err
		}
		length = int(v)
	}
	body, err := readN(r, length)
	if err != nil {
		return PathAttribute{}, err
	}
	attrType := AttributeType(typeByte)
	attr, err := decodeAttributeBody(attrType, body, caps)
	if err != nil {
		return PathAttribute{}, err
	}
	attr.Flags = flags
	attr.Type = attrType
	return attr, nil
}

func decodeAttributeBody(attrType AttributeType, body []byte, caps Capabilities) (PathAttribute, error) {
	switch attrType {
	case AttrOrigin:
		if len(body) != 1 {
			return PathAttribute{}, newErr(KindMalformedMessage, "origin attribute length %d != 1", len(body))
		}
		return PathAttribute{OriginValue: Origin(body[0])}, nil

	case AttrASPath:
		var path ASPath
		var err error
		if caps.FourByteASN {
			path, err = ParseASPathFixed(body, 4)
		} else {
			path, err = ParseASPathAmbiguous(body)
		}
		if err != nil {
			return PathAttribute{}, err
		}
		return PathAttribute{ASPathValue: path}, nil

	case AttrAS4Path:
		path, err := ParseASPathFixed(body, 4)
		if err != nil {
			return PathAttribute{}, err
		}
		return PathAttribute{ASPathValue: path}, nil

	case AttrNextHop:
		if len(body) != 4 {
			return PathAttribute{}, newErr(KindMalformedMessage, "next_hop attribute length %d != 4", len(body))
		}
		return PathAttribute{NextHop: net.IP(append([]byte(nil), body...))}, nil

	case AttrMultiExitDisc:
		if len(body) != 4 {
			return PathAttribute{}, newErr(KindMalformedMessage, "multi_exit_disc attribute length %d != 4", len(body))
		}
		return PathAttribute{MED: beU32(body)}, nil

	case AttrLocalPref:
		if len(body) != 4 {
			return PathAttribute{}, newErr(KindMalformedMessage, "local_pref attribute length %d != 4", len(body))
		}
		return PathAttribute{LocalPref: beU32(body)}, nil

	case AttrAtomicAggregate:
		if len(body) != 0 {
			return PathAttribute{}, newErr(KindMalformedMessage, "atomic_aggregate attribute length %d != 0", len(body))
		}
		return PathAttribute{}, nil

	case AttrAggregator:
		switch len(body) {
		case 6:
			return PathAttribute{Aggregator: Aggregator{ASN: uint32(beU16(body[0:2])), Address: net.IP(append([]byte(nil), body[2:6]...))}}, nil
		case 8:
			return PathAttribute{Aggregator: Aggregator{ASN: beU32(body[0:4]), Address: net.IP(append([]byte(nil), body[4:8]...))}}, nil
		default:
			return PathAttribute{}, newErr(KindMalformedMessage, "aggregator attribute length %d, expected 6 or 8", len(body))
		}

	case AttrAS4Aggregator:
		if len(body) != 8 {
			return PathAttribute{}, newErr(KindMalformedMessage, "as4_aggregator attribute length %d != 8", len(body))
		}
		return PathAttribute{Aggregator: Aggregator{ASN: beU32(body[0:4]), Address: net.IP(append([]byte(nil), body[4:8]...))}}, nil

	case AttrCommunities:
		if len(body)%4 != 0 {
			return PathAttribute{}, newErr(KindMalformedMessage, "communities attribute length %d not a multiple of 4", len(body))
		}
		comms := make([]uint32, 0, len(body)/4)
		for i := 0; i < len(body); i += 4 {
			comms = append(comms, beU32(body[i:i+4]))
		}
		return PathAttribute{Communities: comms}, nil

	case AttrOriginatorID:
		if len(body) != 4 {
			return PathAttribute{}, newErr(KindMalformedMessage, "originator_id attribute length %d != 4", len(body))
		}
		return PathAttribute{OriginatorID: beU32(body)}, nil

	case AttrClusterList:
		if len(body)%4 != 0 {
			return PathAttribute{}, newErr(KindMalformedMessage, "cluster_list attribute length %d not a multiple of 4", len(body))
		}
		ids := make([]uint32, 0, len(body)/4)
		for i := 0; i < len(body); i += 4 {
			ids = append(ids, beU32(body[i:i+4]))
		}
		return PathAttribute{ClusterList: ids}, nil

	case AttrMPReachNLRI:
		return decodeMPReach(body, caps)

	case AttrMPUnreachNLRI:
		return decodeMPUnreach(body, caps)

	case AttrExtendedCommunities:
		if len(body)%8 != 0 {
			return PathAttribute{}, newErr(KindMalformedMessage, "extended_communities attribute length %d not a multiple of 8", len(body))
		}
		comms := make([]ExtendedCommunity, 0, len(body)/8)
		for i := 0; i < len(body); i += 8 {
			var c ExtendedCommunity
			copy(c[:], body[i:i+8])
			comms = append(comms, c)
		}
		return PathAttribute{ExtComms: comms}, nil

	case AttrLargeCommunities:
		if len(body)%12 != 0 {
			return PathAttribute{}, newErr(KindMalformedMessage, "large_communities attribute length %d not a multiple of 12", len(body))
		}
		comms := make([]LargeCommunity, 0, len(body)/12)
		for i := 0; i < len(body); i += 12 {
			comms = append(comms, LargeCommunity{
				GlobalAdmin: beU32(body[i : i+4]),
				LocalData1:  beU32(body[i+4 : i+8]),
				LocalData2:  beU32(body[i+8 : i+12]),
			})
		}
		return PathAttribute{LargeComms: comms}, nil

	case AttrConnector:
		switch len(body) {
		case 6:
			return PathAttribute{Connector: Connector{Address: net.IP(append([]byte(nil), body[2:6]...))}}, nil
		case 14:
			return PathAttribute{Connector: Connector{RouteDistinguisher: beU64(body[2:10]), Address: net.IP(append([]byte(nil), body[10:14]...))}}, nil
		default:
			return PathAttribute{}, newErr(KindMalformedMessage, "connector attribute length %d, expected 6 or 14", len(body))
		}

	case AttrPMSITunnel:
		if len(body) < 5 {
			return PathAttribute{}, newErr(KindMalformedMessage, "pmsi_tunnel attribute length %d, need at least 5", len(body))
		}
		return PathAttribute{
			PMSIFlags:      body[0],
			PMSITunnelType: body[1],
			PMSILabel:      decodeLabel(uint32(body[2])<<16 | uint32(body[3])<<8 | uint32(body[4])),
			PMSITunnelID:   append([]byte(nil), body[5:]...),
		}, nil

	case AttrAttrSet:
		return decodeAttrSet(body, caps)

	case AttrDPA:
		if len(body) != 6 {
			return PathAttribute{}, newErr(KindMalformedMessage, "dpa attribute length %d != 6", len(body))
		}
		return PathAttribute{DPA: DPA{ASN: beU16(body[0:2]), Value: beU32(body[2:6])}}, nil

	case AttrASPathLimit:
		if len(body) != 5 {
			return PathAttribute{}, newErr(KindMalformedMessage, "as_pathlimit attribute length %d != 5", len(body))
		}
		return PathAttribute{ASPathLimit: ASPathLimit{Limit: body[0], ASN: beU32(body[1:5])}}, nil

	case AttrIPv6SpecificExtComm:
		if len(body) != 20 {
			return PathAttribute{}, newErr(KindMalformedMessage, "ipv6_specific_extended_community attribute length %d != 20", len(body))
		}
		return PathAttribute{IPv6ExtComm: IPv6SpecificExtendedCommunity{
			Transitive:  body[0],
			Subtype:     body[1],
			GlobalAdmin: net.IP(append([]byte(nil), body[2:18]...)),
			LocalAdmin:  beU16(body[18:20]),
		}}, nil

	case AttrAIGP:
		if len(body) < 3 {
			return PathAttribute{}, newErr(KindMalformedAigp, "aigp attribute length %d, need at least 3", len(body))
		}
		aigpType := body[0]
		innerLength := beU16(body[1:3])
		if innerLength < 3 {
			return PathAttribute{}, newErr(KindMalformedAigp, "aigp inner_length %d < 3", innerLength)
		}
		valueLen := int(innerLength) - 3
		if valueLen > len(body)-3 {
			return PathAttribute{}, newErr(KindMalformedAigp, "aigp inner_length %d exceeds attribute body", innerLength)
		}
		return PathAttribute{AIGPType: aigpType, AIGPValue: append([]byte(nil), body[3:3+valueLen]...)}, nil

	case AttrTunnelEncapsulation:
		if len(body) < 4 {
			return PathAttribute{}, newErr(KindMalformedMessage, "tunnel_encapsulation attribute length %d, need at least 4", len(body))
		}
		tunnelType := beU16(body[0:2])
		innerLen := beU16(body[2:4])
		if int(innerLen) > len(body)-4 {
			return PathAttribute{}, newErr(KindMalformedMessage, "tunnel_encapsulation tlv length %d exceeds attribute body", innerLen)
		}
		return PathAttribute{TunnelEncapType: tunnelType, RawValue: append([]byte(nil), body[4:4+int(innerLen)]...)}, nil

	case AttrEntropyLabelCapability, AttrPEDistinguisherLabels, AttrBGPLS, AttrBGPSECPath, AttrBGPPrefixSID:
		// No grounding source (neither spec nor original_source's parser)
		// defines a payload shape for these; the declared bytes are kept
		// verbatim rather than interpreted.
		return PathAttribute{RawValue: append([]byte(nil), body...)}, nil

	default:
		return PathAttribute{}, newErr(KindUnknownAttribute, "unknown attribute type %d", attrType)
	}
}

func decodeMPReach(body []byte, caps Capabilities) (PathAttribute, error) {
	r := bytes.NewReader(body)
	afiRaw, err := readU16(r)
	if err != nil {
		return PathAttribute{}, err
	}
	safiRaw, err := readU8(r)
	if err != nil {
		return PathAttribute{}, err
	}
	nhLen, err := readU8(r)
	if err != nil {
		return PathAttribute{}, err
	}
	nextHop, err := readN(r, int(nhLen))
	if err != nil {
		return PathAttribute{}, err
	}
	if _, err := readU8(r); err != nil { // reserved (SNPA count, always 0)
		return PathAttribute{}, err
	}
	afi, err := ParseAFI(afiRaw)
	if err != nil {
		return PathAttribute{}, err
	}
	safi, err := ParseSAFI(safiRaw)
	if err != nil {
		return PathAttribute{}, err
	}
	rest := make([]byte, r.Len())
	if _, err := io.ReadFull(r, rest); err != nil {
		return PathAttribute{}, wrapErr(KindUnexpectedEOF, err, "mp_reach_nlri nlri tail")
	}
	addPath := resolveAddPath(caps, AfiSafi{AFI: afi, SAFI: safi}, rest)
	records, err := ParseNLRIBlock(rest, afi, safi, addPath)
	if err != nil {
		return PathAttribute{}, err
	}
	return PathAttribute{MPAFI: afi, MPSAFI: safi, MPNextHop: nextHop, MPNLRI: records}, nil
}

func decodeMPUnreach(body []byte, caps Capabilities) (PathAttribute, error) {
	r := bytes.NewReader(body)
	afiRaw, err := readU16(r)
	if err != nil {
		return PathAttribute{}, err
	}
	safiRaw, err := readU8(r)
	if err != nil {
		return PathAttribute{}, err
	}
	afi, err := ParseAFI(afiRaw)
	if err != nil {
		return PathAttribute{}, err
	}
	safi, err := ParseSAFI(safiRaw)
	if err != nil {
		return PathAttribute{}, err
	}
	rest := make([]byte, r.Len())
	if _, err := io.ReadFull(r, rest); err != nil {
		return PathAttribute{}, wrapErr(KindUnexpectedEOF, err, "mp_unreach_nlri nlri tail")
	}
	addPath := resolveAddPath(caps, AfiSafi{AFI: afi, SAFI: safi}, rest)
	records, err := ParseNLRIBlock(rest, afi, safi, addPath)
	if err != nil {
		return PathAttribute{}, err
	}
	return PathAttribute{MPAFI: afi, MPSAFI: safi, MPNLRI: records}, nil
}

// decodeAttrSet decodes ATTR_SET (4-byte origin ASN followed by a
// sequence of nested path attributes). Nested attributes are decoded
// best-effort: the first one that fails to parse stops the loop and
// its bytes (plus everything after) are preserved in AttrSetRawTail
// rather than failing the whole ATTR_SET — an unrecognized nested
// attribute here is not reason to discard an otherwise-valid route.
func decodeAttrSet(body []byte, caps Capabilities) (PathAttribute, error) {
	if len(body) < 4 {
		return PathAttribute{}, newErr(KindMalformedMessage, "attr_set attribute length %d, need at least 4", len(body))
	}
	originAS := beU32(body[0:4])
	inner := body[4:]
	r := bytes.NewReader(inner)
	var nested []PathAttribute
	for r.Len() > 0 {
		startLen := r.Len()
		attr, err := ParsePathAttribute(r, caps)
		if err != nil {
			consumed := len(inner) - startLen
			return PathAttribute{AttrSetOriginAS: originAS, AttrSetInner: nested, AttrSetRawTail: append([]byte(nil), inner[consumed:]...)}, nil
		}
		nested = append(nested, attr)
	}
	return PathAttribute{AttrSetOriginAS: originAS, AttrSetInner: nested}, nil
}

// Encode writes the attribute's (flags, type, length, value) wire
// form, choosing 1- or 2-byte length framing from the declared flags;
// the Extended Length flag is added when the body exceeds 255 bytes.
func (a PathAttribute) Encode(w io.Writer) error {
	var body bytes.Buffer
	if err := encodeAttributeBody(&body, a); err != nil {
		return err
	}
	flags := a.Flags
	if flags == 0 {
		flags = defaultFlags[a.Type]
	}
	if body.Len() > 255 {
		flags |= FlagExtendedLength
	}
	if err := writeU8(w, uint8(flags)); err != nil {
		return err
	}
	if err := writeU8(w, uint8(a.Type)); err != nil {
		return err
	}
	if flags.ExtendedLength() {
		if body.Len() > 0xFFFF {
			return newErr(KindEncodeOverflow, "attribute %d body %d bytes exceeds 65535", a.Type, body.Len())
		}
		if err := writeU16(w, uint16(body.Len())); err != nil {
			return err
		}
	} else {
		if err := writeU8(w, uint8(body.Len())); err != nil {
			return err
		}
	}
	_, err := w.Write(body.Bytes())
	return err
}

func encodeAttributeBody(body *bytes.Buffer, a PathAttribute) error {
	switch a.Type {
	case AttrOrigin:
		return writeU8(body, uint8(a.OriginValue))

	case AttrASPath:
		return a.ASPathValue.Encode(body)

	case AttrAS4Path:
		return a.ASPathValue.Encode(body)

	case AttrNextHop:
		ip := a.NextHop.To4()
		if ip == nil {
			return newErr(KindEncodeOverflow, "next_hop is not a valid IPv4 address")
		}
		_, err := body.Write(ip)
		return err

	case AttrMultiExitDisc:
		return writeU32(body, a.MED)

	case AttrLocalPref:
		return writeU32(body, a.LocalPref)

	case AttrAtomicAggregate:
		return nil

	case AttrAggregator, AttrAS4Aggregator:
		if err := writeU32(body, a.Aggregator.ASN); err != nil {
			return err
		}
		ip := a.Aggregator.Address.To4()
		if ip == nil {
			return newErr(KindEncodeOverflow, "aggregator address is not a valid IPv4 address")
		}
		_, err := body.Write(ip)
		return err

	case AttrCommunities:
		for _, c := range a.Communities {
			if err := writeU32(body, c); err != nil {
				return err
			}
		}
		return nil

	case AttrOriginatorID:
		return writeU32(body, a.OriginatorID)

	case AttrClusterList:
		for _, id := range a.ClusterList {
			if err := writeU32(body, id); err != nil {
				return err
			}
		}
		return nil

	case AttrMPReachNLRI:
		if err := writeU16(body, uint16(a.MPAFI)); err != nil {
			return err
		}
		if err := writeU8(body, uint8(a.MPSAFI)); err != nil {
			return err
		}
		if err := writeU8(body, uint8(len(a.MPNextHop))); err != nil {
			return err
		}
		if _, err := body.Write(a.MPNextHop); err != nil {
			return err
		}
		if err := writeU8(body, 0); err != nil { // reserved
			return err
		}
		return EncodeNLRIBlock(body, a.MPNLRI)

	case AttrMPUnreachNLRI:
		if err := writeU16(body, uint16(a.MPAFI)); err != nil {
			return err
		}
		if err := writeU8(body, uint8(a.MPSAFI)); err != nil {
			return err
		}
		return EncodeNLRIBlock(body, a.MPNLRI)

	case AttrExtendedCommunities:
		for _, c := range a.ExtComms {
			if _, err := body.Write(c[:]); err != nil {
				return err
			}
		}
		return nil

	case AttrLargeCommunities:
		for _, c := range a.LargeComms {
			if err := writeU32(body, c.GlobalAdmin); err != nil {
				return err
			}
			if err := writeU32(body, c.LocalData1); err != nil {
				return err
			}
			if err := writeU32(body, c.LocalData2); err != nil {
				return err
			}
		}
		return nil

	case AttrConnector:
		if err := writeU16(body, 0); err != nil { // padding
			return err
		}
		if err := writeU64(body, a.Connector.RouteDistinguisher); err != nil {
			return err
		}
		ip := a.Connector.Address.To4()
		if ip == nil {
			return newErr(KindEncodeOverflow, "connector address is not a valid IPv4 address")
		}
		_, err := body.Write(ip)
		return err

	case AttrPMSITunnel:
		if err := writeU8(body, a.PMSIFlags); err != nil {
			return err
		}
		if err := writeU8(body, a.PMSITunnelType); err != nil {
			return err
		}
		if err := writeU24(body, encodeLabel(a.PMSILabel)); err != nil {
			return err
		}
		_, err := body.Write(a.PMSITunnelID)
		return err

	case AttrAttrSet:
		if err := writeU32(body, a.AttrSetOriginAS); err != nil {
			return err
		}
		for _, inner := range a.AttrSetInner {
			if err := inner.Encode(body); err != nil {
				return err
			}
		}
		_, err := body.Write(a.AttrSetRawTail)
		return err

	case AttrDPA:
		if err := writeU16(body, a.DPA.ASN); err != nil {
			return err
		}
		return writeU32(body, a.DPA.Value)

	case AttrASPathLimit:
		if err := writeU8(body, a.ASPathLimit.Limit); err != nil {
			return err
		}
		return writeU32(body, a.ASPathLimit.ASN)

	case AttrIPv6SpecificExtComm:
		if err := writeU8(body, a.IPv6ExtComm.Transitive); err != nil {
			return err
		}
		if err := writeU8(body, a.IPv6ExtComm.Subtype); err != nil {
			return err
		}
		ip := a.IPv6ExtComm.GlobalAdmin.To16()
		if ip == nil {
			return newErr(KindEncodeOverflow, "ipv6_specific_extended_community global admin is not a valid IPv6 address")
		}
		if _, err := body.Write(ip); err != nil {
			return err
		}
		return writeU16(body, a.IPv6ExtComm.LocalAdmin)

	case AttrAIGP:
		if err := writeU8(body, a.AIGPType); err != nil {
			return err
		}
		if err := writeU16(body, uint16(len(a.AIGPValue)+3)); err != nil {
			return err
		}
		_, err := body.Write(a.AIGPValue)
		return err

	case AttrTunnelEncapsulation:
		if err := writeU16(body, a.TunnelEncapType); err != nil {
			return err
		}
		if err := writeU16(body, uint16(len(a.RawValue))); err != nil {
			return err
		}
		_, err := body.Write(a.RawValue)
		return err

	default:
		_, err := body.Write(a.RawValue)
		return err
	}
}

func beU16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func beU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func beU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
