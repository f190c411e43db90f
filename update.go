package bgp

import (
	"bytes"
	"io"
)

// Update is a parsed UPDATE message (§4.3): a set of withdrawn routes,
// a set of path attributes, and a set of newly announced routes. Any
// of the three may be empty — an UPDATE carrying only MP_UNREACH_NLRI
// withdrawals, for instance, has empty WithdrawnRoutes and NLRI.
type Update struct {
	WithdrawnRoutes []NLRIEncoding
	Attributes      []PathAttribute
	NLRI            []NLRIEncoding
}

var ipv4Unicast = AfiSafi{AFI: AFI_IPV4, SAFI: SAFI_UNICAST}

// resolveAddPath decides whether an NLRI section of the given family
// carries a leading Path ID: honor the negotiated ADD-PATH capability
// when the caller supplied one covering this family, otherwise fall
// back to the structural heuristic over the raw section bytes (§4.7).
// This precedence is applied identically to the top-level (implicit
// IPv4/Unicast) withdrawn and announced sections and to the NLRI of
// MP_REACH_NLRI/MP_UNREACH_NLRI.
func resolveAddPath(caps Capabilities, family AfiSafi, section []byte) bool {
	if _, ok := caps.AddPath[family]; ok {
		return caps.AddPathNegotiated(family, AddPathReceive)
	}
	maxBits, err := family.AFI.MaxPrefixBits()
	if err != nil || len(section) == 0 {
		return false
	}
	return detectAddPathPrefix(section, maxBits)
}

// ParseUpdate decodes an UPDATE message body.
func ParseUpdate(body []byte, caps Capabilities) (Update, error) {
	r := bytes.NewReader(body)

	withdrawnLen, err := readU16(r)
	if err != nil {
		return Update{}, err
	}
	withdrawnBody, err := readN(r, int(withdrawnLen))
	if err != nil {
		return Update{}, err
	}

	attrsLen, err := readU16(r)
	if err != nil {
		return Update{}, err
	}
	attrsBody, err := readN(r, int(attrsLen))
	if err != nil {
		return Update{}, err
	}

	nlriBody := make([]byte, r.Len())
	if _, err := io.ReadFull(r, nlriBody); err != nil {
		return Update{}, wrapErr(KindUnexpectedEOF, err, "update nlri tail")
	}

	withdrawnAddPath := resolveAddPath(caps, ipv4Unicast, withdrawnBody)
	withdrawn, err := ParseNLRIBlock(withdrawnBody, AFI_IPV4, SAFI_UNICAST, withdrawnAddPath)
	if err != nil {
		return Update{}, err
	}

	var attrs []PathAttribute
	ar := bytes.NewReader(attrsBody)
	for ar.Len() > 0 {
		attr, err := ParsePathAttribute(ar, caps)
		if err != nil {
			if kind, ok := KindOf(err); ok && kind == KindUnknownAttribute {
				continue
			}
			return Update{}, err
		}
		attrs = append(attrs, attr)
	}

	nlriAddPath := resolveAddPath(caps, ipv4Unicast, nlriBody)
	announced, err := ParseNLRIBlock(nlriBody, AFI_IPV4, SAFI_UNICAST, nlriAddPath)
	if err != nil {
		return Update{}, err
	}

	return Update{WithdrawnRoutes: withdrawn, Attributes: attrs, NLRI: announced}, nil
}

// Encode writes the UPDATE message body.
func (u Update) Encode(w io.Writer) error {
	var withdrawn bytes.Buffer
	if err := EncodeNLRIBlock(&withdrawn, u.WithdrawnRoutes); err != nil {
		return err
	}
	if withdrawn.Len() > 0xFFFF {
		return newErr(KindEncodeOverflow, "withdrawn routes %d bytes exceeds 65535", withdrawn.Len())
	}
	if err := writeU16(w, uint16(withdrawn.Len())); err != nil {
		return err
	}
	if _, err := w.Write(withdrawn.Bytes()); err != nil {
		return err
	}

	var attrs bytes.Buffer
	for _, a := range u.Attributes {
		if err := a.Encode(&attrs); err != nil {
			return err
		}
	}
	if attrs.Len() > 0xFFFF {
		return newErr(KindEncodeOverflow, "path attributes %d bytes exceeds 65535", attrs.Len())
	}
	if err := writeU16(w, uint16(attrs.Len())); err != nil {
		return err
	}
	if _, err := w.Write(attrs.Bytes()); err != nil {
		return err
	}

	return EncodeNLRIBlock(w, u.NLRI)
}

// IsAnnouncement reports whether this UPDATE carries any newly
// reachable routes, in either the legacy NLRI section or
// MP_REACH_NLRI.
func (u Update) IsAnnouncement() bool {
	if len(u.NLRI) > 0 {
		return true
	}
	for _, a := range u.Attributes {
		if a.Type == AttrMPReachNLRI && len(a.MPNLRI) > 0 {
			return true
		}
	}
	return false
}

// IsWithdrawal reports whether this UPDATE carries any withdrawn
// routes, in either the legacy withdrawn-routes section or
// MP_UNREACH_NLRI.
func (u Update) IsWithdrawal() bool {
	if len(u.WithdrawnRoutes) > 0 {
		return true
	}
	for _, a := range u.Attributes {
		if a.Type == AttrMPUnreachNLRI && len(a.MPNLRI) > 0 {
			return true
		}
	}
	return false
}

// IsEndOfRIB reports whether this UPDATE is an End-of-RIB marker: a
// completely empty UPDATE (legacy IPv4 EoR) or one carrying a
// zero-length MP_UNREACH_NLRI for some other family (RFC 4724 §2).
func (u Update) IsEndOfRIB() bool {
	if len(u.WithdrawnRoutes) == 0 && len(u.NLRI) == 0 && len(u.Attributes) == 0 {
		return true
	}
	for _, a := range u.Attributes {
		if a.Type == AttrMPUnreachNLRI && len(a.MPNLRI) == 0 {
			return true
		}
	}
	return false
}

// Attribute returns the first attribute of the given type, if present.
func (u Update) Attribute(t AttributeType) (PathAttribute, bool) {
	for _, a := range u.Attributes {
		if a.Type == t {
			return a, true
		}
	}
	return PathAttribute{}, false
}

// Normalize flattens MP_REACH_NLRI/MP_UNREACH_NLRI's NLRI records into
// the same NLRI/WithdrawnRoutes lists as the legacy IPv4 sections,
// returning a new Update with the MP attributes removed from
// Attributes; the MP next-hop is not carried over. Multiprotocol callers that want one
// uniform "what changed" view regardless of wire encoding should use
// this instead of inspecting MPNLRI directly.
func (u Update) Normalize() Update {
	out := Update{
		WithdrawnRoutes: append([]NLRIEncoding(nil), u.WithdrawnRoutes...),
		NLRI:            append([]NLRIEncoding(nil), u.NLRI...),
	}
	for _, a := range u.Attributes {
		switch a.Type {
		case AttrMPReachNLRI:
			out.NLRI = append(out.NLRI, a.MPNLRI...)
		case AttrMPUnreachNLRI:
			out.WithdrawnRoutes = append(out.WithdrawnRoutes, a.MPNLRI...)
		default:
			out.Attributes = append(out.Attributes, a)
		}
	}
	return out
}
