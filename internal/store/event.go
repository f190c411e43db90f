package store

import (
	"fmt"
	"strconv"

	bgp "github.com/bgparchive/bgparchive"
)

// RouteEvent is a single per-prefix event projected from a decoded
// UPDATE message: one row per withdrawn or announced NLRI entry,
// sharing that UPDATE's path attributes. Grounded on the shape the
// teacher's ingestion pipeline persisted per route change.
type RouteEvent struct {
	AFI       int
	Prefix    string
	PathID    uint32
	Action    string // "A" (announce) or "D" (withdraw)
	Nexthop   string
	ASPath    string
	Origin    string
	LocalPref *uint32
	MED       *uint32
	CommStd   []string
	CommExt   []string
	CommLarge []string
}

// ExtractRouteEvents flattens one decoded UPDATE into per-prefix events.
// Non-UPDATE messages produce no events.
func ExtractRouteEvents(msg bgp.Message) []RouteEvent {
	if msg.Kind != bgp.MessageKindUpdate {
		return nil
	}
	u := msg.Update.Normalize()

	shared := RouteEvent{}
	if nh, ok := u.Attribute(bgp.AttrNextHop); ok && nh.NextHop != nil {
		shared.Nexthop = nh.NextHop.String()
	}
	if as, ok := u.Attribute(bgp.AttrASPath); ok {
		shared.ASPath = formatASPath(as.ASPathValue)
	}
	if o, ok := u.Attribute(bgp.AttrOrigin); ok {
		shared.Origin = formatOrigin(o.OriginValue)
	}
	if lp, ok := u.Attribute(bgp.AttrLocalPref); ok {
		v := lp.LocalPref
		shared.LocalPref = &v
	}
	if med, ok := u.Attribute(bgp.AttrMultiExitDisc); ok {
		v := med.MED
		shared.MED = &v
	}
	if c, ok := u.Attribute(bgp.AttrCommunities); ok {
		for _, v := range c.Communities {
			shared.CommStd = append(shared.CommStd, formatCommunity(v))
		}
	}
	if c, ok := u.Attribute(bgp.AttrExtendedCommunities); ok {
		for _, v := range c.ExtComms {
			shared.CommExt = append(shared.CommExt, fmt.Sprintf("%x", v))
		}
	}
	if c, ok := u.Attribute(bgp.AttrLargeCommunities); ok {
		for _, v := range c.LargeComms {
			shared.CommLarge = append(shared.CommLarge, fmt.Sprintf("%d:%d:%d", v.GlobalAdmin, v.LocalData1, v.LocalData2))
		}
	}

	var events []RouteEvent
	for _, n := range u.WithdrawnRoutes {
		ev := shared
		ev.AFI = afiNumber(n.Prefix.AFI)
		ev.Prefix = n.Prefix.String()
		ev.PathID = n.PathID
		ev.Action = "D"
		events = append(events, ev)
	}
	for _, n := range u.NLRI {
		ev := shared
		ev.AFI = afiNumber(n.Prefix.AFI)
		ev.Prefix = n.Prefix.String()
		ev.PathID = n.PathID
		ev.Action = "A"
		events = append(events, ev)
	}
	return events
}

func afiNumber(afi bgp.AFI) int {
	if afi == bgp.AFI_IPV6 {
		return 6
	}
	return 4
}

func formatOrigin(o bgp.Origin) string {
	switch o {
	case bgp.OriginIGP:
		return "IGP"
	case bgp.OriginEGP:
		return "EGP"
	default:
		return "INCOMPLETE"
	}
}

func formatASPath(path bgp.ASPath) string {
	s := ""
	for i, seg := range path.Segments {
		if i > 0 {
			s += " "
		}
		if seg.Type == bgp.SegmentSet {
			s += "{"
		}
		for j, asn := range seg.ASNs {
			if j > 0 {
				s += " "
			}
			s += strconv.FormatUint(uint64(asn), 10)
		}
		if seg.Type == bgp.SegmentSet {
			s += "}"
		}
	}
	return s
}

func formatCommunity(c uint32) string {
	return fmt.Sprintf("%d:%d", c>>16, c&0xFFFF)
}
