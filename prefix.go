package bgp

import (
	"fmt"
	"io"
	"net"
)

// Prefix is a variable-length IP prefix: an address family, a length in
// bits, and exactly ceil(length/8) significant octets (§3, §4.9).
type Prefix struct {
	AFI    AFI
	Length uint8
	Octets []byte
}

// NewPrefix constructs a Prefix, keeping only the significant octets.
func NewPrefix(afi AFI, length uint8, octets []byte) Prefix {
	n := (int(length) + 7) / 8
	out := make([]byte, n)
	copy(out, octets)
	return Prefix{AFI: afi, Length: length, Octets: out}
}

// ParsePrefix reads length_bits (u8) followed by ceil(length_bits/8)
// octets, failing with MalformedMessage if length_bits exceeds the
// family's maximum (§4.9).
func ParsePrefix(r io.Reader, afi AFI) (Prefix, error) {
	maxBits, err := afi.MaxPrefixBits()
	if err != nil {
		return Prefix{}, err
	}
	length, err := readU8(r)
	if err != nil {
		return Prefix{}, err
	}
	if int(length) > maxBits {
		return Prefix{}, newErr(KindMalformedMessage, "prefix length %d exceeds %s maximum %d", length, afi, maxBits)
	}
	n := (int(length) + 7) / 8
	octets, err := readN(r, n)
	if err != nil {
		return Prefix{}, err
	}
	return Prefix{AFI: afi, Length: length, Octets: octets}, nil
}

// Encode writes length_bits followed by the significant octets.
func (p Prefix) Encode(w io.Writer) error {
	if err := writeU8(w, p.Length); err != nil {
		return err
	}
	_, err := w.Write(p.MaskedOctets())
	return err
}

// MaskedOctets returns just the significant prefix octets (ceil(Length/8)
// of them), the portion actually written on encode.
func (p Prefix) MaskedOctets() []byte {
	n := (int(p.Length) + 7) / 8
	if n > len(p.Octets) {
		n = len(p.Octets)
	}
	return p.Octets[:n]
}

// IP renders the prefix's address bytes as a net.IP, zero-padded to the
// family's full width.
func (p Prefix) IP() net.IP {
	switch p.AFI {
	case AFI_IPV6:
		buf := make([]byte, 16)
		copy(buf, p.Octets)
		return net.IP(buf)
	default:
		buf := make([]byte, 4)
		copy(buf, p.Octets)
		return net.IP(buf)
	}
}

// String renders canonical CIDR notation, e.g. "10.0.0.0/8".
func (p Prefix) String() string {
	return fmt.Sprintf("%s/%d", p.IP(), p.Length)
}
