// Package archive frames a byte stream of archived BGP traffic —
// concatenated BGP messages, optionally OpenBMP-wrapped and/or
// zstd-compressed — into individual message byte slices ready for
// bgp.DecodeMessageBytes. It owns no session/peer state: that boundary
// belongs to the caller, same as the codec itself.
package archive

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Frame is one decoded archive record: the raw BGP message bytes ready
// for bgp.DecodeMessageBytes, plus a content-addressed EventID useful
// for downstream dedup (an insert keyed on EventID naturally collapses
// an archive replayed twice).
type Frame struct {
	EventID []byte // sha256 of Raw
	Raw     []byte // the undecorated BGP message: 19-byte header + body
}

// Reader sequentially decodes Frames from an underlying stream.
type Reader struct {
	br              *bufio.Reader
	zstdDec         *zstd.Decoder
	openBMPFramed   bool
	maxPayloadBytes int
}

// Options configures how the underlying stream is framed.
type Options struct {
	OpenBMPFramed   bool
	ZstdCompressed  bool
	MaxPayloadBytes int // 0 disables the check
}

// NewReader wraps src according to opts. Callers must call Close when
// opts.ZstdCompressed is set, to release the decompressor.
func NewReader(src io.Reader, opts Options) (*Reader, error) {
	r := &Reader{
		openBMPFramed:   opts.OpenBMPFramed,
		maxPayloadBytes: opts.MaxPayloadBytes,
	}
	if opts.ZstdCompressed {
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("archive: constructing zstd decoder: %w", err)
		}
		r.zstdDec = dec
		r.br = bufio.NewReader(dec)
	} else {
		r.br = bufio.NewReader(src)
	}
	return r, nil
}

// Close releases the zstd decompressor, if one was constructed.
func (r *Reader) Close() {
	if r.zstdDec != nil {
		r.zstdDec.Close()
	}
}

// Next returns the next Frame, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (Frame, error) {
	if r.openBMPFramed {
		return r.nextOpenBMPFrame()
	}
	return r.nextBareFrame()
}

// nextBareFrame reads one plain BGP message: a 19-byte header (marker
// + length + type) whose length field gives the total message size.
func (r *Reader) nextBareFrame() (Frame, error) {
	const headerSize = 19
	peek, err := r.br.Peek(headerSize)
	if len(peek) == 0 && err != nil {
		return Frame{}, io.EOF
	}
	if len(peek) < headerSize {
		return Frame{}, fmt.Errorf("archive: truncated bgp header (%d bytes available)", len(peek))
	}
	total := int(binary.BigEndian.Uint16(peek[16:18]))
	if total < headerSize {
		return Frame{}, fmt.Errorf("archive: declared bgp message length %d smaller than header size", total)
	}
	if r.maxPayloadBytes > 0 && total > r.maxPayloadBytes {
		return Frame{}, fmt.Errorf("archive: bgp message length %d exceeds max_payload_bytes %d", total, r.maxPayloadBytes)
	}

	buf := make([]byte, total)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return Frame{}, fmt.Errorf("archive: reading bgp message body: %w", err)
	}
	return newFrame(buf), nil
}

// nextOpenBMPFrame reads one OpenBMP-wrapped frame and unwraps it down
// to the raw BGP message it carries.
func (r *Reader) nextOpenBMPFrame() (Frame, error) {
	const probeSize = openBMPV17MinHdrSize // 12, a superset of the 10-byte v2 header
	peek, err := r.br.Peek(probeSize)
	if len(peek) == 0 && err != nil {
		return Frame{}, io.EOF
	}
	if len(peek) < openBMPHeaderSize {
		return Frame{}, fmt.Errorf("archive: truncated openbmp header (%d bytes available)", len(peek))
	}

	var total int
	if binary.BigEndian.Uint32(peek[0:4]) == openBMPV17Magic {
		if len(peek) < openBMPV17MinHdrSize {
			return Frame{}, fmt.Errorf("archive: truncated openbmp v1.7 header (%d bytes available)", len(peek))
		}
		hdrLen := binary.BigEndian.Uint16(peek[6:8])
		msgLen := binary.BigEndian.Uint32(peek[8:12])
		total = int(hdrLen) + int(msgLen)
	} else {
		msgLen := binary.BigEndian.Uint32(peek[6:10])
		total = openBMPHeaderSize + int(msgLen)
	}
	if r.maxPayloadBytes > 0 && total-openBMPHeaderSize > r.maxPayloadBytes {
		return Frame{}, fmt.Errorf("archive: openbmp payload exceeds max_payload_bytes %d", r.maxPayloadBytes)
	}

	buf := make([]byte, total)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return Frame{}, fmt.Errorf("archive: reading openbmp frame: %w", err)
	}
	payload, _, err := decodeOpenBMPFrame(buf, r.maxPayloadBytes)
	if err != nil {
		return Frame{}, err
	}
	return newFrame(payload), nil
}

func newFrame(raw []byte) Frame {
	id := sha256.Sum256(raw)
	return Frame{EventID: id[:], Raw: raw}
}
