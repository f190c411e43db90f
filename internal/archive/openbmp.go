package archive

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	openBMPHeaderSize      = 10 // v2: version(2) + collector_hash(4) + msg_len(4)
	openBMPVersionExpected = 2

	// v1.7 binary framing (used by goBMP-style collectors with raw BMP enabled).
	openBMPV17Magic      = 0x4F424D50 // "OBMP"
	openBMPV17MinHdrSize = 12         // magic(4) + ver(2) + hdr_len(2) + msg_len(4)
)

// decodeOpenBMPFrame strips an OpenBMP collector frame and returns the
// wrapped message payload (here: a single raw BGP message, rather than a
// full BMP message — this archive format skips the BMP per-peer header
// entirely since the codec has no session/peer concept to attach it to).
// Supports both the v2 format (10-byte header) and the v1.7 binary
// format ("OBMP" magic).
func decodeOpenBMPFrame(data []byte, maxPayloadBytes int) ([]byte, int, error) {
	if len(data) < openBMPHeaderSize {
		return nil, 0, fmt.Errorf("archive: openbmp frame too short (%d bytes, need %d)", len(data), openBMPHeaderSize)
	}

	if binary.BigEndian.Uint32(data[0:4]) == openBMPV17Magic {
		return decodeOpenBMPV17(data, maxPayloadBytes)
	}
	return decodeOpenBMPV2(data, maxPayloadBytes)
}

func decodeOpenBMPV2(data []byte, maxPayloadBytes int) ([]byte, int, error) {
	version := binary.BigEndian.Uint16(data[0:2])
	if version != openBMPVersionExpected {
		return nil, 0, fmt.Errorf("archive: openbmp unexpected version %d (expected %d)", version, openBMPVersionExpected)
	}

	msgLen := binary.BigEndian.Uint32(data[6:10])
	if msgLen == 0 {
		return nil, 0, fmt.Errorf("archive: openbmp msg_len is 0")
	}
	if uint64(msgLen) > uint64(math.MaxInt)-uint64(openBMPHeaderSize) {
		return nil, 0, fmt.Errorf("archive: openbmp msg_len %d overflows addressable size", msgLen)
	}
	if maxPayloadBytes > 0 && int(msgLen) > maxPayloadBytes {
		return nil, 0, fmt.Errorf("archive: openbmp msg_len %d exceeds max_payload_bytes %d", msgLen, maxPayloadBytes)
	}

	total := openBMPHeaderSize + int(msgLen)
	if len(data) < total {
		return nil, 0, fmt.Errorf("archive: openbmp frame truncated (have %d, need %d)", len(data), total)
	}
	return data[openBMPHeaderSize:total], total, nil
}

func decodeOpenBMPV17(data []byte, maxPayloadBytes int) ([]byte, int, error) {
	if len(data) < openBMPV17MinHdrSize {
		return nil, 0, fmt.Errorf("archive: openbmp v1.7 frame too short (%d bytes, need %d)", len(data), openBMPV17MinHdrSize)
	}

	hdrLen := binary.BigEndian.Uint16(data[6:8])
	msgLen := binary.BigEndian.Uint32(data[8:12])

	if hdrLen < openBMPV17MinHdrSize {
		return nil, 0, fmt.Errorf("archive: openbmp v1.7 header_len %d is too small", hdrLen)
	}
	if msgLen == 0 {
		return nil, 0, fmt.Errorf("archive: openbmp v1.7 msg_len is 0")
	}
	if uint64(msgLen) > uint64(math.MaxInt)-uint64(hdrLen) {
		return nil, 0, fmt.Errorf("archive: openbmp v1.7 msg_len %d overflows addressable size", msgLen)
	}
	if maxPayloadBytes > 0 && int(msgLen) > maxPayloadBytes {
		return nil, 0, fmt.Errorf("archive: openbmp v1.7 msg_len %d exceeds max_payload_bytes %d", msgLen, maxPayloadBytes)
	}

	total := int(hdrLen) + int(msgLen)
	if len(data) < total {
		return nil, 0, fmt.Errorf("archive: openbmp v1.7 frame truncated (have %d, need %d)", len(data), total)
	}
	return data[hdrLen:total], total, nil
}
