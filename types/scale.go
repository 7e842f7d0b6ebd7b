package types

import (
	"encoding/binary"
	"fmt"
)

// SCALE compact-integer modes, stored in the two low bits of the first byte.
const (
	CompactModeSingleByte = 0
	CompactModeTwoByte    = 1
	CompactModeFourByte   = 2
	CompactModeBigInt     = 3
)

// EncodeCompactUint encodes v in SCALE compact form.
func EncodeCompactUint(v uint64) []byte {
	switch {
	case v < 1<<6:
		return []byte{byte(v) << 2}
	case v < 1<<14:
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(v)<<2|CompactModeTwoByte)
		return buf[:]
	case v < 1<<30:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(v)<<2|CompactModeFourByte)
		return buf[:]
	default:
		var le [8]byte
		binary.LittleEndian.PutUint64(le[:], v)
		n := 8
		for n > 4 && le[n-1] == 0 {
			n--
		}
		out := make([]byte, 1, 1+n)
		out[0] = byte(n-4)<<2 | CompactModeBigInt
		return append(out, le[:n]...)
	}
}

// DecodeCompactUint decodes a SCALE compact integer from the front of data,
// returning the value, the encoding mode and the number of bytes consumed.
func DecodeCompactUint(data []byte) (value uint64, mode byte, length int, err error) {
	if len(data) == 0 {
		return 0, 0, 0, fmt.Errorf("compact integer: empty input")
	}
	mode = data[0] & 0b11
	switch mode {
	case CompactModeSingleByte:
		return uint64(data[0] >> 2), mode, 1, nil
	case CompactModeTwoByte:
		if len(data) < 2 {
			return 0, 0, 0, fmt.Errorf("compact integer: need 2 bytes, have %d", len(data))
		}
		return uint64(binary.LittleEndian.Uint16(data[:2]) >> 2), mode, 2, nil
	case CompactModeFourByte:
		if len(data) < 4 {
			return 0, 0, 0, fmt.Errorf("compact integer: need 4 bytes, have %d", len(data))
		}
		return uint64(binary.LittleEndian.Uint32(data[:4]) >> 2), mode, 4, nil
	default:
		n := int(data[0]>>2) + 4
		if n > 8 {
			return 0, 0, 0, fmt.Errorf("compact integer: %d-byte big-int mode out of range", n)
		}
		if len(data) < 1+n {
			return 0, 0, 0, fmt.Errorf("compact integer: need %d bytes, have %d", 1+n, len(data))
		}
		var le [8]byte
		copy(le[:], data[1:1+n])
		return binary.LittleEndian.Uint64(le[:]), mode, 1 + n, nil
	}
}

// Header is the native form of a Substrate block header. DigestLogs hold the
// raw SCALE-encoded digest items as delivered by the node.
type Header struct {
	ParentHash     [32]byte
	Number         uint64
	StateRoot      [32]byte
	ExtrinsicsRoot [32]byte
	DigestLogs     [][]byte
}

// EncodeHeader serializes a header to its SCALE wire form, the exact byte
// string that hashes to the block hash.
func EncodeHeader(h *Header) []byte {
	out := make([]byte, 0, 97+len(h.DigestLogs)*40)
	out = append(out, h.ParentHash[:]...)
	out = append(out, EncodeCompactUint(h.Number)...)
	out = append(out, h.StateRoot[:]...)
	out = append(out, h.ExtrinsicsRoot[:]...)
	out = append(out, EncodeCompactUint(uint64(len(h.DigestLogs)))...)
	for _, log := range h.DigestLogs {
		out = append(out, log...)
	}
	return out
}

// ParseHeaderPrefix decodes the fixed leading fields of a SCALE-encoded
// header: parent hash, block number, state root and extrinsics root. The
// digest logs tail is left unparsed.
func ParseHeaderPrefix(encoded []byte) (*Header, error) {
	if len(encoded) < 32 {
		return nil, fmt.Errorf("header: truncated before parent hash")
	}
	var h Header
	copy(h.ParentHash[:], encoded[:32])

	number, _, n, err := DecodeCompactUint(encoded[32:])
	if err != nil {
		return nil, fmt.Errorf("header: block number: %w", err)
	}
	h.Number = number

	rest := encoded[32+n:]
	if len(rest) < 64 {
		return nil, fmt.Errorf("header: truncated before roots")
	}
	copy(h.StateRoot[:], rest[:32])
	copy(h.ExtrinsicsRoot[:], rest[32:64])
	return &h, nil
}
