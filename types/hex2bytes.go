package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexToBytes decodes a hex string with or without the 0x prefix.
func HexToBytes(hexStr string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
}

// HexToHash decodes a 32-byte hash from its hex form.
func HexToHash(hexStr string) ([32]byte, error) {
	var out [32]byte
	b, err := HexToBytes(hexStr)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("hash must be 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// HexBytes is a byte slice carried as a 0x-prefixed hex string in JSON, the
// encoding used by substrate RPC responses and local fixture files.
type HexBytes []byte

func (hb HexBytes) String() string {
	return "0x" + hex.EncodeToString(hb)
}

func (hb HexBytes) MarshalJSON() ([]byte, error) {
	s := hb.String()
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, s...)
	return append(out, '"'), nil
}

func (hb *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid hex string: %s", data)
	}
	bz, err := HexToBytes(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*hb = bz
	return nil
}
