package types

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompactUintRoundTrip(t *testing.T) {
	cases := []struct {
		value   uint64
		mode    byte
		length  int
		encoded []byte
	}{
		{0, CompactModeSingleByte, 1, []byte{0x00}},
		{1, CompactModeSingleByte, 1, []byte{0x04}},
		{63, CompactModeSingleByte, 1, []byte{0xfc}},
		{64, CompactModeTwoByte, 2, []byte{0x01, 0x01}},
		{65, CompactModeTwoByte, 2, []byte{0x05, 0x01}},
		{16383, CompactModeTwoByte, 2, []byte{0xfd, 0xff}},
		{16384, CompactModeFourByte, 4, []byte{0x02, 0x00, 0x01, 0x00}},
		{1<<30 - 1, CompactModeFourByte, 4, []byte{0xfe, 0xff, 0xff, 0xff}},
		{1 << 30, CompactModeBigInt, 5, []byte{0x03, 0x00, 0x00, 0x00, 0x40}},
		{576728, CompactModeFourByte, 4, []byte{0x62, 0x33, 0x23, 0x00}},
	}

	for _, tc := range cases {
		encoded := EncodeCompactUint(tc.value)
		require.Equal(t, tc.encoded, encoded, "encoding of %d", tc.value)

		value, mode, length, err := DecodeCompactUint(encoded)
		require.NoError(t, err)
		require.Equal(t, tc.value, value)
		require.Equal(t, tc.mode, mode)
		require.Equal(t, tc.length, length)
	}
}

func TestDecodeCompactUintTruncated(t *testing.T) {
	_, _, _, err := DecodeCompactUint(nil)
	require.Error(t, err)

	_, _, _, err = DecodeCompactUint([]byte{0x02, 0x00})
	require.Error(t, err, "four-byte mode needs four bytes")

	_, _, _, err = DecodeCompactUint([]byte{0x03, 0x00})
	require.Error(t, err, "big-int mode needs its payload")
}

func TestParseHeaderPrefixBlock576728(t *testing.T) {
	fixture := struct {
		Header     HexBytes `json:"header"`
		ParentHash HexBytes `json:"parentHash"`
		StateRoot  HexBytes `json:"stateRoot"`
		BlockHash  HexBytes `json:"blockHash"`
		Number     uint64   `json:"number"`
	}{}
	data, err := os.ReadFile(filepath.Join("..", "data", "block-576728.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &fixture))

	header, err := ParseHeaderPrefix(fixture.Header)
	require.NoError(t, err)
	require.Equal(t, []byte(fixture.ParentHash), header.ParentHash[:])
	require.Equal(t, []byte(fixture.StateRoot), header.StateRoot[:])
	require.Equal(t, fixture.Number, header.Number)

	hash := BlockHash(fixture.Header)
	require.Equal(t, []byte(fixture.BlockHash), hash[:])
}

func TestEncodeHeaderRoundTrip(t *testing.T) {
	header := Header{Number: 530527}
	for i := 0; i < 32; i++ {
		header.ParentHash[i] = byte(i)
		header.StateRoot[i] = byte(i * 2)
		header.ExtrinsicsRoot[i] = byte(i * 3)
	}
	header.DigestLogs = [][]byte{
		{0x06, 0x42, 0x41, 0x42, 0x45},
		{0x05, 0x42, 0x41, 0x42, 0x45, 0x01},
	}

	encoded := EncodeHeader(&header)
	parsed, err := ParseHeaderPrefix(encoded)
	require.NoError(t, err)
	require.Equal(t, header.ParentHash, parsed.ParentHash)
	require.Equal(t, header.StateRoot, parsed.StateRoot)
	require.Equal(t, header.ExtrinsicsRoot, parsed.ExtrinsicsRoot)
	require.Equal(t, header.Number, parsed.Number)
}
