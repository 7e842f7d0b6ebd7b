package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/selector"
)

const (
	hashSize = 32

	// A compact u32 occupies at most 5 encoded bytes.
	compactIntWindow = 5

	// Size of a minimal header: parent hash, 1-byte compact block number,
	// state root, extrinsics root and a 1-byte empty digest-log count.
	minHeaderBytes = 98
)

// compactInt is the decoded form of a SCALE compact-encoded unsigned integer:
// the integer value, the 2-bit encoding mode and the number of wire bytes the
// encoding consumed.
type compactInt struct {
	value      frontend.Variable
	mode       frontend.Variable
	byteLength frontend.Variable
}

// decodeCompactInt decodes a SCALE compact integer from a fixed 5-byte
// window. The two low bits of the first byte select the mode; wire bytes past
// the encoded length are ignored. All input bytes must already be range
// checked to 8 bits.
func decodeCompactInt(api frontend.API, compactBytes []frontend.Variable) compactInt {
	if len(compactBytes) != compactIntWindow {
		panic(fmt.Sprintf("decodeCompactInt: window must be %d bytes, got %d", compactIntWindow, len(compactBytes)))
	}

	bits := api.ToBinary(compactBytes[0], 8)
	mode := api.Add(bits[0], api.Mul(bits[1], 2))

	zeroModeValue := compactBytes[0]
	oneModeValue := reduceLE(api, compactBytes[0:2])
	twoModeValue := reduceLE(api, compactBytes[0:4])
	threeModeValue := reduceLE(api, compactBytes[1:5])
	value := selector.Mux(api, mode, zeroModeValue, oneModeValue, twoModeValue, threeModeValue)

	// Modes 0-2 carry the mode selector in the low two bits of the value, so
	// those bits must be stripped. Mode 3 stores the value in full bytes.
	valueShifted := intDiv(api, value, 4)
	isModeThree := api.IsZero(api.Sub(mode, 3))
	decoded := api.Select(isModeThree, value, valueShifted)

	byteLength := selector.Mux(api, mode, 1, 2, 4, 5)

	return compactInt{value: decoded, mode: mode, byteLength: byteLength}
}

// encodedHeader is a zero-padded SCALE-encoded header buffer together with
// the length of its occupied prefix.
type encodedHeader struct {
	bytes  []frontend.Variable
	length frontend.Variable
}

// decodedHeader carries the header fields the justification circuit binds to
// the signed precommit message.
type decodedHeader struct {
	parentHash  []frontend.Variable
	blockNumber frontend.Variable
	stateRoot   []frontend.Variable
}

// decodeHeader extracts the parent hash, block number and state root from an
// encoded header. The state root begins right after the compact block number,
// so its offset is one of {33, 34, 36, 37} depending on the compact mode.
// All header bytes must already be range checked to 8 bits.
func decodeHeader(api frontend.API, header encodedHeader) decodedHeader {
	if len(header.bytes) < minHeaderBytes {
		panic(fmt.Sprintf("decodeHeader: header buffer must hold at least %d bytes, got %d", minHeaderBytes, len(header.bytes)))
	}

	parentHash := header.bytes[0:hashSize]

	blockNumber := decodeCompactInt(api, header.bytes[hashSize:hashSize+compactIntWindow])

	stateRootCandidates := [][]frontend.Variable{
		header.bytes[33 : 33+hashSize],
		header.bytes[34 : 34+hashSize],
		header.bytes[36 : 36+hashSize],
		header.bytes[37 : 37+hashSize],
	}
	stateRoot := muxVector(api, blockNumber.mode, stateRootCandidates)

	return decodedHeader{
		parentHash:  parentHash,
		blockNumber: blockNumber.value,
		stateRoot:   stateRoot,
	}
}
