package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/std/rangecheck"
)

// Precommit message layout: tag byte, block hash, little-endian u32 block
// number, little-endian u64 round, little-endian u64 authority set id.
const (
	EncodedMessageLength = 53
	precommitTag         = 1
)

// MinHeaderBytes is the size of the smallest well-formed header: parent
// hash, a 1-byte compact block number, state root, extrinsics root and a
// 1-byte empty digest-log count.
const MinHeaderBytes = minHeaderBytes

// JustificationCircuit proves that a GRANDPA justification finalizes a
// specific block header: the supplied bytes are a SCALE-encoded header whose
// Blake2b-256 digest is the block hash inside the signed precommit message,
// the block numbers agree, and every Ed25519 signature over that message
// verifies against its validator key.
//
// The circuit shape is fixed by (max header bytes, validator count); the
// compiled constraint system is reused across proofs with fresh witnesses.
type JustificationCircuit struct {
	// EncodedHeader is the SCALE-encoded header, zero padded to the
	// configured maximum. HeaderLength is the occupied prefix.
	EncodedHeader []uints.U8        `gnark:",public"`
	HeaderLength  frontend.Variable `gnark:",public"`

	// EncodedMessage is the 53-byte precommit message every validator signed.
	EncodedMessage []uints.U8 `gnark:",public"`

	// One decomposed signature and decompressed key per validator; all sign
	// the same message.
	Signatures []EdDSASignature `gnark:",public"`
	PublicKeys []EdDSAPublicKey `gnark:",public"`
}

// NewJustificationCircuit allocates the circuit shape for a fixed maximum
// header size and validator count. The same constructor produces both the
// compile-time shape and witness assignments.
func NewJustificationCircuit(maxHeaderBytes, numValidators int) *JustificationCircuit {
	if maxHeaderBytes < minHeaderBytes {
		panic(fmt.Sprintf("maxHeaderBytes must be at least %d, got %d", minHeaderBytes, maxHeaderBytes))
	}
	if maxHeaderBytes%blake2bChunkBytes != 0 {
		panic(fmt.Sprintf("maxHeaderBytes must be a multiple of the %d-byte hash chunk, got %d", blake2bChunkBytes, maxHeaderBytes))
	}
	if numValidators < 0 {
		panic(fmt.Sprintf("numValidators must be non-negative, got %d", numValidators))
	}
	return &JustificationCircuit{
		EncodedHeader:  make([]uints.U8, maxHeaderBytes),
		EncodedMessage: make([]uints.U8, EncodedMessageLength),
		Signatures:     make([]EdDSASignature, numValidators),
		PublicKeys:     make([]EdDSAPublicKey, numValidators),
	}
}

func (c *JustificationCircuit) Define(api frontend.API) error {
	if len(c.EncodedMessage) != EncodedMessageLength {
		return fmt.Errorf("encoded message must be %d bytes, got %d", EncodedMessageLength, len(c.EncodedMessage))
	}
	if len(c.Signatures) != len(c.PublicKeys) {
		return fmt.Errorf("signature count %d does not match key count %d", len(c.Signatures), len(c.PublicKeys))
	}

	rc := rangecheck.New(api)
	headerVals := make([]frontend.Variable, len(c.EncodedHeader))
	for i, b := range c.EncodedHeader {
		rc.Check(b.Val, 8)
		headerVals[i] = b.Val
	}
	for _, b := range c.EncodedMessage {
		rc.Check(b.Val, 8)
	}

	decoded := decodeHeader(api, encodedHeader{bytes: headerVals, length: c.HeaderLength})

	uapi, err := uints.New[uints.U64](api)
	if err != nil {
		return err
	}
	digest := blake2b256(api, uapi, c.EncodedHeader, c.HeaderLength)

	api.AssertIsEqual(c.EncodedMessage[0].Val, precommitTag)

	// The signed block hash is the header digest.
	for i := 0; i < hashSize; i++ {
		api.AssertIsEqual(digest[i].Val, c.EncodedMessage[1+i].Val)
	}

	// The signed block number matches the header. The 4-byte little-endian
	// reduction also caps the decoded number below 2^32.
	signedBlockNumber := reduceLE(api, []frontend.Variable{
		c.EncodedMessage[33].Val,
		c.EncodedMessage[34].Val,
		c.EncodedMessage[35].Val,
		c.EncodedMessage[36].Val,
	})
	api.AssertIsEqual(signedBlockNumber, decoded.blockNumber)

	// Bytes 37..53 carry the round and authority set id. They are hashed into
	// the signed message but not bound to chain state here; callers verify
	// them out of circuit.

	ec, err := newEdCurve(api, uapi)
	if err != nil {
		return err
	}
	for i := range c.Signatures {
		ec.verify(c.EncodedMessage, &c.Signatures[i], &c.PublicKeys[i])
	}

	return nil
}
