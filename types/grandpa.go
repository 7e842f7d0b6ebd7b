package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// PrecommitMessageLength is the size of the byte string each validator signs:
// tag, target hash, target number, round, set id.
const PrecommitMessageLength = 53

// Precommit is a validator vote for a target block.
type Precommit struct {
	TargetHash   [32]byte
	TargetNumber uint32
}

// SignedPrecommit carries a precommit with its Ed25519 signature and the
// signer's public key.
type SignedPrecommit struct {
	Precommit Precommit
	Signature [64]byte
	ID        [32]byte
}

// Commit is the set of precommits justifying finality of a target block.
type Commit struct {
	TargetHash   [32]byte
	TargetNumber uint32
	Precommits   []SignedPrecommit
}

// GrandpaJustification is the finality evidence gossiped for a block. The
// votes-ancestries headers that may trail the commit are not needed for
// proving and are not retained.
type GrandpaJustification struct {
	Round  uint64
	Commit Commit
}

// BlockHash is the Blake2b-256 digest of a SCALE-encoded header.
func BlockHash(encodedHeader []byte) [32]byte {
	return blake2b.Sum256(encodedHeader)
}

// EncodePrecommitMessage builds the 53-byte message every validator signs for
// a precommit in the given round under the given authority set.
func EncodePrecommitMessage(p Precommit, round, setID uint64) [PrecommitMessageLength]byte {
	var out [PrecommitMessageLength]byte
	out[0] = 1 // precommit tag
	copy(out[1:33], p.TargetHash[:])
	binary.LittleEndian.PutUint32(out[33:37], p.TargetNumber)
	binary.LittleEndian.PutUint64(out[37:45], round)
	binary.LittleEndian.PutUint64(out[45:53], setID)
	return out
}

// DecodeJustification parses a SCALE-encoded GRANDPA justification:
// round, commit target, and the signed precommits.
func DecodeJustification(data []byte) (*GrandpaJustification, error) {
	r := byteReader{data: data}

	round, err := r.uint64LE()
	if err != nil {
		return nil, fmt.Errorf("justification round: %w", err)
	}

	var j GrandpaJustification
	j.Round = round
	if err := r.hash(&j.Commit.TargetHash); err != nil {
		return nil, fmt.Errorf("commit target hash: %w", err)
	}
	targetNumber, err := r.uint32LE()
	if err != nil {
		return nil, fmt.Errorf("commit target number: %w", err)
	}
	j.Commit.TargetNumber = targetNumber

	count, err := r.compact()
	if err != nil {
		return nil, fmt.Errorf("precommit count: %w", err)
	}
	j.Commit.Precommits = make([]SignedPrecommit, 0, count)
	for i := uint64(0); i < count; i++ {
		var sp SignedPrecommit
		if err := r.hash(&sp.Precommit.TargetHash); err != nil {
			return nil, fmt.Errorf("precommit %d hash: %w", i, err)
		}
		n, err := r.uint32LE()
		if err != nil {
			return nil, fmt.Errorf("precommit %d number: %w", i, err)
		}
		sp.Precommit.TargetNumber = n
		sig, err := r.take(64)
		if err != nil {
			return nil, fmt.Errorf("precommit %d signature: %w", i, err)
		}
		copy(sp.Signature[:], sig)
		id, err := r.take(32)
		if err != nil {
			return nil, fmt.Errorf("precommit %d id: %w", i, err)
		}
		copy(sp.ID[:], id)
		j.Commit.Precommits = append(j.Commit.Precommits, sp)
	}

	return &j, nil
}

// DecodeFinalityProof parses the grandpa_proveFinality response: the hash of
// the latest finalized block, the justification, and trailing unknown
// headers (ignored).
func DecodeFinalityProof(data []byte) ([32]byte, *GrandpaJustification, error) {
	var block [32]byte
	if len(data) < 32 {
		return block, nil, fmt.Errorf("finality proof: truncated block hash")
	}
	copy(block[:], data[:32])
	j, err := DecodeJustification(data[32:])
	if err != nil {
		return block, nil, err
	}
	return block, j, nil
}

// AuthoritySetCommitment hashes the concatenated validator keys; light
// clients track authority sets by this commitment rather than the full list.
func AuthoritySetCommitment(pubKeys [][32]byte) [32]byte {
	var buf bytes.Buffer
	for i := range pubKeys {
		buf.Write(pubKeys[i][:])
	}
	return blake2b.Sum256(buf.Bytes())
}

type byteReader struct {
	data []byte
	off  int
}

func (r *byteReader) take(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d", n, r.off, len(r.data)-r.off)
	}
	out := r.data[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *byteReader) hash(dst *[32]byte) error {
	b, err := r.take(32)
	if err != nil {
		return err
	}
	copy(dst[:], b)
	return nil
}

func (r *byteReader) uint32LE() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) uint64LE() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *byteReader) compact() (uint64, error) {
	v, _, n, err := DecodeCompactUint(r.data[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}
