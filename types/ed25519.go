package types

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"math/big"

	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
)

// DecompressPoint expands a 32-byte compressed Edwards point into affine
// coordinates, the form the circuit consumes. Non-canonical encodings are
// rejected, since the circuit recompresses the coordinates canonically.
func DecompressPoint(compressed []byte) (x, y *big.Int, err error) {
	p, err := new(edwards25519.Point).SetBytes(compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid point encoding: %w", err)
	}
	if !bytes.Equal(p.Bytes(), compressed) {
		return nil, nil, fmt.Errorf("invalid point encoding: not canonical")
	}
	px, py, pz, _ := p.ExtendedCoordinates()
	zInv := new(field.Element).Invert(pz)
	return feToBig(new(field.Element).Multiply(px, zInv)),
		feToBig(new(field.Element).Multiply(py, zInv)),
		nil
}

// SignatureScalar interprets the trailing half of a 64-byte Ed25519
// signature as the little-endian scalar S.
func SignatureScalar(sig []byte) (*big.Int, error) {
	if len(sig) != 64 {
		return nil, fmt.Errorf("signature must be 64 bytes, got %d", len(sig))
	}
	return new(big.Int).SetBytes(reverse(sig[32:])), nil
}

// VerifySignature checks an Ed25519 signature natively. The driver runs this
// before dispatching a proving job so malformed justifications are rejected
// without paying for a failed witness solve.
func VerifySignature(pubKey, msg, sig []byte) bool {
	if len(pubKey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), msg, sig)
}

func feToBig(e *field.Element) *big.Int {
	return new(big.Int).SetBytes(reverse(e.Bytes()))
}

func reverse(in []byte) []byte {
	out := make([]byte, len(in))
	for i := range in {
		out[len(in)-1-i] = in[i]
	}
	return out
}
