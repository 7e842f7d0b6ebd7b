package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
)

// Curve25519Fp is the Ed25519 base field 2^255 - 19 for emulated arithmetic.
type Curve25519Fp struct{}

func (Curve25519Fp) NbLimbs() uint     { return 4 }
func (Curve25519Fp) BitsPerLimb() uint { return 64 }
func (Curve25519Fp) IsPrime() bool     { return true }
func (Curve25519Fp) Modulus() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 255)
	return p.Sub(p, big.NewInt(19))
}

// Curve25519Fr is the prime order of the Ed25519 base point subgroup,
// 2^252 + 27742317777372353535851937790883648493.
type Curve25519Fr struct{}

func (Curve25519Fr) NbLimbs() uint     { return 4 }
func (Curve25519Fr) BitsPerLimb() uint { return 64 }
func (Curve25519Fr) IsPrime() bool     { return true }
func (Curve25519Fr) Modulus() *big.Int {
	l := new(big.Int).Lsh(big.NewInt(1), 252)
	return l.Add(l, mustParseBig("27742317777372353535851937790883648493"))
}

var (
	// Twisted Edwards coefficient d = -121665/121666 mod p.
	edCurveD = mustParseBig("37095705934669439343138083508754565189542113879843219016388785533085940283555")
	edBaseX  = mustParseBig("15112221349535400772501151409588531511454012693041857206046113283949847762202")
	edBaseY  = mustParseBig("46316835694926478169428394003475163141307993866256225615783033603165251855960")
)

func mustParseBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big integer literal: " + s)
	}
	return v
}

// AffinePoint is a point on the Ed25519 twisted Edwards curve with emulated
// base field coordinates.
type AffinePoint struct {
	X, Y emulated.Element[Curve25519Fp]
}

// EdDSASignature is a decomposed Ed25519 signature: the commitment point R
// and the scalar S.
type EdDSASignature struct {
	R AffinePoint
	S emulated.Element[Curve25519Fr]
}

// EdDSAPublicKey is a decompressed validator key.
type EdDSAPublicKey struct {
	A AffinePoint
}

// NewAffinePoint builds a witness assignment from affine coordinates.
func NewAffinePoint(x, y *big.Int) AffinePoint {
	return AffinePoint{
		X: emulated.ValueOf[Curve25519Fp](x),
		Y: emulated.ValueOf[Curve25519Fp](y),
	}
}

// NewEdDSASignature builds a witness assignment from the decompressed R point
// and the scalar S.
func NewEdDSASignature(rx, ry, s *big.Int) EdDSASignature {
	return EdDSASignature{
		R: NewAffinePoint(rx, ry),
		S: emulated.ValueOf[Curve25519Fr](s),
	}
}

// NewEdDSAPublicKey builds a witness assignment from a decompressed key.
func NewEdDSAPublicKey(x, y *big.Int) EdDSAPublicKey {
	return EdDSAPublicKey{A: NewAffinePoint(x, y)}
}

// edCurve bundles the emulated field helpers shared by every signature check
// in a circuit.
type edCurve struct {
	api  frontend.API
	uapi *uints.BinaryField[uints.U64]
	fp   *emulated.Field[Curve25519Fp]
	fr   *emulated.Field[Curve25519Fr]
	d    *emulated.Element[Curve25519Fp]
}

func newEdCurve(api frontend.API, uapi *uints.BinaryField[uints.U64]) (*edCurve, error) {
	fp, err := emulated.NewField[Curve25519Fp](api)
	if err != nil {
		return nil, err
	}
	fr, err := emulated.NewField[Curve25519Fr](api)
	if err != nil {
		return nil, err
	}
	d := emulated.ValueOf[Curve25519Fp](edCurveD)
	return &edCurve{api: api, uapi: uapi, fp: fp, fr: fr, d: &d}, nil
}

// add is the unified twisted Edwards addition law for a = -1; it is complete
// on the curve, including doublings and the identity.
func (c *edCurve) add(p, q *AffinePoint) *AffinePoint {
	x1y2 := c.fp.Mul(&p.X, &q.Y)
	y1x2 := c.fp.Mul(&p.Y, &q.X)
	x1x2 := c.fp.Mul(&p.X, &q.X)
	y1y2 := c.fp.Mul(&p.Y, &q.Y)
	t := c.fp.Mul(c.d, c.fp.Mul(x1x2, y1y2))
	one := c.fp.One()
	x3 := c.fp.Div(c.fp.Add(x1y2, y1x2), c.fp.Add(one, t))
	y3 := c.fp.Div(c.fp.Add(y1y2, x1x2), c.fp.Sub(one, t))
	return &AffinePoint{X: *x3, Y: *y3}
}

func (c *edCurve) double(p *AffinePoint) *AffinePoint {
	return c.add(p, p)
}

func (c *edCurve) selectPoint(sel frontend.Variable, a, b *AffinePoint) *AffinePoint {
	return &AffinePoint{
		X: *c.fp.Select(sel, &a.X, &b.X),
		Y: *c.fp.Select(sel, &a.Y, &b.Y),
	}
}

func (c *edCurve) identity() *AffinePoint {
	return &AffinePoint{X: *c.fp.Zero(), Y: *c.fp.One()}
}

func (c *edCurve) basePoint() *AffinePoint {
	return &AffinePoint{
		X: emulated.ValueOf[Curve25519Fp](edBaseX),
		Y: emulated.ValueOf[Curve25519Fp](edBaseY),
	}
}

// assertOnCurve enforces -x^2 + y^2 = 1 + d*x^2*y^2.
func (c *edCurve) assertOnCurve(p *AffinePoint) {
	x2 := c.fp.Mul(&p.X, &p.X)
	y2 := c.fp.Mul(&p.Y, &p.Y)
	lhs := c.fp.Sub(y2, x2)
	rhs := c.fp.Add(c.fp.One(), c.fp.Mul(c.d, c.fp.Mul(x2, y2)))
	c.fp.AssertIsEqual(lhs, rhs)
}

// scalarMul computes [k]p by double-and-add over the little-endian bit
// decomposition of k, most significant bit first.
func (c *edCurve) scalarMul(bits []frontend.Variable, p *AffinePoint) *AffinePoint {
	acc := c.identity()
	for i := len(bits) - 1; i >= 0; i-- {
		acc = c.double(acc)
		sum := c.add(acc, p)
		acc = c.selectPoint(bits[i], sum, acc)
	}
	return acc
}

// compress serializes a point to its 32-byte wire form: the y coordinate in
// little-endian with the parity of x folded into the top bit. This is the
// encoding the signer hashed, so the challenge preimage is rebuilt from the
// witness coordinates.
func (c *edCurve) compress(p *AffinePoint) []uints.U8 {
	yBits := c.fp.ToBits(&p.Y)
	xBits := c.fp.ToBits(&p.X)
	out := make([]uints.U8, 32)
	for i := 0; i < 32; i++ {
		var byteVal frontend.Variable = 0
		for b := 0; b < 8; b++ {
			idx := i*8 + b
			var bit frontend.Variable = 0
			if idx == 255 {
				bit = xBits[0]
			} else if idx < len(yBits) {
				bit = yBits[idx]
			}
			byteVal = c.api.Add(byteVal, c.api.Mul(bit, 1<<b))
		}
		out[i] = uints.U8{Val: byteVal}
	}
	return out
}

// reduceScalarLE folds a little-endian byte string into the scalar field by
// Horner evaluation from the most significant byte.
func (c *edCurve) reduceScalarLE(bytes []uints.U8) *emulated.Element[Curve25519Fr] {
	radix := big.NewInt(256)
	res := c.fr.Zero()
	nbLimbs := len(c.fr.Modulus().Limbs)
	limbBuf := make([]frontend.Variable, nbLimbs)

	for i := len(bytes) - 1; i >= 0; i-- {
		res = c.fr.MulConst(res, radix)
		for j := range limbBuf {
			limbBuf[j] = 0
		}
		limbBuf[0] = bytes[i].Val
		digit := c.fr.NewElement(limbBuf)
		res = c.fr.Add(res, digit)
	}

	return c.fr.Reduce(res)
}

// verify enforces the Ed25519 verification equation [S]B = R + [k]A with
// k = SHA-512(R || A || msg) reduced into the scalar field. R and A must lie
// on the curve; the scalar S is canonical by construction of the emulated
// element.
func (c *edCurve) verify(msg []uints.U8, sig *EdDSASignature, pub *EdDSAPublicKey) {
	c.assertOnCurve(&sig.R)
	c.assertOnCurve(&pub.A)

	preimage := make([]uints.U8, 0, 64+len(msg))
	preimage = append(preimage, c.compress(&sig.R)...)
	preimage = append(preimage, c.compress(&pub.A)...)
	preimage = append(preimage, msg...)
	digest := sha512Sum(c.uapi, preimage)

	k := c.reduceScalarLE(digest[:])
	kBits := c.fr.ToBits(k)
	sBits := c.fr.ToBits(&sig.S)

	lhs := c.scalarMul(sBits, c.basePoint())
	kA := c.scalarMul(kBits, &pub.A)
	rhs := c.add(&sig.R, kA)

	c.fp.AssertIsEqual(&lhs.X, &rhs.X)
	c.fp.AssertIsEqual(&lhs.Y, &rhs.Y)
}
