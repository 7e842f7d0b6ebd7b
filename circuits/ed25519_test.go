package circuit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/kysee/zk-grandpa/types"
	"github.com/stretchr/testify/require"
)

type eddsaTestCircuit struct {
	Message   [EncodedMessageLength]uints.U8
	Signature EdDSASignature
	PublicKey EdDSAPublicKey
}

func (c *eddsaTestCircuit) Define(api frontend.API) error {
	uapi, err := uints.New[uints.U64](api)
	if err != nil {
		return err
	}
	ec, err := newEdCurve(api, uapi)
	if err != nil {
		return err
	}
	ec.verify(c.Message[:], &c.Signature, &c.PublicKey)
	return nil
}

func eddsaAssignment(t *testing.T, msg, sig, pubKey []byte) *eddsaTestCircuit {
	t.Helper()
	require.Len(t, msg, EncodedMessageLength)

	rx, ry, err := types.DecompressPoint(sig[:32])
	require.NoError(t, err)
	s, err := types.SignatureScalar(sig)
	require.NoError(t, err)
	ax, ay, err := types.DecompressPoint(pubKey)
	require.NoError(t, err)

	assignment := &eddsaTestCircuit{
		Signature: NewEdDSASignature(rx, ry, s),
		PublicKey: NewEdDSAPublicKey(ax, ay),
	}
	for i, b := range msg {
		assignment.Message[i] = uints.NewU8(b)
	}
	return assignment
}

func TestEdDSACorpusSignature(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping emulated curve solve in short mode")
	}

	var fixture justificationFixture
	loadFixture(t, "justification-530527.json", &fixture)

	// The signature must verify natively before it is worth solving for.
	require.True(t, types.VerifySignature(fixture.PubKeys[0], fixture.Message, fixture.Signatures[0]))

	assignment := eddsaAssignment(t, fixture.Message, fixture.Signatures[0], fixture.PubKeys[0])
	err := gnark_test.IsSolved(&eddsaTestCircuit{}, assignment, ecc.BN254.ScalarField())
	require.NoError(t, err)
}

func TestEdDSARejectsPerturbedMessage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping emulated curve solve in short mode")
	}

	var fixture justificationFixture
	loadFixture(t, "justification-530527.json", &fixture)

	msg := make([]byte, len(fixture.Message))
	copy(msg, fixture.Message)
	msg[1] ^= 1

	assignment := eddsaAssignment(t, msg, fixture.Signatures[0], fixture.PubKeys[0])
	err := gnark_test.IsSolved(&eddsaTestCircuit{}, assignment, ecc.BN254.ScalarField())
	require.Error(t, err, "perturbed message must not satisfy the EdDSA equation")
}

func TestEdDSARejectsSwappedKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping emulated curve solve in short mode")
	}

	var fixture justificationFixture
	loadFixture(t, "justification-530527.json", &fixture)

	// Signature of validator 0 against the key of validator 1.
	assignment := eddsaAssignment(t, fixture.Message, fixture.Signatures[0], fixture.PubKeys[1])
	err := gnark_test.IsSolved(&eddsaTestCircuit{}, assignment, ecc.BN254.ScalarField())
	require.Error(t, err)
}
