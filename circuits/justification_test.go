package circuit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/std/math/uints"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/kysee/zk-grandpa/types"
	"github.com/stretchr/testify/require"
)

func TestNewJustificationCircuitShape(t *testing.T) {
	for _, tc := range []struct {
		maxHeaderBytes int
		numValidators  int
	}{
		{128, 1},
		{1280, 7},
		{2048, 10},
		{1280, 0},
	} {
		c := NewJustificationCircuit(tc.maxHeaderBytes, tc.numValidators)
		require.Len(t, c.EncodedHeader, tc.maxHeaderBytes)
		require.Len(t, c.EncodedMessage, EncodedMessageLength)
		require.Len(t, c.Signatures, tc.numValidators)
		require.Len(t, c.PublicKeys, tc.numValidators)
	}
}

func TestNewJustificationCircuitRejectsMisuse(t *testing.T) {
	require.Panics(t, func() { NewJustificationCircuit(96, 7) }, "below the minimum header size")
	require.Panics(t, func() { NewJustificationCircuit(1000, 7) }, "not a chunk multiple")
	require.Panics(t, func() { NewJustificationCircuit(1280, -1) })
}

// justificationAssignment mirrors the relayer's witness construction from raw
// corpus bytes.
func justificationAssignment(t *testing.T, fixture *justificationFixture, maxHeaderBytes int) *JustificationCircuit {
	t.Helper()

	assignment := NewJustificationCircuit(maxHeaderBytes, len(fixture.Signatures))
	require.LessOrEqual(t, len(fixture.EncodedHeader), maxHeaderBytes)
	for i := range assignment.EncodedHeader {
		if i < len(fixture.EncodedHeader) {
			assignment.EncodedHeader[i] = uints.NewU8(fixture.EncodedHeader[i])
		} else {
			assignment.EncodedHeader[i] = uints.NewU8(0)
		}
	}
	assignment.HeaderLength = len(fixture.EncodedHeader)

	require.Len(t, []byte(fixture.Message), EncodedMessageLength)
	for i, b := range fixture.Message {
		assignment.EncodedMessage[i] = uints.NewU8(b)
	}

	for i := range fixture.Signatures {
		sig := fixture.Signatures[i]
		rx, ry, err := types.DecompressPoint(sig[:32])
		require.NoError(t, err)
		s, err := types.SignatureScalar(sig)
		require.NoError(t, err)
		ax, ay, err := types.DecompressPoint(fixture.PubKeys[i])
		require.NoError(t, err)
		assignment.Signatures[i] = NewEdDSASignature(rx, ry, s)
		assignment.PublicKeys[i] = NewEdDSAPublicKey(ax, ay)
	}
	return assignment
}

// The fixture must be internally consistent before the circuit is asked to
// prove it: hash binding, number binding and all native signature checks.
func TestJustificationFixtureConsistency(t *testing.T) {
	var fixture justificationFixture
	loadFixture(t, "justification-530527.json", &fixture)

	blockHash := types.BlockHash(fixture.EncodedHeader)
	require.Equal(t, []byte(fixture.Message[1:33]), blockHash[:])

	header, err := types.ParseHeaderPrefix(fixture.EncodedHeader)
	require.NoError(t, err)
	require.Equal(t, uint64(fixture.Number), header.Number)

	expected := types.EncodePrecommitMessage(types.Precommit{
		TargetHash:   blockHash,
		TargetNumber: fixture.Number,
	}, fixture.Round, fixture.SetID)
	require.Equal(t, []byte(fixture.Message), expected[:])

	require.Len(t, fixture.Signatures, 7)
	require.Len(t, fixture.PubKeys, 7)
	for i := range fixture.Signatures {
		require.True(t, types.VerifySignature(fixture.PubKeys[i], fixture.Message, fixture.Signatures[i]),
			"signature %d", i)
	}
}

func TestJustificationCircuitFullQuorum(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full justification solve in short mode")
	}

	var fixture justificationFixture
	loadFixture(t, "justification-530527.json", &fixture)

	const maxHeaderBytes = 1280
	assignment := justificationAssignment(t, &fixture, maxHeaderBytes)
	shape := NewJustificationCircuit(maxHeaderBytes, len(fixture.Signatures))

	err := gnark_test.IsSolved(shape, assignment, ecc.BN254.ScalarField())
	require.NoError(t, err)
}

func TestJustificationCircuitRejectsPerturbedHash(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full justification solve in short mode")
	}

	var fixture justificationFixture
	loadFixture(t, "justification-530527.json", &fixture)

	const maxHeaderBytes = 1280
	assignment := justificationAssignment(t, &fixture, maxHeaderBytes)
	// Flip a bit in the first block hash byte of the signed message.
	assignment.EncodedMessage[1] = uints.NewU8(fixture.Message[1] ^ 1)
	shape := NewJustificationCircuit(maxHeaderBytes, len(fixture.Signatures))

	err := gnark_test.IsSolved(shape, assignment, ecc.BN254.ScalarField())
	require.Error(t, err)
}

func TestJustificationCircuitRejectsForgedSignature(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full justification solve in short mode")
	}

	var fixture justificationFixture
	loadFixture(t, "justification-530527.json", &fixture)

	const maxHeaderBytes = 1280
	assignment := justificationAssignment(t, &fixture, maxHeaderBytes)
	// Validator 3 presents validator 4's signature: R decompresses to a valid
	// point but the EdDSA equation fails against validator 3's key.
	rx, ry, err := types.DecompressPoint(fixture.Signatures[4][:32])
	require.NoError(t, err)
	s, err := types.SignatureScalar(fixture.Signatures[4])
	require.NoError(t, err)
	assignment.Signatures[3] = NewEdDSASignature(rx, ry, s)
	shape := NewJustificationCircuit(maxHeaderBytes, len(fixture.Signatures))

	err = gnark_test.IsSolved(shape, assignment, ecc.BN254.ScalarField())
	require.Error(t, err)
}
