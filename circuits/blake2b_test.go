package circuit

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

type blake2bTestCircuit struct {
	Message []uints.U8
	Length  frontend.Variable
	Digest  [hashSize]uints.U8
}

func (c *blake2bTestCircuit) Define(api frontend.API) error {
	uapi, err := uints.New[uints.U64](api)
	if err != nil {
		return err
	}
	digest := blake2b256(api, uapi, c.Message, c.Length)
	for i := 0; i < hashSize; i++ {
		api.AssertIsEqual(digest[i].Val, c.Digest[i].Val)
	}
	return nil
}

func blake2bAssignment(bufferSize int, msg []byte, digest [32]byte) *blake2bTestCircuit {
	assignment := &blake2bTestCircuit{
		Message: make([]uints.U8, bufferSize),
		Length:  len(msg),
	}
	for i := 0; i < bufferSize; i++ {
		if i < len(msg) {
			assignment.Message[i] = uints.NewU8(msg[i])
		} else {
			assignment.Message[i] = uints.NewU8(0)
		}
	}
	for i := 0; i < hashSize; i++ {
		assignment.Digest[i] = uints.NewU8(digest[i])
	}
	return assignment
}

func TestBlake2bCorpusHeader(t *testing.T) {
	var fixture blake2bFixture
	loadFixture(t, "blake2b-header.json", &fixture)

	require.Equal(t, blake2b.Sum256(fixture.Message), [32]byte(fixture.Digest), "fixture digest")

	const bufferSize = 384
	assignment := blake2bAssignment(bufferSize, fixture.Message, [32]byte(fixture.Digest))
	shape := &blake2bTestCircuit{Message: make([]uints.U8, bufferSize)}

	err := gnark_test.IsSolved(shape, assignment, ecc.BN254.ScalarField())
	require.NoError(t, err)
}

// Chunk boundaries are where the length handling can go wrong: a message
// ending exactly on a chunk, one byte into the next, and one byte short.
func TestBlake2bChunkBoundaries(t *testing.T) {
	const bufferSize = 256
	for _, msgLen := range []int{1, 55, 127, 128, 129, 200, 256} {
		t.Run(fmt.Sprintf("len=%d", msgLen), func(t *testing.T) {
			msg := make([]byte, msgLen)
			for i := range msg {
				msg[i] = byte(i*7 + 3)
			}
			assignment := blake2bAssignment(bufferSize, msg, blake2b.Sum256(msg))
			shape := &blake2bTestCircuit{Message: make([]uints.U8, bufferSize)}

			err := gnark_test.IsSolved(shape, assignment, ecc.BN254.ScalarField())
			require.NoError(t, err)
		})
	}
}

func TestBlake2bRejectsWrongDigest(t *testing.T) {
	const bufferSize = 128
	msg := []byte("finality gadget")
	digest := blake2b.Sum256(msg)
	digest[0] ^= 1

	assignment := blake2bAssignment(bufferSize, msg, digest)
	shape := &blake2bTestCircuit{Message: make([]uints.U8, bufferSize)}

	err := gnark_test.IsSolved(shape, assignment, ecc.BN254.ScalarField())
	require.Error(t, err, "perturbed digest must not satisfy the constraints")
}

// The digest must cover exactly the length prefix: a digest of a shorter
// prefix only matches when the length says so, and bytes past the length are
// masked out rather than hashed.
func TestBlake2bDigestCoversOnlyPrefix(t *testing.T) {
	const bufferSize = 128
	msg := make([]byte, 64)
	for i := range msg {
		msg[i] = byte(i)
	}

	shorter := blake2b.Sum256(msg[:32])
	assignment := blake2bAssignment(bufferSize, msg, shorter)
	shape := &blake2bTestCircuit{Message: make([]uints.U8, bufferSize)}
	err := gnark_test.IsSolved(shape, assignment, ecc.BN254.ScalarField())
	require.Error(t, err, "prefix digest with full length must not satisfy the constraints")

	assignment.Length = 32
	err = gnark_test.IsSolved(shape, assignment, ecc.BN254.ScalarField())
	require.NoError(t, err, "bytes past the claimed length are masked before compression")
}
