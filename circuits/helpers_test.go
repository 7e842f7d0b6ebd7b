package circuit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/gnark/logger"
	"github.com/kysee/zk-grandpa/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var gnarkLogger = zerolog.New(os.Stdout).Level(zerolog.WarnLevel).With().Timestamp().Logger()

func TestMain(m *testing.M) {
	logger.Set(gnarkLogger)
	os.Exit(m.Run())
}

// blockFixture is the corpus header for block 576728.
type blockFixture struct {
	Header     types.HexBytes `json:"header"`
	ParentHash types.HexBytes `json:"parentHash"`
	StateRoot  types.HexBytes `json:"stateRoot"`
	BlockHash  types.HexBytes `json:"blockHash"`
	Number     uint64         `json:"number"`
}

// justificationFixture is a finalized block with its quorum of precommit
// signatures.
type justificationFixture struct {
	EncodedHeader types.HexBytes   `json:"encodedHeader"`
	Message       types.HexBytes   `json:"message"`
	Round         uint64           `json:"round"`
	SetID         uint64           `json:"setId"`
	Number        uint32           `json:"number"`
	Signatures    []types.HexBytes `json:"signatures"`
	PubKeys       []types.HexBytes `json:"pubKeys"`
}

type blake2bFixture struct {
	Message types.HexBytes `json:"message"`
	Digest  types.HexBytes `json:"digest"`
}

func loadFixture(t *testing.T, name string, out interface{}) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "data", name))
	require.NoError(t, err, "Failed to read fixture %s", name)
	require.NoError(t, json.Unmarshal(data, out), "Failed to parse fixture %s", name)
}
