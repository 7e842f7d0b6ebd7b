package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/kysee/zk-grandpa/types"
)

// Fetcher is the chain-data source the listener drives. Implementations pull
// from a node's JSON-RPC endpoint or from local fixture files.
type Fetcher interface {
	// FinalizedHead returns the hash of the latest finalized block.
	FinalizedHead() ([32]byte, error)
	// Header returns the header with the given block hash.
	Header(hash [32]byte) (*types.Header, error)
	// Justification returns the GRANDPA justification finalizing the given
	// block number.
	Justification(block uint64) (*types.GrandpaJustification, error)
}

// HeaderResponse is the chain_getHeader wire form. Hashes and digest logs
// arrive as 0x-hex blobs, the block number as a hex quantity.
type HeaderResponse struct {
	ParentHash     types.HexBytes `json:"parentHash"`
	Number         hexutil.Uint64 `json:"number"`
	StateRoot      types.HexBytes `json:"stateRoot"`
	ExtrinsicsRoot types.HexBytes `json:"extrinsicsRoot"`
	Digest         DigestResponse `json:"digest"`
}

// DigestResponse carries the SCALE-encoded digest items of a header.
type DigestResponse struct {
	Logs []types.HexBytes `json:"logs"`
}

// ToHeader converts the wire form to the native header.
func (hr *HeaderResponse) ToHeader() (*types.Header, error) {
	h := &types.Header{Number: uint64(hr.Number)}
	if len(hr.ParentHash) != 32 {
		return nil, fmt.Errorf("parent hash must be 32 bytes, got %d", len(hr.ParentHash))
	}
	copy(h.ParentHash[:], hr.ParentHash)
	if len(hr.StateRoot) != 32 {
		return nil, fmt.Errorf("state root must be 32 bytes, got %d", len(hr.StateRoot))
	}
	copy(h.StateRoot[:], hr.StateRoot)
	if len(hr.ExtrinsicsRoot) != 32 {
		return nil, fmt.Errorf("extrinsics root must be 32 bytes, got %d", len(hr.ExtrinsicsRoot))
	}
	copy(h.ExtrinsicsRoot[:], hr.ExtrinsicsRoot)
	h.DigestLogs = make([][]byte, len(hr.Digest.Logs))
	for i, log := range hr.Digest.Logs {
		h.DigestLogs[i] = log
	}
	return h, nil
}
