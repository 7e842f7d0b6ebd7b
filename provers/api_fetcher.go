package relayer

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	cfgtypes "github.com/kysee/zk-grandpa/provers/types"
	"github.com/kysee/zk-grandpa/types"
)

// APIFetcher implements Fetcher against a substrate node's JSON-RPC endpoint.
type APIFetcher struct {
	Endpoint string
	Client   *http.Client

	nextID int
}

// NewAPIFetcher creates a new APIFetcher with the given endpoint URL.
func NewAPIFetcher(endpoint string) *APIFetcher {
	return &APIFetcher{
		Endpoint: endpoint,
		Client:   &http.Client{},
	}
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs a JSON-RPC request and decodes the result field into out.
func (a *APIFetcher) call(method string, params []interface{}, out interface{}) error {
	a.nextID++
	reqBody, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		ID:      a.nextID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := a.Client.Post(a.Endpoint, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("RPC request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("failed to parse result: %w", err)
	}
	return nil
}

// FinalizedHead returns the hash of the latest finalized block.
// chain_getFinalizedHead
func (a *APIFetcher) FinalizedHead() ([32]byte, error) {
	var hashHex string
	if err := a.call("chain_getFinalizedHead", nil, &hashHex); err != nil {
		return [32]byte{}, err
	}
	return types.HexToHash(hashHex)
}

// Header returns the header with the given block hash.
// chain_getHeader
func (a *APIFetcher) Header(hash [32]byte) (*types.Header, error) {
	var wire cfgtypes.HeaderResponse
	if err := a.call("chain_getHeader", []interface{}{"0x" + hex.EncodeToString(hash[:])}, &wire); err != nil {
		return nil, err
	}
	return wire.ToHeader()
}

// Justification returns the GRANDPA justification finalizing the given block.
// grandpa_proveFinality
func (a *APIFetcher) Justification(block uint64) (*types.GrandpaJustification, error) {
	var proof types.HexBytes
	if err := a.call("grandpa_proveFinality", []interface{}{block}, &proof); err != nil {
		return nil, err
	}
	if len(proof) == 0 {
		return nil, fmt.Errorf("no finality proof for block %d", block)
	}
	_, justification, err := types.DecodeFinalityProof(proof)
	if err != nil {
		return nil, fmt.Errorf("failed to decode finality proof for block %d: %w", block, err)
	}
	return justification, nil
}
