package relayer

import (
	"encoding/json"
	"fmt"
	"os"

	cfgtypes "github.com/kysee/zk-grandpa/provers/types"
	"github.com/kysee/zk-grandpa/types"
)

// FileFetcher implements Fetcher from a local JSON fixture, for offline runs
// and tests.
type FileFetcher struct {
	FilePath string

	fixture *fetcherFixture
}

type fetcherFixture struct {
	FinalizedHead types.HexBytes          `json:"finalizedHead"`
	Header        cfgtypes.HeaderResponse `json:"header"`
	FinalityProof types.HexBytes          `json:"finalityProof"`
}

// NewFileFetcher creates a new FileFetcher with the given fixture path.
func NewFileFetcher(filePath string) *FileFetcher {
	return &FileFetcher{FilePath: filePath}
}

func (f *FileFetcher) load() (*fetcherFixture, error) {
	if f.fixture != nil {
		return f.fixture, nil
	}
	data, err := os.ReadFile(f.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", f.FilePath, err)
	}
	var fixture fetcherFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	f.fixture = &fixture
	return f.fixture, nil
}

func (f *FileFetcher) FinalizedHead() ([32]byte, error) {
	fixture, err := f.load()
	if err != nil {
		return [32]byte{}, err
	}
	var hash [32]byte
	if len(fixture.FinalizedHead) != 32 {
		return hash, fmt.Errorf("finalized head must be 32 bytes, got %d", len(fixture.FinalizedHead))
	}
	copy(hash[:], fixture.FinalizedHead)
	return hash, nil
}

func (f *FileFetcher) Header([32]byte) (*types.Header, error) {
	fixture, err := f.load()
	if err != nil {
		return nil, err
	}
	return fixture.Header.ToHeader()
}

func (f *FileFetcher) Justification(uint64) (*types.GrandpaJustification, error) {
	fixture, err := f.load()
	if err != nil {
		return nil, err
	}
	_, justification, err := types.DecodeFinalityProof(fixture.FinalityProof)
	return justification, err
}
