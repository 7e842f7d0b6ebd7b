package relayer

import (
	"fmt"
	"log"
	"time"

	cfgtypes "github.com/kysee/zk-grandpa/provers/types"
	"github.com/kysee/zk-grandpa/types"
)

// Listener follows the finalized chain and feeds complete
// (header, justification) pairs to the relayer. Headers and justifications
// arrive independently, so both are buffered by block number until a pair is
// complete; proving is sequential and blocking.
type Listener struct {
	config  *cfgtypes.Config
	fetcher cfgtypes.Fetcher
	relayer *Relayer

	headers        map[uint64][]byte
	justifications map[uint64]*types.GrandpaJustification
	nextBlock      uint64
}

// NewListener creates a new Listener over the given fetcher and relayer.
func NewListener(config *cfgtypes.Config, fetcher cfgtypes.Fetcher, relayer *Relayer) *Listener {
	return &Listener{
		config:         config,
		fetcher:        fetcher,
		relayer:        relayer,
		headers:        make(map[uint64][]byte),
		justifications: make(map[uint64]*types.GrandpaJustification),
		nextBlock:      config.StartBlock,
	}
}

// Run polls the finalized head and proves every buffered block in order. It
// returns only on a setup error; fetch errors are logged and retried.
func (l *Listener) Run() error {
	if err := l.relayer.SetupCircuit(); err != nil {
		return fmt.Errorf("failed to setup circuit: %w", err)
	}

	for {
		if err := l.poll(); err != nil {
			log.Println("error", err)
		}
		l.proveBuffered()
		time.Sleep(1000 * time.Millisecond)
	}
}

// poll fetches the current finalized head and buffers its encoded header and
// justification.
func (l *Listener) poll() error {
	headHash, err := l.fetcher.FinalizedHead()
	if err != nil {
		return fmt.Errorf("failed to fetch finalized head: %w", err)
	}

	header, err := l.fetcher.Header(headHash)
	if err != nil {
		return fmt.Errorf("failed to fetch header %x: %w", headHash, err)
	}
	if l.nextBlock == 0 {
		l.nextBlock = header.Number
	}
	if header.Number < l.nextBlock {
		return nil
	}

	if _, ok := l.headers[header.Number]; !ok {
		encoded := types.EncodeHeader(header)
		if got := types.BlockHash(encoded); got != headHash {
			return fmt.Errorf("re-encoded header hashes to %x, node reports %x", got, headHash)
		}
		l.headers[header.Number] = encoded
		log.Printf("Buffered header for block %d (%d bytes)\n", header.Number, len(encoded))
	}

	if _, ok := l.justifications[header.Number]; !ok {
		justification, err := l.fetcher.Justification(header.Number)
		if err != nil {
			return fmt.Errorf("failed to fetch justification for block %d: %w", header.Number, err)
		}
		l.justifications[header.Number] = justification
		log.Printf("Buffered justification for block %d (round %d, %d precommits)\n",
			header.Number, justification.Round, len(justification.Commit.Precommits))
	}

	return nil
}

// proveBuffered dispatches proving jobs for every block that has both a
// header and a justification, in block order.
func (l *Listener) proveBuffered() {
	for {
		header, haveHeader := l.headers[l.nextBlock]
		justification, haveJustification := l.justifications[l.nextBlock]
		if !haveHeader || !haveJustification {
			return
		}

		if _, err := l.relayer.GenerateProof(header, justification); err != nil {
			log.Printf("Skipping block %d: %v\n", l.nextBlock, err)
		}

		delete(l.headers, l.nextBlock)
		delete(l.justifications, l.nextBlock)
		l.nextBlock++
	}
}
