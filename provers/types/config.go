package types

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the off-chain prover configuration.
type Config struct {
	RootDir string

	// RPCEndpoint is the substrate node JSON-RPC URL.
	RPCEndpoint string

	// StartBlock is the first finalized block to prove from; 0 means follow
	// the current finalized head.
	StartBlock uint64

	// AuthoritySetID is the id of the authority set the justifications are
	// expected to come from. Rotation is out of scope; on a mismatch the
	// signed message no longer verifies and the block is skipped.
	AuthoritySetID uint64

	// NumValidators is the exact precommit quorum the circuit verifies.
	NumValidators int

	// MaxHeaderBytes bounds the encoded header; must be a multiple of the
	// 128-byte Blake2b chunk.
	MaxHeaderBytes int
}

func NewConfig(args ...string) *Config {
	config := Config{
		RootDir:        getEnv("ROOT", "."),
		RPCEndpoint:    getEnv("RPC_ENDPOINT", "https://turing-rpc.avail.so/rpc"),
		StartBlock:     0,
		AuthoritySetID: 0,
		NumValidators:  7,
		MaxHeaderBytes: 1280,
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--root":
			config.RootDir = nextArg(args, &i)
		case "--rpc":
			config.RPCEndpoint = nextArg(args, &i)
		case "--start-block":
			config.StartBlock = parseUint(args[i], nextArg(args, &i))
		case "--set-id":
			config.AuthoritySetID = parseUint(args[i], nextArg(args, &i))
		case "--validators":
			config.NumValidators = int(parseUint(args[i], nextArg(args, &i)))
		case "--max-header-bytes":
			config.MaxHeaderBytes = int(parseUint(args[i], nextArg(args, &i)))
		}
	}

	return &config
}

func nextArg(args []string, i *int) string {
	if *i+1 >= len(args) {
		panic(fmt.Errorf("missing argument for %s", args[*i]))
	}
	*i++
	return args[*i]
}

func parseUint(flag, value string) uint64 {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		panic(fmt.Errorf("invalid value for %s: %w", flag, err))
	}
	return v
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
