package main

import (
	"log"
	"os"

	relayer "github.com/kysee/zk-grandpa/provers"
	"github.com/kysee/zk-grandpa/provers/types"
)

func main() {
	config := types.NewConfig(os.Args[1:]...)

	r, err := relayer.NewRelayer(config)
	if err != nil {
		log.Fatalf("Failed to create relayer: %v", err)
	}

	listener := relayer.NewListener(config, relayer.NewAPIFetcher(config.RPCEndpoint), r)
	if err := listener.Run(); err != nil {
		log.Fatalf("Failed to run listener: %v", err)
	}
}
