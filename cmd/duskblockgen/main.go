// duskblockgen creates a single-coinbase block paying a freshly
// generated key and writes it to the given file (spec §6 CLI surface).
//
// Usage:
//
//	duskblockgen <block_file>
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/duskchain/duskchain/config"
	"github.com/duskchain/duskchain/pkg/block"
	"github.com/duskchain/duskchain/pkg/codec"
	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/tx"
)

// mineSteps bounds how many nonces this tool will search before giving
// up; MinTarget is easy enough that a solution is expected well within
// this budget.
const mineSteps = 50_000_000

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: duskblockgen <block_file>")
		os.Exit(1)
	}
	path := os.Args[1]

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating key: %v\n", err)
		os.Exit(1)
	}

	transactions := []tx.Transaction{{
		Outputs: []tx.TransactionOutput{
			tx.NewOutput(config.InitialReward*config.Satoshi, privateKey.PublicKey()),
		},
	}}

	root, err := block.ComputeMerkleRoot(transactions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to calculate merkle root: %v\n", err)
		os.Exit(1)
	}

	header := block.Header{
		Timestamp:     time.Now().UTC(),
		PrevBlockHash: hash.Zero,
		MerkleRoot:    root,
		Target:        config.MinTarget,
	}

	solved, err := header.Mine(mineSteps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error mining block: %v\n", err)
		os.Exit(1)
	}
	if !solved {
		fmt.Fprintf(os.Stderr, "Error: exhausted %d nonces without finding a solution\n", mineSteps)
		os.Exit(1)
	}

	b := block.New(header, transactions)
	if err := codec.SaveToFile(path, b); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save block: %v\n", err)
		os.Exit(1)
	}
}
