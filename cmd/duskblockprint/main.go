// duskblockprint loads a persisted block and prints its contents in a
// human-readable form (spec §6 CLI surface).
//
// Usage:
//
//	duskblockprint <block_file>
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/duskchain/duskchain/pkg/block"
	"github.com/duskchain/duskchain/pkg/codec"
	"github.com/duskchain/duskchain/pkg/hash"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: duskblockprint <block_file>")
		os.Exit(1)
	}
	path := os.Args[1]

	b, err := codec.LoadFromFile[block.Block](path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load block from file: %v\n", err)
		os.Exit(1)
	}

	blockHash, err := b.Hash()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash block: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Block %s\n", hash.String(blockHash))
	fmt.Printf("  Timestamp:      %s\n", b.Header.Timestamp.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("  Nonce:          %d\n", b.Header.Nonce)
	fmt.Printf("  PrevBlockHash:  %s\n", hash.String(b.Header.PrevBlockHash))
	fmt.Printf("  MerkleRoot:     %s\n", hash.String(b.Header.MerkleRoot))
	fmt.Printf("  Target:         %s\n", b.Header.Target.Hex())
	fmt.Printf("  Transactions:   %d\n", len(b.Transactions))

	for i, t := range b.Transactions {
		txHash, err := t.Hash()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to hash transaction %d: %v\n", i, err)
			os.Exit(1)
		}
		kind := "transaction"
		if t.IsCoinbase() {
			kind = "coinbase"
		}
		fmt.Printf("  [%d] %s %s\n", i, kind, hash.String(txHash))
		for j, in := range t.Inputs {
			fmt.Printf("        input  %d: spends %s\n", j, hash.String(in.PrevTransactionOutputHash))
		}
		for j, out := range t.Outputs {
			pubkeyHex := ""
			if out.PubKey != nil {
				pubkeyHex = hex.EncodeToString(out.PubKey.CompressedBytes())
			}
			fmt.Printf("        output %d: %d to %s (id %s)\n", j, out.Value, pubkeyHex, out.UniqueID)
		}
	}
}
