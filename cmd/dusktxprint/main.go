// dusktxprint loads a persisted transaction and prints its contents in
// a human-readable form (spec §6 CLI surface).
//
// Usage:
//
//	dusktxprint <tx_file>
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/duskchain/duskchain/pkg/codec"
	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/tx"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: dusktxprint <tx_file>")
		os.Exit(1)
	}
	path := os.Args[1]

	t, err := codec.LoadFromFile[tx.Transaction](path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load transaction from file: %v\n", err)
		os.Exit(1)
	}

	txHash, err := t.Hash()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash transaction: %v\n", err)
		os.Exit(1)
	}

	kind := "transaction"
	if t.IsCoinbase() {
		kind = "coinbase"
	}
	fmt.Printf("%s %s\n", kind, hash.String(txHash))
	fmt.Printf("  Inputs:  %d\n", len(t.Inputs))
	for i, in := range t.Inputs {
		fmt.Printf("    [%d] spends %s\n", i, hash.String(in.PrevTransactionOutputHash))
	}
	fmt.Printf("  Outputs: %d\n", len(t.Outputs))
	for i, out := range t.Outputs {
		pubkeyHex := ""
		if out.PubKey != nil {
			pubkeyHex = hex.EncodeToString(out.PubKey.CompressedBytes())
		}
		fmt.Printf("    [%d] %d to %s (id %s)\n", i, out.Value, pubkeyHex, out.UniqueID)
	}
}
