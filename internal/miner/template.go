// Package miner implements the node side of block production: building
// an unsolved block template that pays a given public key, and
// confirming whether a template a client is still searching against
// still extends the current tip (spec §4.7 FetchTemplate/Template,
// ValidateTemplate/TemplateValidity).
//
// The actual proof-of-work search is the external miner client's job
// (cmd/duskminer); this package only assembles the candidate block.
package miner

import (
	"fmt"
	"time"

	"github.com/duskchain/duskchain/internal/chain"
	klog "github.com/duskchain/duskchain/internal/log"
	"github.com/duskchain/duskchain/pkg/block"
	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/tx"
)

// BuildTemplate assembles an unsolved block extending bc's current tip:
// a coinbase paying rewardKey the block subsidy plus the fees of every
// pending mempool transaction (selected highest-fee-first), and a
// Merkle root over the resulting transaction list. The header's nonce
// is left at zero; the caller is expected to search it.
func BuildTemplate(bc *chain.Blockchain, rewardKey *crypto.PublicKey) (block.Block, error) {
	height := uint64(bc.Height())

	entries := bc.MempoolEntries() // ascending by fee
	selected := make([]tx.Transaction, len(entries))
	for i, e := range entries {
		selected[len(entries)-1-i] = e.Tx // reverse: highest fee first
	}

	var totalFees uint64
	for _, t := range selected {
		f, err := tx.Fee(t, bc.LookupOutput)
		if err != nil {
			return block.Block{}, fmt.Errorf("miner: fee for pending transaction: %w", err)
		}
		totalFees += f
	}

	coinbase := tx.Transaction{Outputs: []tx.TransactionOutput{
		tx.NewOutput(block.BlockReward(height)+totalFees, rewardKey),
	}}

	txs := make([]tx.Transaction, 0, 1+len(selected))
	txs = append(txs, coinbase)
	txs = append(txs, selected...)

	root, err := block.ComputeMerkleRoot(txs)
	if err != nil {
		return block.Block{}, fmt.Errorf("miner: merkle root: %w", err)
	}

	var prev hash.Hash
	if tip, ok := bc.Tip(); ok {
		h, err := tip.Hash()
		if err != nil {
			return block.Block{}, fmt.Errorf("miner: hash tip: %w", err)
		}
		prev = h
	}

	header := block.Header{
		Timestamp:     time.Now().UTC(),
		PrevBlockHash: prev,
		MerkleRoot:    root,
		Target:        bc.Target(),
	}
	klog.WithComponent("miner").Debug().
		Uint64("height", height).
		Int("pending", len(selected)).
		Uint64("fees", totalFees).
		Msg("template built")
	return block.New(header, txs), nil
}

// StillValid reports whether tmpl still builds on bc's current tip —
// the check behind ValidateTemplate/TemplateValidity. A miner whose
// template has fallen behind the tip (another block arrived) should
// abandon its search and request a fresh one.
func StillValid(bc *chain.Blockchain, tmpl block.Block) bool {
	tip, ok := bc.Tip()
	if !ok {
		return tmpl.Header.PrevBlockHash.IsZero()
	}
	tipHash, err := tip.Hash()
	if err != nil {
		return false
	}
	return tmpl.Header.PrevBlockHash == tipHash
}
