package miner_test

import (
	"testing"
	"time"

	"github.com/duskchain/duskchain/internal/chain"
	"github.com/duskchain/duskchain/internal/miner"
	"github.com/duskchain/duskchain/pkg/block"
	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/tx"
)

func mustKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	k, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return k
}

func addGenesis(t *testing.T, bc *chain.Blockchain, minerKey *crypto.PrivateKey) block.Block {
	t.Helper()
	coinbase := tx.Transaction{Outputs: []tx.TransactionOutput{tx.NewOutput(block.BlockReward(0), minerKey.PublicKey())}}
	root, err := block.ComputeMerkleRoot([]tx.Transaction{coinbase})
	if err != nil {
		t.Fatalf("merkle root: %v", err)
	}
	header := block.Header{Timestamp: time.Now().UTC(), MerkleRoot: root, Target: bc.Target()}
	if _, err := header.Mine(1 << 20); err != nil {
		t.Fatalf("mine: %v", err)
	}
	b := block.New(header, []tx.Transaction{coinbase})
	if err := bc.AddBlock(b); err != nil {
		t.Fatalf("add genesis: %v", err)
	}
	return b
}

func TestBuildTemplatePaysRewardWithNoMempool(t *testing.T) {
	bc := chain.New()
	minerKey := mustKey(t)
	addGenesis(t, bc, minerKey)

	tmpl, err := miner.BuildTemplate(bc, minerKey.PublicKey())
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	if len(tmpl.Transactions) != 1 {
		t.Fatalf("expected only a coinbase with an empty mempool, got %d transactions", len(tmpl.Transactions))
	}
	total, err := tmpl.Transactions[0].TotalOutputValue()
	if err != nil {
		t.Fatalf("total output value: %v", err)
	}
	if total != block.BlockReward(1) {
		t.Fatalf("coinbase pays %d, want %d", total, block.BlockReward(1))
	}
}

func TestBuildTemplateIncludesMempoolFees(t *testing.T) {
	bc := chain.New()
	minerKey := mustKey(t)
	spenderKey := mustKey(t)
	genesis := addGenesis(t, bc, minerKey)

	coinbaseHash, err := genesis.Transactions[0].Outputs[0].Hash()
	if err != nil {
		t.Fatalf("hash coinbase output: %v", err)
	}
	spend := tx.NewBuilder().AddInput(coinbaseHash).AddOutput(block.BlockReward(0)-100, spenderKey.PublicKey())
	if err := spend.Sign(minerKey); err != nil {
		t.Fatalf("sign: %v", err)
	}
	spendTx := spend.Build()
	if err := bc.AddToMempool(spendTx); err != nil {
		t.Fatalf("add to mempool: %v", err)
	}

	tmpl, err := miner.BuildTemplate(bc, minerKey.PublicKey())
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	if len(tmpl.Transactions) != 2 {
		t.Fatalf("expected coinbase + 1 pending tx, got %d", len(tmpl.Transactions))
	}
	total, err := tmpl.Transactions[0].TotalOutputValue()
	if err != nil {
		t.Fatalf("total output value: %v", err)
	}
	if want := block.BlockReward(1) + 100; total != want {
		t.Fatalf("coinbase pays %d, want %d (reward + fee)", total, want)
	}
}

func TestStillValidTracksTip(t *testing.T) {
	bc := chain.New()
	minerKey := mustKey(t)
	addGenesis(t, bc, minerKey)

	tmpl, err := miner.BuildTemplate(bc, minerKey.PublicKey())
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	if !miner.StillValid(bc, tmpl) {
		t.Fatalf("expected freshly built template to be valid")
	}

	// Extend the chain past the template's parent.
	header := block.Header{Timestamp: time.Now().UTC(), Target: bc.Target()}
	tip, _ := bc.Tip()
	h, err := tip.Hash()
	if err != nil {
		t.Fatalf("hash tip: %v", err)
	}
	header.PrevBlockHash = h
	coinbase := tx.Transaction{Outputs: []tx.TransactionOutput{tx.NewOutput(block.BlockReward(1), minerKey.PublicKey())}}
	root, err := block.ComputeMerkleRoot([]tx.Transaction{coinbase})
	if err != nil {
		t.Fatalf("merkle root: %v", err)
	}
	header.MerkleRoot = root
	if _, err := header.Mine(1 << 20); err != nil {
		t.Fatalf("mine: %v", err)
	}
	if err := bc.AddBlock(block.New(header, []tx.Transaction{coinbase})); err != nil {
		t.Fatalf("add block: %v", err)
	}

	if miner.StillValid(bc, tmpl) {
		t.Fatalf("expected stale template to be invalid after the tip advanced")
	}
}
