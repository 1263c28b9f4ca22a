package chain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/duskchain/duskchain/internal/chain"
	"github.com/duskchain/duskchain/pkg/block"
	"github.com/duskchain/duskchain/pkg/chainerr"
	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/hash"
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

// mineBlock builds and solves a single-coinbase block extending bc's
// current tip, under bc's current target.
func mineBlock(t *testing.T, bc *chain.Blockchain, minerKey *crypto.PrivateKey, height uint64) block.Block {
	t.Helper()
	coinbase := tx.Transaction{Outputs: []tx.TransactionOutput{
		tx.NewOutput(block.BlockReward(height), minerKey.PublicKey()),
	}}
	root, err := block.ComputeMerkleRoot([]tx.Transaction{coinbase})
	if err != nil {
		t.Fatalf("merkle root: %v", err)
	}

	var prev hash.Hash
	if tip, ok := bc.Tip(); ok {
		h, err := tip.Hash()
		if err != nil {
			t.Fatalf("hash tip: %v", err)
		}
		prev = h
	}

	header := block.Header{
		Timestamp:     time.Now().UTC(),
		PrevBlockHash: prev,
		MerkleRoot:    root,
		Target:        bc.Target(),
	}
	solved, err := header.Mine(1 << 20)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if !solved {
		t.Fatalf("failed to mine a block under an easy target")
	}
	return block.New(header, []tx.Transaction{coinbase})
}

func TestAddBlockBuildsChainAndUTXOs(t *testing.T) {
	bc := chain.New()
	minerKey := mustKey(t)

	b0 := mineBlock(t, bc, minerKey, 0)
	if err := bc.AddBlock(b0); err != nil {
		t.Fatalf("add genesis: %v", err)
	}
	if bc.Height() != 1 {
		t.Fatalf("height = %d, want 1", bc.Height())
	}

	b1 := mineBlock(t, bc, minerKey, 1)
	if err := bc.AddBlock(b1); err != nil {
		t.Fatalf("add block 1: %v", err)
	}
	if bc.Height() != 2 {
		t.Fatalf("height = %d, want 2", bc.Height())
	}

	views := bc.UTXOsForKey(minerKey.PublicKey())
	if len(views) != 2 {
		t.Fatalf("expected 2 unspent coinbase outputs, got %d", len(views))
	}
}

func TestAddBlockRejectsWrongPrevHash(t *testing.T) {
	bc := chain.New()
	minerKey := mustKey(t)

	b0 := mineBlock(t, bc, minerKey, 0)
	if err := bc.AddBlock(b0); err != nil {
		t.Fatalf("add genesis: %v", err)
	}

	b1 := mineBlock(t, bc, minerKey, 1)
	b1.Header.PrevBlockHash = hash.Zero // tamper
	root, err := block.ComputeMerkleRoot(b1.Transactions)
	if err != nil {
		t.Fatalf("merkle root: %v", err)
	}
	b1.Header.MerkleRoot = root
	if _, err := (&b1.Header).Mine(1 << 20); err != nil {
		t.Fatalf("re-mine: %v", err)
	}

	err = bc.AddBlock(b1)
	if !errors.Is(err, chainerr.ErrInvalidHash) {
		t.Fatalf("AddBlock() = %v, want ErrInvalidHash", err)
	}
}

func TestAddBlockRemovesIncludedMempoolEntries(t *testing.T) {
	bc := chain.New()
	minerKey := mustKey(t)
	spenderKey := mustKey(t)

	b0 := mineBlock(t, bc, minerKey, 0)
	if err := bc.AddBlock(b0); err != nil {
		t.Fatalf("add genesis: %v", err)
	}
	coinbaseHash, err := b0.Transactions[0].Outputs[0].Hash()
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
	if len(bc.MempoolEntries()) != 1 {
		t.Fatalf("expected 1 pending transaction")
	}

	coinbase1 := tx.Transaction{Outputs: []tx.TransactionOutput{
		tx.NewOutput(block.BlockReward(1)+100, minerKey.PublicKey()),
	}}
	root, err := block.ComputeMerkleRoot([]tx.Transaction{coinbase1, spendTx})
	if err != nil {
		t.Fatalf("merkle root: %v", err)
	}
	tipHash, _ := b0.Hash()
	header := block.Header{Timestamp: time.Now().UTC(), PrevBlockHash: tipHash, MerkleRoot: root, Target: bc.Target()}
	if _, err := header.Mine(1 << 20); err != nil {
		t.Fatalf("mine: %v", err)
	}
	b1 := block.New(header, []tx.Transaction{coinbase1, spendTx})

	if err := bc.AddBlock(b1); err != nil {
		t.Fatalf("add block 1: %v", err)
	}
	if len(bc.MempoolEntries()) != 0 {
		t.Fatalf("expected mempool to be drained of the included transaction")
	}
}

func TestSaveAndLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/chain.cbor"

	bc := chain.New()
	minerKey := mustKey(t)
	b0 := mineBlock(t, bc, minerKey, 0)
	if err := bc.AddBlock(b0); err != nil {
		t.Fatalf("add genesis: %v", err)
	}
	if err := bc.SaveToFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := chain.LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Height() != 1 {
		t.Fatalf("loaded height = %d, want 1", loaded.Height())
	}
	views := loaded.UTXOsForKey(minerKey.PublicKey())
	if len(views) != 1 {
		t.Fatalf("expected 1 unspent output after reload, got %d", len(views))
	}
}
