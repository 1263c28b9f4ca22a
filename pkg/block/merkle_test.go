package block_test

import (
	"testing"

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

func makeTxs(t *testing.T, n int) []tx.Transaction {
	t.Helper()
	key := mustKey(t)
	txs := make([]tx.Transaction, n)
	for i := range txs {
		txs[i] = tx.Transaction{Outputs: []tx.TransactionOutput{tx.NewOutput(uint64(i+1), key.PublicKey())}}
	}
	return txs
}

func TestComputeMerkleRootEmptyErrors(t *testing.T) {
	if _, err := block.ComputeMerkleRoot(nil); err == nil {
		t.Fatalf("expected error for empty transaction list")
	}
}

func TestComputeMerkleRootSingleton(t *testing.T) {
	txs := makeTxs(t, 1)
	root, err := block.ComputeMerkleRoot(txs)
	if err != nil {
		t.Fatalf("merkle root: %v", err)
	}
	want, err := txs[0].Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if root != want {
		t.Fatalf("singleton merkle root should equal the transaction's own hash")
	}
}

func TestComputeMerkleRootOddDuplicatesLast(t *testing.T) {
	three := makeTxs(t, 3)
	rootOdd, err := block.ComputeMerkleRoot(three)
	if err != nil {
		t.Fatalf("merkle root (3): %v", err)
	}

	// Duplicating the last transaction explicitly must produce the
	// same root as the odd-length fold, confirming duplicate-last.
	four := append(append([]tx.Transaction{}, three...), three[2])
	rootEven, err := block.ComputeMerkleRoot(four)
	if err != nil {
		t.Fatalf("merkle root (4): %v", err)
	}

	if rootOdd != rootEven {
		t.Fatalf("odd-length fold did not match explicit duplicate-last fold")
	}
}

func TestComputeMerkleRootDeterministic(t *testing.T) {
	txs := makeTxs(t, 5)
	r1, err := block.ComputeMerkleRoot(txs)
	if err != nil {
		t.Fatalf("merkle root: %v", err)
	}
	r2, err := block.ComputeMerkleRoot(txs)
	if err != nil {
		t.Fatalf("merkle root: %v", err)
	}
	if r1 != r2 {
		t.Fatalf("merkle root is not deterministic")
	}
}
