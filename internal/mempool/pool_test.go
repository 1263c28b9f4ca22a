package mempool_test

import (
	"testing"
	"time"

	"github.com/duskchain/duskchain/internal/mempool"
	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/tx"
)

func key(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	k, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return k
}

func spendableUTXO(t *testing.T, value uint64, owner *crypto.PrivateKey) (hash.Hash, mempool.UTXOSet) {
	t.Helper()
	out := tx.NewOutput(value, owner.PublicKey())
	h, err := out.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h, mempool.UTXOSet{h: {Output: out}}
}

func signedSpend(t *testing.T, prev hash.Hash, owner *crypto.PrivateKey, value uint64, to *crypto.PrivateKey) tx.Transaction {
	t.Helper()
	b := tx.NewBuilder().AddInput(prev).AddOutput(value, to.PublicKey())
	if err := b.Sign(owner); err != nil {
		t.Fatalf("sign: %v", err)
	}
	return b.Build()
}

func TestAddReservesUTXO(t *testing.T) {
	owner := key(t)
	prevHash, utxos := spendableUTXO(t, 1000, owner)
	txn := signedSpend(t, prevHash, owner, 500, owner)

	pool := mempool.New()
	if err := pool.Add(txn, utxos); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !utxos[prevHash].Reserved {
		t.Fatalf("expected UTXO to be reserved after admission")
	}
}

func TestAddRejectsUnknownInput(t *testing.T) {
	owner := key(t)
	txn := tx.NewBuilder().AddInput(hash.Zero).AddOutput(1, owner.PublicKey()).Build()

	pool := mempool.New()
	if err := pool.Add(txn, mempool.UTXOSet{}); err == nil {
		t.Fatalf("expected error for input with no matching UTXO")
	}
}

func TestAddRejectsOutputsExceedingInputs(t *testing.T) {
	owner := key(t)
	prevHash, utxos := spendableUTXO(t, 100, owner)
	txn := signedSpend(t, prevHash, owner, 200, owner)

	pool := mempool.New()
	if err := pool.Add(txn, utxos); err == nil {
		t.Fatalf("expected error when outputs exceed inputs")
	}
}

// TestReplaceByConflict covers spec §8 scenario 7: T1 spends u, T2 also
// spends u; T2 wins, T1 is evicted, u stays reserved.
func TestReplaceByConflict(t *testing.T) {
	owner := key(t)
	prevHash, utxos := spendableUTXO(t, 1000, owner)

	t1 := signedSpend(t, prevHash, owner, 100, owner)
	t1Hash, _ := t1.Hash()

	pool := mempool.New()
	if err := pool.Add(t1, utxos); err != nil {
		t.Fatalf("add t1: %v", err)
	}

	t2 := signedSpend(t, prevHash, owner, 200, owner)
	t2Hash, _ := t2.Hash()
	if err := pool.Add(t2, utxos); err != nil {
		t.Fatalf("add t2: %v", err)
	}

	if pool.Has(t1Hash) {
		t.Fatalf("t1 should have been evicted by the conflicting t2")
	}
	if !pool.Has(t2Hash) {
		t.Fatalf("t2 should be pending")
	}
	if !utxos[prevHash].Reserved {
		t.Fatalf("UTXO should remain reserved by the surviving transaction")
	}
}

func TestCleanupEvictsByAge(t *testing.T) {
	owner := key(t)
	prevHash, utxos := spendableUTXO(t, 1000, owner)
	txn := signedSpend(t, prevHash, owner, 100, owner)

	pool := mempool.New()
	if err := pool.Add(txn, utxos); err != nil {
		t.Fatalf("add: %v", err)
	}

	pool.Cleanup(0, utxos) // maxAge 0: everything with any elapsed time is stale.
	time.Sleep(time.Millisecond)
	pool.Cleanup(0, utxos)

	if pool.Len() != 0 {
		t.Fatalf("expected pool to be empty after age-based cleanup, got %d entries", pool.Len())
	}
	if utxos[prevHash].Reserved {
		t.Fatalf("expected UTXO to be unreserved after cleanup")
	}
}

func TestFeeOrderingAscending(t *testing.T) {
	owner := key(t)
	pool := mempool.New()
	utxos := mempool.UTXOSet{}

	lowFeeHash, lowUTXOs := spendableUTXO(t, 1000, owner)
	for h, e := range lowUTXOs {
		utxos[h] = e
	}
	highFeeHash, highUTXOs := spendableUTXO(t, 1000, owner)
	for h, e := range highUTXOs {
		utxos[h] = e
	}

	lowFeeTx := signedSpend(t, lowFeeHash, owner, 900, owner) // fee 100
	highFeeTx := signedSpend(t, highFeeHash, owner, 100, owner) // fee 900

	if err := pool.Add(lowFeeTx, utxos); err != nil {
		t.Fatalf("add low fee: %v", err)
	}
	if err := pool.Add(highFeeTx, utxos); err != nil {
		t.Fatalf("add high fee: %v", err)
	}

	entries := pool.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	firstHash, _ := entries[0].Tx.Hash()
	lowHash, _ := lowFeeTx.Hash()
	if firstHash != lowHash {
		t.Fatalf("expected the lower-fee transaction first in ascending order")
	}
}
