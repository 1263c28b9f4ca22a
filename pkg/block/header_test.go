package block_test

import (
	"testing"
	"time"

	"github.com/duskchain/duskchain/pkg/block"
	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/u256"
)

func TestMineFindsSolutionUnderEasyTarget(t *testing.T) {
	h := block.Header{
		Timestamp: time.Now().UTC(),
		Target:    u256.Max, // trivially easy: every hash matches.
	}
	solved, err := h.Mine(10)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if !solved {
		t.Fatalf("expected to solve against u256.Max target immediately")
	}

	digest, err := h.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !hash.MatchesTarget(digest, h.Target) {
		t.Fatalf("solved header hash does not actually match its own target")
	}
}

func TestMineReturnsFalseWhenBudgetExhausted(t *testing.T) {
	h := block.Header{
		Timestamp: time.Now().UTC(),
		Target:    hash.Zero, // impossible: nothing is <= 0 except the zero hash itself.
	}
	solved, err := h.Mine(5)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if solved {
		t.Fatalf("expected Mine to report unsolved when the budget is exhausted")
	}
}

func TestMineAdvancesNonce(t *testing.T) {
	h := block.Header{Timestamp: time.Now().UTC(), Target: hash.Zero}
	if _, err := h.Mine(100); err != nil {
		t.Fatalf("mine: %v", err)
	}
	if h.Nonce != 100 {
		t.Fatalf("nonce = %d, want 100 after 100 failed attempts starting at 0", h.Nonce)
	}
}
