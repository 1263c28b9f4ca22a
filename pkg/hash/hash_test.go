package hash

import (
	"testing"

	"github.com/duskchain/duskchain/pkg/u256"
)

func TestOfDeterministic(t *testing.T) {
	h1, err := Of("hello")
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	h2, err := Of("hello")
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("Of is not deterministic")
	}
}

func TestOfDistinguishesInputs(t *testing.T) {
	h1, _ := Of("a")
	h2, _ := Of("b")
	if h1 == h2 {
		t.Fatalf("distinct inputs hashed to the same value")
	}
}

func TestZeroIsZero(t *testing.T) {
	if !IsZero(Zero) {
		t.Fatalf("Zero should be IsZero")
	}
	h, _ := Of("anything")
	if IsZero(h) {
		t.Fatalf("a real hash should not be IsZero")
	}
}

func TestMatchesTarget(t *testing.T) {
	low := Hash(u256.FromUint64(5))
	high := Hash(u256.FromUint64(10))
	if !MatchesTarget(low, high) {
		t.Fatalf("5 should match target 10")
	}
	if MatchesTarget(high, low) {
		t.Fatalf("10 should not match target 5")
	}
	if !MatchesTarget(low, low) {
		t.Fatalf("equal values should match (<=)")
	}
}

func TestStringLength(t *testing.T) {
	h, _ := Of("x")
	s := String(h)
	if len(s) != 64 {
		t.Fatalf("hex string length = %d, want 64", len(s))
	}
}
