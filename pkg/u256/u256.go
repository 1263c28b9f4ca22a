// Package u256 implements a fixed-width 256-bit unsigned integer.
//
// Values are stored little-endian in memory (Bytes[0] is the least
// significant byte), matching the in-memory layout consensus code expects
// for hashes and difficulty targets.
package u256

import (
	"fmt"
	"math/big"
)

// Size is the width of a U256 in bytes.
const Size = 32

// U256 is a 256-bit unsigned integer, little-endian in memory.
type U256 [Size]byte

// Zero is the additive identity.
var Zero = U256{}

// Max is the largest representable value (2^256 - 1).
var Max = func() U256 {
	var m U256
	for i := range m {
		m[i] = 0xFF
	}
	return m
}()

// FromBig converts a non-negative big.Int to a U256. Panics if b is negative
// or does not fit in 256 bits — both are programmer bugs at call sites within
// this codebase, never data from the wire.
func FromBig(b *big.Int) U256 {
	if b.Sign() < 0 {
		panic("u256: FromBig: negative value")
	}
	bytes := b.Bytes() // big-endian, minimal length
	if len(bytes) > Size {
		panic("u256: FromBig: value overflows 256 bits")
	}
	var out U256
	// Reverse big-endian bytes into little-endian storage.
	for i, bv := range bytes {
		out[len(bytes)-1-i] = bv
	}
	return out
}

// Big converts a U256 to a big.Int.
func (u U256) Big() *big.Int {
	be := make([]byte, Size)
	for i := 0; i < Size; i++ {
		be[Size-1-i] = u[i]
	}
	return new(big.Int).SetBytes(be)
}

// FromUint64 builds a U256 from a native uint64.
func FromUint64(v uint64) U256 {
	var out U256
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

// FromDecimal parses a base-10 string into a U256.
func FromDecimal(s string) (U256, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return U256{}, fmt.Errorf("u256: invalid decimal %q", s)
	}
	if b.Sign() < 0 {
		return U256{}, fmt.Errorf("u256: negative decimal %q", s)
	}
	if b.BitLen() > Size*8 {
		return U256{}, fmt.Errorf("u256: decimal %q overflows 256 bits", s)
	}
	return FromBig(b), nil
}

// FromBytesLE builds a U256 directly from a 32-byte little-endian slice,
// as produced by SHA-256 digests reinterpreted as U256 (spec §3 Hash).
func FromBytesLE(b []byte) (U256, error) {
	if len(b) != Size {
		return U256{}, fmt.Errorf("u256: need %d bytes, got %d", Size, len(b))
	}
	var out U256
	copy(out[:], b)
	return out, nil
}

// Bytes returns the little-endian byte representation.
func (u U256) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, u[:])
	return b
}

// Cmp returns -1, 0, or +1 as u is numerically less than, equal to, or
// greater than other.
func (u U256) Cmp(other U256) int {
	for i := Size - 1; i >= 0; i-- {
		if u[i] != other[i] {
			if u[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// LessEq reports whether u <= other.
func (u U256) LessEq(other U256) bool { return u.Cmp(other) <= 0 }

// Less reports whether u < other.
func (u U256) Less(other U256) bool { return u.Cmp(other) < 0 }

// IsZero reports whether u is the zero value.
func (u U256) IsZero() bool { return u == Zero }

// Div divides u by v using arbitrary-precision arithmetic and returns the
// floored quotient. Panics on division by zero.
func (u U256) Div(v U256) U256 {
	if v.IsZero() {
		panic("u256: division by zero")
	}
	q := new(big.Int).Div(u.Big(), v.Big())
	return FromBig(q)
}

// Mul multiplies u by v. The product may overflow 256 bits; use MulBig when
// the intermediate result must be retained at full precision (as retargeting
// requires — see internal/chain's target adjustment).
func (u U256) Mul(v U256) U256 {
	p := u.MulBig(v)
	if p.BitLen() > Size*8 {
		panic("u256: Mul overflows 256 bits, use MulBig")
	}
	return FromBig(p)
}

// MulBig multiplies u by v and returns the full-precision big.Int product,
// which may exceed 256 bits.
func (u U256) MulBig(v U256) *big.Int {
	return new(big.Int).Mul(u.Big(), v.Big())
}

// String renders u as a base-10 decimal string.
func (u U256) String() string {
	return u.Big().String()
}

// Hex renders u as a 0x-prefixed big-endian hex string, for display.
func (u U256) Hex() string {
	return fmt.Sprintf("0x%064x", u.Big())
}
