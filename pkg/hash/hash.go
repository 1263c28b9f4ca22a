// Package hash computes the canonical Hash value used throughout the
// chain: SHA-256 of a domain object's canonical encoding, interpreted
// little-endian as a U256.
package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/duskchain/duskchain/pkg/codec"
	"github.com/duskchain/duskchain/pkg/u256"
)

// Hash is a 256-bit digest, usable directly as a U256 for target
// comparisons.
type Hash = u256.U256

// Zero is the sentinel "no previous block" hash.
var Zero = Hash(u256.Zero)

// Of canonically encodes x and returns SHA-256(encoding), reinterpreted
// little-endian as a Hash. Encoding failure is a programmer bug (see
// error handling design) and is returned as an error so the few call
// sites that can legitimately hit it (fuzzed/malformed inputs during
// decode validation) can report cleanly instead of the process aborting
// on every malformed wire message.
func Of(x any) (Hash, error) {
	enc, err := codec.Encode(x)
	if err != nil {
		return Hash{}, err
	}
	digest := sha256.Sum256(enc)
	h, err := u256.FromBytesLE(digest[:])
	if err != nil {
		return Hash{}, err
	}
	return h, nil
}

// MustOf is like Of but panics on failure. Reserved for call sites
// hashing values this process just constructed itself.
func MustOf(x any) Hash {
	h, err := Of(x)
	if err != nil {
		panic(err)
	}
	return h
}

// MatchesTarget reports whether h, read as a U256, is numerically at
// most target — the proof-of-work acceptance condition.
func MatchesTarget(h, target Hash) bool {
	return u256.U256(h).LessEq(u256.U256(target))
}

// IsZero reports whether h is the sentinel zero hash.
func IsZero(h Hash) bool {
	return u256.U256(h).IsZero()
}

// String renders h as lowercase hex, most significant byte first (the
// conventional display order for digests, the reverse of the in-memory
// little-endian layout).
func String(h Hash) string {
	be := make([]byte, u256.Size)
	for i := 0; i < u256.Size; i++ {
		be[u256.Size-1-i] = h[i]
	}
	return hex.EncodeToString(be)
}
