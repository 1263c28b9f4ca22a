// Package block defines the block header and block types, the mining
// routine that searches for a valid nonce, and the validation rules a
// block must satisfy before it can extend the chain (spec §3, §4.3,
// §4.4).
package block

import (
	"time"

	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/u256"
)

// Header is the mined portion of a block: everything whose hash must
// fall under Target. The transaction list lives outside the header and
// is committed to it only via MerkleRoot.
type Header struct {
	Timestamp     time.Time  `cbor:"1,keyasint"`
	Nonce         uint64     `cbor:"2,keyasint"`
	PrevBlockHash hash.Hash  `cbor:"3,keyasint"`
	MerkleRoot    hash.Hash  `cbor:"4,keyasint"`
	Target        u256.U256  `cbor:"5,keyasint"`
}

// Hash returns the canonical hash of the header. Mining searches only
// over this value.
func (h Header) Hash() (hash.Hash, error) {
	return hash.Of(h)
}

// Mine attempts up to steps nonce values looking for a header hash that
// satisfies Target. It mutates h.Nonce (and, on nonce overflow,
// h.Timestamp) in place. It returns true if a solution was found within
// the budget, false if the budget was exhausted first — the two cases
// the source conflated (spec §4.3, §9).
func (h *Header) Mine(steps uint64) (bool, error) {
	for i := uint64(0); i < steps; i++ {
		digest, err := h.Hash()
		if err != nil {
			return false, err
		}
		if hash.MatchesTarget(digest, h.Target) {
			return true, nil
		}
		if h.Nonce == ^uint64(0) {
			// Overflow: wrap to zero and refresh the timestamp so the
			// search space is extended instead of revisiting identical
			// header bytes.
			h.Nonce = 0
			h.Timestamp = time.Now().UTC()
		} else {
			h.Nonce++
		}
	}
	return false, nil
}
