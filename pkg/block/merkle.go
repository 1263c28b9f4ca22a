package block

import (
	"fmt"

	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/tx"
)

// ComputeMerkleRoot folds an ordered, non-empty transaction list into a
// single committing hash: hash every transaction, then fold consecutive
// pairs (L, R) -> hash([L, R]) layer by layer until one hash remains.
// When a layer has an odd number of entries, the last one is paired
// with itself (duplicate-last, the Bitcoin-standard rule — spec §3,
// §4.2, and the divergence noted in §9).
//
// Returns an error if transactions is empty; there is no Merkle root of
// an empty list.
func ComputeMerkleRoot(transactions []tx.Transaction) (hash.Hash, error) {
	if len(transactions) == 0 {
		return hash.Hash{}, fmt.Errorf("block: cannot compute merkle root of an empty transaction list")
	}

	layer := make([]hash.Hash, len(transactions))
	for i, t := range transactions {
		h, err := t.Hash()
		if err != nil {
			return hash.Hash{}, fmt.Errorf("merkle: hash transaction %d: %w", i, err)
		}
		layer[i] = h
	}

	for len(layer) > 1 {
		next := make([]hash.Hash, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			left := layer[i]
			right := left
			if i+1 < len(layer) {
				right = layer[i+1]
			}
			h, err := hash.Of([2]hash.Hash{left, right})
			if err != nil {
				return hash.Hash{}, fmt.Errorf("merkle: fold pair %d: %w", i/2, err)
			}
			next = append(next, h)
		}
		layer = next
	}

	return layer[0], nil
}
