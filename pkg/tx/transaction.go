// Package tx defines the transaction model: outputs locked to a public
// key, inputs that reference a prior output by hash and prove the right
// to spend it with a signature (spec §3).
package tx

import (
	"github.com/google/uuid"

	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/hash"
)

// TransactionOutput is a single spendable output: a value locked to a
// public key. UniqueID exists purely so that two economically identical
// outputs (e.g. two coinbase outputs of the same value to the same
// miner) hash to distinct digests and never collide in the UTXO set.
type TransactionOutput struct {
	Value    uint64          `cbor:"1,keyasint"`
	UniqueID uuid.UUID       `cbor:"2,keyasint"`
	PubKey   *crypto.PublicKey `cbor:"3,keyasint"`
}

// NewOutput builds an output paying value to pubKey, with a fresh
// random UniqueID.
func NewOutput(value uint64, pubKey *crypto.PublicKey) TransactionOutput {
	return TransactionOutput{
		Value:    value,
		UniqueID: uuid.New(),
		PubKey:   pubKey,
	}
}

// Hash returns the canonical hash of this output. This is the key every
// UTXO set entry is stored under and the value a TransactionInput's
// PrevTransactionOutputHash must match.
func (o TransactionOutput) Hash() (hash.Hash, error) {
	return hash.Of(o)
}

// TransactionInput spends a prior output by its hash, proving the right
// to do so with a signature over that same hash under the referenced
// output's public key.
type TransactionInput struct {
	PrevTransactionOutputHash hash.Hash         `cbor:"1,keyasint"`
	Signature                 *crypto.Signature `cbor:"2,keyasint"`
}

// Transaction is an ordered list of inputs spending prior outputs and an
// ordered list of new outputs they create.
type Transaction struct {
	Inputs  []TransactionInput  `cbor:"1,keyasint"`
	Outputs []TransactionOutput `cbor:"2,keyasint"`
}

// Hash returns the canonical hash of the whole transaction.
func (t Transaction) Hash() (hash.Hash, error) {
	return hash.Of(t)
}

// IsCoinbase reports whether t has no inputs — the defining property of
// a coinbase transaction (position, not a flag, is what makes the
// first transaction of a block the coinbase; this only tells you
// whether t is *shaped* like one).
func (t Transaction) IsCoinbase() bool {
	return len(t.Inputs) == 0
}

// TotalOutputValue sums every output's value. Returns an error on
// uint64 overflow rather than wrapping silently.
func (t Transaction) TotalOutputValue() (uint64, error) {
	var total uint64
	for _, out := range t.Outputs {
		next := total + out.Value
		if next < total {
			return 0, errOutputOverflow
		}
		total = next
	}
	return total, nil
}
