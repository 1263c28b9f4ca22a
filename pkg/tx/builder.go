package tx

import (
	"fmt"

	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/hash"
)

// Builder constructs a transaction incrementally, the way the CLI and
// tests assemble one before signing it.
type Builder struct {
	tx Transaction
}

// NewBuilder starts an empty transaction.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddInput appends an input spending the output with hash prevOutHash.
// It is left unsigned; call SignInput or Sign to fill in the signature.
func (b *Builder) AddInput(prevOutHash hash.Hash) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, TransactionInput{PrevTransactionOutputHash: prevOutHash})
	return b
}

// AddOutput appends an output paying value to pubKey.
func (b *Builder) AddOutput(value uint64, pubKey *crypto.PublicKey) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, NewOutput(value, pubKey))
	return b
}

// SignInput signs input i with key. The digest signed is the input's
// own PrevTransactionOutputHash, per spec §3 TransactionInput.
func (b *Builder) SignInput(i int, key *crypto.PrivateKey) error {
	if i < 0 || i >= len(b.tx.Inputs) {
		return fmt.Errorf("tx: input index %d out of range", i)
	}
	digest := b.tx.Inputs[i].PrevTransactionOutputHash
	sig, err := key.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("sign input %d: %w", i, err)
	}
	b.tx.Inputs[i].Signature = sig
	return nil
}

// Sign signs every input with key. Used when every input spends an
// output owned by the same key, the common single-key-wallet case.
func (b *Builder) Sign(key *crypto.PrivateKey) error {
	for i := range b.tx.Inputs {
		if err := b.SignInput(i, key); err != nil {
			return err
		}
	}
	return nil
}

// Build returns the constructed transaction. It does not validate the
// result; call ValidateStructure separately.
func (b *Builder) Build() Transaction {
	return b.tx
}
