package block

import (
	"fmt"

	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/tx"
)

// Block is a header plus the ordered transaction list it commits to.
// Transactions[0] is always the coinbase; every block has at least one
// transaction.
type Block struct {
	Header       Header          `cbor:"1,keyasint"`
	Transactions []tx.Transaction `cbor:"2,keyasint"`
}

// New builds a block from a header and transaction list. It does not
// validate the result.
func New(header Header, transactions []tx.Transaction) Block {
	return Block{Header: header, Transactions: transactions}
}

// Hash returns the canonical hash of the whole block.
func (b Block) Hash() (hash.Hash, error) {
	return hash.Of(b)
}

// Coinbase returns the block's coinbase transaction, which by position
// is always Transactions[0].
func (b Block) Coinbase() (tx.Transaction, error) {
	if len(b.Transactions) == 0 {
		return tx.Transaction{}, fmt.Errorf("block: empty transaction list has no coinbase")
	}
	return b.Transactions[0], nil
}
