package tx

import (
	"errors"

	"github.com/duskchain/duskchain/pkg/hash"
)

var (
	errOutputOverflow = errors.New("tx: total output value overflows uint64")

	// ErrDuplicateInput is returned when a transaction spends the same
	// prior output twice.
	ErrDuplicateInput = errors.New("tx: duplicate input within transaction")
)

// ValidateStructure checks the rules that hold for a transaction in
// isolation, without consulting the UTXO set: no input hash may repeat
// within the transaction. This is the first check both the mempool
// (spec §4.6) and block validation (spec §4.4) perform.
func (t Transaction) ValidateStructure() error {
	seen := make(map[hash.Hash]struct{}, len(t.Inputs))
	for _, in := range t.Inputs {
		if _, dup := seen[in.PrevTransactionOutputHash]; dup {
			return ErrDuplicateInput
		}
		seen[in.PrevTransactionOutputHash] = struct{}{}
	}
	_, err := t.TotalOutputValue()
	return err
}
