package tx

import (
	"fmt"

	"github.com/duskchain/duskchain/pkg/hash"
)

// OutputLookup resolves a previously produced output by the hash of
// that output — the UTXO set's key scheme (see internal/chain).
type OutputLookup func(h hash.Hash) (TransactionOutput, bool)

// Fee computes a non-coinbase transaction's miner fee: the sum of its
// inputs' values minus the sum of its outputs' values (spec §4.6,
// §4.4 miner_fees). lookup must resolve every input; Fee returns an
// error if any input's referenced output cannot be found, or if total
// input value is less than total output value.
func Fee(t Transaction, lookup OutputLookup) (uint64, error) {
	var totalIn uint64
	for _, in := range t.Inputs {
		out, ok := lookup(in.PrevTransactionOutputHash)
		if !ok {
			return 0, fmt.Errorf("tx: input references unknown output %s", hash.String(in.PrevTransactionOutputHash))
		}
		next := totalIn + out.Value
		if next < totalIn {
			return 0, fmt.Errorf("tx: total input value overflows uint64")
		}
		totalIn = next
	}
	totalOut, err := t.TotalOutputValue()
	if err != nil {
		return 0, err
	}
	if totalIn < totalOut {
		return 0, fmt.Errorf("tx: inputs (%d) less than outputs (%d)", totalIn, totalOut)
	}
	return totalIn - totalOut, nil
}
