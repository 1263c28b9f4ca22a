// Package mempool implements the pending-transaction pool: time-stamped
// transactions kept sorted ascending by miner fee, with replace-by-
// conflict resolution on a spent UTXO and age-based eviction (spec
// §3, §4.6).
package mempool

import (
	"fmt"
	"sort"
	"time"

	klog "github.com/duskchain/duskchain/internal/log"
	"github.com/duskchain/duskchain/pkg/chainerr"
	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/tx"
)

// UTXOEntry is one entry of the chain's UTXO set: the output itself,
// plus whether some mempool transaction currently spends it. The
// reservation bit lives here (not in a separate set) so mempool and
// chain code always see the same view.
type UTXOEntry struct {
	Reserved bool
	Output   tx.TransactionOutput
}

// UTXOSet is the UTXO map shared between internal/chain and this
// package, keyed by the hash of the producing output (spec §3, §9:
// an output's own hash is its key — see internal/chain's grounding
// note for why this resolves the source's keying ambiguity).
type UTXOSet map[hash.Hash]*UTXOEntry

// Entry is one pending transaction together with its arrival time.
type Entry struct {
	ArrivalTime time.Time
	Tx          tx.Transaction
}

// Pool is the ascending-fee-sorted pending transaction list. It holds
// no lock of its own: internal/chain embeds a Pool and guards every
// call through its own RWMutex, the same way it guards the UTXO set
// passed alongside each call.
type Pool struct {
	entries []Entry
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{}
}

// Entries returns a snapshot of the pool's entries, ascending by fee.
func (p *Pool) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of pending transactions.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Has reports whether txHash is already pending.
func (p *Pool) Has(txHash hash.Hash) bool {
	_, ok := p.indexOf(txHash)
	return ok
}

func (p *Pool) indexOf(txHash hash.Hash) (int, bool) {
	for i, e := range p.entries {
		h, err := e.Tx.Hash()
		if err == nil && h == txHash {
			return i, true
		}
	}
	return 0, false
}

// findProducer returns the index of the pending entry whose output.Hash()
// equals outputHash, if any — the "who produced the UTXO this input
// wants to spend" lookup the conflict-resolution rule needs (spec §4.6,
// §9).
func (p *Pool) findProducer(outputHash hash.Hash) (int, bool) {
	for i, e := range p.entries {
		for _, out := range e.Tx.Outputs {
			h, err := out.Hash()
			if err == nil && h == outputHash {
				return i, true
			}
		}
	}
	return 0, false
}

func (p *Pool) removeAt(i int) Entry {
	e := p.entries[i]
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	return e
}

// unreserve clears the Reserved flag on every UTXO t's inputs point at.
func unreserve(t tx.Transaction, utxos UTXOSet) {
	for _, in := range t.Inputs {
		if entry, ok := utxos[in.PrevTransactionOutputHash]; ok {
			entry.Reserved = false
		}
	}
}

// Add validates and admits transaction into the pool (spec §4.6):
//  1. every input must resolve against utxos, with no duplicate input
//     hash within the transaction;
//  2. for each input whose UTXO is already reserved, evict the
//     conflicting pending transaction that produced it (identified by
//     matching output hash) and unreserve its inputs — or, if no such
//     producer is pending, simply clear the stale reservation;
//  3. total input value must cover total output value;
//  4. every referenced UTXO is marked reserved, the transaction is
//     appended with the current timestamp, and the pool is re-sorted
//     ascending by fee.
func (p *Pool) Add(transaction tx.Transaction, utxos UTXOSet) error {
	if err := transaction.ValidateStructure(); err != nil {
		return fmt.Errorf("%w: %v", chainerr.ErrInvalidTransaction, err)
	}

	for _, in := range transaction.Inputs {
		if _, ok := utxos[in.PrevTransactionOutputHash]; !ok {
			return fmt.Errorf("%w: input references unknown output %s", chainerr.ErrInvalidTransaction, hash.String(in.PrevTransactionOutputHash))
		}
	}

	for _, in := range transaction.Inputs {
		entry := utxos[in.PrevTransactionOutputHash]
		if !entry.Reserved {
			continue
		}
		if idx, found := p.findProducer(in.PrevTransactionOutputHash); found {
			evicted := p.removeAt(idx)
			unreserve(evicted.Tx, utxos)
			klog.WithComponent("mempool").Debug().
				Str("conflicting_utxo", hash.String(in.PrevTransactionOutputHash)).
				Msg("evicted conflicting pending transaction, latest wins")
		} else {
			entry.Reserved = false
		}
	}

	var totalIn, totalOut uint64
	for _, in := range transaction.Inputs {
		totalIn += utxos[in.PrevTransactionOutputHash].Output.Value
	}
	totalOut, err := transaction.TotalOutputValue()
	if err != nil {
		return fmt.Errorf("%w: %v", chainerr.ErrInvalidTransaction, err)
	}
	if totalIn < totalOut {
		return fmt.Errorf("%w: inputs (%d) less than outputs (%d)", chainerr.ErrInvalidTransaction, totalIn, totalOut)
	}

	for _, in := range transaction.Inputs {
		utxos[in.PrevTransactionOutputHash].Reserved = true
	}
	p.entries = append(p.entries, Entry{ArrivalTime: time.Now(), Tx: transaction})
	p.resort(utxos)
	return nil
}

// fee returns a pending entry's miner fee (inputs minus outputs),
// looked up against the live UTXO set.
func fee(t tx.Transaction, utxos UTXOSet) uint64 {
	f, err := tx.Fee(t, func(h hash.Hash) (tx.TransactionOutput, bool) {
		e, ok := utxos[h]
		if !ok {
			return tx.TransactionOutput{}, false
		}
		return e.Output, true
	})
	if err != nil {
		return 0
	}
	return f
}

// resort re-orders entries ascending by miner fee (spec §3 mempool,
// §4.6 step 4).
func (p *Pool) resort(utxos UTXOSet) {
	sort.SliceStable(p.entries, func(i, j int) bool {
		return fee(p.entries[i].Tx, utxos) < fee(p.entries[j].Tx, utxos)
	})
}

// RemoveIncluded drops every pending transaction whose hash is in
// included, unreserving the UTXOs each one held (spec §4.4 add_block:
// "remove from the mempool every transaction whose hash is in the
// block").
func (p *Pool) RemoveIncluded(included map[hash.Hash]struct{}, utxos UTXOSet) {
	kept := p.entries[:0]
	for _, e := range p.entries {
		h, err := e.Tx.Hash()
		if err == nil {
			if _, in := included[h]; in {
				unreserve(e.Tx, utxos)
				continue
			}
		}
		kept = append(kept, e)
	}
	p.entries = kept
}

// Cleanup drops every entry older than maxAge, unreserving the UTXOs it
// held (spec §3, §4.6 cleanup_mempool).
func (p *Pool) Cleanup(maxAge time.Duration, utxos UTXOSet) {
	now := time.Now()
	evicted := 0
	kept := p.entries[:0]
	for _, e := range p.entries {
		if now.Sub(e.ArrivalTime) > maxAge {
			unreserve(e.Tx, utxos)
			evicted++
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	if evicted > 0 {
		klog.WithComponent("mempool").Debug().Int("evicted", evicted).Msg("aged-out pending transactions removed")
	}
}
