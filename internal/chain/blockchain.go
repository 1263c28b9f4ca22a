// Package chain implements the append-only ledger: the ordered block
// list, its UTXO index, the current difficulty target, and the mempool
// that feeds it — the consensus-bearing state every node must agree on
// (spec §3, §4.4, §4.5).
package chain

import (
	"fmt"
	"sync"
	"time"

	"github.com/duskchain/duskchain/config"
	klog "github.com/duskchain/duskchain/internal/log"
	"github.com/duskchain/duskchain/internal/mempool"
	"github.com/duskchain/duskchain/pkg/block"
	"github.com/duskchain/duskchain/pkg/chainerr"
	"github.com/duskchain/duskchain/pkg/codec"
	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/tx"
	"github.com/duskchain/duskchain/pkg/u256"
)

// Blockchain is the process-wide chain state: the authoritative block
// list, the UTXO set (with its per-entry mempool reservation flag), the
// current difficulty target, and the pending-transaction pool. All
// access goes through a single readers-writer lock (spec §5): readers
// take RLock, writers (AddBlock, AddToMempool, CleanupMempool,
// RebuildUTXOs) take Lock.
type Blockchain struct {
	mu     sync.RWMutex
	blocks []block.Block
	utxos  mempool.UTXOSet
	target u256.U256
	pool   *mempool.Pool
}

// New returns an empty chain at the easiest difficulty.
func New() *Blockchain {
	return &Blockchain{
		utxos:  mempool.UTXOSet{},
		target: config.MinTarget,
		pool:   mempool.New(),
	}
}

// Height returns the number of blocks appended to the chain.
func (bc *Blockchain) Height() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// Target returns the current difficulty target.
func (bc *Blockchain) Target() u256.U256 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.target
}

// Tip returns the last appended block, or false if the chain is empty.
func (bc *Blockchain) Tip() (block.Block, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if len(bc.blocks) == 0 {
		return block.Block{}, false
	}
	return bc.blocks[len(bc.blocks)-1], true
}

// Blocks returns a copy of the full block list.
func (bc *Blockchain) Blocks() []block.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	out := make([]block.Block, len(bc.blocks))
	copy(out, bc.blocks)
	return out
}

// BlockAt returns the block at the given zero-based height.
func (bc *Blockchain) BlockAt(height uint64) (block.Block, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if height >= uint64(len(bc.blocks)) {
		return block.Block{}, false
	}
	return bc.blocks[height], true
}

// UTXOsForKey returns every unspent output locked to pubKey, along with
// whether each is currently reserved by a pending mempool transaction
// (spec §4.7 FetchUTXOs/UTXOs).
func (bc *Blockchain) UTXOsForKey(pubKey *crypto.PublicKey) []UTXOView {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	var out []UTXOView
	for _, entry := range bc.utxos {
		if entry.Output.PubKey != nil && entry.Output.PubKey.Equal(pubKey) {
			out = append(out, UTXOView{Output: entry.Output, Reserved: entry.Reserved})
		}
	}
	return out
}

// UTXOView pairs an output with its mempool reservation state.
type UTXOView struct {
	Output   tx.TransactionOutput
	Reserved bool
}

// lookup resolves an output by its own hash — the UTXO key scheme this
// implementation adopts (spec §9). Must be called with mu held.
func (bc *Blockchain) lookup(h hash.Hash) (tx.TransactionOutput, bool) {
	entry, ok := bc.utxos[h]
	if !ok {
		return tx.TransactionOutput{}, false
	}
	return entry.Output, true
}

// LookupOutput is the exported, lock-guarded form of lookup, used by
// callers (e.g. the miner template builder) that resolve UTXOs one at
// a time rather than in bulk.
func (bc *Blockchain) LookupOutput(h hash.Hash) (tx.TransactionOutput, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.lookup(h)
}

// AddBlock validates and appends a single block (spec §4.4):
//   - an empty chain requires PrevBlockHash == zero; a non-empty chain
//     requires it to equal the current tip's hash (else InvalidHash);
//   - the header hash must satisfy its own target (else InvalidBlock);
//   - the Merkle root recomputed from the block's transactions must
//     match the header's declared root (else InvalidMerkleRoot);
//   - the timestamp must strictly exceed the tip's (else InvalidBlock);
//   - VerifyTransactions must succeed against the current UTXO set.
//
// On success, every transaction the block includes is removed from the
// mempool (unreserving the UTXOs it held), the block is appended and
// folded into the UTXO set, and then tryAdjustTarget runs. No partial
// mutation occurs on failure.
func (bc *Blockchain) AddBlock(b block.Block) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	height := uint64(len(bc.blocks))

	if len(bc.blocks) == 0 {
		if !b.Header.PrevBlockHash.IsZero() {
			return fmt.Errorf("%w: genesis block must reference the zero hash", chainerr.ErrInvalidBlock)
		}
	} else {
		tipHash, err := bc.blocks[len(bc.blocks)-1].Hash()
		if err != nil {
			return fmt.Errorf("hash tip: %w", err)
		}
		if b.Header.PrevBlockHash != tipHash {
			return fmt.Errorf("%w: prev_block_hash does not match chain tip", chainerr.ErrInvalidHash)
		}
	}

	headerHash, err := b.Header.Hash()
	if err != nil {
		return fmt.Errorf("hash header: %w", err)
	}
	if !hash.MatchesTarget(headerHash, b.Header.Target) {
		return fmt.Errorf("%w: header hash does not satisfy its target", chainerr.ErrInvalidBlock)
	}

	root, err := block.ComputeMerkleRoot(b.Transactions)
	if err != nil {
		return fmt.Errorf("%w: %v", chainerr.ErrInvalidMerkleRoot, err)
	}
	if root != b.Header.MerkleRoot {
		return fmt.Errorf("%w: recomputed root does not match header", chainerr.ErrInvalidMerkleRoot)
	}

	if len(bc.blocks) > 0 {
		tip := bc.blocks[len(bc.blocks)-1]
		if !b.Header.Timestamp.After(tip.Header.Timestamp) {
			return fmt.Errorf("%w: timestamp does not strictly increase", chainerr.ErrInvalidBlock)
		}
	}

	if err := b.VerifyTransactions(height, bc.lookup); err != nil {
		return err
	}

	included := make(map[hash.Hash]struct{}, len(b.Transactions))
	for _, t := range b.Transactions {
		h, err := t.Hash()
		if err != nil {
			return fmt.Errorf("hash included transaction: %w", err)
		}
		included[h] = struct{}{}
	}
	bc.pool.RemoveIncluded(included, bc.utxos)

	bc.blocks = append(bc.blocks, b)
	bc.applyBlockToUTXOsLocked(b)
	bc.tryAdjustTarget()

	klog.WithComponent("chain").Info().
		Uint64("height", height).
		Str("hash", hash.String(headerHash)).
		Int("transactions", len(b.Transactions)).
		Msg("block appended")
	return nil
}

// RebuildUTXOs replays every block from scratch, reconstructing the
// UTXO set: for each transaction, consumed inputs are removed and new
// outputs are inserted keyed by their own hash (spec §4.4). Existing
// reservation flags are discarded — they are mempool-only state and
// the chain has no pending mempool at a rebuild's call site (startup
// load).
func (bc *Blockchain) RebuildUTXOs() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.rebuildUTXOsLocked()
}

func (bc *Blockchain) rebuildUTXOsLocked() {
	defer klog.Benchmark("rebuild_utxos")()
	bc.utxos = mempool.UTXOSet{}
	for _, b := range bc.blocks {
		bc.applyBlockToUTXOsLocked(b)
	}
}

// applyBlockToUTXOsLocked folds a single already-appended block into
// the live UTXO set: every input it spends is removed, every output it
// creates is inserted keyed by its own hash (spec §4.4, §9). Unlike a
// full RebuildUTXOs, this only touches entries the block itself
// references, so UTXOs still reserved by unrelated pending mempool
// transactions keep their reservation flag. Must be called with mu
// held.
func (bc *Blockchain) applyBlockToUTXOsLocked(b block.Block) {
	for _, t := range b.Transactions {
		for _, in := range t.Inputs {
			delete(bc.utxos, in.PrevTransactionOutputHash)
		}
		for _, out := range t.Outputs {
			h, err := out.Hash()
			if err != nil {
				continue
			}
			bc.utxos[h] = &mempool.UTXOEntry{Output: out}
		}
	}
}

// AddToMempool validates and admits a user transaction into the pending
// pool (spec §4.6).
func (bc *Blockchain) AddToMempool(t tx.Transaction) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.pool.Add(t, bc.utxos)
}

// CleanupMempool evicts every pending transaction older than
// MaxMempoolTransactionAge, unreserving the UTXOs it held (spec §4.6).
func (bc *Blockchain) CleanupMempool() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.pool.Cleanup(time.Duration(config.MaxMempoolTransactionAgeSeconds)*time.Second, bc.utxos)
}

// MempoolEntries returns a snapshot of the pending pool, ascending by
// fee. A miner template includes them highest fee first, so it iterates
// this slice in reverse.
func (bc *Blockchain) MempoolEntries() []mempool.Entry {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.pool.Entries()
}

// persisted is the on-disk/wire shape of a Blockchain: just the blocks
// and the target. The UTXO set and mempool are derived, not stored —
// RebuildUTXOs recomputes the former on load and the latter starts
// empty.
type persisted struct {
	Blocks []block.Block `cbor:"1,keyasint"`
	Target u256.U256     `cbor:"2,keyasint"`
}

// SaveToFile persists the chain's blocks and target to path.
func (bc *Blockchain) SaveToFile(path string) error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return codec.SaveToFile(path, persisted{Blocks: bc.blocks, Target: bc.target})
}

// LoadFromFile loads a blockchain previously written by SaveToFile,
// rebuilds its UTXO set, and re-evaluates the difficulty target (spec
// §4.8 node startup).
func LoadFromFile(path string) (*Blockchain, error) {
	p, err := codec.LoadFromFile[persisted](path)
	if err != nil {
		return nil, err
	}
	bc := &Blockchain{
		blocks: p.Blocks,
		target: p.Target,
		pool:   mempool.New(),
	}
	bc.rebuildUTXOsLocked()
	bc.tryAdjustTarget()
	return bc, nil
}
