package block

import (
	"fmt"

	"github.com/duskchain/duskchain/config"
	"github.com/duskchain/duskchain/pkg/chainerr"
	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/tx"
)

// BlockReward returns the coinbase subsidy (in satoshi units) for a
// block at the given height: InitialReward halved every
// HalvingInterval blocks, computed with integer division (spec §4.4).
func BlockReward(height uint64) uint64 {
	halvings := height / config.HalvingInterval
	if halvings >= 64 {
		return 0
	}
	return (config.InitialReward * config.Satoshi) >> halvings
}

// MinerFees sums the fees of every non-coinbase transaction in the
// block: inputs consumed minus outputs produced. Each consumed input
// must be present in utxos; no input may be consumed twice across the
// whole block (not just within one transaction), and no non-coinbase
// output hash may collide within the block (spec §4.4).
func MinerFees(b Block, utxos tx.OutputLookup) (uint64, error) {
	spent := make(map[hash.Hash]struct{})
	producedHashes := make(map[hash.Hash]struct{})

	var total uint64
	for txIdx, t := range b.Transactions[1:] {
		for _, in := range t.Inputs {
			if _, dup := spent[in.PrevTransactionOutputHash]; dup {
				return 0, fmt.Errorf("%w: tx %d double-spends %s within block", chainerr.ErrInvalidTransaction, txIdx+1, hash.String(in.PrevTransactionOutputHash))
			}
			spent[in.PrevTransactionOutputHash] = struct{}{}
		}
		for _, out := range t.Outputs {
			h, err := out.Hash()
			if err != nil {
				return 0, fmt.Errorf("hash output: %w", err)
			}
			if _, dup := producedHashes[h]; dup {
				return 0, fmt.Errorf("%w: tx %d produces colliding output hash %s", chainerr.ErrInvalidTransaction, txIdx+1, hash.String(h))
			}
			producedHashes[h] = struct{}{}
		}
		fee, err := tx.Fee(t, utxos)
		if err != nil {
			return 0, fmt.Errorf("%w: tx %d: %v", chainerr.ErrInvalidTransaction, txIdx+1, err)
		}
		total += fee
	}
	return total, nil
}

// VerifyCoinbase checks the block's first transaction is a well-formed
// coinbase whose total output value equals the block subsidy at
// predictedHeight plus the fees collected from the rest of the block
// (spec §4.4).
func (b Block) VerifyCoinbase(predictedHeight uint64, utxos tx.OutputLookup) error {
	if len(b.Transactions) == 0 || len(b.Transactions[0].Outputs) == 0 {
		return fmt.Errorf("%w: coinbase has no outputs", chainerr.ErrInvalidBlock)
	}
	coinbase := b.Transactions[0]

	fees, err := MinerFees(b, utxos)
	if err != nil {
		return err
	}

	total, err := coinbase.TotalOutputValue()
	if err != nil {
		return fmt.Errorf("%w: %v", chainerr.ErrInvalidBlock, err)
	}

	want := BlockReward(predictedHeight) + fees
	if total != want {
		return fmt.Errorf("%w: coinbase pays %d, want %d (reward %d + fees %d)",
			chainerr.ErrInvalidBlock, total, want, BlockReward(predictedHeight), fees)
	}
	return nil
}

// VerifyTransactions runs every structural and economic rule a block
// must satisfy to extend the chain at predictedHeight: at least one
// transaction, a valid coinbase (its failure propagates — spec §9
// fixes the source's swallowed error here), and for every non-coinbase
// transaction: every input resolves against utxos, no input hash
// repeats within the block, every signature verifies against its
// referenced output's public key, and inputs cover outputs.
func (b Block) VerifyTransactions(predictedHeight uint64, utxos tx.OutputLookup) error {
	if len(b.Transactions) < 1 {
		return fmt.Errorf("%w: block has no transactions", chainerr.ErrInvalidBlock)
	}

	if err := b.VerifyCoinbase(predictedHeight, utxos); err != nil {
		return err
	}

	spent := make(map[hash.Hash]struct{})
	for txIdx, t := range b.Transactions[1:] {
		if err := t.ValidateStructure(); err != nil {
			return fmt.Errorf("%w: tx %d: %v", chainerr.ErrInvalidTransaction, txIdx+1, err)
		}

		var totalIn uint64
		for inIdx, in := range t.Inputs {
			if _, dup := spent[in.PrevTransactionOutputHash]; dup {
				return fmt.Errorf("%w: tx %d input %d double-spends %s", chainerr.ErrInvalidTransaction, txIdx+1, inIdx, hash.String(in.PrevTransactionOutputHash))
			}
			spent[in.PrevTransactionOutputHash] = struct{}{}

			out, ok := utxos(in.PrevTransactionOutputHash)
			if !ok {
				return fmt.Errorf("%w: tx %d input %d references unknown output %s", chainerr.ErrInvalidTransaction, txIdx+1, inIdx, hash.String(in.PrevTransactionOutputHash))
			}
			if out.PubKey == nil || in.Signature == nil || !out.PubKey.Verify(in.PrevTransactionOutputHash[:], in.Signature) {
				return fmt.Errorf("%w: tx %d input %d", chainerr.ErrInvalidSignature, txIdx+1, inIdx)
			}
			totalIn += out.Value
		}

		totalOut, err := t.TotalOutputValue()
		if err != nil {
			return fmt.Errorf("%w: tx %d: %v", chainerr.ErrInvalidTransaction, txIdx+1, err)
		}
		if totalIn < totalOut {
			return fmt.Errorf("%w: tx %d spends %d but creates %d", chainerr.ErrInvalidTransaction, txIdx+1, totalIn, totalOut)
		}
	}
	return nil
}
