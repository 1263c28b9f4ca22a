package chain

import (
	"math/big"

	"github.com/duskchain/duskchain/config"
	klog "github.com/duskchain/duskchain/internal/log"
	"github.com/duskchain/duskchain/pkg/u256"
)

// tryAdjustTarget re-evaluates the difficulty target every
// DifficultyUpdateInterval blocks (spec §4.5): the new target scales
// the current one by the ratio of actual to ideal elapsed time across
// the interval, clamped to [current/4, current*4] and then capped at
// MinTarget (the network's easiest allowed difficulty). Must be called
// with mu held.
func (bc *Blockchain) tryAdjustTarget() {
	height := uint64(len(bc.blocks))
	if height == 0 || height%config.DifficultyUpdateInterval != 0 {
		return
	}
	if height < config.DifficultyUpdateInterval {
		return
	}
	defer klog.Benchmark("retarget")()

	first := bc.blocks[height-config.DifficultyUpdateInterval]
	last := bc.blocks[height-1]
	actual := last.Header.Timestamp.Unix() - first.Header.Timestamp.Unix()
	if actual <= 0 {
		actual = 1
	}
	ideal := config.IdealBlockTimeSeconds * int64(config.DifficultyUpdateInterval-1)
	if ideal <= 0 {
		ideal = 1
	}

	current := bc.target.Big()
	next := new(big.Int).Mul(current, big.NewInt(actual))
	next.Div(next, big.NewInt(ideal))

	minAllowed := new(big.Int).Div(current, big.NewInt(4))
	maxAllowed := new(big.Int).Mul(current, big.NewInt(4))
	if next.Cmp(minAllowed) < 0 {
		next = minAllowed
	}
	if next.Cmp(maxAllowed) > 0 {
		next = maxAllowed
	}

	ceiling := config.MinTarget.Big()
	if next.Cmp(ceiling) > 0 {
		next = ceiling
	}
	if next.Sign() <= 0 {
		next = big.NewInt(1)
	}

	before := bc.target
	bc.target = u256.FromBig(next)

	klog.WithComponent("chain").Debug().
		Uint64("height", height).
		Int64("actual_seconds", actual).
		Str("target_before", before.Hex()).
		Str("target_after", bc.target.Hex()).
		Msg("difficulty retargeted")
}
