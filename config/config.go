// Package config holds the consensus-critical constant table (spec §6 —
// every node must agree on these or the network forks) and the small
// per-node runtime settings the node and miner binaries accept on their
// command line.
package config

import (
	"math/big"
	"os"
	"path/filepath"
	"runtime"

	"github.com/duskchain/duskchain/pkg/u256"
)

// Consensus-critical constants. These must match bit-for-bit across
// every implementation of this chain; changing any of them is a hard
// fork.
const (
	// InitialReward is the whole-coin block subsidy before any halving.
	InitialReward uint64 = 50

	// Satoshi is the number of base units ("satoshi") in one whole coin.
	Satoshi uint64 = 100_000_000

	// HalvingInterval is the number of blocks between subsidy halvings.
	HalvingInterval uint64 = 210

	// IdealBlockTimeSeconds is the target spacing between blocks.
	IdealBlockTimeSeconds int64 = 10

	// DifficultyUpdateInterval is the number of blocks between target
	// retargets.
	DifficultyUpdateInterval uint64 = 50

	// MaxMempoolTransactionAgeSeconds is how long a pending transaction
	// may sit in the mempool before it is evicted for age.
	MaxMempoolTransactionAgeSeconds int64 = 600
)

// MinTarget is the easiest allowed difficulty target: a U256 with its
// top 16 bits zero and every lower bit set (2^240 - 1). No retarget may
// ever push the target above this ceiling.
var MinTarget = func() u256.U256 {
	max := new(big.Int).Lsh(big.NewInt(1), 240)
	max.Sub(max, big.NewInt(1))
	return u256.FromBig(max)
}()

// DefaultDataDir returns the platform-specific default directory for a
// node's persisted blockchain file.
//
//	Linux:   ~/.duskchain
//	macOS:   ~/Library/Application Support/Duskchain
//	Windows: %APPDATA%\Duskchain
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".duskchain"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Duskchain")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Duskchain")
		}
		return filepath.Join(home, "AppData", "Roaming", "Duskchain")
	default:
		return filepath.Join(home, ".duskchain")
	}
}
