// duskd is the full node daemon: it serves the wire protocol to peers
// and miners, maintains the chain state, and persists it to disk on
// shutdown (spec §4.8, §6 CLI surface).
//
// Usage:
//
//	duskd [--port N] [--blockchain-file PATH] [peer-address ...]
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/duskchain/duskchain/config"
	"github.com/duskchain/duskchain/internal/chain"
	klog "github.com/duskchain/duskchain/internal/log"
	"github.com/duskchain/duskchain/internal/node"
)

func main() {
	// ── 1. Parse flags ───────────────────────────────────────────────
	cfg, err := config.ParseNodeFlags(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	// ── 2. Init logger ───────────────────────────────────────────────
	if err := klog.Init(cfg.LogLevel, false, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logger: %v\n", err)
		os.Exit(1)
	}
	logger := klog.WithComponent("main")

	// ── 3. Load or bootstrap chain state ─────────────────────────────
	bc, err := loadOrBootstrap(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to establish chain state")
	}
	logger.Info().Uint64("height", uint64(bc.Height())).Msg("chain state ready")

	// ── 4. Wire the node and start serving peers ─────────────────────
	n := node.New(bc)
	addr := fmt.Sprintf(":%d", cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.ListenAndServe(addr)
	}()

	if len(cfg.Peers) > 0 && bc.Height() == 0 {
		go func() {
			if err := n.Bootstrap(cfg.Peers); err != nil {
				logger.Warn().Err(err).Msg("bootstrap failed")
			}
		}()
	} else {
		for _, addr := range cfg.Peers {
			if _, err := n.Connect(addr); err != nil {
				logger.Warn().Str("peer", addr).Err(err).Msg("failed to connect to peer")
			}
		}
	}

	// ── 5. Periodic mempool cleanup ───────────────────────────────────
	stopCleanup := make(chan struct{})
	go runMempoolCleanup(bc, stopCleanup)

	// ── 6. Startup banner ─────────────────────────────────────────────
	logger.Info().Int("port", cfg.Port).Str("blockchain-file", cfg.BlockchainFile).Msg("duskd started")

	// ── 7. Wait for shutdown ──────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("listener stopped")
	}
	close(stopCleanup)

	if err := os.MkdirAll(filepath.Dir(cfg.BlockchainFile), 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create blockchain file directory")
	}
	if err := bc.SaveToFile(cfg.BlockchainFile); err != nil {
		logger.Error().Err(err).Msg("failed to save blockchain on shutdown")
	}
	logger.Info().Msg("goodbye")
}

// loadOrBootstrap implements the startup sequence of spec §4.8: load a
// persisted chain if the file exists; otherwise start empty, either as
// a seed (no initial peers) or to be filled in by Bootstrap once the
// listener is up.
func loadOrBootstrap(cfg *config.NodeConfig) (*chain.Blockchain, error) {
	if _, err := os.Stat(cfg.BlockchainFile); err == nil {
		bc, err := chain.LoadFromFile(cfg.BlockchainFile)
		if err != nil {
			return nil, fmt.Errorf("load blockchain file: %w", err)
		}
		return bc, nil
	}
	return chain.New(), nil
}

// runMempoolCleanup evicts aged-out mempool transactions every 30
// seconds until stop is closed.
func runMempoolCleanup(bc *chain.Blockchain, stop <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			bc.CleanupMempool()
		}
	}
}
