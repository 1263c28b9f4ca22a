// duskminer is the external mining client: it fetches block templates
// from a node, searches nonces on a dedicated worker, and submits
// solved blocks back to the node (spec §4.9, §5).
//
// Usage:
//
//	duskminer --public-key-file PATH [--node-address HOST:PORT]
//	duskminer --private-key-file PATH [--node-address HOST:PORT]
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/duskchain/duskchain/config"
	klog "github.com/duskchain/duskchain/internal/log"
	"github.com/duskchain/duskchain/internal/node"
	"github.com/duskchain/duskchain/internal/wallet"
	"github.com/duskchain/duskchain/pkg/block"
	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/hash"
	"github.com/duskchain/duskchain/pkg/wire"
)

// tickInterval is how often the async side polls the node for a fresh
// template or re-validates the one currently being searched.
const tickInterval = 5 * time.Second

// batchSize is how many nonces the worker searches per Mine call
// before checking whether its working template has been replaced.
const batchSize = 2_000_000

// sharedTemplate is the current candidate block, shared between the
// async tick loop and the dedicated mining worker. Lock holds are
// bounded to clone operations (spec §5): nothing blocking ever runs
// while this mutex is held.
type sharedTemplate struct {
	mu   sync.Mutex
	tmpl block.Block
	set  bool
}

func (s *sharedTemplate) Set(b block.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tmpl = b
	s.set = true
}

func (s *sharedTemplate) Get() (block.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tmpl, s.set
}

func main() {
	cfg, err := config.ParseMinerFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := klog.Init(cfg.LogLevel, false, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logger: %v\n", err)
		os.Exit(1)
	}
	logger := klog.WithComponent("main")

	rewardKey, err := loadRewardKey(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve reward public key")
	}

	shared := &sharedTemplate{}
	var searching atomic.Bool
	solvedCh := make(chan block.Block, 1)
	stopCh := make(chan struct{})

	go mineWorker(shared, &searching, solvedCh, stopCh, klog.WithComponent("miner-worker"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Str("node", cfg.NodeAddress).Msg("duskminer started")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			logger.Info().Msg("shutdown signal received")
			close(stopCh)
			return

		case solved := <-solvedCh:
			h, err := solved.Hash()
			if err != nil {
				logger.Warn().Err(err).Msg("failed to hash solved block")
			} else {
				logger.Info().Str("hash", hash.String(h)).Msg("block solved, submitting")
			}
			if _, err := node.RequestOnce(cfg.NodeAddress, wire.NewSubmitTemplate(solved)); err != nil {
				logger.Warn().Err(err).Msg("failed to submit solved block")
			}
			searching.Store(false)

		case <-ticker.C:
			if !searching.Load() {
				fetchTemplate(cfg.NodeAddress, rewardKey, shared, &searching, logger)
			} else {
				revalidateTemplate(cfg.NodeAddress, shared, &searching, logger)
			}
		}
	}
}

// fetchTemplate requests a new template from the node, stores it, and
// marks the worker as searching.
func fetchTemplate(nodeAddr string, rewardKey *crypto.PublicKey, shared *sharedTemplate, searching *atomic.Bool, logger zerolog.Logger) {
	reply, err := node.RequestOnce(nodeAddr, wire.NewFetchTemplate(rewardKey))
	if err != nil {
		logger.Warn().Err(err).Msg("fetch_template failed")
		return
	}
	if reply.Block == nil {
		logger.Warn().Msg("fetch_template: node returned no template")
		return
	}
	shared.Set(*reply.Block)
	searching.Store(true)
	logger.Debug().Msg("new template, searching")
}

// revalidateTemplate asks the node whether the template currently being
// searched still builds on its tip, abandoning the search if not (spec
// §4.9: "if currently searching, send ValidateTemplate(current) and on
// TemplateValidity(false) abandon the current search").
func revalidateTemplate(nodeAddr string, shared *sharedTemplate, searching *atomic.Bool, logger zerolog.Logger) {
	tmpl, ok := shared.Get()
	if !ok {
		return
	}
	reply, err := node.RequestOnce(nodeAddr, wire.NewValidateTemplate(tmpl))
	if err != nil {
		logger.Warn().Err(err).Msg("validate_template failed")
		return
	}
	if !reply.Valid {
		logger.Debug().Msg("template stale, abandoning search")
		searching.Store(false)
	}
}

// mineWorker owns the CPU-bound proof-of-work search. It runs on its
// own OS-scheduled goroutine so it never starves the async side's
// network I/O (spec §5). Each iteration it takes a fresh snapshot of
// the shared template — picking up any replacement the async side
// installed — and searches batchSize nonces against it, publishing a
// solution over solvedCh on success. The main loop clears searching
// once it has submitted that solution.
func mineWorker(shared *sharedTemplate, searching *atomic.Bool, solvedCh chan<- block.Block, stop <-chan struct{}, logger zerolog.Logger) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		if !searching.Load() {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		tmpl, ok := shared.Get()
		if !ok {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		solved, err := tmpl.Header.Mine(batchSize)
		if err != nil {
			logger.Error().Err(err).Msg("mining failed")
			searching.Store(false)
			continue
		}
		if !solved {
			continue
		}

		select {
		case solvedCh <- tmpl:
		case <-stop:
			return
		}
	}
}

// loadRewardKey resolves the public key the miner should attach to
// coinbase outputs, either directly from a PEM file or by deriving it
// from a private key file that cmd/duskkeygen wrote (prompting for a
// passphrase if that file is encrypted).
func loadRewardKey(cfg *config.MinerConfig) (*crypto.PublicKey, error) {
	if cfg.PublicKeyFile != "" {
		pemBytes, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read public key file: %w", err)
		}
		return crypto.PublicKeyFromPEM(string(pemBytes))
	}

	key, err := wallet.LoadPrivateKeyFile(cfg.PrivateKeyFile, readPassphrase)
	if err != nil {
		return nil, fmt.Errorf("load private key file: %w", err)
	}
	return key.PublicKey(), nil
}

// readPassphrase reads a passphrase from the controlling terminal
// without echo (golang.org/x/term), used to unlock an encrypted
// private key file.
func readPassphrase() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	p, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	return p, nil
}
