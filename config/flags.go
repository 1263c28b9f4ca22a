package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// NodeConfig holds the flags accepted by cmd/duskd (spec §6 CLI surface).
type NodeConfig struct {
	Port           int
	BlockchainFile string
	LogLevel       string
	// Peers is the initial peer list given as positional arguments.
	// Empty means "act as a seed node".
	Peers []string
}

// ParseNodeFlags parses os.Args[1:] into a NodeConfig.
func ParseNodeFlags(args []string) (*NodeConfig, error) {
	fs := flag.NewFlagSet("duskd", flag.ContinueOnError)
	cfg := &NodeConfig{}
	fs.IntVar(&cfg.Port, "port", 9000, "TCP port to listen on")
	fs.StringVar(&cfg.BlockchainFile, "blockchain-file", filepath.Join(DefaultDataDir(), "chain.cbor"), "path to the persisted blockchain")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: duskd [--port N] [--blockchain-file PATH] [peer-address ...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Peers = fs.Args()
	return cfg, nil
}

// MinerConfig holds the flags accepted by cmd/duskminer.
type MinerConfig struct {
	NodeAddress    string
	PublicKeyFile  string
	PrivateKeyFile string
	LogLevel       string
}

// ParseMinerFlags parses os.Args[1:] into a MinerConfig. Exactly one of
// --public-key-file or --private-key-file must be given: the reward
// key can be supplied directly as a PEM file, or derived from a
// (possibly passphrase-encrypted) private key file written by
// cmd/duskkeygen.
func ParseMinerFlags(args []string) (*MinerConfig, error) {
	fs := flag.NewFlagSet("duskminer", flag.ContinueOnError)
	cfg := &MinerConfig{}
	fs.StringVar(&cfg.NodeAddress, "node-address", "127.0.0.1:9000", "address of the node to mine against")
	fs.StringVar(&cfg.PublicKeyFile, "public-key-file", "", "PEM file of the public key to reward")
	fs.StringVar(&cfg.PrivateKeyFile, "private-key-file", "", "private key file to derive the reward key from (prompts for a passphrase if encrypted)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: duskminer (--public-key-file PATH | --private-key-file PATH) [--node-address HOST:PORT]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.PublicKeyFile == "" && cfg.PrivateKeyFile == "" {
		return nil, fmt.Errorf("duskminer: one of --public-key-file or --private-key-file is required")
	}
	if cfg.PublicKeyFile != "" && cfg.PrivateKeyFile != "" {
		return nil, fmt.Errorf("duskminer: --public-key-file and --private-key-file are mutually exclusive")
	}
	return cfg, nil
}
