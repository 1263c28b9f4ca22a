// duskkeygen generates a secp256k1 keypair and writes it to
// <name>.pub.pem and <name>.priv.cbor (spec §6 CLI surface).
//
// Usage:
//
//	duskkeygen <name>
//	duskkeygen --mnemonic <name>
//	duskkeygen --encrypt <name>
package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/duskchain/duskchain/config"
	"github.com/duskchain/duskchain/internal/wallet"
	"github.com/duskchain/duskchain/pkg/crypto"
)

func main() {
	useMnemonic := flag.Bool("mnemonic", false, "derive the key from a freshly generated BIP-39 mnemonic instead of raw randomness")
	encrypt := flag.Bool("encrypt", false, "password-protect the private key file; prompts for a passphrase")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: duskkeygen [--mnemonic] [--encrypt] <name>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	name := flag.Arg(0)

	privateKey, err := generateKey(*useMnemonic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	publicKey := privateKey.PublicKey()

	var passphrase []byte
	if *encrypt {
		passphrase, err = readNewPassphrase()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	privPath := name + config.PrivateKeyExt
	pubPath := name + config.PublicKeyExt

	if err := wallet.SavePrivateKeyFile(privPath, privateKey, passphrase); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving private key file: %v\n", err)
		os.Exit(1)
	}

	pem, err := publicKey.PEM()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding public key: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(pubPath, []byte(pem), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving public key file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s and %s\n", pubPath, privPath)
}

// readNewPassphrase reads a passphrase twice from the controlling
// terminal without echo (golang.org/x/term) and requires the two
// entries to match, the usual "set a new password" confirmation flow.
func readNewPassphrase() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	p1, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	p2, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase confirmation: %w", err)
	}

	if string(p1) != string(p2) {
		return nil, fmt.Errorf("passphrases do not match")
	}
	if len(p1) == 0 {
		return nil, fmt.Errorf("passphrase must not be empty")
	}
	return p1, nil
}

// generateKey builds a new private key either from raw key-generation
// randomness or, when asked, from a freshly generated BIP-39 mnemonic
// printed to stdout so the user can back it up (internal/wallet's HD
// derivation enrichment — SPEC_FULL.md DOMAIN STACK).
func generateKey(useMnemonic bool) (*crypto.PrivateKey, error) {
	if !useMnemonic {
		return crypto.GenerateKey()
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		return nil, fmt.Errorf("generate mnemonic: %w", err)
	}
	fmt.Printf("mnemonic (write this down, it is not saved anywhere): %s\n", mnemonic)

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	master, err := wallet.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	spending, err := master.DeriveSpendingKey()
	if err != nil {
		return nil, fmt.Errorf("derive spending key: %w", err)
	}
	return spending.Signer()
}
