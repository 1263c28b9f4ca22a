package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip32"

	"github.com/duskchain/duskchain/pkg/crypto"
)

// DeriveIndex is the single non-hardened child index this system
// derives a spending key at. This system has no account/address-book
// concept — one seed deterministically yields one signing key, so
// there is nothing for a BIP-44 purpose/coin-type/account hierarchy to
// disambiguate.
const DeriveIndex = 0

// HDKey is a hierarchical deterministic key (BIP-32).
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master HD key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DeriveChild derives a child key at the given index.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}
	return &HDKey{key: child}, nil
}

// DeriveSpendingKey derives this wallet's one signing key, at
// DeriveIndex beneath the master.
func (k *HDKey) DeriveSpendingKey() (*HDKey, error) {
	return k.DeriveChild(DeriveIndex)
}

// PrivateKeyBytes returns the raw 32-byte private key, or nil if this
// is a public-only key.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	// bip32 Key.Key is 33 bytes with a leading 0x00 for private keys.
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		return raw[1:]
	}
	return raw
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	pub := k.key.PublicKey()
	return pub.Key
}

// Signer returns this HD key's private key as a *crypto.PrivateKey,
// ready to sign transaction inputs. Returns an error if this is a
// public-only key.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	priv := k.PrivateKeyBytes()
	if priv == nil {
		return nil, fmt.Errorf("cannot create signer from public-only key")
	}
	return crypto.PrivateKeyFromBytes(priv)
}

// PublicKey returns this HD key's public key in the chain's
// representation.
func (k *HDKey) PublicKey() (*crypto.PublicKey, error) {
	return crypto.PublicKeyFromCompressed(k.PublicKeyBytes())
}

// IsPrivate reports whether this key contains a private key.
func (k *HDKey) IsPrivate() bool {
	return k.key.IsPrivate
}

// Depth returns the derivation depth (0 for master).
func (k *HDKey) Depth() uint8 {
	return k.key.Depth
}

// Neuter returns a public-key-only copy of this key.
func (k *HDKey) Neuter() *HDKey {
	return &HDKey{key: k.key.PublicKey()}
}
