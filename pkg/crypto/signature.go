// Package crypto provides the ECDSA/secp256k1 primitives used to sign and
// verify transaction inputs.
package crypto

import (
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/fxamacker/cbor/v2"
)

// secp256k1 object identifiers, per SEC 1 / RFC 5480. Go's stdlib
// crypto/x509 only knows the NIST curves, so the SubjectPublicKeyInfo
// envelope for this curve is built by hand rather than through
// x509.MarshalPKIXPublicKey.
var (
	oidPublicKeyEC = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidSecp256k1   = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

const pemBlockType = "PUBLIC KEY"

// subjectPublicKeyInfo mirrors RFC 5280's SubjectPublicKeyInfo.
type subjectPublicKeyInfo struct {
	Algorithm        algorithmIdentifier
	SubjectPublicKey asn1.BitString
}

type algorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.ObjectIdentifier
}

// PrivateKey is a secp256k1 signing key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey is a secp256k1 verifying key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// Signature is an ECDSA signature over a 32-byte digest.
type Signature struct {
	sig *ecdsa.Signature
}

// GenerateKey creates a new random secp256k1 private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes builds a PrivateKey from its 32-byte scalar.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// Bytes returns the raw 32-byte scalar — the self-describing binary
// envelope for on-disk persistence (MarshalCBOR below, wrapped by
// internal/wallet's key file) is built around this.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// PublicKey derives the corresponding verifying key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// MarshalCBOR implements cbor.Marshaler, giving PrivateKey the
// self-describing binary envelope spec §2/§3 calls for: the raw
// 32-byte scalar wrapped in a CBOR byte string, the same canonical
// encoding used for every other persisted domain value.
func (pk *PrivateKey) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(pk.Bytes())
}

// UnmarshalCBOR implements cbor.Unmarshaler for PrivateKey.
func (pk *PrivateKey) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("decode private key bytes: %w", err)
	}
	key, err := PrivateKeyFromBytes(b)
	if err != nil {
		return fmt.Errorf("decode private key: %w", err)
	}
	pk.key = key.key
	return nil
}

// Sign produces an ECDSA signature over a 32-byte digest.
func (pk *PrivateKey) Sign(digest []byte) (*Signature, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	sig := ecdsa.Sign(pk.key, digest)
	return &Signature{sig: sig}, nil
}

// Zero overwrites the private scalar's memory.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// Verify checks sig against digest under this public key.
func (pub *PublicKey) Verify(digest []byte, sig *Signature) bool {
	if len(digest) != 32 || sig == nil || sig.sig == nil {
		return false
	}
	return sig.sig.Verify(digest, pub.key)
}

// Equal reports whether two public keys are the same key.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	return pub.key.IsEqual(other.key)
}

// CompressedBytes returns the 33-byte compressed SEC1 encoding.
func (pub *PublicKey) CompressedBytes() []byte {
	return pub.key.SerializeCompressed()
}

// PublicKeyFromCompressed parses a 33-byte compressed SEC1 public key.
func PublicKeyFromCompressed(b []byte) (*PublicKey, error) {
	key, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &PublicKey{key: key}, nil
}

// PEM encodes the public key as a SubjectPublicKeyInfo PEM block, the
// canonical external form for this system (spec §3 PublicKey).
func (pub *PublicKey) PEM() (string, error) {
	uncompressed := pub.key.SerializeUncompressed()

	spki := subjectPublicKeyInfo{
		Algorithm: algorithmIdentifier{
			Algorithm:  oidPublicKeyEC,
			Parameters: oidSecp256k1,
		},
		SubjectPublicKey: asn1.BitString{
			Bytes:     uncompressed,
			BitLength: len(uncompressed) * 8,
		},
	}

	der, err := asn1.Marshal(spki)
	if err != nil {
		return "", fmt.Errorf("marshal SubjectPublicKeyInfo: %w", err)
	}

	block := &pem.Block{Type: pemBlockType, Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// PublicKeyFromPEM parses a SubjectPublicKeyInfo PEM block produced by PEM.
func PublicKeyFromPEM(s string) (*PublicKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != pemBlockType {
		return nil, fmt.Errorf("no PEM public key block found")
	}

	var spki subjectPublicKeyInfo
	if _, err := asn1.Unmarshal(block.Bytes, &spki); err != nil {
		return nil, fmt.Errorf("unmarshal SubjectPublicKeyInfo: %w", err)
	}
	if !spki.Algorithm.Algorithm.Equal(oidPublicKeyEC) {
		return nil, fmt.Errorf("unexpected public key algorithm %v", spki.Algorithm.Algorithm)
	}
	if !spki.Algorithm.Parameters.Equal(oidSecp256k1) {
		return nil, fmt.Errorf("unexpected curve %v, want secp256k1", spki.Algorithm.Parameters)
	}

	key, err := secp256k1.ParsePubKey(spki.SubjectPublicKey.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse curve point: %w", err)
	}
	return &PublicKey{key: key}, nil
}

// MarshalCBOR implements cbor.Marshaler so a PublicKey can participate
// directly in canonically-hashed/persisted structures (TransactionOutput):
// it encodes as its compressed 33-byte form, the most compact canonical
// representation of the curve point.
func (pub *PublicKey) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(pub.CompressedBytes())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (pub *PublicKey) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("decode public key bytes: %w", err)
	}
	key, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}
	pub.key = key
	return nil
}

// MarshalCBOR implements cbor.Marshaler for Signature, wrapping the
// DER-encoded signature bytes in a CBOR byte string — CBOR supplies the
// length-prefixing framing an ASN.1 DER blob needs to sit inside a larger
// canonical structure.
func (s *Signature) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.sig.Serialize())
}

// UnmarshalCBOR implements cbor.Unmarshaler for Signature.
func (s *Signature) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("decode signature bytes: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(b)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	s.sig = sig
	return nil
}

// RSBytes exposes the raw (R, S) values for diagnostics.
func (s *Signature) RSBytes() (r, sVal *big.Int) {
	der := s.sig.Serialize()
	var parsed struct {
		R, S *big.Int
	}
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return nil, nil
	}
	return parsed.R, parsed.S
}
