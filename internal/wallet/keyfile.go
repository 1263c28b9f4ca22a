package wallet

import (
	"fmt"
	"os"

	klog "github.com/duskchain/duskchain/internal/log"
	"github.com/duskchain/duskchain/pkg/codec"
	"github.com/duskchain/duskchain/pkg/crypto"
)

// Private-key file format tags. The file's first byte says whether the
// remainder is the bare canonical CBOR encoding of the key or an
// Encrypt-wrapped envelope around it, so a reader never has to guess.
const (
	keyFileTagPlain     = 0x00
	keyFileTagEncrypted = 0x01
)

// SavePrivateKeyFile writes key to path in the self-describing private
// key envelope (spec §6): the canonical CBOR encoding of the key,
// optionally wrapped in Encrypt's Argon2id+XChaCha20-Poly1305 envelope
// when passphrase is non-empty.
func SavePrivateKeyFile(path string, key *crypto.PrivateKey, passphrase []byte) error {
	plain, err := codec.Encode(key)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	var out []byte
	if len(passphrase) == 0 {
		out = append([]byte{keyFileTagPlain}, plain...)
	} else {
		enc, err := Encrypt(plain, passphrase, DefaultParams())
		if err != nil {
			return fmt.Errorf("encrypt private key: %w", err)
		}
		out = append([]byte{keyFileTagEncrypted}, enc...)
	}

	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	klog.WithComponent("wallet").Info().Str("path", path).Bool("encrypted", len(passphrase) > 0).Msg("private key file written")
	return nil
}

// LoadPrivateKeyFile reads a private key file written by
// SavePrivateKeyFile. If the file is password-encrypted, promptPassphrase
// is called exactly once to obtain the decryption passphrase.
func LoadPrivateKeyFile(path string, promptPassphrase func() ([]byte, error)) (*crypto.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: empty key file", path)
	}

	tag, body := raw[0], raw[1:]
	var plain []byte
	switch tag {
	case keyFileTagPlain:
		plain = body
	case keyFileTagEncrypted:
		passphrase, err := promptPassphrase()
		if err != nil {
			return nil, fmt.Errorf("read passphrase: %w", err)
		}
		plain, err = Decrypt(body, passphrase)
		if err != nil {
			return nil, fmt.Errorf("decrypt %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unrecognized key file tag %#x", path, tag)
	}

	var key crypto.PrivateKey
	if err := codec.Decode(plain, &key); err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	klog.WithComponent("wallet").Debug().Str("path", path).Msg("private key file loaded")
	return &key, nil
}
