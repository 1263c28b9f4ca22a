// Package chainerr defines the closed set of domain errors validation
// code can return, per the error handling design: every rejection a
// node can make in response to untrusted input is one of these five
// sentinels, never a bare fmt.Errorf.
package chainerr

import "errors"

var (
	// ErrInvalidBlock covers header/structure rule violations that
	// don't have a more specific sentinel of their own.
	ErrInvalidBlock = errors.New("invalid block")

	// ErrInvalidTransaction covers UTXO/balance rule violations on a
	// transaction, inside or outside a block.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInvalidHash is returned when a block's prev_block_hash does
	// not match the chain tip.
	ErrInvalidHash = errors.New("invalid previous block hash")

	// ErrInvalidMerkleRoot is returned when a block's declared Merkle
	// root doesn't match the one recomputed from its transactions.
	ErrInvalidMerkleRoot = errors.New("invalid merkle root")

	// ErrInvalidSignature is returned when a transaction input's
	// signature fails to verify against its referenced output.
	ErrInvalidSignature = errors.New("invalid signature")
)
