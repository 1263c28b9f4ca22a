package tx_test

import (
	"errors"
	"testing"

	"github.com/duskchain/duskchain/pkg/tx"
)

func TestValidateStructureRejectsDuplicateInput(t *testing.T) {
	key := genKey(t)
	dup := [32]byte{9}
	txn := tx.NewBuilder().
		AddInput(dup).
		AddInput(dup).
		AddOutput(1, key.PublicKey()).
		Build()

	err := txn.ValidateStructure()
	if !errors.Is(err, tx.ErrDuplicateInput) {
		t.Fatalf("ValidateStructure() = %v, want ErrDuplicateInput", err)
	}
}

func TestValidateStructureAcceptsDistinctInputs(t *testing.T) {
	key := genKey(t)
	txn := tx.NewBuilder().
		AddInput([32]byte{1}).
		AddInput([32]byte{2}).
		AddOutput(1, key.PublicKey()).
		Build()

	if err := txn.ValidateStructure(); err != nil {
		t.Fatalf("ValidateStructure() = %v, want nil", err)
	}
}
