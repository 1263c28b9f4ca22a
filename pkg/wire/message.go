// Package wire implements the peer protocol: a closed tagged-message
// union and its length-prefixed framing over a byte stream (spec §4.7).
package wire

import (
	"fmt"

	"github.com/duskchain/duskchain/pkg/block"
	"github.com/duskchain/duskchain/pkg/crypto"
	"github.com/duskchain/duskchain/pkg/tx"
)

// Type discriminates the payload a Message carries. The protocol is a
// closed set — every Type has exactly one valid payload shape, and
// encode/decode dispatch exhaustively over it rather than leaning on an
// open interface hierarchy.
type Type uint8

const (
	TypeFetchUTXOs Type = iota + 1
	TypeUTXOs
	TypeSubmitTransaction
	TypeNewTransaction
	TypeFetchTemplate
	TypeTemplate
	TypeValidateTemplate
	TypeTemplateValidity
	TypeSubmitTemplate
	TypeDiscoverNodes
	TypeNodeList
	TypeAskDifference
	TypeDifference
	TypeFetchBlock
	TypeNewBlock
)

func (t Type) String() string {
	switch t {
	case TypeFetchUTXOs:
		return "FetchUTXOs"
	case TypeUTXOs:
		return "UTXOs"
	case TypeSubmitTransaction:
		return "SubmitTransaction"
	case TypeNewTransaction:
		return "NewTransaction"
	case TypeFetchTemplate:
		return "FetchTemplate"
	case TypeTemplate:
		return "Template"
	case TypeValidateTemplate:
		return "ValidateTemplate"
	case TypeTemplateValidity:
		return "TemplateValidity"
	case TypeSubmitTemplate:
		return "SubmitTemplate"
	case TypeDiscoverNodes:
		return "DiscoverNodes"
	case TypeNodeList:
		return "NodeList"
	case TypeAskDifference:
		return "AskDifference"
	case TypeDifference:
		return "Difference"
	case TypeFetchBlock:
		return "FetchBlock"
	case TypeNewBlock:
		return "NewBlock"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// UTXOEntry is one (output, reserved) pair returned by a UTXOs reply.
type UTXOEntry struct {
	Output   tx.TransactionOutput `cbor:"1,keyasint"`
	Reserved bool                 `cbor:"2,keyasint"`
}

// envelope is the on-the-wire shape: a type tag plus exactly one
// populated payload field. Only the field matching Type is meaningful;
// the rest are zero. This mirrors the teacher's approach of a single
// struct with a discriminant instead of modeling the union as an
// interface, since every variant here needs to round-trip through CBOR
// without per-type registration.
type envelope struct {
	Type Type `cbor:"1,keyasint"`

	PublicKey      *crypto.PublicKey    `cbor:"2,keyasint,omitempty"`
	UTXOList       []UTXOEntry          `cbor:"3,keyasint,omitempty"`
	Transaction    *tx.Transaction      `cbor:"4,keyasint,omitempty"`
	Block          *block.Block         `cbor:"5,keyasint,omitempty"`
	Valid          bool                 `cbor:"6,keyasint,omitempty"`
	Addresses      []string             `cbor:"7,keyasint,omitempty"`
	Height         uint64               `cbor:"8,keyasint,omitempty"`
	Difference     int32                `cbor:"9,keyasint,omitempty"`
}

// Message is a single protocol message. Construct one with the
// matching New* function for its Type; field access outside of that is
// only meaningful after a type switch on Type.
type Message struct {
	Type Type

	PublicKey   *crypto.PublicKey
	UTXOList    []UTXOEntry
	Transaction *tx.Transaction
	Block       *block.Block
	Valid       bool
	Addresses   []string
	Height      uint64
	Difference  int32
}

func NewFetchUTXOs(pubKey *crypto.PublicKey) Message {
	return Message{Type: TypeFetchUTXOs, PublicKey: pubKey}
}

func NewUTXOs(entries []UTXOEntry) Message {
	return Message{Type: TypeUTXOs, UTXOList: entries}
}

func NewSubmitTransaction(t tx.Transaction) Message {
	return Message{Type: TypeSubmitTransaction, Transaction: &t}
}

func NewNewTransaction(t tx.Transaction) Message {
	return Message{Type: TypeNewTransaction, Transaction: &t}
}

func NewFetchTemplate(pubKey *crypto.PublicKey) Message {
	return Message{Type: TypeFetchTemplate, PublicKey: pubKey}
}

func NewTemplate(b block.Block) Message {
	return Message{Type: TypeTemplate, Block: &b}
}

func NewValidateTemplate(b block.Block) Message {
	return Message{Type: TypeValidateTemplate, Block: &b}
}

func NewTemplateValidity(valid bool) Message {
	return Message{Type: TypeTemplateValidity, Valid: valid}
}

func NewSubmitTemplate(b block.Block) Message {
	return Message{Type: TypeSubmitTemplate, Block: &b}
}

func NewDiscoverNodes() Message {
	return Message{Type: TypeDiscoverNodes}
}

func NewNodeList(addresses []string) Message {
	return Message{Type: TypeNodeList, Addresses: addresses}
}

func NewAskDifference(height uint64) Message {
	return Message{Type: TypeAskDifference, Height: height}
}

func NewDifference(delta int32) Message {
	return Message{Type: TypeDifference, Difference: delta}
}

func NewFetchBlock(height uint64) Message {
	return Message{Type: TypeFetchBlock, Height: height}
}

func NewNewBlock(b block.Block) Message {
	return Message{Type: TypeNewBlock, Block: &b}
}

func (m Message) toEnvelope() envelope {
	return envelope{
		Type:        m.Type,
		PublicKey:   m.PublicKey,
		UTXOList:    m.UTXOList,
		Transaction: m.Transaction,
		Block:       m.Block,
		Valid:       m.Valid,
		Addresses:   m.Addresses,
		Height:      m.Height,
		Difference:  m.Difference,
	}
}

func fromEnvelope(e envelope) Message {
	return Message{
		Type:        e.Type,
		PublicKey:   e.PublicKey,
		UTXOList:    e.UTXOList,
		Transaction: e.Transaction,
		Block:       e.Block,
		Valid:       e.Valid,
		Addresses:   e.Addresses,
		Height:      e.Height,
		Difference:  e.Difference,
	}
}
