package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/duskchain/duskchain/pkg/codec"
)

// maxMessageSize bounds the length prefix a peer may claim, so a
// misbehaving or corrupt peer cannot make a reader allocate an
// unbounded buffer.
const maxMessageSize = 64 << 20

// WriteMessage frames m as an 8-byte big-endian length prefix followed
// by its canonical binary encoding, and writes it to w (spec §4.7).
func WriteMessage(w io.Writer, m Message) error {
	body, err := codec.Encode(m.toEnvelope())
	if err != nil {
		return fmt.Errorf("wire: encode %s: %w", m.Type, err)
	}
	var prefix [8]byte
	binary.BigEndian.PutUint64(prefix[:], uint64(len(body)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("wire: write length prefix: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("wire: write body: %w", err)
	}
	return nil
}

// ReadMessage reads one length-prefixed message from r.
func ReadMessage(r io.Reader) (Message, error) {
	var prefix [8]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return Message{}, err // may legitimately be io.EOF on clean close
	}
	n := binary.BigEndian.Uint64(prefix[:])
	if n > maxMessageSize {
		return Message{}, fmt.Errorf("wire: message length %d exceeds maximum %d", n, maxMessageSize)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Message{}, fmt.Errorf("wire: read body: %w", err)
	}
	var e envelope
	if err := codec.Decode(body, &e); err != nil {
		return Message{}, fmt.Errorf("wire: decode envelope: %w", err)
	}
	return fromEnvelope(e), nil
}
