// Package codec implements the self-describing binary encoding used to
// hash and persist every domain object in the system: a single canonical
// CBOR form in which field order and integer widths are fixed by each
// type's Go struct tags, so two implementations encoding the same value
// produce the exact same byte stream.
package codec

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: build canonical encode mode: %v", err))
	}
	encMode = m

	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: build decode mode: %v", err))
	}
	decMode = dm
}

// Encode produces the canonical binary encoding of v. Encoding a
// well-formed Go value built from this codebase's domain types cannot
// fail; an error here indicates a programmer bug (an unsupported field
// type slipped into a hashed structure) and the caller should treat it
// as fatal per the error handling design.
func Encode(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode %T: %w", v, err)
	}
	return b, nil
}

// MustEncode encodes v and panics on failure. Reserved for call sites
// where encoding a constructed domain value cannot legitimately fail.
func MustEncode(v any) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode parses the canonical binary encoding into v, which must be a
// pointer.
func Decode(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: decode %T: %w", v, err)
	}
	return nil
}

// SaveToFile encodes v canonically and writes it to path, replacing any
// existing file. Mirrors the Saveable::save_to_file behavior of the
// reference implementation.
func SaveToFile[T any](path string, v T) error {
	b, err := Encode(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	return nil
}

// LoadFromFile reads path and decodes it into a T. Mirrors
// Saveable::load_from_file.
func LoadFromFile[T any](path string) (T, error) {
	var zero T
	b, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("codec: read %s: %w", path, err)
	}
	var v T
	if err := Decode(b, &v); err != nil {
		return zero, fmt.Errorf("codec: %s: %w", path, err)
	}
	return v, nil
}
