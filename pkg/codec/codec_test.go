package codec

import (
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	A uint64
	B string
	C []byte
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sample{A: 42, B: "hello", C: []byte{1, 2, 3}}
	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var out sample
	if err := Decode(b, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.A != in.A || out.B != in.B || string(out.C) != string(in.C) {
		t.Fatalf("round trip mismatch: got %+v", out)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	in := sample{A: 7, B: "x", C: []byte{9}}
	b1, _ := Encode(in)
	b2, _ := Encode(in)
	if string(b1) != string(b2) {
		t.Fatalf("canonical encoding is not deterministic")
	}
}

func TestSaveLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.cbor")

	in := sample{A: 99, B: "persisted", C: []byte{4, 5, 6}}
	if err := SaveToFile(path, in); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	out, err := LoadFromFile[sample](path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if out.A != in.A || out.B != in.B {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFromFile[sample](filepath.Join(dir, "missing.cbor")); err == nil {
		t.Fatalf("expected error loading missing file")
	}
}

func TestSaveToFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.cbor")

	if err := SaveToFile(path, sample{A: 1}); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}
	if err := SaveToFile(path, sample{A: 2}); err != nil {
		t.Fatalf("SaveToFile overwrite: %v", err)
	}
	out, err := LoadFromFile[sample](path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if out.A != 2 {
		t.Fatalf("expected overwritten value 2, got %d", out.A)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}
