package crypto

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func digest(s string) []byte {
	d := sha256.Sum256([]byte(s))
	return d[:]
}

func TestSignVerify(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pub := priv.PublicKey()

	d := digest("hello world")
	sig, err := priv.Sign(d)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !pub.Verify(d, sig) {
		t.Fatalf("Verify should succeed for matching key and digest")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	priv1, _ := GenerateKey()
	priv2, _ := GenerateKey()

	d := digest("tx hash")
	sig, err := priv1.Sign(d)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if priv2.PublicKey().Verify(d, sig) {
		t.Fatalf("Verify should fail against a different key's signature")
	}
}

func TestVerifyRejectsWrongDigest(t *testing.T) {
	priv, _ := GenerateKey()
	sig, err := priv.Sign(digest("a"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if priv.PublicKey().Verify(digest("b"), sig) {
		t.Fatalf("Verify should fail for a different digest")
	}
}

func TestPrivateKeyFromBytesRoundTrip(t *testing.T) {
	priv, _ := GenerateKey()
	b := priv.Bytes()

	restored, err := PrivateKeyFromBytes(b)
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes: %v", err)
	}
	if !restored.PublicKey().Equal(priv.PublicKey()) {
		t.Fatalf("restored key has a different public key")
	}
}

func TestPublicKeyPEMRoundTrip(t *testing.T) {
	priv, _ := GenerateKey()
	pub := priv.PublicKey()

	pemStr, err := pub.PEM()
	if err != nil {
		t.Fatalf("PEM: %v", err)
	}

	restored, err := PublicKeyFromPEM(pemStr)
	if err != nil {
		t.Fatalf("PublicKeyFromPEM: %v", err)
	}
	if !restored.Equal(pub) {
		t.Fatalf("restored public key does not match original")
	}
}

func TestCompressedBytesRoundTrip(t *testing.T) {
	priv, _ := GenerateKey()
	pub := priv.PublicKey()

	b := pub.CompressedBytes()
	restored, err := PublicKeyFromCompressed(b)
	if err != nil {
		t.Fatalf("PublicKeyFromCompressed: %v", err)
	}
	if !restored.Equal(pub) {
		t.Fatalf("restored key mismatch")
	}
}

func TestSignatureCBORRoundTrip(t *testing.T) {
	priv, _ := GenerateKey()
	d := digest("cbor round trip")
	sig, err := priv.Sign(d)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	enc, err := sig.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR: %v", err)
	}

	var decoded Signature
	if err := decoded.UnmarshalCBOR(enc); err != nil {
		t.Fatalf("UnmarshalCBOR: %v", err)
	}
	if !priv.PublicKey().Verify(d, &decoded) {
		t.Fatalf("decoded signature should still verify")
	}
}

func TestPublicKeyCBORRoundTrip(t *testing.T) {
	priv, _ := GenerateKey()
	pub := priv.PublicKey()

	enc, err := pub.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR: %v", err)
	}

	var decoded PublicKey
	if err := decoded.UnmarshalCBOR(enc); err != nil {
		t.Fatalf("UnmarshalCBOR: %v", err)
	}
	if !decoded.Equal(pub) {
		t.Fatalf("decoded public key mismatch")
	}
	if !bytes.Equal(decoded.CompressedBytes(), pub.CompressedBytes()) {
		t.Fatalf("compressed bytes mismatch after CBOR round trip")
	}
}
