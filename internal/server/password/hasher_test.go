package password

import (
	"bytes"
	"testing"
)

func TestHashAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHasher()
	hash, salt := h.Hash([]byte("secret1"))

	if len(hash) != keyLength {
		t.Fatalf("unexpected hash length: %d", len(hash))
	}
	if len(salt) != saltLength {
		t.Fatalf("unexpected salt length: %d", len(salt))
	}
	if !h.Verify([]byte("secret1"), hash, salt) {
		t.Fatalf("Verify failed for the original plaintext")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	t.Parallel()

	h := NewHasher()
	hash, salt := h.Hash([]byte("secret1"))

	if h.Verify([]byte("wrongpass"), hash, salt) {
		t.Fatalf("Verify succeeded for a different plaintext")
	}
	if h.Verify([]byte(""), hash, salt) {
		t.Fatalf("Verify succeeded for an empty plaintext")
	}
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	t.Parallel()

	h := NewHasher()
	hash1, salt1 := h.Hash([]byte("same"))
	hash2, salt2 := h.Hash([]byte("same"))

	if bytes.Equal(salt1, salt2) {
		t.Fatalf("two calls produced the same salt")
	}
	if bytes.Equal(hash1, hash2) {
		t.Fatalf("same plaintext under different salts produced equal hashes")
	}
}

func TestVerify_PlaintextNeverStored(t *testing.T) {
	t.Parallel()

	h := NewHasher()
	hash, _ := h.Hash([]byte("secret1"))
	if bytes.Contains(hash, []byte("secret1")) {
		t.Fatalf("hash contains the plaintext")
	}
}
