// Package password implements one-way salted hashing and constant-time
// verification of passwords using argon2id.
package password

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/confideapp/confide/internal/shared"
)

// argon2id parameters: time=1, memory=64MiB, threads=4, 32-byte key.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	keyLength    = 32
	saltLength   = 16
)

// Hasher derives and verifies password hashes. It holds no state and is
// safe for concurrent use.
type Hasher struct{}

func NewHasher() *Hasher {
	return &Hasher{}
}

// Hash derives an argon2id hash of plaintext under a fresh random salt and
// returns both. The plaintext is not retained.
func (h *Hasher) Hash(plaintext []byte) (hash, salt []byte) {
	salt = shared.GenerateRandByteArray(saltLength)
	hash = argon2.IDKey(plaintext, salt, argonTime, argonMemory, argonThreads, keyLength)
	return hash, salt
}

// Verify recomputes the hash of plaintext under the stored salt and compares
// it to the stored hash in constant time.
func (h *Hasher) Verify(plaintext, hash, salt []byte) bool {
	candidate := argon2.IDKey(plaintext, salt, argonTime, argonMemory, argonThreads, keyLength)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}
