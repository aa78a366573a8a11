// Package cryptox seals small secrets for local storage.
//
// Keys are derived with argon2id; payloads are JSON-encoded and sealed with
// AES-256-GCM. A sealed blob is nonce || ciphertext, so it can be stored as a
// single value.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys returned by DeriveKey.
const KeySize = 32

// ErrMalformed is returned by Open when the blob is too short to hold a nonce.
var ErrMalformed = errors.New("sealed blob is malformed")

// DeriveKey stretches secret with salt into a KeySize-byte key.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

// MakeVerifier returns a value that can be stored to check a derived key
// later without storing the key itself.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// VerifierMatches compares two verifiers in constant time.
func VerifierMatches(saved, candidate []byte) bool {
	return len(saved) > 0 && subtle.ConstantTimeCompare(saved, candidate) == 1
}

// Seal marshals v to JSON and encrypts it with key.
func Seal(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal and unmarshals it into v.
func Open(blob, key []byte, v any) error {
	aead, err := newGCM(key)
	if err != nil {
		return err
	}

	ns := aead.NonceSize()
	if len(blob) < ns {
		return ErrMalformed
	}

	plaintext, err := aead.Open(nil, blob[:ns], blob[ns:], nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
