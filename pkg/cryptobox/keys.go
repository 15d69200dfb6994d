package cryptobox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the required key length for AES-256.
const KeySize = 32

// ValidateKey checks that key has the correct length.
func ValidateKey(key []byte) error {
	if len(key) != KeySize {
		return ErrInvalidKey
	}
	return nil
}

// GenerateKey creates a new random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// DeriveKey expands master into a 32-byte subkey bound to info.
// Different info strings yield unrelated keys. The caller owns the returned
// slice and should Wipe it when done.
func DeriveKey(master []byte, info string) ([]byte, error) {
	if err := ValidateKey(master); err != nil {
		return nil, err
	}

	r := hkdf.New(sha256.New, master, nil, []byte(info))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}

	return key, nil
}

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	clear(b)
}
