package cryptobox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// IVSize is the length of the per-record initialization vector.
const IVSize = 16

// Record is one sealed value.
type Record struct {
	IV         []byte
	Ciphertext []byte
}

// Marshal returns the wire form IV || ciphertext.
func (r Record) Marshal() []byte {
	out := make([]byte, 0, len(r.IV)+len(r.Ciphertext))
	out = append(out, r.IV...)
	return append(out, r.Ciphertext...)
}

// Wipe zeroes the IV and ciphertext in place.
func (r Record) Wipe() {
	clear(r.IV)
	clear(r.Ciphertext)
}

// Parse splits a wire-form blob into a Record. The returned record shares
// memory with data.
func Parse(data []byte) (Record, error) {
	if len(data) < IVSize {
		return Record{}, ErrInvalidIVLength
	}
	return Record{IV: data[:IVSize], Ciphertext: data[IVSize:]}, nil
}

// Seal encrypts plaintext under key with a fresh random IV.
func Seal(key, plaintext []byte) (Record, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return Record{}, errors.Join(ErrEncryptionFailed, err)
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Record{}, errors.Join(ErrEncryptionFailed, err)
	}

	return Record{
		IV:         iv,
		Ciphertext: aead.Seal(nil, iv, plaintext, nil),
	}, nil
}

// Open authenticates and decrypts rec under key.
func Open(key []byte, rec Record) ([]byte, error) {
	if len(rec.IV) != IVSize {
		return nil, ErrInvalidIVLength
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	if len(rec.Ciphertext) < aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}

	plaintext, err := aead.Open(make([]byte, 0, len(rec.Ciphertext)), rec.IV, rec.Ciphertext, nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// Encrypt seals plaintext and returns its wire form.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	rec, err := Seal(key, plaintext)
	if err != nil {
		return nil, err
	}
	return rec.Marshal(), nil
}

// Decrypt parses and opens a wire-form blob produced by Encrypt.
func Decrypt(key, data []byte) ([]byte, error) {
	rec, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Open(key, rec)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, IVSize)
}
