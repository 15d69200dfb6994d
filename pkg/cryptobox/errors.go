package cryptobox

import "errors"

var (
	ErrInvalidKey          = errors.New("invalid key: must be 32 bytes")
	ErrInvalidIVLength     = errors.New("invalid iv length: must be 16 bytes")
	ErrInvalidCiphertext   = errors.New("invalid ciphertext format")
	ErrEncryptionFailed    = errors.New("encryption failed")
	ErrDecryptionFailed    = errors.New("decryption failed")
	ErrKeyDerivationFailed = errors.New("key derivation failed")
)
