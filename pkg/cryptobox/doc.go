// Package cryptobox seals small secrets with AES-256-GCM for storage.
//
// Every Seal draws a fresh 16-byte IV from crypto/rand. A sealed value is a
// Record holding the IV and the ciphertext (with the GCM tag appended); its wire
// form is simply IV || ciphertext. Records whose IV is not exactly 16 bytes are
// rejected with ErrInvalidIVLength before any decryption is attempted.
//
// Keys are 32 bytes. DeriveKey expands a master key into independent
// per-purpose subkeys with HKDF-SHA-256 so that different stores never share
// key material.
//
// # Usage
//
//	key, _ := cryptobox.GenerateKey()
//	rec, err := cryptobox.Seal(key, []byte("JBSWY3DPEHPK3PXP"))
//	if err != nil {
//	    // handle error
//	}
//	blob := rec.Marshal()
//
//	rec, err = cryptobox.Parse(blob)
//	plain, err := cryptobox.Open(key, rec)
//
// # Error Handling
//
// All functions return errors wrapping a package sentinel such as
// ErrInvalidKey or ErrDecryptionFailed. Use errors.Is to match them.
package cryptobox
