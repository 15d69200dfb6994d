package secretstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/otpgate/pkg/cryptobox"
)

// keyInfo separates the store subkey from any other key derived from the
// same master key.
const keyInfo = "otpgate-secretstore-v1"

// LoadOrCreateKey reads the 32-byte master key at path. When the file does not
// exist a new random key is written with owner-only permissions and created
// is true. Data sealed under a previous key is unreadable after that.
func LoadOrCreateKey(path string) (key []byte, created bool, err error) {
	key, err = os.ReadFile(path)
	switch {
	case err == nil:
		if len(key) != cryptobox.KeySize {
			cryptobox.Wipe(key)
			return nil, false, ErrInvalidKeyFile
		}
		return key, false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, false, errors.Join(ErrStorage, err)
	}

	key, err = cryptobox.GenerateKey()
	if err != nil {
		return nil, false, errors.Join(ErrStorage, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, false, errors.Join(ErrStorage, err)
	}
	// O_EXCL so two processes racing on first start cannot both write a key.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		cryptobox.Wipe(key)
		if errors.Is(err, fs.ErrExist) {
			return LoadOrCreateKey(path)
		}
		return nil, false, errors.Join(ErrStorage, err)
	}
	if _, err := f.Write(key); err != nil {
		_ = f.Close()
		cryptobox.Wipe(key)
		return nil, false, errors.Join(ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		cryptobox.Wipe(key)
		return nil, false, errors.Join(ErrStorage, err)
	}

	return key, true, nil
}

// sealer encrypts values under the store subkey.
type sealer struct {
	key []byte
}

func newSealer(masterKey []byte) (sealer, error) {
	key, err := cryptobox.DeriveKey(masterKey, keyInfo)
	if err != nil {
		return sealer{}, err
	}
	return sealer{key: key}, nil
}

func (s sealer) seal(plaintext []byte) (cryptobox.Record, error) {
	return cryptobox.Seal(s.key, plaintext)
}

func (s sealer) open(rec cryptobox.Record) ([]byte, error) {
	return cryptobox.Open(s.key, rec)
}

func (s sealer) wipe() {
	cryptobox.Wipe(s.key)
}
