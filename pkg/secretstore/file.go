package secretstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/otpgate/pkg/cryptobox"
)

const backendFile = "file"

// FileStore keeps the whole table in one encrypted file laid out as
// IV || ciphertext of a JSON object {userID: base32Secret}.
// Every mutation rewrites the file through a temporary file and rename.
type FileStore struct {
	path   string
	sealer sealer
	opts   options
	mu     sync.Mutex
}

// NewFileStore opens the table at path sealed under a subkey of masterKey.
// The file is created on the first write.
func NewFileStore(path string, masterKey []byte, opts ...Option) (*FileStore, error) {
	s, err := newSealer(masterKey)
	if err != nil {
		return nil, err
	}
	return &FileStore{
		path:   path,
		sealer: s,
		opts:   newOptions(opts),
	}, nil
}

// Path returns the location of the data file.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) StoreSecret(ctx context.Context, userID, secret string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if secret == "" {
		return ErrInvalidSecret
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	table, err := f.load(ctx, true)
	if err != nil {
		return err
	}
	table[userID] = secret
	return f.save(table)
}

func (f *FileStore) GetSecret(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	table, err := f.load(ctx, false)
	if err != nil {
		return "", err
	}
	secret, ok := table[userID]
	if !ok {
		return "", ErrNotFound
	}
	return secret, nil
}

func (f *FileStore) HasSecret(ctx context.Context, userID string) (bool, error) {
	return hasSecret(ctx, f, userID)
}

func (f *FileStore) RemoveSecret(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	table, err := f.load(ctx, true)
	if err != nil {
		return err
	}
	if _, ok := table[userID]; !ok {
		return nil
	}
	delete(table, userID)
	return f.save(table)
}

func (f *FileStore) Users(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table, err := f.load(ctx, false)
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(table))
	for id := range table {
		users = append(users, id)
	}
	slices.Sort(users)
	return users, nil
}

// Close wipes the store subkey. The store must not be used afterwards.
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sealer.wipe()
	return nil
}

// load reads and decrypts the table. A missing file is an empty table.
// Undecryptable content is reported as corruption and also yields an empty
// table; when the caller is about to overwrite it, the unreadable file is
// first moved aside so it can be recovered by hand.
// Must be called with f.mu held.
func (f *FileStore) load(ctx context.Context, forWrite bool) (map[string]string, error) {
	blob, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, errors.Join(ErrStorage, err)
	}

	table, err := f.decode(blob)
	if err == nil {
		return table, nil
	}

	f.opts.corrupted(ctx, backendFile, "", err)
	if forWrite {
		aside := fmt.Sprintf("%s.corrupt-%d", f.path, time.Now().UnixNano())
		if err := os.Rename(f.path, aside); err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		f.opts.logger.WarnContext(ctx, "moved unreadable secret store aside",
			"path", aside)
	}

	return map[string]string{}, nil
}

func (f *FileStore) decode(blob []byte) (map[string]string, error) {
	plain, err := cryptobox.Decrypt(f.sealer.key, blob)
	if err != nil {
		return nil, errors.Join(ErrCorrupted, err)
	}
	defer cryptobox.Wipe(plain)

	table := map[string]string{}
	if err := json.Unmarshal(plain, &table); err != nil {
		return nil, errors.Join(ErrCorrupted, err)
	}
	return table, nil
}

// save seals table and atomically replaces the data file.
// Must be called with f.mu held.
func (f *FileStore) save(table map[string]string) error {
	plain, err := json.Marshal(table)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	defer cryptobox.Wipe(plain)

	rec, err := f.sealer.seal(plain)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Join(ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorage, err)
	}
	if _, err := tmp.Write(rec.Marshal()); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Join(ErrStorage, err)
	}

	return nil
}
