package secretstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"filippo.io/age"
)

const backupVersion = 1

type backupFile struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Secrets   map[string]string `json:"secrets"`
}

// Backup writes every readable secret of s to w as age-encrypted JSON and
// returns the number of secrets exported. Unreadable entries are skipped.
func Backup(ctx context.Context, s Store, w io.Writer, recipients ...age.Recipient) (int, error) {
	if len(recipients) == 0 {
		return 0, errors.Join(ErrBackupFailed, errors.New("no recipients"))
	}

	users, err := s.Users(ctx)
	if err != nil {
		return 0, errors.Join(ErrBackupFailed, err)
	}

	file := backupFile{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC(),
		Secrets:   make(map[string]string, len(users)),
	}
	for _, userID := range users {
		secret, err := s.GetSecret(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, errors.Join(ErrBackupFailed, err)
		}
		file.Secrets[userID] = secret
	}

	enc, err := age.Encrypt(w, recipients...)
	if err != nil {
		return 0, errors.Join(ErrBackupFailed, err)
	}
	if err := json.NewEncoder(enc).Encode(file); err != nil {
		_ = enc.Close()
		return 0, errors.Join(ErrBackupFailed, err)
	}
	if err := enc.Close(); err != nil {
		return 0, errors.Join(ErrBackupFailed, err)
	}

	return len(file.Secrets), nil
}

// Restore imports a backup produced by Backup into s and returns the number
// of secrets written. Users that already have a secret are skipped unless
// overwrite is true.
func Restore(ctx context.Context, s Store, r io.Reader, overwrite bool, identities ...age.Identity) (int, error) {
	if len(identities) == 0 {
		return 0, errors.Join(ErrRestoreFailed, errors.New("no identities"))
	}

	dec, err := age.Decrypt(r, identities...)
	if err != nil {
		return 0, errors.Join(ErrRestoreFailed, err)
	}

	var file backupFile
	if err := json.NewDecoder(dec).Decode(&file); err != nil {
		return 0, errors.Join(ErrRestoreFailed, err)
	}
	if file.Version != backupVersion {
		return 0, ErrUnsupportedBackup
	}

	restored := 0
	for userID, secret := range file.Secrets {
		if !overwrite {
			exists, err := s.HasSecret(ctx, userID)
			if err != nil {
				return restored, errors.Join(ErrRestoreFailed, err)
			}
			if exists {
				continue
			}
		}
		if err := s.StoreSecret(ctx, userID, secret); err != nil {
			return restored, errors.Join(ErrRestoreFailed, err)
		}
		restored++
	}

	return restored, nil
}

// ParseRecipient parses an age X25519 public key ("age1...").
func ParseRecipient(s string) (age.Recipient, error) {
	return age.ParseX25519Recipient(s)
}

// ParseIdentity parses an age X25519 private key ("AGE-SECRET-KEY-1...").
func ParseIdentity(s string) (age.Identity, error) {
	return age.ParseX25519Identity(s)
}
