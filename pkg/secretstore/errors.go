package secretstore

import "errors"

var (
	ErrNotFound          = errors.New("secretstore: secret not found")
	ErrInvalidUserID     = errors.New("secretstore: user id must not be empty")
	ErrInvalidSecret     = errors.New("secretstore: secret must not be empty")
	ErrInvalidKeyFile    = errors.New("secretstore: key file must hold exactly 32 bytes")
	ErrKeyRegenerated    = errors.New("secretstore: key file was missing and has been regenerated")
	ErrCorrupted         = errors.New("secretstore: stored data could not be decrypted")
	ErrStorage           = errors.New("secretstore: storage operation failed")
	ErrUnknownBackend    = errors.New("secretstore: unknown backend")
	ErrBackendNotWired   = errors.New("secretstore: backend connection not provided")
	ErrBackupFailed      = errors.New("secretstore: backup failed")
	ErrRestoreFailed     = errors.New("secretstore: restore failed")
	ErrUnsupportedBackup = errors.New("secretstore: unsupported backup version")
)
