package session

import (
	"context"
	"time"
)

// CodeVerifier checks a one-time code submitted for userID.
type CodeVerifier interface {
	VerifyCode(ctx context.Context, userID, code string) bool
}

// CodeVerifierFunc adapts a function to CodeVerifier.
type CodeVerifierFunc func(ctx context.Context, userID, code string) bool

// VerifyCode calls f.
func (f CodeVerifierFunc) VerifyCode(ctx context.Context, userID, code string) bool {
	return f(ctx, userID, code)
}

// KeyVault holds the ephemeral session keys. *vault.Vault implements it.
type KeyVault interface {
	Put(data []byte, ttl time.Duration) (string, error)
	Get(id string) ([]byte, bool)
	Delete(id string) bool
}
