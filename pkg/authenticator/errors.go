package authenticator

import "errors"

var (
	ErrInvalidUserID       = errors.New("authenticator: user id is required")
	ErrSecretAlreadyExists = errors.New("authenticator: secret already configured for user")
	ErrSecretNotFound      = errors.New("authenticator: no secret configured for user")
	ErrSecretGeneration    = errors.New("authenticator: failed to generate secret")
	ErrStorage             = errors.New("authenticator: secret storage failed")
	ErrProvisioning        = errors.New("authenticator: failed to build provisioning data")
	ErrVault               = errors.New("authenticator: failed to start vault")
)
