// Package totp implements the time-based one-time password engine (RFC 6238)
// used to verify codes produced by authenticator apps.
//
// An Engine is bound to one shared secret and exposes the building blocks of
// the algorithm: Counter maps a point in time to a step number, Code computes
// the HOTP value (RFC 4226, HMAC-SHA1 with dynamic truncation) for a counter,
// and Validate accepts a submitted code if it matches the previous, current or
// next step, tolerating one step of clock skew in either direction.
//
// Validation is stateless, so a code stays usable for its whole tolerance
// window. Services that need single-use codes can pair the engine with a
// ReplayGuard, which rejects any counter at or below the last one accepted for
// the same user.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret()
//
//	uri, _ := totp.ProvisioningURI(totp.ProvisioningParams{
//	    Secret:      base32.Encode(secret),
//	    AccountName: "alice",
//	    Issuer:      "Acme",
//	})
//
//	engine, err := totp.New(secret)
//	if err != nil {
//	    // ErrMissingSecret: empty key material
//	}
//	defer engine.Wipe()
//
//	ok := engine.Validate("123456", time.Now())
//
// # Error Handling
//
// Construction and provisioning return package sentinels (ErrMissingSecret,
// ErrInvalidDigits, ErrMissingIssuer, ...) that can be matched with errors.Is.
// Validation itself never fails: a malformed code is simply not valid.
package totp
