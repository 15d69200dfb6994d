// Package base32 implements the unpadded Base32 text form used for TOTP shared
// secrets by Google Authenticator, 1Password and compatible apps.
//
// Encoding is strict RFC 4648 without padding. Decoding is deliberately lenient
// so that secrets typed by a human ("jbsw y3dp-ehpk 3pxp") are accepted: it is
// case-insensitive, strips spaces and hyphens and skips any symbol outside the
// alphabet instead of returning an error.
//
// # Usage
//
//	text := base32.Encode(secret)       // "JBSWY3DPEHPK3PXP"
//	raw := base32.Decode("jbsw y3dp")   // never fails
package base32
