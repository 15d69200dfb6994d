package totp

import (
	"net/url"
	"regexp"
	"strings"
)

// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
var ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

// ProvisioningParams contains the fields of an otpauth:// provisioning URI.
type ProvisioningParams struct {
	Secret      string // Base32-encoded shared secret (required)
	AccountName string // Label shown in the authenticator app (required)
	Issuer      string // Service name displayed in authenticator apps (required)
}

// Validate ensures all required provisioning parameters are present and valid
func (p ProvisioningParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// ProvisioningURI builds the URI consumed by authenticator apps:
//
//	otpauth://totp/<accountLabel>?secret=<Base32Secret>&issuer=<issuerName>
//
// The account label and issuer are percent-encoded. Field names and order are
// fixed for compatibility with existing enrolments.
func ProvisioningURI(p ProvisioningParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("otpauth://totp/")
	sb.WriteString(percentEncode(p.AccountName))
	sb.WriteString("?secret=")
	sb.WriteString(p.Secret)
	sb.WriteString("&issuer=")
	sb.WriteString(percentEncode(p.Issuer))

	return sb.String(), nil
}

// percentEncode escapes s as a URI component, using %20 rather than '+' for spaces.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
