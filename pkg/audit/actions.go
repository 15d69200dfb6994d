package audit

// Actions emitted by the authenticator core.
const (
	ActionTOTPSetup         = "totp.setup"
	ActionTOTPReset         = "totp.reset"
	ActionTOTPRemoved       = "totp.removed"
	ActionTOTPValidation    = "totp.validation"
	ActionSessionCreated    = "session.created"
	ActionSessionValidated  = "session.validated"
	ActionSessionTerminated = "session.terminated"
	ActionSessionExpired    = "session.expired"
	ActionSecurityViolation = "security.violation"
	ActionStorageCorrupted  = "storage.corrupted"
	ActionSystemError       = "system.error"
)
