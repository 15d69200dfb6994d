package session

import "time"

// Session is a snapshot of a live session.
type Session struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	StartedAt      time.Time `json:"started_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`

	// VaultID references the session's ephemeral key, empty when no vault is configured.
	VaultID string `json:"-"`
}

// ExpiredAt reports whether the session is past its expiry at now.
// A session expires exactly at ExpiresAt.
func (s Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Result is the outcome of Manager.Create.
type Result struct {
	OK        bool      `json:"ok"`
	SessionID string    `json:"session_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Message   string    `json:"message,omitempty"`
}

func failure(msg string) Result {
	return Result{Message: msg}
}
