package domain

import "time"

// Session correlates the opaque http-only cookie value with an authenticated
// user. Version pins the user's session_version at login time; a mismatch on
// read invalidates the session (bumped when 2FA is disabled).
type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Version   int       `json:"session_version"`
	ExpiresAt time.Time `json:"expire"`
}

// Expired uses the embedded timestamp so a session past its expiry is treated
// as nonexistent even if the store has not physically dropped it yet.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// TempToken bridges the password step and the TOTP step of a 2FA login. It is
// consumed exactly once, on successful verification.
type TempToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expire"`
}

func (t *TempToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
