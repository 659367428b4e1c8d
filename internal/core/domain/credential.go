package domain

import "time"

// CredentialClaims are the unverified claims read from a bearer credential.
// The agent never validates signatures; the backend remains the authority.
type CredentialClaims struct {
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the credential expiry is known and has passed.
func (c CredentialClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
