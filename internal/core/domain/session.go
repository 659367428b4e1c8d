package domain

// Session is the authenticated state of the local viewer.
// A nil *Session means signed out.
type Session struct {
	Credential string   `json:"credential"`
	Identity   Identity `json:"identity"`
}

// Clone returns a detached copy so callers cannot mutate the stored session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// IdentityID reports the identity id, or 0 when signed out.
func (s *Session) IdentityID() int64 {
	if s == nil {
		return 0
	}
	return s.Identity.ID
}

// HasCredential reports whether the session carries a bearer credential.
func (s *Session) HasCredential() bool {
	return s != nil && s.Credential != ""
}

// WithCredential returns a copy carrying a renewed credential and the same identity.
func (s *Session) WithCredential(credential string) *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Credential = credential
	return &cp
}

// SessionChange describes a transition applied by the session store.
type SessionChange struct {
	Previous *Session
	Current  *Session
	// IdentityChanged is true when the viewer id differs or the session was destroyed.
	IdentityChanged bool
}

// NewSessionChange classifies a transition between two sessions.
func NewSessionChange(prev, next *Session) SessionChange {
	nextID := next.IdentityID()
	return SessionChange{
		Previous:        prev.Clone(),
		Current:         next.Clone(),
		IdentityChanged: nextID == 0 || prev.IdentityID() != nextID,
	}
}
