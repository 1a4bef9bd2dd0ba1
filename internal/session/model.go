// Package session owns the operator's authentication state for the Guard
// dashboard. It holds the single in-process session, keeps it consistent
// with a durable slot (Redis) so it survives restarts, and exposes the
// read/write contract the rest of the application consumes. Credential
// verification itself is delegated to a Verifier -- this package never
// sees password hashes.
package session

// Identity is the authenticated operator's minimal profile. Immutable
// once constructed; a re-login replaces it wholesale.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Session is the current authentication state: either unauthenticated or
// bound to exactly one Identity. There is no pending variant -- "still
// loading" is a caller concern, never persisted state.
type Session struct {
	identity *Identity
}

// Unauthenticated returns the empty session.
func Unauthenticated() Session {
	return Session{}
}

// Authenticated returns a session bound to the given identity.
func Authenticated(id Identity) Session {
	return Session{identity: &id}
}

// IsAuthenticated reports whether the session is bound to an identity.
func (s Session) IsAuthenticated() bool {
	return s.identity != nil
}

// Identity returns the bound identity. The second return value is false
// for the unauthenticated session.
func (s Session) Identity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}
