package gateway

// Role is the closed set of privilege levels a connection can authenticate as.
// RoleAdmin can do everything RoleUser can, plus manage rooms and see the
// full directory.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Identity is attached to a connection after successful authentication.
type Identity struct {
	Email string
	Role  Role
}

// TokenVerifier validates an opaque credential and returns the identity it
// encodes. Verification failure covers invalid signatures, malformed tokens
// and expiry alike.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// VerifierFunc adapts a plain function to the TokenVerifier interface.
type VerifierFunc func(token string) (Identity, error)

// Verify implements TokenVerifier.
func (f VerifierFunc) Verify(token string) (Identity, error) {
	return f(token)
}
