package gateway

// Error codes for gateway domain errors.
const (
	ErrCodeUnauthenticated = "unauthenticated"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeProfileMismatch = "profile_mismatch"
	ErrCodeInvalidName     = "invalid_name"
	ErrCodeAlreadyExists   = "already_exists"
	ErrCodeNotFound        = "not_found"
	ErrCodeForbidden       = "forbidden"
	ErrCodeAuthFailed      = "auth_failed"
)

// Error wraps a machine code and the client-facing message. Messages are the
// exact strings the web client displays, so they stay in French.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func gatewayError(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

var (
	// ErrUnauthenticated means no identity is attached to the connection.
	ErrUnauthenticated = gatewayError(ErrCodeUnauthenticated, "Non authentifié")
	// ErrUnauthorized means the identity's role is insufficient.
	ErrUnauthorized = gatewayError(ErrCodeUnauthorized, "Non autorisé")
	// ErrProfileMismatch means the declared profile differs from the
	// authenticated role.
	ErrProfileMismatch = gatewayError(ErrCodeProfileMismatch, "Profil non autorisé")
	// ErrInvalidName rejects empty or whitespace-only room names.
	ErrInvalidName = gatewayError(ErrCodeInvalidName, "Nom invalide")
	// ErrAlreadyExists rejects duplicate room names.
	ErrAlreadyExists = gatewayError(ErrCodeAlreadyExists, "Chat existe déjà")
	// ErrNotFound means the named room does not exist.
	ErrNotFound = gatewayError(ErrCodeNotFound, "Chat introuvable")
	// ErrForbidden protects the lobby from deletion.
	ErrForbidden = gatewayError(ErrCodeForbidden, "Suppression interdite")
	// ErrAuthFailed means the token could not be verified. It is fatal for
	// the session: the connection is terminated after delivery.
	ErrAuthFailed = gatewayError(ErrCodeAuthFailed, "Token invalide")
)
