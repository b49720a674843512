package errors

import "errors"

// Sentinel errors for the sign-in protocol. Handlers map these onto HTTP
// statuses; services wrap them with context via fmt.Errorf("...: %w", err).
var (
	// ErrInvalidDeviceID means the device identifier is missing or outside
	// the 1-100 character range.
	ErrInvalidDeviceID = errors.New("invalid device id")

	// ErrSessionNotFound means no session matches the given session token or
	// state value.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired means the session's deadline has passed. Distinct
	// from not-found so clients know to start a fresh sign-in.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionConflict means the session was already consumed, or a
	// concurrent caller won the status transition. Retrying the same state is
	// pointless; the client must re-initiate.
	ErrSessionConflict = errors.New("session already processed")

	// ErrInvalidSessionState means the stored status is outside the state
	// machine. Should be unreachable.
	ErrInvalidSessionState = errors.New("invalid session state")

	// ErrStateCollision means a freshly generated state value collided with a
	// live session. Astronomically unlikely with 32 random bytes, but the
	// unique index reports it and we refuse the session rather than alias two
	// handshakes.
	ErrStateCollision = errors.New("state value already in use")

	// ErrTokenNotFound means no token row matches the presented value.
	ErrTokenNotFound = errors.New("token not found")

	// ErrUnauthorized means the bearer token is missing, unknown, expired or
	// revoked.
	ErrUnauthorized = errors.New("invalid or expired token")

	// ErrUserNotFound means the referenced user row does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDeviceNotFound means the referenced device binding does not exist.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrProviderExchange means GitHub failed or returned an unusable
	// response during the code or profile exchange. Terminal for the
	// authorization attempt: the code is single-use and never replayed.
	ErrProviderExchange = errors.New("identity provider exchange failed")
)
