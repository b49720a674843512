package domain

import (
	"context"
	"time"
)

// AuthSessionRepository persists delegated sign-in sessions.
type AuthSessionRepository interface {
	// CreateSession inserts a new pending session. Returns
	// errors.ErrStateCollision if the state value is already in use.
	CreateSession(ctx context.Context, session *AuthSession) error

	GetSessionByToken(ctx context.Context, sessionToken string) (*AuthSession, error)
	GetSessionByState(ctx context.Context, state string) (*AuthSession, error)

	// TransitionSession conditionally moves a session to newStatus. The update
	// is a single compare-and-set against the stored status: it succeeds only
	// if the persisted status is a valid predecessor of newStatus, and reports
	// false on any mismatch, including lost races. userID is bound when moving
	// to authorized; pass "" to leave it untouched.
	TransitionSession(ctx context.Context, sessionID string, newStatus SessionStatus, userID string) (bool, error)

	// SweepExpiredSessions marks every pending or authorized session whose
	// deadline has passed as expired and returns how many were updated.
	SweepExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// UserRepository persists user accounts keyed by their GitHub identity.
type UserRepository interface {
	// UpsertByGithubUID creates the user on first sign-in or refreshes
	// username, avatar and last-login time on subsequent ones. Returns the
	// stored user either way.
	UpsertByGithubUID(ctx context.Context, githubUID, username, avatarURL string) (*User, error)

	GetUserByID(ctx context.Context, id string) (*User, error)
}

// DeviceRepository persists device-to-user bindings.
type DeviceRepository interface {
	// BindDevice creates the binding for deviceID or reassigns it to userID
	// if it already belongs to someone else. Last writer wins.
	BindDevice(ctx context.Context, deviceID, userID string) (*Device, error)

	GetDeviceByDeviceID(ctx context.Context, deviceID string) (*Device, error)

	// TouchDevice updates the device's last-activity time.
	TouchDevice(ctx context.Context, deviceID string) error
}

// TokenRepository persists issued bearer tokens.
type TokenRepository interface {
	SaveToken(ctx context.Context, token *UserToken) error

	// GetTokenByValue looks up a token row by its opaque value, whether or
	// not it is still valid. Returns errors.ErrTokenNotFound on miss.
	GetTokenByValue(ctx context.Context, value string) (*UserToken, error)

	// RevokeToken sets the revocation time on the token if it belongs to
	// userID and is not already revoked. Reports whether a row was updated.
	RevokeToken(ctx context.Context, userID, value string) (bool, error)

	// RevokeAllTokens revokes every unrevoked token of the user and returns
	// the values it revoked, so the caller can invalidate cached validation
	// results even for tokens it never observed.
	RevokeAllTokens(ctx context.Context, userID string) ([]string, error)

	// PurgeExpiredTokens physically deletes tokens past their expiry.
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
