package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pagemark/readsync/domain"
	serrors "github.com/pagemark/readsync/errors"
	"github.com/pagemark/readsync/internal/metrics"
	"github.com/pagemark/readsync/internal/provider"
)

// ProviderClient is the identity-provider surface the orchestrator needs:
// build the authorization URL, exchange the code, fetch the profile.
type ProviderClient interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*provider.Profile, error)
}

// InitiateResult is what the device receives when it starts a sign-in.
type InitiateResult struct {
	SessionToken string    `json:"session_token"`
	AuthURL      string    `json:"auth_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// CompleteResult is the outcome of a provider callback, used only to render
// the terminal browser page. No device token is minted here; the device picks
// its credential up on the next poll.
type CompleteResult struct {
	User   *domain.User
	Device *domain.Device
}

// PollResult is the device's view of its session. UserToken and UserInfo are
// set once Status is authorized.
type PollResult struct {
	Status    domain.SessionStatus `json:"status"`
	UserToken string               `json:"user_token,omitempty"`
	UserInfo  *domain.UserInfo     `json:"user_info,omitempty"`
}

// TokenResult pairs a freshly issued token with its owner's public profile.
type TokenResult struct {
	UserToken string          `json:"user_token"`
	UserInfo  domain.UserInfo `json:"user_info"`
}

// AuthService orchestrates the delegated sign-in protocol: the device
// initiates and polls, the browser completes, and issued bearer tokens are
// rotated and revoked here.
type AuthService struct {
	sessions *SessionService
	tokens   *TokenService
	users    *UserService
	devices  *DeviceService
	provider ProviderClient
}

func NewAuthService(
	sessions *SessionService,
	tokens *TokenService,
	users *UserService,
	devices *DeviceService,
	providerClient ProviderClient,
) *AuthService {
	return &AuthService{
		sessions: sessions,
		tokens:   tokens,
		users:    users,
		devices:  devices,
		provider: providerClient,
	}
}

// Initiate creates a pending session for the device and returns the URL the
// user must open on a browser-capable device.
func (a *AuthService) Initiate(ctx context.Context, deviceID string) (*InitiateResult, error) {
	session, err := a.sessions.Create(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	metrics.SessionsInitiatedTotal.Inc()

	return &InitiateResult{
		SessionToken: session.SessionToken,
		AuthURL:      a.provider.AuthorizeURL(session.State),
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

// Complete handles the provider redirect: it rebinds the callback to its
// session via state, performs both provider exchanges, upserts the user,
// binds the device and moves the session to authorized. The session is
// single-use; a replayed callback or a lost transition race yields
// ErrSessionConflict.
func (a *AuthService) Complete(ctx context.Context, code, state string) (*CompleteResult, error) {
	session, err := a.sessions.FindByState(ctx, state)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now()) {
		a.expireSession(ctx, session)
		return nil, serrors.ErrSessionExpired
	}

	if session.Status != domain.SessionStatusPending {
		log.Warn().
			Str("session_id", session.ID).
			Str("status", string(session.Status)).
			Msg("callback for already processed session")
		return nil, serrors.ErrSessionConflict
	}

	// Either provider leg failing is terminal: the authorization code is
	// single-use, so the session is burned rather than left open for a retry
	// that can never succeed.
	providerToken, err := a.provider.ExchangeCode(ctx, code)
	if err != nil {
		a.failProviderExchange(ctx, session, err)
		return nil, err
	}

	profile, err := a.provider.FetchProfile(ctx, providerToken)
	if err != nil {
		a.failProviderExchange(ctx, session, err)
		return nil, err
	}

	user, err := a.users.UpsertFromProfile(ctx, profile)
	if err != nil {
		return nil, err
	}

	device, err := a.devices.Bind(ctx, session.DeviceID, user.ID)
	if err != nil {
		return nil, err
	}

	ok, err := a.sessions.Transition(ctx, session, domain.SessionStatusAuthorized, user.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another callback for the same state landed first.
		return nil, serrors.ErrSessionConflict
	}

	metrics.SessionsAuthorizedTotal.Inc()

	log.Info().
		Str("session_id", session.ID).
		Str("user_id", user.ID).
		Str("device_id", session.DeviceID).
		Msg("sign-in authorized")

	return &CompleteResult{User: user, Device: device}, nil
}

// Poll reports the session's progress to the waiting device. Once the session
// is authorized, every successful poll mints a fresh bearer token; issuance
// is additive, so losing the authorized-to-completed transition race to a
// concurrent poll does not invalidate the token either caller received.
func (a *AuthService) Poll(ctx context.Context, sessionToken string) (*PollResult, error) {
	session, err := a.sessions.FindByToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now()) {
		a.expireSession(ctx, session)
		return nil, serrors.ErrSessionExpired
	}

	switch session.Status {
	case domain.SessionStatusPending:
		return &PollResult{Status: domain.SessionStatusPending}, nil

	case domain.SessionStatusAuthorized, domain.SessionStatusCompleted:
		user, err := a.users.GetByID(ctx, session.UserID)
		if err != nil {
			return nil, err
		}

		token, err := a.tokens.Issue(ctx, user.ID)
		if err != nil {
			return nil, err
		}

		if session.Status == domain.SessionStatusAuthorized {
			if _, err := a.sessions.Transition(ctx, session, domain.SessionStatusCompleted, ""); err != nil {
				log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to mark session completed")
			}
		}

		if err := a.devices.Touch(ctx, session.DeviceID); err != nil && !errors.Is(err, serrors.ErrDeviceNotFound) {
			log.Warn().Err(err).Str("device_id", session.DeviceID).Msg("failed to touch device")
		}

		info := user.Info()
		return &PollResult{
			Status:    domain.SessionStatusAuthorized,
			UserToken: token.Token,
			UserInfo:  &info,
		}, nil

	case domain.SessionStatusExpired:
		return nil, serrors.ErrSessionExpired

	default:
		return nil, serrors.ErrInvalidSessionState
	}
}

// Refresh rotates a bearer token: the presented token is revoked and a new
// one issued in its place.
func (a *AuthService) Refresh(ctx context.Context, bearer string) (*TokenResult, error) {
	userID, err := a.tokens.Validate(ctx, bearer)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := a.tokens.Revoke(ctx, userID, bearer); err != nil {
		return nil, err
	}

	token, err := a.tokens.Issue(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &TokenResult{UserToken: token.Token, UserInfo: user.Info()}, nil
}

// Logout signs the user out everywhere: the presented token and every other
// token the user holds are revoked.
func (a *AuthService) Logout(ctx context.Context, bearer string) error {
	userID, err := a.tokens.Validate(ctx, bearer)
	if err != nil {
		return err
	}

	if _, err := a.tokens.RevokeAll(ctx, userID); err != nil {
		return err
	}

	return nil
}

// expireSession force-moves a session found past its deadline to expired. A
// false transition result means the sweep (or a concurrent reader) got there
// first, which is fine.
func (a *AuthService) expireSession(ctx context.Context, session *domain.AuthSession) {
	if _, err := a.sessions.Transition(ctx, session, domain.SessionStatusExpired, ""); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to expire session")
		return
	}
	metrics.SessionsExpiredTotal.Inc()
}

func (a *AuthService) failProviderExchange(ctx context.Context, session *domain.AuthSession, cause error) {
	log.Error().Err(cause).Str("session_id", session.ID).Msg("identity provider exchange failed")
	metrics.ProviderFailuresTotal.Inc()
	a.expireSession(ctx, session)
}
