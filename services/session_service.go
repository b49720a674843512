package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pagemark/readsync/domain"
	serrors "github.com/pagemark/readsync/errors"
)

const stateByteLength = 32

// SessionService owns the delegated sign-in session: creation with fresh
// entropy, the two point lookups, the conditional status transition and the
// expiry sweep.
type SessionService struct {
	repo domain.AuthSessionRepository
	ttl  time.Duration
}

// NewSessionService creates a SessionService. ttl is the session lifetime
// from creation to its absolute deadline.
func NewSessionService(repo domain.AuthSessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{repo: repo, ttl: ttl}
}

// generateState returns a hex-encoded random value used to rebind the
// provider callback to its session. Independent of the session token: the
// browser leg and the polling leg never share a credential.
func generateState() (string, error) {
	b := make([]byte, stateByteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create validates the device identifier and persists a new pending session.
func (s *SessionService) Create(ctx context.Context, deviceID string) (*domain.AuthSession, error) {
	if len(deviceID) == 0 || len(deviceID) > 100 {
		return nil, serrors.ErrInvalidDeviceID
	}

	state, err := generateState()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.AuthSession{
		ID:           uuid.NewString(),
		SessionToken: uuid.NewString(),
		State:        state,
		DeviceID:     deviceID,
		Status:       domain.SessionStatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID).
		Str("device_id", deviceID).
		Time("expires_at", session.ExpiresAt).
		Msg("sign-in session created")

	return session, nil
}

// FindByToken looks a session up by the token the polling device holds.
func (s *SessionService) FindByToken(ctx context.Context, sessionToken string) (*domain.AuthSession, error) {
	return s.repo.GetSessionByToken(ctx, sessionToken)
}

// FindByState looks a session up by the state value carried through the
// provider redirect.
func (s *SessionService) FindByState(ctx context.Context, state string) (*domain.AuthSession, error) {
	return s.repo.GetSessionByState(ctx, state)
}

// Transition conditionally moves the session to newStatus. Reports false when
// the persisted status is not a valid predecessor, which includes losing a
// race to a concurrent writer.
func (s *SessionService) Transition(ctx context.Context, session *domain.AuthSession, newStatus domain.SessionStatus, userID string) (bool, error) {
	return s.repo.TransitionSession(ctx, session.ID, newStatus, userID)
}

// SweepExpired bulk-expires sessions past their deadline.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.SweepExpiredSessions(ctx, time.Now().UTC())
}
