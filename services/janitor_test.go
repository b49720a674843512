package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pagemark/readsync/cache"
)

func TestJanitorRunOnce(t *testing.T) {
	sessions := new(MockAuthSessionRepository)
	tokens := new(MockTokenRepository)

	sessions.On("SweepExpiredSessions", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(2), nil)
	tokens.On("PurgeExpiredTokens", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(5), nil)

	janitor := NewJanitor(
		NewSessionService(sessions, 5*time.Minute),
		NewTokenService(tokens, cache.NewMemoryTokenStore(), "ur_", 2*time.Hour),
	)
	janitor.RunOnce(context.Background())

	sessions.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestJanitorRunOnceSweepFailureStillPurges(t *testing.T) {
	sessions := new(MockAuthSessionRepository)
	tokens := new(MockTokenRepository)

	sessions.On("SweepExpiredSessions", mock.Anything, mock.Anything).
		Return(int64(0), errors.New("storage down"))
	tokens.On("PurgeExpiredTokens", mock.Anything, mock.Anything).
		Return(int64(1), nil)

	janitor := NewJanitor(
		NewSessionService(sessions, 5*time.Minute),
		NewTokenService(tokens, cache.NewMemoryTokenStore(), "ur_", 2*time.Hour),
	)
	janitor.RunOnce(context.Background())

	tokens.AssertExpectations(t)
}

func TestJanitorRunStopsOnCancel(t *testing.T) {
	sessions := new(MockAuthSessionRepository)
	tokens := new(MockTokenRepository)

	sessions.On("SweepExpiredSessions", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	tokens.On("PurgeExpiredTokens", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

	janitor := NewJanitor(
		NewSessionService(sessions, 5*time.Minute),
		NewTokenService(tokens, cache.NewMemoryTokenStore(), "ur_", 2*time.Hour),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after context cancellation")
	}
}
