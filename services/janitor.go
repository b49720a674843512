package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pagemark/readsync/internal/metrics"
)

// Janitor periodically expires stale sessions and purges dead tokens. It is
// storage hygiene only: lazy expiry checks on every read keep the protocol
// correct even if the janitor never runs.
type Janitor struct {
	sessions *SessionService
	tokens   *TokenService
}

func NewJanitor(sessions *SessionService, tokens *TokenService) *Janitor {
	return &Janitor{sessions: sessions, tokens: tokens}
}

// RunOnce performs a single sweep. Safe to call concurrently with any other
// operation: it only moves already logically dead rows into their terminal
// state.
func (j *Janitor) RunOnce(ctx context.Context) {
	expired, err := j.sessions.SweepExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("session sweep failed")
	} else if expired > 0 {
		metrics.SessionsExpiredTotal.Add(float64(expired))
		log.Info().Int64("count", expired).Msg("expired stale sessions")
	}

	purged, err := j.tokens.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("token purge failed")
	} else if purged > 0 {
		log.Info().Int64("count", purged).Msg("purged expired tokens")
	}
}

// Run sweeps on the given interval until the context is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}
