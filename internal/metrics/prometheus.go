package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	SessionsInitiatedTotal  prometheus.Counter
	SessionsAuthorizedTotal prometheus.Counter
	SessionsExpiredTotal    prometheus.Counter
	TokensIssuedTotal       prometheus.Counter
	TokensRevokedTotal      prometheus.Counter
	ProviderFailuresTotal   prometheus.Counter
)

// Init registers the auth-flow metrics. Call once at startup.
func Init(reg prometheus.Registerer) {
	SessionsInitiatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "readsync_sessions_initiated_total",
		Help: "Total number of sign-in sessions created.",
	})
	SessionsAuthorizedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "readsync_sessions_authorized_total",
		Help: "Total number of sessions authorized via the provider callback.",
	})
	SessionsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "readsync_sessions_expired_total",
		Help: "Total number of sessions expired by sweep or lazy check.",
	})
	TokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "readsync_tokens_issued_total",
		Help: "Total number of bearer tokens issued.",
	})
	TokensRevokedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "readsync_tokens_revoked_total",
		Help: "Total number of bearer tokens revoked.",
	})
	ProviderFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "readsync_provider_failures_total",
		Help: "Total number of failed exchanges with the identity provider.",
	})

	if reg == nil {
		return
	}
	for _, c := range []prometheus.Collector{
		SessionsInitiatedTotal,
		SessionsAuthorizedTotal,
		SessionsExpiredTotal,
		TokensIssuedTotal,
		TokensRevokedTotal,
		ProviderFailuresTotal,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register metric")
		}
	}
}

func init() {
	// Metrics are usable (but unregistered) even if Init is never called,
	// which keeps unit tests free of registry setup.
	Init(nil)
}
