// Package metrics exposes Prometheus collectors for the authorization
// core and a standalone metrics listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "leadline"

var (
	// AuthDecisionsTotal counts terminal authorization outcomes per
	// request: outcome is "allow" or "deny", reason is the stable
	// denial reason key ("" for allows).
	AuthDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Terminal authorization decisions by outcome and denial reason.",
	}, []string{"outcome", "reason"})

	// CredentialSourceTotal counts which credential source won the
	// precedence race for a request.
	CredentialSourceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_source_total",
		Help:      "Requests by resolved credential source.",
	}, []string{"source"})

	// TokenVerificationsTotal counts token verification results.
	TokenVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Token verification attempts by result.",
	}, []string{"result"})

	// PrincipalBuildDuration observes the store round trips behind a
	// full principal build including tenant derivation.
	PrincipalBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "principal_build_duration_seconds",
		Help:      "Time to build a request principal from the user store.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// LoginsTotal counts password login attempts by result.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Password login attempts by result.",
	}, []string{"result"})
)
