package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the credential lifecycle counters.
type Metrics struct {
	Registrations    *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	TokenValidations *prometheus.CounterVec
	PasswordResets   *prometheus.CounterVec
	ResetTokens      prometheus.Counter
}

// New creates and registers the auth metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_registrations_total",
			Help: "Registration attempts by result",
		}, []string{"result"}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		TokenValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_token_validations_total",
			Help: "Token validations by result",
		}, []string{"result"}),
		PasswordResets: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_password_resets_total",
			Help: "Password reset attempts by result",
		}, []string{"result"}),
		ResetTokens: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_reset_tokens_issued_total",
			Help: "Password-reset tokens issued",
		}),
	}
}

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)
