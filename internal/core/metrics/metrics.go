package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumni_registrations_total",
			Help: "Registrations by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumni_auth_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	identifierRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumni_identifier_retries_total",
			Help: "Identifier collisions that triggered a retry",
		},
		[]string{"role"},
	)
)

// role 标签只取已知角色，客户端乱填的值一律记为 unknown，避免序列数失控
func roleLabel(role string) string {
	switch role {
	case "student", "alumni", "admin":
		return role
	}
	return "unknown"
}

func RecordRegistration(role, outcome string) {
	registrationsTotal.WithLabelValues(roleLabel(role), outcome).Inc()
}

func RecordAuthAttempt(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	authAttemptsTotal.WithLabelValues(outcome).Inc()
}

func RecordIdentifierRetry(role string) {
	identifierRetriesTotal.WithLabelValues(roleLabel(role)).Inc()
}
