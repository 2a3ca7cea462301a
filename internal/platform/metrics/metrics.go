package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Colectores del engine de matching. Se exponen en GET /metrics.
var (
	MatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_matches_created_total",
		Help: "Matches candidatos creados (no incluye rescoring de pares existentes).",
	})

	MatchTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_match_transitions_total",
		Help: "Transiciones de estado aplicadas a matches.",
	}, []string{"action"})

	NotificationsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_notifications_dispatched_total",
		Help: "Notificaciones de match encoladas.",
	})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_notification_failures_total",
		Help: "Fallos de dispatch de notificaciones (logueados y tragados).",
	})

	SweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_sweep_runs_total",
		Help: "Corridas completadas del sweep periódico.",
	})
)
