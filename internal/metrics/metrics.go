// Package metrics holds the server's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OnlinePlayers is the current session count, excluding the bot.
	OnlinePlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bancho",
		Name:      "online_players",
		Help:      "Number of players with an open session.",
	})

	// ActiveMatches is the number of live multiplayer rooms.
	ActiveMatches = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bancho",
		Name:      "active_matches",
		Help:      "Number of live multiplayer matches.",
	})

	// Logins counts successful login handshakes.
	Logins = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bancho",
		Name:      "logins_total",
		Help:      "Successful logins since start.",
	})

	// Pingouts counts sessions closed by the idle sweep.
	Pingouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bancho",
		Name:      "pingouts_total",
		Help:      "Sessions dropped for not pinging.",
	})

	// PacketsHandled counts dispatched client frames.
	PacketsHandled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bancho",
		Name:      "packets_handled_total",
		Help:      "Client packets dispatched to a handler.",
	})

	// RequestDuration observes the session endpoint's latency.
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bancho",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving a session request.",
		Buckets:   prometheus.DefBuckets,
	})
)
