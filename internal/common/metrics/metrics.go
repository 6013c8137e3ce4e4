package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Total number of conversation turns handled",
		},
		[]string{"tenant", "channel", "mode", "intent"},
	)

	ClarifiersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_clarifiers_total",
			Help: "Total number of turns answered with a clarifier",
		},
		[]string{"tenant", "intent"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_turn_duration_seconds",
			Help: "Duration of turn processing in seconds",
		},
		[]string{"tenant", "mode"},
	)

	RenderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_render_fallbacks_total",
			Help: "Total strategy rewrite failures recovered with the safe draft",
		},
		[]string{"tenant", "mode"},
	)

	StoreReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_store_reloads_total",
			Help: "Total tenant document reloads by outcome",
		},
		[]string{"tenant", "doc", "outcome"},
	)

	SessionReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_session_reads_total",
			Help: "Session key reads by outcome (hit, miss, expired)",
		},
		[]string{"outcome"},
	)
)
