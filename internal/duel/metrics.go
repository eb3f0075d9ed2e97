package duel

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MovesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_moves_total",
			Help: "Accepted duel moves",
		},
	)
	OffTurnTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_off_turn_rejections_total",
			Help: "Moves rejected because it was not the sender's turn",
		},
	)
	SettlementsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_settlements_total",
			Help: "Duel sessions settled (wager paid out exactly once each)",
		},
	)
)

func init() {
	prometheus.MustRegister(MovesTotal, OffTurnTotal, SettlementsTotal)
}
