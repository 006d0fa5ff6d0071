package services

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/repo"
)

// Game metrics. Labels are bounded: action and outcome are fixed sets,
// species is the fixed enumerated list, stage is 0..2.
var (
	gameActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "petbot",
			Name:      "game_actions_total",
			Help:      "Game actions by action and outcome kind.",
		},
		[]string{"action", "outcome"},
	)

	coinsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "petbot",
			Name:      "coins_issued_total",
			Help:      "Coins paid out, by source.",
		},
		[]string{"source"},
	)

	coinsSpent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "petbot",
			Name:      "coins_spent_total",
			Help:      "Coins spent in the shop.",
		},
	)

	evolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "petbot",
			Name:      "evolutions_total",
			Help:      "Pet evolutions by species and new stage.",
		},
		[]string{"species", "stage"},
	)

	worldGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "petbot",
			Name:      "world",
			Help:      "Population snapshot refreshed by the janitor.",
		},
		[]string{"what"},
	)
)

func init() {
	prometheus.MustRegister(gameActions, coinsIssued, coinsSpent, evolutions, worldGauge)
}

// observe records one action's outcome and passes err through.
func observe(action string, err error) error {
	outcome := string(KindOf(err))
	if outcome == "" {
		outcome = "ok"
	}
	gameActions.WithLabelValues(action, outcome).Inc()
	return err
}

func recordEvolution(sp domain.Species, stage int) {
	evolutions.WithLabelValues(string(sp), strconv.Itoa(stage)).Inc()
}

// RecordWorldStats publishes a population snapshot.
func RecordWorldStats(s repo.WorldStats) {
	worldGauge.WithLabelValues("users").Set(float64(s.Users))
	worldGauge.WithLabelValues("pets").Set(float64(s.Pets))
	worldGauge.WithLabelValues("mature_pets").Set(float64(s.MaturePets))
	worldGauge.WithLabelValues("sick_pets").Set(float64(s.SickPets))
	worldGauge.WithLabelValues("coins").Set(float64(s.Coins))
}
