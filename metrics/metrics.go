// Package metrics exposes Prometheus collectors for the raffle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesTotal counts accepted raffle entries
	EntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raffle_entries_total",
		Help: "Total number of accepted raffle entries",
	})

	// DrawsTotal counts successfully triggered draws
	DrawsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raffle_draws_total",
		Help: "Total number of draws triggered",
	})

	// FulfillmentsTotal counts completed randomness callbacks
	FulfillmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raffle_fulfillments_total",
		Help: "Total number of randomness callbacks that resolved a round",
	})

	// PayoutUnitsTotal counts units paid out to winners
	PayoutUnitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raffle_payout_units_total",
		Help: "Total units paid out to winners",
	})

	// TriggerMisfiresTotal counts draw attempts rejected by the eligibility check
	TriggerMisfiresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raffle_trigger_misfires_total",
		Help: "Total number of draw attempts rejected as not eligible",
	})
)
