// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import "github.com/prometheus/client_golang/prometheus"

const (
	turnActed    = "acted"
	turnFallback = "fallback"
	turnSkipped  = "skipped"

	stopPaused    = "paused"
	stopExhausted = "exhausted"
)

// Turns counts actor turns by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Turns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "turnsim_sim_turns_total",
		Help: "Total number of actor turns taken by the simulation driver",
	},
	[]string{"outcome"},
)

// Passes counts simulation passes by how they stopped.
// Use RegisterMetrics to register this with a Prometheus registry.
var Passes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "turnsim_sim_passes_total",
		Help: "Total number of simulation passes",
	},
	[]string{"stop"},
)

// Resyncs counts resyncs by direction.
// Use RegisterMetrics to register this with a Prometheus registry.
var Resyncs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "turnsim_sim_resyncs_total",
		Help: "Total number of level resyncs",
	},
	[]string{"direction"},
)

// RegisterMetrics registers sim package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Turns)
	reg.MustRegister(Passes)
	reg.MustRegister(Resyncs)
}

func recordTurn(outcome string) {
	Turns.WithLabelValues(outcome).Inc()
}

func recordPass(stop string) {
	Passes.WithLabelValues(stop).Inc()
}

func recordResync(direction string) {
	Resyncs.WithLabelValues(direction).Inc()
}
