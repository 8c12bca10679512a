// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import "github.com/prometheus/client_golang/prometheus"

// Validation outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeUnmapped = "unmapped"
)

// Validations counts action validations by kind and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Validations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "turnsim_action_validations_total",
		Help: "Total number of action validations",
	},
	[]string{"kind", "outcome"},
)

// Commits counts applied actions by kind.
// Use RegisterMetrics to register this with a Prometheus registry.
var Commits = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "turnsim_action_commits_total",
		Help: "Total number of applied actions",
	},
	[]string{"kind"},
)

// EffectsProduced counts effects returned by applied actions.
// Use RegisterMetrics to register this with a Prometheus registry.
var EffectsProduced = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "turnsim_action_effects_total",
		Help: "Total number of effects produced by applied actions",
	},
	[]string{"kind"},
)

// RegisterMetrics registers action package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Validations)
	reg.MustRegister(Commits)
	reg.MustRegister(EffectsProduced)
}

func recordValidation(kind Kind, outcome string) {
	Validations.WithLabelValues(string(kind), outcome).Inc()
}

func recordCommit(kind Kind, effects int) {
	Commits.WithLabelValues(string(kind)).Inc()
	EffectsProduced.WithLabelValues(string(kind)).Add(float64(effects))
}
