// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	turnKindActor = "actor"
	turnKindTick  = "tick"
)

// turnsTotal counts turns handed out by Next, split by actor turns and ticks.
// Use RegisterMetrics to register this with a Prometheus registry.
var turnsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "turnsim_scheduler_turns_total",
		Help: "Total number of scheduler turns by kind",
	},
	[]string{"kind"},
)

// RegisterMetrics registers scheduler metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(turnsTotal)
}
