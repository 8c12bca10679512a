// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"github.com/holomush/turnsim/internal/action"
	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/world"
)

// BehaviorRandomWalk is the registered name of RandomWalk.
const BehaviorRandomWalk = "random_walk"

// Behavior chooses the action an entity takes on its turn. It must only
// read env; the driver validates and applies the returned action.
type Behavior interface {
	Choose(id string, env action.Env) action.Action
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(id string, env action.Env) action.Action

// Choose calls f.
func (f BehaviorFunc) Choose(id string, env action.Env) action.Action { return f(id, env) }

// RandomWalk steps in a random direction that the engine accepts, or waits
// one time unit when boxed in.
type RandomWalk struct {
	Engine *action.Engine
}

// Choose implements Behavior.
func (w RandomWalk) Choose(id string, env action.Env) action.Action {
	var open []world.Direction
	for _, d := range world.Compass {
		if _, ok := w.Engine.Validate(action.Move{Actor: id, Direction: d}, env); ok {
			open = append(open, d)
		}
	}
	if env.RNG != nil {
		if d, ok := rng.Pick(env.RNG, open); ok {
			return action.Move{Actor: id, Direction: d}
		}
	}
	return action.Noop{Actor: id, Duration: 1}
}

// Wait always waits Duration time units.
type Wait struct {
	Duration int
}

// Choose implements Behavior.
func (w Wait) Choose(id string, _ action.Env) action.Action {
	return action.Noop{Actor: id, Duration: w.Duration}
}
