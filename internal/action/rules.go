// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"github.com/samber/oops"

	"github.com/holomush/turnsim/internal/effect"
	"github.com/holomush/turnsim/internal/world"
)

// Default move duration range.
const (
	DefaultMoveMinDuration = 1
	DefaultMoveMaxDuration = 3
)

// EffectMove names the effect emitted by a successful move.
const EffectMove = "move"

// MovePayload is the payload of a move effect.
type MovePayload struct {
	From world.Position `json:"from"`
	To   world.Position `json:"to"`
}

// MoveRule accepts a move onto an in-bounds, open, unoccupied neighbor.
// The turn's duration is drawn from [MinDuration, MaxDuration] on commit.
type MoveRule struct {
	MinDuration int
	MaxDuration int
}

// Validate implements Rule.
func (r MoveRule) Validate(a Action, env Env) (*Commit, bool) {
	m, ok := a.(Move)
	if !ok || env.World == nil {
		return nil, false
	}
	from, ok := env.World.PositionOf(m.Actor)
	if !ok {
		return nil, false
	}
	to, ok := env.World.Translate(from, m.Direction)
	if !ok || to == from {
		return nil, false
	}
	if env.World.Blocked(to) || env.World.Occupied(to) {
		return nil, false
	}

	return NewCommit(m, func(skipEffects bool) []effect.Effect {
		if err := env.World.MoveEntity(m.Actor, to); err != nil {
			panic(oops.Code(CodeStaleCommit).
				With("actor", m.Actor).
				With("to", to.String()).
				With("cause", err.Error()).
				Errorf("move commit no longer applies"))
		}
		now := 0
		if env.Clock != nil {
			if env.RNG != nil {
				env.Clock.SetDuration(env.RNG.IntegerInRange(r.MinDuration, r.MaxDuration))
			}
			now = env.Clock.Time()
		}
		e := effect.New(effect.Async, EffectMove, now, MovePayload{From: from, To: to}, m.Actor)
		return []effect.Effect{effect.Bind(e, env.Animator, skipEffects)}
	}), true
}

// NoopRule accepts every noop. Committing it sets the turn's duration.
type NoopRule struct{}

// Validate implements Rule.
func (NoopRule) Validate(a Action, env Env) (*Commit, bool) {
	n, ok := a.(Noop)
	if !ok {
		return nil, false
	}
	return NewCommit(n, func(bool) []effect.Effect {
		if env.Clock != nil {
			env.Clock.SetDuration(n.Duration)
		}
		return nil
	}), true
}
