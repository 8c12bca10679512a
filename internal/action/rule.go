// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"github.com/samber/oops"

	"github.com/holomush/turnsim/internal/effect"
	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/world"
)

// World is the part of a level the built-in rules read and mutate.
type World interface {
	Has(id string) bool
	PositionOf(id string) (world.Position, bool)
	Translate(p world.Position, d world.Direction) (world.Position, bool)
	Blocked(p world.Position) bool
	Occupied(p world.Position) bool
	MoveEntity(id string, p world.Position) error
}

// Clock is the part of the scheduler a rule may touch while the acting
// entity's turn is open.
type Clock interface {
	Time() int
	SetDuration(n int)
}

// Env is everything a rule may consult. Validate must only read it.
type Env struct {
	World    World
	Clock    Clock
	RNG      rng.Source
	Animator effect.Animator
}

// Rule validates one kind of action.
type Rule interface {
	// Validate returns a commit when a is legal in env. It must not mutate
	// env.World, env.Clock or env.RNG.
	Validate(a Action, env Env) (*Commit, bool)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(a Action, env Env) (*Commit, bool)

// Validate calls f.
func (f RuleFunc) Validate(a Action, env Env) (*Commit, bool) { return f(a, env) }

// ApplyFunc performs a validated mutation. When skipEffects is true any
// returned effects must already be complete.
type ApplyFunc func(skipEffects bool) []effect.Effect

// Commit is a validated action waiting to be applied. It can be applied once.
type Commit struct {
	action Action
	apply  ApplyFunc
	used   bool
}

// NewCommit pairs a with the mutation that performs it.
func NewCommit(a Action, apply ApplyFunc) *Commit {
	return &Commit{action: a, apply: apply}
}

// Action returns the action this commit applies.
func (c *Commit) Action() Action { return c.action }

// Applied reports whether Apply has run.
func (c *Commit) Applied() bool { return c.used }

// Apply performs the mutation and returns its effects in order.
// Applying a commit twice panics.
func (c *Commit) Apply(skipEffects bool) []effect.Effect {
	if c.used {
		panic(oops.Code(CodeCommitReused).
			With("kind", c.action.Kind()).
			With("actor", c.action.ActorID()).
			Errorf("commit already applied"))
	}
	c.used = true
	if c.apply == nil {
		return nil
	}
	return c.apply(skipEffects)
}
