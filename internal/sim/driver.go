// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package sim runs the simulation loop: it takes turns from the scheduler,
// lets each entity's behavior pick an action and applies it through the rule
// engine, collecting the produced effects until a pause condition or
// exhaustion.
//
// A pass never blocks and cannot be cancelled; the pause condition and the
// scheduler contents bound the work it does.
package sim

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/turnsim/internal/action"
	"github.com/holomush/turnsim/internal/effect"
	"github.com/holomush/turnsim/internal/logging"
	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/scheduler"
	"github.com/holomush/turnsim/internal/world"
)

var tracer = otel.Tracer("turnsim/sim")

// Result describes how a pass ended.
type Result struct {
	// Effects are every effect produced during the pass, in order.
	Effects []effect.Effect
	// Paused is the id the pass stopped on. The id is the scheduler's
	// current actor and has not acted.
	Paused string
	// Exhausted is set when the scheduler ran out of actors.
	Exhausted bool
	// Turns counts the actor turns consumed, including skipped ones.
	Turns int
}

// Driver runs simulation passes. A Driver holds no simulation state and can
// be reused across levels and schedulers.
type Driver struct {
	engine    *action.Engine
	fallback  Behavior
	behaviors map[string]Behavior
	animator  effect.Animator
}

// Option configures a Driver.
type Option func(*Driver)

// WithBehavior registers b under name. Entities select it through their
// behavior component.
func WithBehavior(name string, b Behavior) Option {
	return func(d *Driver) {
		d.behaviors[name] = b
	}
}

// WithDefaultBehavior sets the behavior used by entities without a known
// behavior component. The default is RandomWalk.
func WithDefaultBehavior(b Behavior) Option {
	return func(d *Driver) {
		d.fallback = b
	}
}

// WithAnimator binds produced effects to a for playback.
func WithAnimator(a effect.Animator) Option {
	return func(d *Driver) {
		d.animator = a
	}
}

// NewDriver creates a driver that applies actions through engine.
func NewDriver(engine *action.Engine, opts ...Option) *Driver {
	d := &Driver{
		engine:    engine,
		behaviors: make(map[string]Behavior),
	}
	walk := RandomWalk{Engine: engine}
	d.behaviors[BehaviorRandomWalk] = walk
	d.fallback = walk
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Engine returns the rule engine the driver applies actions through.
func (d *Driver) Engine() *action.Engine { return d.engine }

// Env builds the rule environment for a pass over level and sched.
func (d *Driver) Env(level *world.Level, sched *scheduler.Scheduler, random rng.Source) action.Env {
	return action.Env{World: level, Clock: sched, RNG: random, Animator: d.animator}
}

// Run takes turns from sched until pause reports true for the next id or
// the scheduler is exhausted. Ids not present on level are skipped but
// still consume their turn. With skipEffects set, produced effects resolve
// immediately. A nil pause never pauses.
func (d *Driver) Run(
	ctx context.Context,
	level *world.Level,
	sched *scheduler.Scheduler,
	random rng.Source,
	pause PauseFunc,
	skipEffects bool,
) Result {
	ctx, span := tracer.Start(ctx, "sim.run",
		trace.WithAttributes(
			attribute.String("level.id", level.ID),
			attribute.Int("sim.start_time", sched.Time()),
			attribute.Bool("sim.skip_effects", skipEffects),
		),
	)
	defer span.End()

	if pause == nil {
		pause = Never
	}
	env := d.Env(level, sched, random)

	var res Result
	for {
		id, ok := sched.Next()
		if !ok {
			res.Exhausted = true
			break
		}
		if pause(id) {
			res.Paused = id
			break
		}
		if id == resyncMarker {
			continue
		}
		res.Turns++
		res.Effects = append(res.Effects, d.act(logging.WithTurn(ctx, sched.Time(), id), level, id, env, skipEffects)...)
	}

	stop := stopPaused
	if res.Exhausted {
		stop = stopExhausted
	}
	recordPass(stop)
	span.SetAttributes(
		attribute.Int("sim.end_time", sched.Time()),
		attribute.Int("sim.turns", res.Turns),
		attribute.Int("sim.effects", len(res.Effects)),
		attribute.String("sim.stop", stop),
	)
	slog.DebugContext(ctx, "simulation pass finished",
		"level", level.ID,
		"time", sched.Time(),
		"turns", res.Turns,
		"effects", len(res.Effects),
		"paused", res.Paused,
		"exhausted", res.Exhausted,
	)
	return res
}

// Act applies one turn for id outside of Run, such as a player action
// chosen by the caller. It falls back to a one unit wait when a is
// rejected and reports whether a itself was applied. A nil action applies
// nothing.
func (d *Driver) Act(
	ctx context.Context,
	level *world.Level,
	sched *scheduler.Scheduler,
	random rng.Source,
	a action.Action,
	skipEffects bool,
) ([]effect.Effect, bool) {
	if a == nil {
		return nil, false
	}
	env := d.Env(level, sched, random)
	ctx = logging.WithTurn(ctx, sched.Time(), a.ActorID())
	if effects, ok := d.engine.Apply(a, env, skipEffects); ok {
		recordTurn(turnActed)
		return effects, true
	}
	slog.DebugContext(ctx, "action rejected, waiting instead", "kind", a.Kind())
	recordTurn(turnFallback)
	effects, _ := d.engine.Apply(action.Noop{Actor: a.ActorID(), Duration: 1}, env, skipEffects)
	return effects, false
}

func (d *Driver) act(ctx context.Context, level *world.Level, id string, env action.Env, skipEffects bool) []effect.Effect {
	if !level.Has(id) {
		slog.DebugContext(ctx, "skipping turn of absent entity")
		recordTurn(turnSkipped)
		return nil
	}

	chosen := d.behaviorFor(ctx, level, id).Choose(id, env)
	if chosen == nil || chosen.ActorID() != id {
		chosen = action.Noop{Actor: id, Duration: 1}
	}
	if effects, ok := d.engine.Apply(chosen, env, skipEffects); ok {
		recordTurn(turnActed)
		return effects
	}

	slog.DebugContext(ctx, "action rejected, waiting instead", "kind", chosen.Kind())
	recordTurn(turnFallback)
	effects, _ := d.engine.Apply(action.Noop{Actor: id, Duration: 1}, env, skipEffects)
	return effects
}

func (d *Driver) behaviorFor(ctx context.Context, level *world.Level, id string) Behavior {
	var name string
	ok, err := level.Entities.Component(id, world.ComponentBehavior, &name)
	if err != nil {
		slog.DebugContext(ctx, "unreadable behavior component", "error", err)
	}
	if !ok || name == "" {
		return d.fallback
	}
	if b, found := d.behaviors[name]; found {
		return b
	}
	slog.DebugContext(ctx, "unknown behavior, using default", "behavior", name)
	return d.fallback
}
