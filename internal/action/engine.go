// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"log/slog"
	"sync"

	"github.com/holomush/turnsim/internal/effect"
)

// Engine dispatches actions to the rule registered for their kind.
// It is safe for concurrent registration and lookup.
type Engine struct {
	rules map[Kind]Rule
	mu    sync.RWMutex
}

// NewEngine creates an engine with the built-in move and noop rules.
func NewEngine(opts ...Option) *Engine {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	e := NewEmptyEngine()
	e.Register(KindMove, MoveRule{MinDuration: cfg.moveMin, MaxDuration: cfg.moveMax})
	e.Register(KindNoop, NoopRule{})
	return e
}

// NewEmptyEngine creates an engine with no rules.
func NewEmptyEngine() *Engine {
	return &Engine{rules: make(map[Kind]Rule)}
}

// Register maps kind to rule. A later registration for the same kind wins
// and a warning is logged.
func (e *Engine) Register(kind Kind, rule Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.rules[kind]; ok {
		slog.Warn("rule conflict: overwriting existing rule", "kind", kind)
	}
	e.rules[kind] = rule
}

// Rule returns the rule for kind.
func (e *Engine) Rule(kind Kind) (Rule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	r, ok := e.rules[kind]
	return r, ok
}

// Validate checks a against its rule. Actions with no rule are rejected.
func (e *Engine) Validate(a Action, env Env) (*Commit, bool) {
	if a == nil {
		return nil, false
	}
	r, ok := e.Rule(a.Kind())
	if !ok {
		recordValidation(a.Kind(), OutcomeUnmapped)
		return nil, false
	}
	c, ok := r.Validate(a, env)
	if !ok || c == nil {
		recordValidation(a.Kind(), OutcomeRejected)
		return nil, false
	}
	recordValidation(a.Kind(), OutcomeAccepted)
	return c, true
}

// Apply validates a and applies the commit if it is legal. It returns the
// produced effects and whether the action was applied.
func (e *Engine) Apply(a Action, env Env, skipEffects bool) ([]effect.Effect, bool) {
	c, ok := e.Validate(a, env)
	if !ok {
		return nil, false
	}
	effects := c.Apply(skipEffects)
	recordCommit(a.Kind(), len(effects))
	return effects, true
}

// Option configures the built-in rules of NewEngine.
type Option func(*options)

type options struct {
	moveMin int
	moveMax int
}

func defaultOptions() options {
	return options{moveMin: DefaultMoveMinDuration, moveMax: DefaultMoveMaxDuration}
}

// WithMoveDuration sets the inclusive range a move's duration is drawn from.
func WithMoveDuration(minDuration, maxDuration int) Option {
	return func(o *options) {
		o.moveMin = minDuration
		o.moveMax = maxDuration
	}
}
