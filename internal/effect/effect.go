// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package effect describes the visible consequences of committed actions and
// orders them for playback.
//
// Effects are transient. Their descriptive fields are plain data, but the
// function that plays one back is never serialized; a restored effect plays
// back immediately.
package effect

import (
	"encoding/json"
	"slices"
)

// Kind controls whether an effect may overlap with others during playback.
type Kind string

// Effect kinds.
const (
	// Sync effects play alone: everything before them finishes first and
	// nothing after them starts until they finish.
	Sync Kind = "sync"
	// Async effects may play alongside other async effects that touch
	// different participants.
	Async Kind = "async"
)

// Effect is one playable consequence of a committed action.
type Effect struct {
	Kind         Kind            `json:"kind"`
	Name         string          `json:"name"`
	Participants []string        `json:"participants,omitempty"`
	Timestamp    int             `json:"timestamp"`
	Payload      json.RawMessage `json:"payload,omitempty"`

	run func(done func())
}

// Animator plays effects back. Animate must call done exactly once when the
// effect has finished and should return without waiting for it.
type Animator interface {
	Animate(e Effect, done func())
}

// AnimatorFunc adapts a function to Animator.
type AnimatorFunc func(e Effect, done func())

// Animate calls f.
func (f AnimatorFunc) Animate(e Effect, done func()) {
	f(e, done)
}

// New creates an effect. The payload is marshaled to JSON; a payload that
// cannot be marshaled is dropped.
func New(kind Kind, name string, timestamp int, payload any, participants ...string) Effect {
	e := Effect{
		Kind:         kind,
		Name:         name,
		Participants: slices.Clone(participants),
		Timestamp:    timestamp,
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			e.Payload = raw
		}
	}
	return e
}

// Bind attaches playback through a to e. With skip set, or a nil animator,
// the effect resolves immediately when run.
func Bind(e Effect, a Animator, skip bool) Effect {
	if skip || a == nil {
		e.run = nil
		return e
	}
	e.run = func(done func()) { a.Animate(e, done) }
	return e
}

// Immediate reports whether running e completes synchronously without an
// animator.
func (e Effect) Immediate() bool {
	return e.run == nil
}

// Run plays e back and calls done when it finishes.
func (e Effect) Run(done func()) {
	if e.run == nil {
		done()
		return
	}
	e.run(done)
}
