// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package action defines the actions actors can take and the rules that
// validate and apply them.
//
// Every action goes through two phases. Validate reads the world and either
// rejects the action or returns a Commit holding the exact mutation to
// perform. Nothing changes until Commit.Apply is called, so callers may
// validate speculatively and discard the result.
package action

import (
	"encoding/json"

	"github.com/samber/oops"

	"github.com/holomush/turnsim/internal/world"
)

// Kind tags an action variant.
type Kind string

// Action kinds.
const (
	KindMove Kind = "move"
	KindNoop Kind = "noop"
)

// Action is an immutable request by an actor. The set of variants is closed.
type Action interface {
	Kind() Kind
	ActorID() string
	isAction()
}

// Move steps an actor one cell in a direction.
type Move struct {
	Actor     string          `json:"actor"`
	Direction world.Direction `json:"direction"`
}

// Kind returns KindMove.
func (Move) Kind() Kind { return KindMove }

// ActorID returns the moving actor.
func (m Move) ActorID() string { return m.Actor }

func (Move) isAction() {}

// Noop spends a turn doing nothing for Duration time units.
type Noop struct {
	Actor    string `json:"actor"`
	Duration int    `json:"duration"`
}

// Kind returns KindNoop.
func (Noop) Kind() Kind { return KindNoop }

// ActorID returns the waiting actor.
func (n Noop) ActorID() string { return n.Actor }

func (Noop) isAction() {}

type envelope struct {
	Kind Kind `json:"kind"`
}

// Encode marshals a to JSON with its kind tag.
func Encode(a Action) ([]byte, error) {
	var v any
	switch a := a.(type) {
	case Move:
		v = struct {
			Kind Kind `json:"kind"`
			Move
		}{a.Kind(), a}
	case Noop:
		v = struct {
			Kind Kind `json:"kind"`
			Noop
		}{a.Kind(), a}
	default:
		return nil, oops.Code(CodeUnknownAction).With("type", a).Errorf("unknown action type %T", a)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, oops.Code(CodeInvalidAction).Wrap(err)
	}
	return data, nil
}

// Decode unmarshals an action produced by Encode.
func Decode(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, oops.Code(CodeInvalidAction).Wrap(err)
	}
	switch env.Kind {
	case KindMove:
		var m Move
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, oops.Code(CodeInvalidAction).With("kind", env.Kind).Wrap(err)
		}
		if _, _, ok := m.Direction.Delta(); !ok {
			return nil, oops.Code(CodeInvalidAction).
				With("kind", env.Kind).
				With("direction", string(m.Direction)).
				Errorf("invalid direction %q", string(m.Direction))
		}
		return m, nil
	case KindNoop:
		var n Noop
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, oops.Code(CodeInvalidAction).With("kind", env.Kind).Wrap(err)
		}
		return n, nil
	default:
		return nil, oops.Code(CodeUnknownAction).With("kind", env.Kind).Errorf("unknown action kind %q", env.Kind)
	}
}
