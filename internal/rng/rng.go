// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package rng provides the deterministic random number generator used by the
// simulation.
//
// # Determinism
//
// Two generators created with the same seed, or restored from the same
// State, produce identical sequences for identical call sequences. Replaying
// history during resync depends on this.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"

	"github.com/samber/oops"
)

// CodeInvalidState is returned when a generator state cannot be restored.
const CodeInvalidState = "RNG_INVALID_STATE"

// stream is mixed into the seed to derive the second PCG word.
const stream = 0x9e3779b97f4a7c15

// Source is the part of the generator the simulation core consumes.
type Source interface {
	// IntegerInRange returns a uniformly distributed integer in [lo, hi].
	IntegerInRange(lo, hi int) int
}

// State is the serializable form of a generator.
type State struct {
	PCG []byte `json:"pcg"`
}

// RNG is a seedable PCG generator. It is not safe for concurrent use.
type RNG struct {
	pcg *rand.PCG
	r   *rand.Rand
}

// New creates a generator from seed.
func New(seed uint64) *RNG {
	pcg := rand.NewPCG(seed, seed^stream)
	return &RNG{pcg: pcg, r: rand.New(pcg)}
}

// NewSeed draws a seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, oops.In("rng").Wrapf(err, "read random seed")
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// IntegerInRange returns a uniformly distributed integer in [lo, hi].
// The bounds may be given in either order.
func (g *RNG) IntegerInRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + g.r.IntN(hi-lo+1)
}

// State captures the generator position.
func (g *RNG) State() State {
	b, err := g.pcg.MarshalBinary()
	if err != nil {
		// PCG.MarshalBinary cannot fail.
		panic(oops.In("rng").Wrap(err))
	}
	return State{PCG: b}
}

// Restore moves the generator to a previously captured position.
func (g *RNG) Restore(s State) error {
	if err := g.pcg.UnmarshalBinary(s.PCG); err != nil {
		return oops.In("rng").Code(CodeInvalidState).With("length", len(s.PCG)).Wrap(err)
	}
	return nil
}

// Clone returns an independent generator at the same position.
func (g *RNG) Clone() *RNG {
	c := New(0)
	if err := c.Restore(g.State()); err != nil {
		panic(err)
	}
	return c
}

// Pick returns a uniformly chosen element of items.
// It returns false without consuming randomness when items is empty.
func Pick[T any](src Source, items []T) (T, bool) {
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[src.IntegerInRange(0, len(items)-1)], true
}
