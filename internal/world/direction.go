// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package world contains the level geometry and entity store consumed by the
// rule engine.
//
// Entities are ids with components keyed by string name. Component values are
// stored as JSON so that the whole level is plain data: it can be captured,
// compared byte for byte and restored without knowing every component type.
//
// Example:
//
//	grid, err := world.ParseGrid([]string{
//		"#####",
//		"#...#",
//		"#####",
//	})
//	level := world.NewLevel("crypt-1", grid)
//	err = level.Spawn("goblin", world.Position{X: 1, Y: 1}, nil)
package world

import (
	"strings"

	"github.com/samber/oops"
)

// Direction is a compass direction, or Here for no displacement.
type Direction string

// Directions.
const (
	North     Direction = "n"
	NorthEast Direction = "ne"
	East      Direction = "e"
	SouthEast Direction = "se"
	South     Direction = "s"
	SouthWest Direction = "sw"
	West      Direction = "w"
	NorthWest Direction = "nw"
	Here      Direction = "here"
)

// Compass lists the eight movement directions clockwise from North.
var Compass = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var deltas = map[Direction][2]int{
	North:     {0, -1},
	NorthEast: {1, -1},
	East:      {1, 0},
	SouthEast: {1, 1},
	South:     {0, 1},
	SouthWest: {-1, 1},
	West:      {-1, 0},
	NorthWest: {-1, -1},
	Here:      {0, 0},
}

var longNames = map[string]Direction{
	"north":     North,
	"northeast": NorthEast,
	"east":      East,
	"southeast": SouthEast,
	"south":     South,
	"southwest": SouthWest,
	"west":      West,
	"northwest": NorthWest,
}

// String returns the short form of the direction.
func (d Direction) String() string {
	return string(d)
}

// Delta returns the x and y displacement of one step in d.
func (d Direction) Delta() (dx, dy int, ok bool) {
	v, ok := deltas[d]
	return v[0], v[1], ok
}

// Validate checks that the direction is a recognized value.
func (d Direction) Validate() error {
	if _, ok := deltas[d]; !ok {
		return oops.Code(CodeInvalidDirection).With("direction", string(d)).Errorf("invalid direction %q", string(d))
	}
	return nil
}

// ParseDirection accepts short ("ne") and long ("northeast") names in any case.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := longNames[s]; ok {
		return d, nil
	}
	d := Direction(s)
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}
