// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/turnsim/pkg/errutil"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{in: "n", want: North},
		{in: "North", want: North},
		{in: " southwest ", want: SouthWest},
		{in: "SE", want: SouthEast},
		{in: "here", want: Here},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDirection_Invalid(t *testing.T) {
	_, err := ParseDirection("up")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, CodeInvalidDirection)
}

func TestDirection_Delta(t *testing.T) {
	dx, dy, ok := North.Delta()
	require.True(t, ok)
	assert.Equal(t, 0, dx)
	assert.Equal(t, -1, dy)

	_, _, ok = Direction("x").Delta()
	assert.False(t, ok)
}

func TestPosition_Translate(t *testing.T) {
	p := Position{X: 5, Y: 5}
	assert.Equal(t, Position{X: 5, Y: 4}, p.Translate(North))
	assert.Equal(t, Position{X: 4, Y: 6}, p.Translate(SouthWest))
	assert.Equal(t, p, p.Translate(Here))
	assert.Equal(t, p, p.Translate(Direction("bogus")))
}
