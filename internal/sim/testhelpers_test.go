// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holomush/turnsim/internal/scheduler"
	"github.com/holomush/turnsim/internal/world"
)

var roomRows = []string{
	"#######",
	"#.....#",
	"#.....#",
	"#.....#",
	"#.....#",
	"#.....#",
	"#######",
}

func newRoom(t *testing.T) *world.Level {
	t.Helper()
	grid, err := world.ParseGrid(roomRows)
	require.NoError(t, err)
	return world.NewLevel("room", grid)
}

// newPopulatedRoom spawns three wandering monsters and schedules them.
func newPopulatedRoom(t *testing.T) (*world.Level, *scheduler.Scheduler) {
	t.Helper()
	level := newRoom(t)
	sched := scheduler.New()
	for i, m := range []struct {
		id  string
		pos world.Position
	}{
		{"goblin", world.Position{X: 1, Y: 1}},
		{"rat", world.Position{X: 5, Y: 5}},
		{"bat", world.Position{X: 3, Y: 3}},
	} {
		require.NoError(t, level.Spawn(m.id, m.pos, nil))
		sched.Add(m.id, true, i+1)
	}
	return level, sched
}

// schedulerAt returns an empty scheduler whose clock reads t.
func schedulerAt(t *testing.T, time int) *scheduler.Scheduler {
	t.Helper()
	s := scheduler.New()
	if time == 0 {
		return s
	}
	s.Add("clock", false, time)
	id, ok := s.Next()
	require.True(t, ok)
	require.Equal(t, "clock", id)
	s.Remove("clock")
	require.Equal(t, time, s.Time())
	return s
}

func levelJSON(t *testing.T, level *world.Level) string {
	t.Helper()
	data, err := json.Marshal(level.State())
	require.NoError(t, err)
	return string(data)
}
