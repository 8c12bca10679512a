// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/turnsim/internal/config"
	"github.com/holomush/turnsim/internal/snapshot"
	"github.com/holomush/turnsim/internal/world"
)

// execute runs the root command with args and an isolated XDG environment.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func field(t *testing.T, output, name string) string {
	t.Helper()
	m := regexp.MustCompile(name + `=(\S+)`).FindStringSubmatch(output)
	require.NotNil(t, m, "output %q has no %s", output, name)
	return m[1]
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	output, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"simulate", "resync", "schema"} {
		assert.Contains(t, output, sub, "help missing %q command", sub)
	}
	assert.Contains(t, output, "--config")
	assert.Contains(t, output, "--seed")
}

func TestSchemaCommand(t *testing.T) {
	output, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, output, snapshot.SchemaID)
	assert.Contains(t, output, `"scheduler"`)
}

func TestSimulateCommand(t *testing.T) {
	output, err := execute(t, "simulate", "--seed=42", "--turns=5", "--monsters=3")
	require.NoError(t, err)

	assert.Equal(t, "42", field(t, output, "seed"))
	assert.Equal(t, "5", field(t, output, "turns"))
	assert.Equal(t, "false", field(t, output, "exhausted"))
}

func TestSimulateCommand_InvalidConfig(t *testing.T) {
	_, err := execute(t, "simulate", "--move-min-duration=0")
	assert.Error(t, err)
}

func TestSimulateCommand_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turnsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: 9
turns: 3
monsters: 1
map:
  - "#####"
  - "#...#"
  - "#...#"
  - "#####"
`), 0o600))

	output, err := execute(t, "--config", path, "simulate")
	require.NoError(t, err)
	assert.Equal(t, "9", field(t, output, "seed"))
	assert.Equal(t, "3", field(t, output, "turns"))
}

func TestSimulateCommand_MetricsServer(t *testing.T) {
	output, err := execute(t, "simulate", "--seed=1", "--turns=2", "--metrics-addr=127.0.0.1:0")
	require.NoError(t, err)
	assert.Equal(t, "2", field(t, output, "turns"))
}

func TestSimulateThenResync(t *testing.T) {
	out := filepath.Join(t.TempDir(), "level.json")
	output, err := execute(t, "simulate", "--seed=7", "--turns=4", "--out", out)
	require.NoError(t, err)
	saved, err := strconv.Atoi(field(t, output, "time"))
	require.NoError(t, err)

	doc, err := snapshot.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, saved, doc.Scheduler.Time)

	tests := []struct {
		name      string
		worldTime int
		direction string
		time      int
	}{
		{name: "world ahead replays the level", worldTime: saved + 10, direction: "replay", time: saved + 10},
		{name: "world behind advances the clock", worldTime: 0, direction: "advance", time: saved},
		{name: "aligned", worldTime: saved, direction: "aligned", time: saved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, "resync", "--snapshot", out, "--world-time", strconv.Itoa(tt.worldTime))
			require.NoError(t, err)
			assert.Equal(t, tt.direction, field(t, output, "direction"))
			assert.Equal(t, strconv.Itoa(tt.time), field(t, output, "time"))
		})
	}
}

func TestResyncCommand_RequiresSnapshot(t *testing.T) {
	_, err := execute(t, "resync", "--world-time=3")
	assert.Error(t, err)
}

func TestResyncCommand_NegativeWorldTime(t *testing.T) {
	out := filepath.Join(t.TempDir(), "level.yaml")
	_, err := execute(t, "simulate", "--seed=3", "--turns=1", "--out", out)
	require.NoError(t, err)

	_, err = execute(t, "resync", "--snapshot", out, "--world-time=-1")
	assert.Error(t, err)
}

func TestSimulate_SaveUsesSnapshotsDir(t *testing.T) {
	output, err := execute(t, "simulate", "--seed=5", "--turns=1", "--save")
	require.NoError(t, err)

	dir := filepath.Join(os.Getenv("XDG_DATA_HOME"), "turnsim", "snapshots")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "level-1-t"+field(t, output, "time")+".json", entries[0].Name())
}

func TestGame_SameSeedSameRun(t *testing.T) {
	cfg := config.Default()
	cfg.Monsters = 5

	run := func() summary {
		g, err := newGame(cfg, 1234)
		require.NoError(t, err)
		sum, err := g.play(context.Background(), 15, nil)
		require.NoError(t, err)
		return sum
	}

	assert.Equal(t, run(), run())
}

func TestGame_Spawns(t *testing.T) {
	cfg := config.Default()
	cfg.Monsters = 3

	g, err := newGame(cfg, 99)
	require.NoError(t, err)

	assert.Equal(t, 4, g.level.Entities.Len())
	assert.Equal(t, 4, g.sched.Len())
	var kind string
	ok, err := g.level.Entities.Component(g.player, world.ComponentKind, &kind)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, kindPlayer, kind)
	assert.True(t, g.pause(g.player))
}

func TestGame_TooManyMonsters(t *testing.T) {
	cfg := config.Default()
	cfg.Map = []string{"###", "#.#", "###"}
	cfg.Monsters = 1

	_, err := newGame(cfg, 1)
	assert.Error(t, err)
}

func TestWorldClock(t *testing.T) {
	for _, want := range []int{0, 1, 6, 40} {
		clock := worldClock(want)
		assert.Equal(t, want, clock.Time())
		assert.Zero(t, clock.Len(), "only the tick sentinel remains")
		_, acting := clock.Current()
		assert.False(t, acting)
		_, ok := clock.TimeUntil(clockMarker)
		assert.False(t, ok)
	}
}

func TestGame_ScriptBehavior(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wait.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function act(ctx) return {kind="noop", duration=2} end`), 0o600))

	cfg := config.Default()
	cfg.Script = path
	cfg.Monsters = 2

	g, err := newGame(cfg, 8)
	require.NoError(t, err)
	for _, id := range g.level.Entities.IDs() {
		if id == g.player {
			continue
		}
		var behavior string
		ok, err := g.level.Entities.Component(id, world.ComponentBehavior, &behavior)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, behaviorScript, behavior)
	}

	sum, err := g.play(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Turns)
}
