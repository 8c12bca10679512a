// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/scheduler"
	"github.com/holomush/turnsim/internal/world"
	"github.com/holomush/turnsim/pkg/errutil"
)

var crypt = []string{
	"######",
	"#....#",
	"#.#..#",
	"######",
}

// newCapture builds a small level with a scheduler that sits between turns.
func newCapture(t *testing.T) (Document, *world.Level, *scheduler.Scheduler, *rng.RNG) {
	t.Helper()
	grid, err := world.ParseGrid(crypt)
	require.NoError(t, err)
	level := world.NewLevel("crypt", grid)
	require.NoError(t, level.Spawn("player", world.Position{X: 1, Y: 1}, map[string]any{world.ComponentKind: "player"}))
	require.NoError(t, level.Spawn("ghoul", world.Position{X: 4, Y: 2}, map[string]any{
		world.ComponentBehavior: "random_walk",
		"hp":                    7,
	}))

	sched := scheduler.New()
	sched.Add("player", true, 1)
	sched.Add("ghoul", true, 2)
	sched.Add("trap", false, 5)

	random := rng.New(12)
	random.IntegerInRange(1, 6)
	return Capture(level, sched, random), level, sched, random
}

func TestCapture(t *testing.T) {
	doc, level, sched, random := newCapture(t)

	assert.Equal(t, FormatVersion, doc.Version)
	assert.Equal(t, Level{ID: "crypt", Map: crypt}, doc.Level)
	assert.Equal(t, level.State().Entities, doc.Entities)
	assert.Equal(t, sched.State(), doc.Scheduler)
	assert.Equal(t, random.State(), doc.RNG)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			doc, _, _, _ := newCapture(t)

			data, err := Encode(doc, format)
			require.NoError(t, err)
			decoded, err := Decode(data, format)
			require.NoError(t, err)

			assert.Equal(t, doc, *decoded)
		})
	}
}

func TestRestore(t *testing.T) {
	doc, level, sched, random := newCapture(t)

	restoredLevel, restoredSched, restoredRandom, err := doc.Restore()
	require.NoError(t, err)

	assert.Equal(t, level.State(), restoredLevel.State())
	assert.Equal(t, crypt, restoredLevel.Grid.Rows())
	assert.Equal(t, sched.State(), restoredSched.State())
	assert.Equal(t, random.IntegerInRange(0, 1<<30), restoredRandom.IntegerInRange(0, 1<<30))

	for range 6 {
		want, wantOK := sched.Next()
		got, gotOK := restoredSched.Next()
		require.Equal(t, wantOK, gotOK)
		assert.Equal(t, want, got)
	}
}

func TestRestore_ResumesMidTurn(t *testing.T) {
	_, level, sched, random := newCapture(t)
	id, ok := sched.Next()
	require.True(t, ok)
	require.Equal(t, "player", id)
	doc := Capture(level, sched, random)
	assert.Equal(t, "player", doc.Scheduler.Current)

	_, restored, _, err := doc.Restore()
	require.NoError(t, err)
	next, ok := restored.Next()
	require.True(t, ok)
	assert.Equal(t, "player", next, "the interrupted turn is taken first")
	assert.Equal(t, 1, restored.Time())
}

func TestDecode_Errors(t *testing.T) {
	doc, _, _, _ := newCapture(t)
	valid, err := Encode(doc, FormatJSON)
	require.NoError(t, err)

	mutate := func(fn func(m map[string]any)) []byte {
		var m map[string]any
		require.NoError(t, json.Unmarshal(valid, &m))
		fn(m)
		out, err := json.Marshal(m)
		require.NoError(t, err)
		return out
	}
	schedulerOf := func(m map[string]any) map[string]any {
		return m["scheduler"].(map[string]any)
	}

	tests := []struct {
		name   string
		data   []byte
		format Format
		code   string
	}{
		{name: "empty", data: []byte("  \n"), format: FormatJSON, code: CodeInvalidDocument},
		{name: "not json", data: []byte("{"), format: FormatJSON, code: CodeInvalidDocument},
		{name: "not yaml", data: []byte("version: [1"), format: FormatYAML, code: CodeInvalidDocument},
		{name: "unknown format", data: valid, format: "toml", code: CodeUnknownFormat},
		{
			name:   "missing version",
			data:   mutate(func(m map[string]any) { delete(m, "version") }),
			format: FormatJSON,
			code:   CodeSchemaViolation,
		},
		{
			name:   "unknown field",
			data:   mutate(func(m map[string]any) { m["extra"] = true }),
			format: FormatJSON,
			code:   CodeSchemaViolation,
		},
		{
			name:   "zero duration",
			data:   mutate(func(m map[string]any) { schedulerOf(m)["duration"] = 0 }),
			format: FormatJSON,
			code:   CodeSchemaViolation,
		},
		{
			name:   "negative time",
			data:   mutate(func(m map[string]any) { schedulerOf(m)["time"] = -1 }),
			format: FormatJSON,
			code:   CodeSchemaViolation,
		},
		{
			name:   "empty heap",
			data:   mutate(func(m map[string]any) { schedulerOf(m)["heap"] = []any{} }),
			format: FormatJSON,
			code:   CodeSchemaViolation,
		},
		{
			name:   "fractional metric",
			data:   mutate(func(m map[string]any) { schedulerOf(m)["heap"].([]any)[0].(map[string]any)["metric"] = 1.5 }),
			format: FormatJSON,
			code:   CodeSchemaViolation,
		},
		{
			name: "missing tick",
			data: mutate(func(m map[string]any) {
				schedulerOf(m)["heap"] = []any{map[string]any{"data": "player", "metric": 1, "insertion_id": 1}}
			}),
			format: FormatJSON,
			code:   CodeInvalidDocument,
		},
		{
			name:   "newer major version",
			data:   mutate(func(m map[string]any) { m["version"] = "2.0.0" }),
			format: FormatJSON,
			code:   CodeUnsupportedVersion,
		},
		{
			name:   "not a version",
			data:   mutate(func(m map[string]any) { m["version"] = "latest" }),
			format: FormatJSON,
			code:   CodeUnsupportedVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, tt.format)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestDecode_AcceptsMinorVersions(t *testing.T) {
	doc, _, _, _ := newCapture(t)
	doc.Version = "1.4.2"
	data, err := Encode(doc, FormatYAML)
	require.NoError(t, err)

	decoded, err := Decode(data, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", decoded.Version)
}

func TestRestore_Errors(t *testing.T) {
	t.Run("bad map", func(t *testing.T) {
		doc, _, _, _ := newCapture(t)
		doc.Level.Map = []string{"#?#"}
		_, _, _, err := doc.Restore()
		errutil.AssertErrorCode(t, err, world.CodeInvalidGrid)
	})

	t.Run("shared cell", func(t *testing.T) {
		doc, _, _, _ := newCapture(t)
		doc.Entities[1].Components[world.ComponentPosition] = doc.Entities[0].Components[world.ComponentPosition]
		_, _, _, err := doc.Restore()
		errutil.AssertErrorCode(t, err, world.CodeInvalidPosition)
	})

	t.Run("bad random state", func(t *testing.T) {
		doc, _, _, _ := newCapture(t)
		doc.RNG.PCG = []byte("short")
		_, _, _, err := doc.Restore()
		errutil.AssertErrorCode(t, err, rng.CodeInvalidState)
	})
}

func TestWriteReadFile(t *testing.T) {
	doc, _, _, _ := newCapture(t)
	dir := t.TempDir()

	for _, name := range []string{"crypt.json", "crypt.yaml", "crypt.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, doc))

			got, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, doc, *got)
		})
	}

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	errutil.AssertErrorCode(t, err, CodeIO)
	errutil.AssertErrorContext(t, err, "path", filepath.Join(dir, "missing.json"))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version":"1.0.0"}`), 0o600))
	_, err = ReadFile(bad)
	errutil.AssertErrorCode(t, err, CodeSchemaViolation)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("b.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("b.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("b"))
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, SchemaID, schema["$id"])
	assert.Equal(t, "turnsim level snapshot", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"version", "level", "entities", "scheduler", "rng"} {
		assert.Contains(t, props, key)
	}
	assert.ElementsMatch(t, []any{"version", "level", "entities", "scheduler", "rng"}, schema["required"])
}
