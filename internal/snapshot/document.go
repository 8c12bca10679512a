// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package snapshot persists a level together with its scheduler and random
// stream so that it can later be resumed or resynced.
//
// Documents are plain data in JSON or YAML. Decoding validates the input
// against the reflected JSON Schema and checks the format version before a
// scheduler snapshot ever reaches scheduler.Load.
package snapshot

import (
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"

	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/scheduler"
	"github.com/holomush/turnsim/internal/world"
)

// FormatVersion is written into new documents.
const FormatVersion = "1.0.0"

// SupportedVersions is the range of document versions this build reads.
const SupportedVersions = "^1.0.0"

// Document is a persisted level.
type Document struct {
	Version   string               `json:"version" jsonschema:"minLength=1,example=1.0.0"`
	Level     Level                `json:"level"`
	Entities  []world.EntityRecord `json:"entities"`
	Scheduler scheduler.Snapshot   `json:"scheduler"`
	RNG       rng.State            `json:"rng"`
}

// Level is the static part of a persisted level.
type Level struct {
	ID  string   `json:"id" jsonschema:"minLength=1"`
	Map []string `json:"map" jsonschema:"minItems=1"`
}

// Capture records level, sched and random in a new document.
func Capture(level *world.Level, sched *scheduler.Scheduler, random *rng.RNG) Document {
	state := level.State()
	return Document{
		Version:   FormatVersion,
		Level:     Level{ID: state.ID, Map: level.Grid.Rows()},
		Entities:  state.Entities,
		Scheduler: sched.State(),
		RNG:       random.State(),
	}
}

// Check verifies the version and the invariants the schema cannot express.
func (d *Document) Check() error {
	v, err := semver.NewVersion(d.Version)
	if err != nil {
		return oops.In("snapshot").Code(CodeUnsupportedVersion).With("version", d.Version).Wrap(err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return oops.In("snapshot").Wrap(err)
	}
	if !constraint.Check(v) {
		return oops.In("snapshot").
			Code(CodeUnsupportedVersion).
			With("version", d.Version).
			With("supported", SupportedVersions).
			Errorf("unsupported snapshot version %s", d.Version)
	}

	hasTick := d.Scheduler.Current == scheduler.Tick ||
		slices.ContainsFunc(d.Scheduler.Heap, func(e scheduler.Entry) bool { return e.Data == scheduler.Tick })
	if !hasTick {
		return oops.In("snapshot").
			Code(CodeInvalidDocument).
			With("level", d.Level.ID).
			Errorf("scheduler snapshot has no tick sentinel")
	}
	return nil
}

// Restore rebuilds the level, scheduler and random stream.
func (d *Document) Restore() (*world.Level, *scheduler.Scheduler, *rng.RNG, error) {
	if err := d.Check(); err != nil {
		return nil, nil, nil, err
	}

	grid, err := world.ParseGrid(d.Level.Map)
	if err != nil {
		return nil, nil, nil, oops.In("snapshot").With("level", d.Level.ID).Wrap(err)
	}
	level := world.NewLevel(d.Level.ID, grid)
	if err := level.Restore(world.LevelState{ID: d.Level.ID, Entities: d.Entities}); err != nil {
		return nil, nil, nil, oops.In("snapshot").With("level", d.Level.ID).Wrap(err)
	}

	random := rng.New(0)
	if err := random.Restore(d.RNG); err != nil {
		return nil, nil, nil, oops.In("snapshot").With("level", d.Level.ID).Wrap(err)
	}

	sched := scheduler.New()
	sched.Load(d.Scheduler)
	return level, sched, random, nil
}
