// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/scheduler"
	"github.com/holomush/turnsim/internal/world"
)

// resyncMarker is scheduled as a one unit repeating entry so that a pass can
// stop at an exact time. It never exists on a level.
const resyncMarker = "__resync__"

// Resync directions.
const (
	ResyncAligned = "aligned"
	ResyncReplay  = "replay"
	ResyncAdvance = "advance"
)

// ResyncResult describes a completed resync.
type ResyncResult struct {
	// Direction is ResyncReplay when the stale level was simulated forward,
	// ResyncAdvance when the live clock was moved forward, or ResyncAligned
	// when both were already at the same time.
	Direction string
	From      int
	To        int
	// Turns counts actor turns replayed on the stale level.
	Turns int
}

// Resync brings a stale level and its scheduler up to the time of the live
// scheduler, then loads the result into live.
//
// When stale is behind, the level is simulated forward on stale with
// effects suppressed, using the same engine and random stream as live
// play. When stale is ahead, live is advanced without acting. Either way
// live ends up holding stale's state.
func (d *Driver) Resync(
	ctx context.Context,
	level *world.Level,
	live *scheduler.Scheduler,
	stale *scheduler.Scheduler,
	random rng.Source,
) ResyncResult {
	res := ResyncResult{Direction: ResyncAligned, From: stale.Time(), To: live.Time()}

	ctx, span := tracer.Start(ctx, "sim.resync",
		trace.WithAttributes(
			attribute.String("level.id", level.ID),
			attribute.Int("resync.from", res.From),
			attribute.Int("resync.to", res.To),
		),
	)
	defer span.End()

	switch target := live.Time(); {
	case stale.Time() < target:
		res.Direction = ResyncReplay
		stale.Add(resyncMarker, true, 1)
		pass := d.Run(ctx, level, stale, random, func(id string) bool {
			return id == resyncMarker && stale.Time() >= target
		}, true)
		stale.Remove(resyncMarker)
		res.Turns = pass.Turns
	case stale.Time() > target:
		res.Direction = ResyncAdvance
		res.From, res.To = target, stale.Time()
		live.Add(resyncMarker, true, 1)
		for live.Time() < stale.Time() {
			if _, ok := live.Next(); !ok {
				break
			}
		}
		live.Remove(resyncMarker)
	}

	live.Load(stale.State())

	recordResync(res.Direction)
	span.SetAttributes(
		attribute.String("resync.direction", res.Direction),
		attribute.Int("resync.turns", res.Turns),
	)
	slog.DebugContext(ctx, "resync finished",
		"level", level.ID,
		"direction", res.Direction,
		"from", res.From,
		"to", live.Time(),
		"turns", res.Turns,
	)
	return res
}
