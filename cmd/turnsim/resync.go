// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/turnsim/internal/config"
	"github.com/holomush/turnsim/internal/scheduler"
	"github.com/holomush/turnsim/internal/snapshot"
)

// resyncConfig holds flags for the resync command.
type resyncConfig struct {
	snapshot  string
	worldTime int
	out       string
}

func newResyncCmd(opts *rootOptions) *cobra.Command {
	rc := &resyncConfig{}

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Bring a saved level up to a world time",
		Long: `Load a level snapshot and resynchronize it with a world clock at the
given time. A level saved earlier than the world time is simulated
forward; a level saved later moves the world clock forward instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResync(cmd.Context(), opts.cfg, rc, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&rc.snapshot, "snapshot", "", "snapshot file to load (.json or .yaml)")
	cmd.Flags().IntVar(&rc.worldTime, "world-time", 0, "time of the world clock to resync to")
	cmd.Flags().StringVar(&rc.out, "out", "", "write the resynced snapshot to this file")
	//nolint:errcheck // flag is registered above
	cmd.MarkFlagRequired("snapshot")

	return cmd
}

// clockMarker is scheduled once to carry a fresh clock to a given time.
const clockMarker = "__clock__"

// worldClock returns a scheduler holding only the tick sentinel, advanced
// to t. The tick alone never makes Next return, so a one-off marker due at
// t drives the clock there and is then removed.
func worldClock(t int) *scheduler.Scheduler {
	clock := scheduler.New()
	if t <= 0 {
		return clock
	}
	clock.Add(clockMarker, false, t)
	for clock.Time() < t {
		if _, ok := clock.Next(); !ok {
			break
		}
	}
	clock.Remove(clockMarker)
	return clock
}

func runResync(ctx context.Context, cfg config.Config, rc *resyncConfig, out io.Writer) error {
	if rc.worldTime < 0 {
		return oops.Code(config.CodeInvalidConfig).
			With("key", "world-time").
			With("value", rc.worldTime).
			Errorf("world-time must not be negative")
	}

	doc, err := snapshot.ReadFile(rc.snapshot)
	if err != nil {
		return err
	}
	level, stale, random, err := doc.Restore()
	if err != nil {
		return err
	}

	driver, _, err := newDriver(cfg)
	if err != nil {
		return err
	}
	live := worldClock(rc.worldTime)
	res := driver.Resync(ctx, level, live, stale, random)

	if rc.out != "" {
		if err := snapshot.WriteFile(rc.out, snapshot.Capture(level, live, random)); err != nil {
			return err
		}
		slog.Info("snapshot written", "path", rc.out)
	}

	_, err = fmt.Fprintf(out, "direction=%s from=%d to=%d turns=%d time=%d\n",
		res.Direction, res.From, res.To, res.Turns, live.Time())
	return err
}
