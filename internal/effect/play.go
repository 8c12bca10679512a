// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package effect

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/oops"
)

// CodePlaybackCancelled is returned when playback stops before all steps
// completed.
const CodePlaybackCancelled = "PLAYBACK_CANCELLED"

// StepFunc is called after each step completes.
type StepFunc func(index int, step Step)

// Play runs steps strictly in order. Members of a step are started
// concurrently and the step completes once every member has called done;
// additional calls to done are ignored.
//
// Play returns an error if ctx is cancelled before all steps complete.
// Effects already started keep running; their done calls are discarded.
func Play(ctx context.Context, steps []Step, onStep StepFunc) error {
	for i, step := range steps {
		if err := playStep(ctx, step); err != nil {
			return oops.In("effect").
				Code(CodePlaybackCancelled).
				With("step", i).
				With("steps", len(steps)).
				Wrap(err)
		}
		slog.DebugContext(ctx, "effect step complete",
			"step", i,
			"kind", string(step.Kind),
			"effects", len(step.Effects))
		if onStep != nil {
			onStep(i, step)
		}
	}
	return nil
}

func playStep(ctx context.Context, step Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	finished := make(chan struct{}, len(step.Effects))
	for _, e := range step.Effects {
		once := &sync.Once{}
		done := func() { once.Do(func() { finished <- struct{}{} }) }
		go e.Run(done)
	}
	for remaining := len(step.Effects); remaining > 0; remaining-- {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-finished:
		}
	}
	return nil
}
