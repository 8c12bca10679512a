// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package effect

// Step is one unit of playback. A Sync step holds exactly one effect. An
// Async step holds effects with pairwise disjoint participants that may run
// concurrently; the step completes when all of them have.
type Step struct {
	Kind    Kind
	Effects []Effect
}

// Schedule partitions effects, in order, into playback steps.
//
// A Sync effect closes any open batch and becomes its own step. An Async
// effect joins the open batch unless it shares a participant with it, in
// which case the batch is closed and a new one is opened.
func Schedule(effects []Effect) []Step {
	var (
		steps   []Step
		batch   []Effect
		claimed map[string]struct{}
	)

	flush := func() {
		if len(batch) > 0 {
			steps = append(steps, Step{Kind: Async, Effects: batch})
		}
		batch = nil
		claimed = nil
	}

	for _, e := range effects {
		if e.Kind != Async {
			flush()
			steps = append(steps, Step{Kind: Sync, Effects: []Effect{e}})
			continue
		}

		if overlaps(claimed, e.Participants) {
			flush()
		}
		if claimed == nil {
			claimed = make(map[string]struct{}, len(e.Participants))
		}
		for _, id := range e.Participants {
			claimed[id] = struct{}{}
		}
		batch = append(batch, e)
	}
	flush()
	return steps
}

func overlaps(claimed map[string]struct{}, ids []string) bool {
	for _, id := range ids {
		if _, ok := claimed[id]; ok {
			return true
		}
	}
	return false
}
