// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/turnsim/internal/action"
	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/sim"
)

var _ = Describe("Resync", func() {
	var (
		ctx    context.Context
		driver *sim.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = sim.NewDriver(action.NewEngine())
	})

	Context("when the stale level is behind", func() {
		It("lands background actors where continuous play would have", func() {
			// Continuous play: a stand-in clock actor that never exists on
			// the level stops the pass at exactly t=50.
			played, playedSched := newCavern()
			playedRandom := rng.New(31)
			playedSched.Add("observer", true, 1)
			driver.Run(ctx, played, playedSched, playedRandom, func(id string) bool {
				return id == "observer" && playedSched.Time() >= 50
			}, true)

			stale, staleSched := newCavern()
			staleRandom := rng.New(31)
			live := clockAt(50)
			res := driver.Resync(ctx, stale, live, staleSched, staleRandom)

			Expect(res.Direction).To(Equal(sim.ResyncReplay))
			Expect(live.Time()).To(Equal(50))
			Expect(levelJSON(stale)).To(Equal(levelJSON(played)))
			Expect(staleRandom.State()).To(Equal(playedRandom.State()))
		})

		It("is a no-op when repeated", func() {
			level, stale := newCavern()
			random := rng.New(8)
			live := clockAt(33)

			driver.Resync(ctx, level, live, stale, random)
			snapshot := live.State()
			before := levelJSON(level)

			res := driver.Resync(ctx, level, live, stale, random)
			Expect(res.Direction).To(Equal(sim.ResyncAligned))
			Expect(live.State()).To(Equal(snapshot))
			Expect(levelJSON(level)).To(Equal(before))
		})
	})

	Context("when the stale level is ahead", func() {
		It("moves the live clock forward and adopts the stale schedule", func() {
			level, stale := newCavern()
			random := rng.New(4)
			driver.Run(ctx, level, stale, random, func(string) bool { return stale.Time() >= 12 }, true)
			if id, ok := stale.Current(); ok {
				stale.Remove(id)
				stale.Add(id, true, 1)
			}
			before := levelJSON(level)

			live := clockAt(3)
			res := driver.Resync(ctx, level, live, stale, random)

			Expect(res.Direction).To(Equal(sim.ResyncAdvance))
			Expect(live.Time()).To(Equal(stale.Time()))
			Expect(live.State()).To(Equal(stale.State()))
			Expect(levelJSON(level)).To(Equal(before))
		})
	})
})
