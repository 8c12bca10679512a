// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/turnsim/internal/action"
	"github.com/holomush/turnsim/internal/effect"
	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/sim"
	"github.com/holomush/turnsim/internal/world"
)

var _ = Describe("Simulation determinism", func() {
	var (
		ctx    context.Context
		driver *sim.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = sim.NewDriver(action.NewEngine())
	})

	playUntil := func(seed uint64, stopAt int) (string, string) {
		level, sched := newCavern()
		random := rng.New(seed)
		res := driver.Run(ctx, level, sched, random, func(string) bool { return sched.Time() >= stopAt }, true)
		Expect(res.Exhausted).To(BeFalse())
		Expect(sched.Time()).To(BeNumerically(">=", stopAt))
		return levelJSON(level), string(random.State().PCG)
	}

	It("reproduces the same level for the same seed", func() {
		levelA, rngA := playUntil(1234, 60)
		levelB, rngB := playUntil(1234, 60)
		Expect(levelA).To(Equal(levelB))
		Expect(rngA).To(Equal(rngB))
	})

	It("diverges for different seeds", func() {
		levelA, _ := playUntil(1, 60)
		levelB, _ := playUntil(2, 60)
		Expect(levelA).NotTo(Equal(levelB))
	})

	It("resumes a captured pass exactly", func() {
		level, sched := newCavern()
		random := rng.New(77)
		sched.Add("observer", true, 1)
		driver.Run(ctx, level, sched, random, func(id string) bool {
			return id == "observer" && sched.Time() >= 20
		}, true)
		sched.Remove("observer")

		restoredLevel, err := world.ParseGrid(cavern)
		Expect(err).NotTo(HaveOccurred())
		copyLevel := world.NewLevel("", restoredLevel)
		Expect(copyLevel.Restore(level.State())).To(Succeed())
		copySched := clockAt(0)
		copySched.Load(sched.State())
		copyRandom := random.Clone()

		stop := func(s interface{ Time() int }) sim.PauseFunc {
			return func(string) bool { return s.Time() >= 45 }
		}
		driver.Run(ctx, level, sched, random, stop(sched), true)
		driver.Run(ctx, copyLevel, copySched, copyRandom, stop(copySched), true)

		Expect(levelJSON(copyLevel)).To(Equal(levelJSON(level)))
		Expect(copySched.State()).To(Equal(sched.State()))
		Expect(copyRandom.State()).To(Equal(random.State()))
	})

	It("never batches effects that share a participant", func() {
		level, sched := newCavern()
		res := driver.Run(ctx, level, sched, rng.New(5), func(string) bool { return sched.Time() >= 30 }, false)
		Expect(res.Effects).NotTo(BeEmpty())

		steps := effect.Schedule(res.Effects)
		var flattened []effect.Effect
		for _, step := range steps {
			seen := map[string]bool{}
			for _, e := range step.Effects {
				for _, id := range e.Participants {
					Expect(seen).NotTo(HaveKey(id))
					seen[id] = true
				}
			}
			flattened = append(flattened, step.Effects...)
		}
		Expect(flattened).To(HaveLen(len(res.Effects)))
		for i := range flattened {
			Expect(flattened[i].Participants).To(Equal(res.Effects[i].Participants))
			Expect(flattened[i].Timestamp).To(Equal(res.Effects[i].Timestamp))
		}
	})
})
