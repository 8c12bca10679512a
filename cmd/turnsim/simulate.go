// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/turnsim/internal/action"
	"github.com/holomush/turnsim/internal/config"
	"github.com/holomush/turnsim/internal/effect"
	"github.com/holomush/turnsim/internal/observability"
	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/scheduler"
	"github.com/holomush/turnsim/internal/script"
	"github.com/holomush/turnsim/internal/sim"
	"github.com/holomush/turnsim/internal/snapshot"
	"github.com/holomush/turnsim/internal/world"
	"github.com/holomush/turnsim/internal/xdg"
)

const (
	levelID        = "level-1"
	behaviorScript = "script"
	kindPlayer     = "player"
	kindMonster    = "monster"
)

// simulateConfig holds flags specific to the simulate command.
type simulateConfig struct {
	out  string
	save bool
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	sc := &simulateConfig{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulated game with an auto-played player",
		Long: `Build a level from the configured map, spawn the player and monsters,
and run the simulation for the configured number of player turns. The
player picks random moves; monsters use their configured behavior.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSimulate(ctx, opts.cfg, sc, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sc.out, "out", "", "write a snapshot of the final state to this file (.json or .yaml)")
	cmd.Flags().BoolVar(&sc.save, "save", false, "write a snapshot to XDG_DATA_HOME/turnsim/snapshots")

	return cmd
}

// game is one simulated level with everything needed to run it.
type game struct {
	seed   uint64
	level  *world.Level
	sched  *scheduler.Scheduler
	random *rng.RNG
	driver *sim.Driver
	player string
	pause  sim.PauseFunc
}

// newGame builds a level from cfg and populates it.
func newGame(cfg config.Config, seed uint64) (*game, error) {
	grid, err := cfg.Grid()
	if err != nil {
		return nil, err
	}
	match, err := sim.PauseOnMatch(cfg.Pause)
	if err != nil {
		return nil, err
	}

	driver, monsterBehavior, err := newDriver(cfg)
	if err != nil {
		return nil, err
	}

	g := &game{
		seed:   seed,
		level:  world.NewLevel(levelID, grid),
		sched:  scheduler.New(),
		random: rng.New(seed),
		driver: driver,
		player: world.NewEntityID(kindPlayer),
	}
	// The player always pauses; the pattern adds more auto-played actors.
	g.pause = func(id string) bool { return id == g.player || match(id) }

	free := grid.Floor()
	if err := g.spawn(&free, g.player, kindPlayer, "", 1); err != nil {
		return nil, err
	}
	for range cfg.Monsters {
		delay := g.random.IntegerInRange(1, cfg.Move.MaxDuration)
		if err := g.spawn(&free, world.NewEntityID(kindMonster), kindMonster, monsterBehavior, delay); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// newDriver builds the driver for cfg and returns the behavior name monsters
// should carry.
func newDriver(cfg config.Config) (*sim.Driver, string, error) {
	engine := action.NewEngine(action.WithMoveDuration(cfg.Move.MinDuration, cfg.Move.MaxDuration))
	opts := []sim.Option{sim.WithAnimator(immediateAnimator())}
	if cfg.Script == "" {
		return sim.NewDriver(engine, opts...), sim.BehaviorRandomWalk, nil
	}
	b, err := script.Load(cfg.Script, engine)
	if err != nil {
		return nil, "", err
	}
	opts = append(opts, sim.WithBehavior(behaviorScript, b))
	return sim.NewDriver(engine, opts...), behaviorScript, nil
}

// spawn places id on a random free cell and schedules it.
func (g *game) spawn(free *[]world.Position, id, kind, behavior string, delay int) error {
	if len(*free) == 0 {
		return oops.With("entity", id).Errorf("no free cell for %s", kind)
	}
	i := g.random.IntegerInRange(0, len(*free)-1)
	pos := (*free)[i]
	*free = append((*free)[:i], (*free)[i+1:]...)

	components := map[string]any{world.ComponentKind: kind}
	if behavior != "" {
		components[world.ComponentBehavior] = behavior
	}
	if err := g.level.Spawn(id, pos, components); err != nil {
		return err
	}
	g.sched.Add(id, true, delay)
	return nil
}

// summary is what a simulate run reports.
type summary struct {
	Seed      uint64
	Time      int
	Turns     int
	Effects   int
	Exhausted bool
}

// play runs the game until turns paused actors have acted or the scheduler
// runs dry. Paused actors are auto-played with a random walk.
func (g *game) play(ctx context.Context, turns int, metrics *observability.Metrics) (summary, error) {
	sum := summary{Seed: g.seed}
	walk := sim.RandomWalk{Engine: g.driver.Engine()}

	for sum.Turns < turns {
		start := time.Now()
		res := g.driver.Run(ctx, g.level, g.sched, g.random, g.pause, false)
		if metrics != nil {
			metrics.PassDuration.WithLabelValues(g.level.ID).Observe(time.Since(start).Seconds())
		}
		if err := playback(ctx, res.Effects); err != nil {
			return sum, err
		}
		sum.Effects += len(res.Effects)
		if res.Exhausted {
			sum.Exhausted = true
			break
		}

		chosen := walk.Choose(res.Paused, g.driver.Env(g.level, g.sched, g.random))
		effects, _ := g.driver.Act(ctx, g.level, g.sched, g.random, chosen, false)
		if err := playback(ctx, effects); err != nil {
			return sum, err
		}
		sum.Effects += len(effects)
		sum.Turns++
		if metrics != nil {
			metrics.SimTime.WithLabelValues(g.level.ID).Set(float64(g.sched.Time()))
			metrics.Entities.WithLabelValues(g.level.ID).Set(float64(g.level.Entities.Len()))
		}
	}
	sum.Time = g.sched.Time()
	return sum, nil
}

func playback(ctx context.Context, effects []effect.Effect) error {
	if len(effects) == 0 {
		return nil
	}
	return effect.Play(ctx, effect.Schedule(effects), nil)
}

// immediateAnimator logs each effect and finishes it at once.
func immediateAnimator() effect.Animator {
	return effect.AnimatorFunc(func(e effect.Effect, done func()) {
		slog.Debug("effect",
			"name", e.Name,
			"kind", string(e.Kind),
			"timestamp", e.Timestamp,
			"participants", e.Participants,
		)
		done()
	})
}

func runSimulate(ctx context.Context, cfg config.Config, sc *simulateConfig, out io.Writer) error {
	seed := cfg.Seed
	if seed == 0 {
		var err error
		if seed, err = rng.NewSeed(); err != nil {
			return err
		}
	}

	g, err := newGame(cfg, seed)
	if err != nil {
		return oops.Wrapf(err, "build level")
	}

	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		var ready atomic.Bool
		srv := observability.NewServer(cfg.MetricsAddr, ready.Load,
			scheduler.RegisterMetrics,
			action.RegisterMetrics,
			sim.RegisterMetrics,
		)
		if _, err := srv.Start(); err != nil {
			return oops.Wrapf(err, "start observability server")
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(stopCtx); err != nil {
				slog.Warn("observability server shutdown error", "error", err)
			}
		}()
		ready.Store(true)
		metrics = srv.Metrics()
	}

	slog.Info("simulation starting",
		"seed", seed,
		"level", g.level.ID,
		"entities", g.level.Entities.Len(),
		"turns", cfg.Turns,
	)
	sum, err := g.play(ctx, cfg.Turns, metrics)
	if err != nil {
		return err
	}

	path := sc.out
	if path == "" && sc.save {
		dir := xdg.SnapshotsDir()
		if err := xdg.EnsureDir(dir); err != nil {
			return err
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-t%d.json", g.level.ID, sum.Time))
	}
	if path != "" {
		if err := snapshot.WriteFile(path, snapshot.Capture(g.level, g.sched, g.random)); err != nil {
			return err
		}
		slog.Info("snapshot written", "path", path)
	}

	_, err = fmt.Fprintf(out, "seed=%d time=%d turns=%d effects=%d exhausted=%t\n",
		sum.Seed, sum.Time, sum.Turns, sum.Effects, sum.Exhausted)
	return err
}
