// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads layered turnsim configuration: built-in defaults, then
// an optional YAML file, then command-line flags.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/turnsim/internal/logging"
	"github.com/holomush/turnsim/internal/world"
	"github.com/holomush/turnsim/internal/xdg"
)

// Error codes.
const (
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeLoadFailed    = "CONFIG_LOAD_FAILED"
)

// Config is the resolved turnsim configuration.
type Config struct {
	Seed        uint64   `koanf:"seed"`
	Map         []string `koanf:"map"`
	Monsters    int      `koanf:"monsters"`
	Move        Move     `koanf:"move"`
	Turns       int      `koanf:"turns"`
	Pause       string   `koanf:"pause"`
	Script      string   `koanf:"script"`
	Log         Log      `koanf:"log"`
	MetricsAddr string   `koanf:"metrics_addr"`
}

// Move bounds the duration of a move action.
type Move struct {
	MinDuration int `koanf:"min_duration"`
	MaxDuration int `koanf:"max_duration"`
}

// Log configures the slog handler.
type Log struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// DefaultMap is a walled room with a pillar.
var DefaultMap = []string{
	"####################",
	"#..................#",
	"#..................#",
	"#.......##.........#",
	"#.......##.........#",
	"#..................#",
	"#..................#",
	"####################",
}

// Default returns the built-in configuration. A zero seed picks a random one
// at startup.
func Default() Config {
	return Config{
		Map:      append([]string(nil), DefaultMap...),
		Monsters: 4,
		Move:     Move{MinDuration: 1, MaxDuration: 3},
		Turns:    20,
		Pause:    "player:*",
		Log:      Log{Format: "json", Level: "info"},
	}
}

// flagKeys maps flag names to config keys where they differ beyond
// dashes becoming underscores.
var flagKeys = map[string]string{
	"move-min-duration": "move.min_duration",
	"move-max-duration": "move.max_duration",
	"log-format":        "log.format",
	"log-level":         "log.level",
}

// BindFlags registers the flags Load understands.
func BindFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.Uint64("seed", d.Seed, "RNG seed (0 picks a random seed)")
	flags.Int("monsters", d.Monsters, "number of monsters to spawn")
	flags.Int("turns", d.Turns, "number of player turns to simulate")
	flags.String("pause", d.Pause, "glob pattern of actor ids the driver pauses on")
	flags.String("script", d.Script, "Lua behavior file for monsters")
	flags.Int("move-min-duration", d.Move.MinDuration, "minimum move duration")
	flags.Int("move-max-duration", d.Move.MaxDuration, "maximum move duration")
	flags.String("log-format", d.Log.Format, "log format (json or text)")
	flags.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	flags.String("metrics-addr", d.MetricsAddr, "address for /metrics and health endpoints (empty disables)")
}

// Load resolves configuration from defaults, the YAML file at path and the
// changed flags. An empty path uses the XDG default and tolerates its
// absence; an explicit path must exist.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = xdg.ConfigFile()
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, oops.Code(CodeLoadFailed).With("path", path).Wrapf(err, "load config file")
		}
		slog.Debug("no config file", "path", path)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code(CodeLoadFailed).Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, oops.Code(CodeInvalidConfig).With("path", path).Wrapf(err, "decode config")
	}
	return cfg, nil
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// Grid parses the configured map.
func (c Config) Grid() (*world.Grid, error) {
	return world.ParseGrid(c.Map)
}

// Validate checks the configuration for values the simulator cannot run with.
func (c Config) Validate() error {
	invalid := func(key string, value any, msg string) error {
		return oops.Code(CodeInvalidConfig).With("key", key).With("value", value).Errorf("%s: %s", key, msg)
	}

	grid, err := c.Grid()
	if err != nil {
		return oops.Code(CodeInvalidConfig).With("key", "map").With("cause", err.Error()).Errorf("map: %v", err)
	}
	if c.Monsters < 0 {
		return invalid("monsters", c.Monsters, "must not be negative")
	}
	if floor := len(grid.Floor()); c.Monsters+1 > floor {
		return invalid("monsters", c.Monsters, "map has too few open cells")
	}
	if c.Move.MinDuration < 1 {
		return invalid("move.min_duration", c.Move.MinDuration, "must be at least 1")
	}
	if c.Move.MaxDuration < c.Move.MinDuration {
		return invalid("move.max_duration", c.Move.MaxDuration, "must not be less than move.min_duration")
	}
	if c.Turns < 0 {
		return invalid("turns", c.Turns, "must not be negative")
	}
	if c.Pause != "" {
		if _, err := glob.Compile(c.Pause, ':'); err != nil {
			return invalid("pause", c.Pause, "invalid pattern")
		}
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return invalid("log.format", c.Log.Format, "must be json or text")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", c.Log.Level, "unknown level")
	}
	return nil
}
