// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/turnsim/internal/config"
	"github.com/holomush/turnsim/internal/logging"
)

const serviceName = "turnsim"

// rootOptions carries state resolved by the root command to subcommands.
type rootOptions struct {
	configFile string
	cfg        config.Config
}

// NewRootCmd creates the root command for the turnsim CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "turnsim",
		Short: "turnsim - a deterministic turn-based simulation core",
		Long: `turnsim runs a turn-based roguelike simulation: a time-ordered
scheduler, a rule engine that validates and commits actions, and a driver
that plays monsters until the player is due to act.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/turnsim/config.yaml)")
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newSimulateCmd(opts))
	cmd.AddCommand(newResyncCmd(opts))
	cmd.AddCommand(newSchemaCmd())

	return cmd
}

// load resolves and validates configuration, then installs the logger.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return oops.Wrapf(err, "invalid configuration")
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.SetDefault(serviceName, version, cfg.Log.Format, level)
	o.cfg = cfg
	return nil
}
