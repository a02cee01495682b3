// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is the photonmc release version.
const Version = "0.1.0"

var (
	cfgFile  string
	logLevel string
	log      = logrus.StandardLogger()
)

// Root is the main command. Subcommands are attached in their own files'
// init functions, one command per file.
var Root = &cobra.Command{
	Use:   "photonmc",
	Short: "A Monte Carlo radiative transfer engine.",
	Long: `photonmc traces photon packets through a Voronoi-tessellated medium,
accumulating flux at synthetic instruments via continuous peel-off.

Configuration is supplied as a TOML file (--config) read by every
subcommand that needs a simulation configuration.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
		return nil
	},
}

func init() {
	Root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a TOML configuration file")
	Root.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "logging level (trace, debug, info, warn, error)")
}
