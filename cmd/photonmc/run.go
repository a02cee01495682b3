// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"fmt"
	"os"

	"github.com/rt-sim/photonmc"
	"github.com/rt-sim/photonmc/fluxrecorder"
	"github.com/rt-sim/photonmc/photon"
	"github.com/rt-sim/photonmc/reduce"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation from a TOML configuration file.",
	Long: `run loads the configuration named by --config, traces every photon
history through the medium in batches, and writes each instrument's
calibrated output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return fmt.Errorf("photonmc: --config is required")
		}
		fc, err := loadFileConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg := fc.toConfig()

		sim, err := photonmc.NewSimulation(cfg, &photon.ElectronMix{}, log)
		if err != nil {
			return fmt.Errorf("photonmc: building simulation: %w", err)
		}
		defer sim.Close()

		emit := newPointSourceEmitter(fc.Emission.Origin, fc.Emission.Wavelength,
			fc.Emission.Histories, cfg.ThreadCount, fc.Emission.Seed1, fc.Emission.Seed2)

		batchSize := fc.Emission.BatchSize
		if batchSize < 1 {
			batchSize = fc.Emission.Histories
		}
		if batchSize < 1 {
			batchSize = 1
		}
		remaining := fc.Emission.Histories
		for remaining > 0 {
			n := batchSize
			if n > remaining {
				n = remaining
			}
			if err := sim.RunBatch(n, emit); err != nil {
				return fmt.Errorf("photonmc: running batch: %w", err)
			}
			remaining -= n
			log.WithField("remaining", remaining).Debug("photonmc: batch complete")
		}
		sim.Flush()

		uc := &fluxrecorder.SIUnitConverter{}
		for i, inst := range sim.Instruments() {
			instFile := fc.Instruments[i]

			var imgWriter fluxrecorder.ImageWriter
			if instFile.ImageDir != "" {
				imgWriter = &fluxrecorder.NetCDFImageWriter{Dir: instFile.ImageDir, SBUnitName: uc.SBUnitName()}
			} else if instFile.Flux.IFUEnabled {
				return fmt.Errorf("photonmc: instrument %s: image_dir is required when flux.IFUEnabled is set", instFile.Name)
			}

			out := os.Stdout
			if instFile.Output != "" {
				f, err := os.Create(instFile.Output)
				if err != nil {
					return fmt.Errorf("photonmc: creating output %s: %w", instFile.Output, err)
				}
				defer f.Close()
				out = f
			}

			if err := inst.Recorder.CalibrateAndWrite(reduce.Local{}, uc, imgWriter, out, instFile.Name); err != nil {
				return fmt.Errorf("photonmc: calibrating instrument %s: %w", instFile.Name, err)
			}
		}
		return nil
	},
}

func init() {
	Root.AddCommand(runCmd)
}
