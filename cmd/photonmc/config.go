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

	"github.com/BurntSushi/toml"
	"github.com/rt-sim/photonmc"
	"github.com/rt-sim/photonmc/fluxrecorder"
	"github.com/rt-sim/photonmc/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// site is one medium site: a seed point for the Voronoi tessellation and the
// number density of the cell it anchors.
type site struct {
	Position r3.Vec  `toml:"position"`
	Density  float64 `toml:"density"`
}

// instrumentFile is one instrument's TOML configuration: its viewing
// geometry plus the recorder configuration it feeds, and the file an
// instrument's calibrated output is written to.
type instrumentFile struct {
	Name      string `toml:"name"`
	Direction r3.Vec `toml:"direction"`
	Up        r3.Vec `toml:"up"`
	Output    string `toml:"output"`
	ImageDir  string `toml:"image_dir"`

	// Flux is decoded from an [instruments.flux] table. fluxrecorder.Config
	// carries no toml tags, so its keys match the Go field names exactly
	// (e.g. HasMedium, SEDEnabled), not snake_case.
	Flux fluxrecorder.Config `toml:"flux"`
}

// emissionFile configures the built-in point-source emitter. Source
// geometry beyond a single point is outside this module's scope (see
// Non-goals); this is the minimum needed to run the pipeline end-to-end.
type emissionFile struct {
	Origin     r3.Vec  `toml:"origin"`
	Wavelength float64 `toml:"wavelength"`
	Histories  int     `toml:"histories"`
	BatchSize  int     `toml:"batch_size"`
	Seed1      uint64  `toml:"seed1"`
	Seed2      uint64  `toml:"seed2"`
}

// fileConfig is the TOML-decoded run configuration, translated into
// photonmc.Config by toConfig.
type fileConfig struct {
	DomainMin r3.Vec `toml:"domain_min"`
	DomainMax r3.Vec `toml:"domain_max"`

	IgnoreNearbyAndOutliers bool `toml:"ignore_nearby_and_outliers"`
	Sites                   []site
	Threads                 int    `toml:"threads"`
	MaxScatters             int    `toml:"max_scatters"`
	Seed1                   uint64 `toml:"seed1"`
	Seed2                   uint64 `toml:"seed2"`

	Emission    emissionFile
	Instruments []instrumentFile
}

func loadFileConfig(path string) (*fileConfig, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("photonmc: reading config %s: %w", path, err)
	}
	return &fc, nil
}

// toConfig translates the TOML document into photonmc.Config.
func (fc *fileConfig) toConfig() photonmc.Config {
	cfg := photonmc.Config{
		Box:                     mesh.Box{Min: fc.DomainMin, Max: fc.DomainMax},
		IgnoreNearbyAndOutliers: fc.IgnoreNearbyAndOutliers,
		ThreadCount:             fc.Threads,
		MaxScatters:             fc.MaxScatters,
		Seed1:                   fc.Seed1,
		Seed2:                   fc.Seed2,
	}
	cfg.Sites = make([]r3.Vec, len(fc.Sites))
	cfg.Density = make([]float64, len(fc.Sites))
	for i, s := range fc.Sites {
		cfg.Sites[i] = s.Position
		cfg.Density[i] = s.Density
	}
	cfg.Instruments = make([]photonmc.InstrumentConfig, len(fc.Instruments))
	for i, inst := range fc.Instruments {
		cfg.Instruments[i] = photonmc.InstrumentConfig{
			Name:      inst.Name,
			Direction: inst.Direction,
			Up:        inst.Up,
			Flux:      inst.Flux,
		}
	}
	return cfg
}
