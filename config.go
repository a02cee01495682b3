// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package photonmc

import (
	"github.com/rt-sim/photonmc/fluxrecorder"
	"github.com/rt-sim/photonmc/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config describes one simulation run: the domain, the site list feeding
// mesh.NewGrid, the medium density, and the thread count feeding
// workerpool.New.
type Config struct {
	Box                     mesh.Box
	Sites                   []r3.Vec
	IgnoreNearbyAndOutliers bool

	// Density is the medium number density per cell, indexed by cell id,
	// combined with the MaterialMix's cross sections to form an extinction
	// coefficient. Must have the same length as Sites.
	Density []float64

	ThreadCount int
	MaxScatters int

	// Seed1, Seed2 seed the per-worker random sources (randsrc.MathRand).
	Seed1, Seed2 uint64

	Instruments []InstrumentConfig
}

// InstrumentConfig describes one synthetic instrument.
type InstrumentConfig struct {
	Name      string
	Direction r3.Vec
	Up        r3.Vec // only used when IFU is enabled

	Flux fluxrecorder.Config
}
