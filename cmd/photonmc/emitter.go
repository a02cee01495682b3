// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"math"

	"github.com/rt-sim/photonmc"
	"github.com/rt-sim/photonmc/photon"
	"github.com/rt-sim/photonmc/randsrc"
	"gonum.org/v1/gonum/spatial/r3"
)

// pointSourceEmitter emits every history from a fixed point, sampling an
// isotropic direction on the unit sphere. It carries its own per-worker
// random sources, distinct from the Simulation's propagation sources, the
// same way a real source module would keep emission sampling independent of
// scattering sampling.
type pointSourceEmitter struct {
	origin     r3.Vec
	wavelength float64
	luminosity float64
	rnds       []randsrc.Source
}

func newPointSourceEmitter(origin r3.Vec, wavelength float64, histories, threadCount int, seed1, seed2 uint64) *pointSourceEmitter {
	rnds := make([]randsrc.Source, threadCount)
	for w := range rnds {
		rnds[w] = randsrc.NewMathRand(seed1+uint64(w)+1, seed2+uint64(w)*2+1)
	}
	lum := 1.0
	if histories > 0 {
		lum = 1.0 / float64(histories)
	}
	return &pointSourceEmitter{origin: origin, wavelength: wavelength, luminosity: lum, rnds: rnds}
}

var _ photonmc.Emitter = (*pointSourceEmitter)(nil)

func (e *pointSourceEmitter) Emit(workerID, index int) (r3.Vec, *photon.Packet, error) {
	rnd := e.rnds[workerID]
	z := 2*rnd.Float64() - 1
	phi := 2 * math.Pi * rnd.Float64()
	r := math.Sqrt(math.Max(0, 1-z*z))
	dir := r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
	return e.origin, &photon.Packet{
		Wavelength:   e.wavelength,
		Dir:          dir,
		Luminosity:   e.luminosity,
		Primary:      true,
		HistoryIndex: uint64(index) + 1,
	}, nil
}
