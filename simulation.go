// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package photonmc

import (
	"fmt"
	"math"
	"runtime"

	"github.com/rt-sim/photonmc/fluxrecorder"
	"github.com/rt-sim/photonmc/mesh"
	"github.com/rt-sim/photonmc/photon"
	"github.com/rt-sim/photonmc/randsrc"
	"github.com/rt-sim/photonmc/workerpool"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// Simulation is the composition root that ties everything together: it
// constructs a mesh.Grid from a site list, a workerpool.Pool sized to
// available cores, and one fluxrecorder.Recorder per instrument, then drives
// the emit-walk-scatter-detect loop over batches of photon histories.
type Simulation struct {
	Grid *mesh.Grid
	Pool *workerpool.Pool

	density     []float64
	mix         photon.MaterialMix
	maxScatters int
	instruments []*Instrument
	rnds        []randsrc.Source

	log logrus.FieldLogger
}

// NewSimulation builds the grid, the pool, and every configured instrument's
// recorder. mix is the MaterialMix every cell shares; a richer driver could
// key mix per cell, but material-mix physics is treated as an
// external collaborator with a single narrow interface, not a per-cell
// registry.
func NewSimulation(cfg Config, mix photon.MaterialMix, log logrus.FieldLogger) (*Simulation, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if len(cfg.Density) != len(cfg.Sites) {
		return nil, fmt.Errorf("photonmc: density length %d does not match site count %d", len(cfg.Density), len(cfg.Sites))
	}
	if cfg.ThreadCount < 1 {
		cfg.ThreadCount = runtime.NumCPU()
	}
	if cfg.MaxScatters < 1 {
		cfg.MaxScatters = 1
	}

	seedRnd := randsrc.NewMathRand(cfg.Seed1, cfg.Seed2)
	grid, err := mesh.NewGrid(cfg.Box, cfg.Sites, cfg.IgnoreNearbyAndOutliers, seedRnd)
	if err != nil {
		return nil, fmt.Errorf("photonmc: building grid: %w", err)
	}
	if grid.NumCells() == 0 {
		log.Warn("photonmc: grid has zero surviving cells; every history will escape untouched")
	}

	pool := workerpool.New(cfg.ThreadCount)

	rnds := make([]randsrc.Source, cfg.ThreadCount)
	for w := range rnds {
		rnds[w] = randsrc.NewMathRand(cfg.Seed1+uint64(w)+1, cfg.Seed2+uint64(w)*2+1)
	}

	s := &Simulation{
		Grid:        grid,
		Pool:        pool,
		density:     cfg.Density,
		mix:         mix,
		maxScatters: cfg.MaxScatters,
		rnds:        rnds,
		log:         log,
	}

	for _, ic := range cfg.Instruments {
		rec := fluxrecorder.NewRecorder(ic.Flux, pool.ThreadCount())
		inst := &Instrument{
			Name:            ic.Name,
			Direction:       r3.Unit(ic.Direction),
			Recorder:        rec,
			WavelengthIndex: WavelengthGrid(ic.Flux.Wavelengths),
		}
		if ic.Flux.IFUEnabled {
			fp := &FrameProjector{
				Direction:  inst.Direction,
				Up:         ic.Up,
				Nx:         ic.Flux.Nx,
				Ny:         ic.Flux.Ny,
				PixelSizeX: ic.Flux.PixelSizeX,
				PixelSizeY: ic.Flux.PixelSizeY,
				CenterX:    ic.Flux.CenterX,
				CenterY:    ic.Flux.CenterY,
			}
			inst.Project = fp.Project
		}
		s.instruments = append(s.instruments, inst)
	}

	return s, nil
}

// Close terminates the worker pool's background goroutines. The Simulation
// must not be used after Close returns.
func (s *Simulation) Close() { s.Pool.Close() }

// Instruments returns the configured instruments, in construction order.
func (s *Simulation) Instruments() []*Instrument { return s.instruments }

// RunBatch drives one photon batch of n histories through emit, calling
// Emitter.Emit(workerID, index) for each history index in [0, n) via
// workerpool.Pool.Call.
func (s *Simulation) RunBatch(n int, emit Emitter) error {
	return s.Pool.Call(func(workerID, first, count int) error {
		rnd := s.rnds[workerID]
		for i := first; i < first+count; i++ {
			origin, pkt, err := emit.Emit(workerID, i)
			if err != nil {
				return fmt.Errorf("photonmc: emitting history %d: %w", i, err)
			}
			s.propagate(workerID, origin, pkt, rnd)
		}
		return nil
	}, n, false)
}

// Flush drains every instrument's pending per-history statistics. Call once
// after the last RunBatch of a run and before CalibrateAndWrite.
func (s *Simulation) Flush() {
	for _, inst := range s.instruments {
		inst.Recorder.Flush()
	}
}

// propagate peels off a detection toward every instrument at the emission
// point, then repeatedly samples an optical-depth-weighted interaction point
// along the packet's current direction (mesh.Grid.Walk supplies the
// cell-by-cell path), scatters or absorbs at that point, and peels off again
// after each scattering, up to maxScatters times.
func (s *Simulation) propagate(workerID int, pos r3.Vec, pkt *photon.Packet, rnd randsrc.Source) {
	s.peelOff(workerID, pos, pkt)

	scat := 0
	for ; scat < s.maxScatters; scat++ {
		segs := s.Grid.Walk(pos, pkt.Dir)
		if len(segs) == 0 {
			return
		}

		tauTarget := -math.Log(rnd.Float64())
		var accumTau, travelled float64
		interacted := false
		for _, seg := range segs {
			dTau := s.extinctionCoeff(seg.CellID, pkt.Wavelength) * seg.Length
			if accumTau+dTau >= tauTarget {
				var frac float64
				if dTau > 0 {
					frac = (tauTarget - accumTau) / dTau
				}
				travelled += seg.Length * frac
				interacted = true
				break
			}
			accumTau += dTau
			travelled += seg.Length
		}
		if !interacted {
			return // packet escaped the domain without a further interaction
		}
		pos = r3.Add(pos, r3.Scale(travelled, pkt.Dir))

		if rnd.Float64() > s.albedo(pkt.Wavelength) {
			return // absorbed
		}
		s.mix.PerformScattering(pkt.Wavelength, pkt, rnd)
		s.peelOff(workerID, pos, pkt)
	}
}

// peelOff records a contribution toward every instrument whose wavelength
// grid covers pkt.Wavelength, computing the optical depth from pos to the
// instrument by walking the same grid along the instrument's direction
// (the standard continuous peel-off estimator).
func (s *Simulation) peelOff(workerID int, pos r3.Vec, pkt *photon.Packet) {
	for _, inst := range s.instruments {
		ell := inst.WavelengthIndex(pkt.Wavelength)
		if ell < 0 {
			continue
		}
		tau := s.opticalDepthAlong(pos, inst.Direction, pkt.Wavelength)
		pixel := -1
		if inst.Project != nil {
			pixel = inst.Project(pos)
		}
		inst.Recorder.Detect(workerID, pkt, ell, pixel, tau)
	}
}

func (s *Simulation) opticalDepthAlong(pos, dir r3.Vec, wavelength float64) float64 {
	var tau float64
	for _, seg := range s.Grid.Walk(pos, dir) {
		tau += s.extinctionCoeff(seg.CellID, wavelength) * seg.Length
	}
	return tau
}

func (s *Simulation) extinctionCoeff(cellID int, wavelength float64) float64 {
	if cellID < 0 || cellID >= len(s.density) {
		return 0
	}
	return s.density[cellID] * s.mix.ExtinctionCrossSection(wavelength)
}

func (s *Simulation) albedo(wavelength float64) float64 {
	ext := s.mix.ExtinctionCrossSection(wavelength)
	if ext <= 0 {
		return 0
	}
	return s.mix.ScatteringCrossSection(wavelength) / ext
}
