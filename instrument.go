// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package photonmc

import (
	"math"
	"sort"

	"github.com/rt-sim/photonmc/fluxrecorder"
	"gonum.org/v1/gonum/spatial/r3"
)

// Instrument is one synthetic detector: a viewing direction, the
// fluxrecorder.Recorder it feeds, and the wavelength/pixel resolvers that
// translate a photon's continuous wavelength and 3-D position into the
// discrete bin indices fluxrecorder.Recorder.Detect expects. Instrument
// projection geometry is a Non-goal of the core; FrameProjector below is the
// one concrete projector this driver ships so a simulation is runnable
// end-to-end.
type Instrument struct {
	Name      string
	Direction r3.Vec // unit vector, domain to observer
	Recorder  *fluxrecorder.Recorder

	// Project maps a 3-D position to an IFU pixel index, or -1 if the
	// position falls outside the field of view or the instrument has no
	// IFU. Project may be nil when only a SED is recorded.
	Project func(pos r3.Vec) int

	// WavelengthIndex maps a packet's wavelength to a bin index in the
	// instrument's wavelength grid, or -1 if off-grid.
	WavelengthIndex func(wavelength float64) int
}

// WavelengthGrid builds the nearest-bin WavelengthIndex function for a
// sorted, ascending wavelength grid, matching the grid fluxrecorder.Config
// carries. A wavelength resolves to its nearest grid point if within half a
// bin spacing, else -1.
func WavelengthGrid(wavelengths []float64) func(float64) int {
	grid := append([]float64(nil), wavelengths...)
	return func(w float64) int {
		n := len(grid)
		if n == 0 {
			return -1
		}
		i := sort.SearchFloat64s(grid, w)
		best := -1
		bestDist := math.Inf(1)
		for _, j := range []int{i - 1, i} {
			if j < 0 || j >= n {
				continue
			}
			d := math.Abs(grid[j] - w)
			if d < bestDist {
				best, bestDist = j, d
			}
		}
		if best < 0 {
			return -1
		}
		var half float64
		switch {
		case n == 1:
			return 0
		case best == 0:
			half = (grid[1] - grid[0]) / 2
		case best == n-1:
			half = (grid[n-1] - grid[n-2]) / 2
		default:
			half = math.Max(grid[best]-grid[best-1], grid[best+1]-grid[best]) / 2
		}
		if bestDist > half {
			return -1
		}
		return best
	}
}

// FrameProjector is an orthographic frame instrument: positions are
// projected onto the plane perpendicular to Direction through the domain
// origin, oriented by Up, and binned into an Nx*Ny pixel grid centered at
// (CenterX, CenterY). This is the one concrete instrument-geometry
// implementation this module ships (the instrument-geometry interface
// itself is a Non-goal of the core); it exists only so the
// pipeline is exercisable end-to-end, in the spirit of photon.ElectronMix
// being the one concrete MaterialMix.
type FrameProjector struct {
	Direction, Up          r3.Vec
	Nx, Ny                 int
	PixelSizeX, PixelSizeY float64
	CenterX, CenterY       float64

	right, upOrth r3.Vec
	ready         bool
}

func (fp *FrameProjector) axes() (right, up r3.Vec) {
	if !fp.ready {
		dir := r3.Unit(fp.Direction)
		refUp := fp.Up
		if r3.Norm(r3.Cross(dir, refUp)) < 1e-9 {
			refUp = r3.Vec{X: 0, Y: 1, Z: 0}
		}
		fp.right = r3.Unit(r3.Cross(refUp, dir))
		fp.upOrth = r3.Cross(dir, fp.right)
		fp.ready = true
	}
	return fp.right, fp.upOrth
}

// Project implements the Instrument.Project signature.
func (fp *FrameProjector) Project(pos r3.Vec) int {
	right, up := fp.axes()
	x := r3.Dot(pos, right)
	y := r3.Dot(pos, up)

	px := int(math.Floor((x-fp.CenterX)/fp.PixelSizeX + float64(fp.Nx)/2))
	py := int(math.Floor((y-fp.CenterY)/fp.PixelSizeY + float64(fp.Ny)/2))
	if px < 0 || px >= fp.Nx || py < 0 || py >= fp.Ny {
		return -1
	}
	return px + py*fp.Nx
}
