// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

const maxSampleAttempts = 10000

// GeneratePosition rejection-samples a point uniformly within the bounding
// box of cell m, accepting when the point is closer to site(m) than to any
// neighbor's site. It fails fatally after 10000 attempts.
func (g *Grid) GeneratePosition(m int) (r3.Vec, error) {
	if m < 0 || m >= len(g.Cells) || !g.alive[m] {
		return r3.Vec{}, &FatalError{Op: "GeneratePosition", Err: fmt.Errorf("invalid cell id %d", m)}
	}
	c := &g.Cells[m]
	sites := g.allSites
	for attempt := 0; attempt < maxSampleAttempts; attempt++ {
		p := r3.Vec{
			X: c.Bounds.Min.X + g.rnd.Float64()*(c.Bounds.Max.X-c.Bounds.Min.X),
			Y: c.Bounds.Min.Y + g.rnd.Float64()*(c.Bounds.Max.Y-c.Bounds.Min.Y),
			Z: c.Bounds.Min.Z + g.rnd.Float64()*(c.Bounds.Max.Z-c.Bounds.Min.Z),
		}
		if closerToSiteThanNeighbors(p, c.Site, sites, c.Neighbors) {
			return p, nil
		}
	}
	return r3.Vec{}, &FatalError{Op: "GeneratePosition", Err: fmt.Errorf("no point found in cell %d after %d attempts", m, maxSampleAttempts)}
}

// GeneratePositionByMass draws a cell from the normalized cumulative
// distribution of cell masses via inverse-CDF, then samples a position in
// it with GeneratePosition.
func (g *Grid) GeneratePositionByMass(masses []float64) (r3.Vec, int, error) {
	if len(masses) != len(g.Cells) {
		return r3.Vec{}, -1, fmt.Errorf("mesh: masses length %d does not match cell count %d", len(masses), len(g.Cells))
	}
	total := 0.
	for _, mass := range masses {
		total += mass
	}
	if total <= 0 {
		return r3.Vec{}, -1, fmt.Errorf("mesh: total mass is non-positive")
	}
	target := g.rnd.Float64() * total
	cum := 0.
	cell := -1
	for i, mass := range masses {
		if !g.alive[i] || mass <= 0 {
			continue
		}
		cum += mass
		if target <= cum {
			cell = i
			break
		}
	}
	if cell < 0 {
		for i := len(masses) - 1; i >= 0; i-- {
			if g.alive[i] && masses[i] > 0 {
				cell = i
				break
			}
		}
	}
	if cell < 0 {
		return r3.Vec{}, -1, fmt.Errorf("mesh: no cell with positive mass")
	}
	p, err := g.GeneratePosition(cell)
	return p, cell, err
}
