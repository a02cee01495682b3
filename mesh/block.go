// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// blockGrid is a uniform nb x nb x nb subdivision of the domain box, used at
// construction time to gather each cell's candidate neighbors and to bound
// the volume/centroid sampler, from spatial locality instead of
// an all-pairs scan. Each block stores the cell ids whose (approximate,
// axis-clipped) bounding box overlaps it, expanded by eps.
type blockGrid struct {
	box  Box
	nb   int
	step r3.Vec
	cell [][]int // flat, indexed by blockIndex
}

func newBlockGrid(box Box, numCells int) *blockGrid {
	nb := clampInt(3, 1000, round(3*math.Cbrt(float64(maxInt(numCells, 1)))))
	d := r3.Sub(box.Max, box.Min)
	return &blockGrid{
		box:  box,
		nb:   nb,
		step: r3.Vec{X: d.X / float64(nb), Y: d.Y / float64(nb), Z: d.Z / float64(nb)},
		cell: make([][]int, nb*nb*nb),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (g *blockGrid) index(ix, iy, iz int) int {
	return (ix*g.nb+iy)*g.nb + iz
}

// axisIndex returns the block index along one axis for coordinate v relative
// to the grid's origin and step, clamped to the valid range.
func (g *blockGrid) axisIndex(v, origin, step float64) int {
	i := int(math.Floor((v - origin) / step))
	return clampInt(0, g.nb-1, i)
}

// rangeFor returns the inclusive block-index ranges covered by b (already
// expanded by eps by the caller).
func (g *blockGrid) rangeFor(b Box) (loX, hiX, loY, hiY, loZ, hiZ int) {
	loX = g.axisIndex(b.Min.X, g.box.Min.X, g.step.X)
	hiX = g.axisIndex(b.Max.X, g.box.Min.X, g.step.X)
	loY = g.axisIndex(b.Min.Y, g.box.Min.Y, g.step.Y)
	hiY = g.axisIndex(b.Max.Y, g.box.Min.Y, g.step.Y)
	loZ = g.axisIndex(b.Min.Z, g.box.Min.Z, g.step.Z)
	hiZ = g.axisIndex(b.Max.Z, g.box.Min.Z, g.step.Z)
	return
}

// insert pushes cellID into every block whose extent overlaps b.
func (g *blockGrid) insert(cellID int, b Box) {
	loX, hiX, loY, hiY, loZ, hiZ := g.rangeFor(b)
	for ix := loX; ix <= hiX; ix++ {
		for iy := loY; iy <= hiY; iy++ {
			for iz := loZ; iz <= hiZ; iz++ {
				i := g.index(ix, iy, iz)
				g.cell[i] = append(g.cell[i], cellID)
			}
		}
	}
}

// overlapping returns, for construction use only, the set of cell ids in
// every block overlapped by b.
func (g *blockGrid) overlapping(b Box) []int {
	loX, hiX, loY, hiY, loZ, hiZ := g.rangeFor(b)
	seen := make(map[int]bool)
	var out []int
	for ix := loX; ix <= hiX; ix++ {
		for iy := loY; iy <= hiY; iy++ {
			for iz := loZ; iz <= hiZ; iz++ {
				for _, id := range g.cell[g.index(ix, iy, iz)] {
					if !seen[id] {
						seen[id] = true
						out = append(out, id)
					}
				}
			}
		}
	}
	return out
}
