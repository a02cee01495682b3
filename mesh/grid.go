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
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// RandomSource is the narrow uniform-draw capability the grid needs for
// volume/centroid estimation at construction time and for GeneratePosition.
// The full random-number source is an external collaborator with a much
// wider contract; this is the minimal slice of it this package actually
// calls.
type RandomSource interface {
	Float64() float64 // uniform draw in [0,1)
}

// Grid is an immutable Voronoi partition of a bounded 3-D box, built once and
// safe for concurrent read-only queries afterward.
type Grid struct {
	Box   Box
	Cells []Cell // indexed by cell id; dead entries (filtered sites) have Volume == 0 and Neighbors == nil
	alive []bool

	blocks *blockGrid
	tree   *kdTree // exact nearest-site lookup over every live cell, used by CellIndexOf

	eps      float64
	rnd      RandomSource
	allSites []r3.Vec // original, pre-filter site positions, indexed by cell id
}

const mcSamplesPerCell = 4000

// NewGrid builds a Grid from sites inside box. If ignoreNearbyAndOutliers is
// set, sites outside box are dropped and near-duplicate sites (within
// eps = 1e-12 * diagonal(box)) are removed before tessellation; otherwise the
// caller guarantees distinctness. Cell ids equal the caller-supplied,
// pre-filter index into sites.
func NewGrid(box Box, sites []r3.Vec, ignoreNearbyAndOutliers bool, rnd RandomSource) (*Grid, error) {
	eps := 1e-12 * box.Diagonal()

	alive := make([]bool, len(sites))
	for i := range sites {
		alive[i] = true
	}
	if ignoreNearbyAndOutliers {
		filterSites(box, sites, alive, eps)
	}

	g := &Grid{
		Box:      box,
		Cells:    make([]Cell, len(sites)),
		alive:    alive,
		eps:      eps,
		rnd:      rnd,
		allSites: sites,
	}

	liveIDs := make([]int, 0, len(sites))
	for i, ok := range alive {
		if ok {
			liveIDs = append(liveIDs, i)
		}
	}
	if len(liveIDs) == 0 {
		g.blocks = newBlockGrid(box, 1)
		return g, nil
	}

	// A single k-d tree over every live site, used by CellIndexOf for exact
	// nearest-site lookup. The BlockGrid built below only approximates each
	// cell's territory (for neighbor-list construction and volume
	// sampling); CellIndexOf needs the true nearest site regardless of
	// which block's approximate bounds happened to register it, so it
	// cannot reuse the per-block grouping.
	g.tree = buildKdTree(liveIDs, sites)

	// Step 1: derive each cell's approximate Voronoi bounding box from the
	// nearest site in each of the six axis half-spaces, an axis-aligned
	// stand-in for explicit polyhedron construction (no Voronoi/Delaunay
	// library is available, and Walk only ever needs bisector planes, not
	// face polygons).
	for _, id := range liveIDs {
		b, err := axisClippedBounds(box, sites, alive, id)
		if err != nil {
			return nil, &FatalError{Op: "tessellate", Err: err}
		}
		g.Cells[id] = Cell{Site: sites[id], Bounds: b}
	}

	// Step 2: BlockGrid, so neighbor candidates can be gathered from spatial
	// locality instead of an all-pairs scan.
	g.blocks = newBlockGrid(box, len(liveIDs))
	for _, id := range liveIDs {
		g.blocks.insert(id, g.Cells[id].Bounds.expand(eps))
	}

	// Step 3: neighbor lists (real neighbors from overlapping bounds, plus
	// domain-wall codes -1..-6), and volume/centroid by uniform rejection
	// sampling against the candidate neighbor set, matching the acceptance
	// test GeneratePosition uses at run time.
	totalVolume := 0.
	for _, id := range liveIDs {
		c := &g.Cells[id]
		candidates := g.blocks.overlapping(c.Bounds.expand(eps))
		neighbors := make([]int, 0, len(candidates))
		for _, cid := range candidates {
			if cid == id {
				continue
			}
			neighbors = append(neighbors, cid)
		}
		sort.Ints(neighbors)
		neighbors = append(neighbors, wallNeighbors(box, c.Bounds, eps)...)
		c.Neighbors = neighbors

		vol, centroid := estimateVolumeCentroid(c.Bounds, sites, alive, id, neighbors, rnd)
		c.Volume = vol
		c.Centroid = centroid
		totalVolume += vol
	}

	// Rescale so that sum(V) == volume(B) exactly, correcting for the
	// overlap error the sampling leaves behind.
	if totalVolume > 0 {
		scale := box.Volume() / totalVolume
		for _, id := range liveIDs {
			g.Cells[id].Volume *= scale
		}
	}

	return g, nil
}

// filterSites drops sites outside box, then, scanning in x-sorted order,
// discards any site within eps of an earlier-kept site.
func filterSites(box Box, sites []r3.Vec, alive []bool, eps float64) {
	for i, s := range sites {
		if !box.Contains(s) {
			alive[i] = false
		}
	}
	order := make([]int, 0, len(sites))
	for i, ok := range alive {
		if ok {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(i, j int) bool { return sites[order[i]].X < sites[order[j]].X })

	for i := 0; i < len(order); i++ {
		a := order[i]
		if !alive[a] {
			continue
		}
		for j := i + 1; j < len(order); j++ {
			b := order[j]
			if sites[b].X-sites[a].X > eps {
				break
			}
			if alive[b] && sqDist(sites[a], sites[b]) <= eps*eps {
				alive[b] = false
			}
		}
	}
}

// axisClippedBounds clips box by the midplane to the nearest site in each of
// the six axis directions from site id, yielding an axis-aligned
// approximation of that site's Voronoi cell.
func axisClippedBounds(box Box, sites []r3.Vec, alive []bool, id int) (Box, error) {
	s := sites[id]
	b := box
	for axis := 0; axis < 3; axis++ {
		var nearestPos, nearestNeg = -1, -1
		var bestPosD, bestNegD = -1.0, -1.0
		for j, o := range sites {
			if j == id || !alive[j] {
				continue
			}
			dv := axisValue(o, axis) - axisValue(s, axis)
			if dv > 0 {
				d := sqDist(s, o)
				if nearestPos < 0 || d < bestPosD {
					nearestPos, bestPosD = j, d
				}
			} else if dv < 0 {
				d := sqDist(s, o)
				if nearestNeg < 0 || d < bestNegD {
					nearestNeg, bestNegD = j, d
				}
			}
		}
		if nearestPos >= 0 {
			mid := (axisValue(s, axis) + axisValue(sites[nearestPos], axis)) / 2
			setAxisMax(&b, axis, mid)
		}
		if nearestNeg >= 0 {
			mid := (axisValue(s, axis) + axisValue(sites[nearestNeg], axis)) / 2
			setAxisMin(&b, axis, mid)
		}
	}
	if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
		return Box{}, fmt.Errorf("degenerate cell bounds for site %d", id)
	}
	return b, nil
}

func setAxisMin(b *Box, axis int, v float64) {
	switch axis {
	case 0:
		b.Min.X = v
	case 1:
		b.Min.Y = v
	default:
		b.Min.Z = v
	}
}

func setAxisMax(b *Box, axis int, v float64) {
	switch axis {
	case 0:
		b.Max.X = v
	case 1:
		b.Max.Y = v
	default:
		b.Max.Z = v
	}
}

// wallNeighbors reports which domain-wall codes apply to a cell whose bounds
// touch the corresponding face of box within eps.
func wallNeighbors(box, bounds Box, eps float64) []int {
	var out []int
	if bounds.Min.X-box.Min.X <= eps {
		out = append(out, int(wallXmin))
	}
	if box.Max.X-bounds.Max.X <= eps {
		out = append(out, int(wallXmax))
	}
	if bounds.Min.Y-box.Min.Y <= eps {
		out = append(out, int(wallYmin))
	}
	if box.Max.Y-bounds.Max.Y <= eps {
		out = append(out, int(wallYmax))
	}
	if bounds.Min.Z-box.Min.Z <= eps {
		out = append(out, int(wallZmin))
	}
	if box.Max.Z-bounds.Max.Z <= eps {
		out = append(out, int(wallZmax))
	}
	return out
}

// estimateVolumeCentroid draws independent uniform samples from bounds and
// keeps those closer to site id than to any of its candidate neighbors,
// exactly the acceptance test GeneratePosition uses.
func estimateVolumeCentroid(bounds Box, sites []r3.Vec, alive []bool, id int, neighbors []int, rnd RandomSource) (float64, r3.Vec) {
	site := sites[id]
	var accepted int
	var sum r3.Vec
	for i := 0; i < mcSamplesPerCell; i++ {
		p := r3.Vec{
			X: bounds.Min.X + rnd.Float64()*(bounds.Max.X-bounds.Min.X),
			Y: bounds.Min.Y + rnd.Float64()*(bounds.Max.Y-bounds.Min.Y),
			Z: bounds.Min.Z + rnd.Float64()*(bounds.Max.Z-bounds.Min.Z),
		}
		if closerToSiteThanNeighbors(p, site, sites, neighbors) {
			accepted++
			sum = r3.Add(sum, p)
		}
	}
	if accepted == 0 {
		return 0, site
	}
	frac := float64(accepted) / float64(mcSamplesPerCell)
	vol := frac * bounds.Volume()
	centroid := r3.Scale(1./float64(accepted), sum)
	return vol, centroid
}

func closerToSiteThanNeighbors(p, site r3.Vec, sites []r3.Vec, neighbors []int) bool {
	d0 := sqDist(p, site)
	for _, n := range neighbors {
		if n < 0 {
			continue // domain-wall code, not a real site
		}
		if sqDist(p, sites[n]) < d0 {
			return false
		}
	}
	return true
}

// NumCells returns the number of surviving (non-filtered) cells.
func (g *Grid) NumCells() int {
	n := 0
	for _, ok := range g.alive {
		if ok {
			n++
		}
	}
	return n
}
