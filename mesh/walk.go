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

// Segment is one (cellId, pathLength) pair produced by Walk.
type Segment struct {
	CellID int
	Length float64
}

// maxWalkSteps bounds the number of cell-to-cell hops a single walk can take,
// guarding against an unterminated walk caused by malformed neighbor data;
// it is never reached by a geometrically valid grid.
const maxWalkSteps = 1_000_000

// Walk produces the exhaustive ordered list of (cellId, segmentLength) pairs
// a ray starting at origin travelling in direction dir (not required to be
// unit length) traverses until it exits the domain box.
func (g *Grid) Walk(origin, dir r3.Vec) []Segment {
	dir = r3.Unit(dir)
	r, ok := g.enterBox(origin, dir)
	if !ok {
		return nil
	}
	m := g.CellIndexOf(r)
	if m < 0 {
		return nil
	}

	var segs []Segment
	for step := 0; step < maxWalkSteps; step++ {
		sq, mq, found := g.nextCrossing(m, r, dir)
		if !found {
			// Numerically degenerate crossing: nudge and relocate.
			r = r3.Add(r, r3.Scale(g.eps, dir))
			m = g.CellIndexOf(r)
			if m < 0 {
				return segs
			}
			continue
		}
		segs = append(segs, Segment{CellID: m, Length: sq})
		r = r3.Add(r, r3.Scale(sq+g.eps, dir))
		m = mq
		if mq < 0 {
			return segs
		}
	}
	return segs
}

// enterBox advances origin to its first intersection with the domain box
// along dir, returning false if the ray misses the box entirely.
func (g *Grid) enterBox(origin, dir r3.Vec) (r3.Vec, bool) {
	if g.Box.Contains(origin) {
		return origin, true
	}
	tmin, tmax := 0.0, math.Inf(1)
	ok := true
	clip := func(o, d, lo, hi float64) {
		if !ok {
			return
		}
		if d == 0 {
			if o < lo || o > hi {
				ok = false
			}
			return
		}
		t0 := (lo - o) / d
		t1 := (hi - o) / d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			ok = false
		}
	}
	clip(origin.X, dir.X, g.Box.Min.X, g.Box.Max.X)
	clip(origin.Y, dir.Y, g.Box.Min.Y, g.Box.Max.Y)
	clip(origin.Z, dir.Z, g.Box.Min.Z, g.Box.Max.Z)
	if !ok || tmin < 0 {
		if !ok {
			return r3.Vec{}, false
		}
	}
	return r3.Add(origin, r3.Scale(tmin, dir)), true
}

// nextCrossing finds the nearest forward face crossing out of cell m from
// point r travelling along dir, matching the bisector-plane and domain-wall
// rules a Voronoi ray walk needs to stay cell-consistent.
func (g *Grid) nextCrossing(m int, r, dir r3.Vec) (dist float64, neighbor int, found bool) {
	c := &g.Cells[m]
	best := math.Inf(1)
	bestID := 0
	found = false
	for _, i := range c.Neighbors {
		if i >= 0 {
			nSite := g.Cells[i].Site
			normal := r3.Sub(nSite, c.Site)
			mid := r3.Scale(0.5, r3.Add(nSite, c.Site))
			denom := r3.Dot(normal, dir)
			if denom <= 0 {
				continue
			}
			s := r3.Dot(normal, r3.Sub(mid, r)) / denom
			if s > 0 && s < best {
				best, bestID, found = s, i, true
			}
			continue
		}
		s, ok := g.wallCrossing(wallFace(i), r, dir)
		if ok && s > 0 && s < best {
			best, bestID, found = s, i, true
		}
	}
	return best, bestID, found
}

func (g *Grid) wallCrossing(w wallFace, r, dir r3.Vec) (float64, bool) {
	var plane float64
	switch w {
	case wallXmin:
		plane = g.Box.Min.X
	case wallXmax:
		plane = g.Box.Max.X
	case wallYmin:
		plane = g.Box.Min.Y
	case wallYmax:
		plane = g.Box.Max.Y
	case wallZmin:
		plane = g.Box.Min.Z
	case wallZmax:
		plane = g.Box.Max.Z
	}
	axis := wallAxis(w)
	dv := axisValue(dir, axis)
	if dv == 0 {
		return 0, false
	}
	s := (plane - axisValue(r, axis)) / dv
	if s <= 0 {
		return 0, false
	}
	return s, true
}

func wallAxis(w wallFace) int {
	switch w {
	case wallXmin, wallXmax:
		return 0
	case wallYmin, wallYmax:
		return 1
	default:
		return 2
	}
}
