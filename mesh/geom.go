// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// photonmc is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package mesh builds and queries a Voronoi partition of a bounded 3-D box.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned bounding box, used both for the overall simulation
// domain and for individual cell bounds.
type Box struct {
	Min, Max r3.Vec
}

// Diagonal returns the length of the box's space diagonal.
func (b Box) Diagonal() float64 {
	return r3.Norm(r3.Sub(b.Max, b.Min))
}

// Contains reports whether p lies within b (inclusive).
func (b Box) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Volume returns the box's volume.
func (b Box) Volume() float64 {
	d := r3.Sub(b.Max, b.Min)
	return d.X * d.Y * d.Z
}

// expand returns b grown outward by eps on every face.
func (b Box) expand(eps float64) Box {
	e := r3.Vec{X: eps, Y: eps, Z: eps}
	return Box{Min: r3.Sub(b.Min, e), Max: r3.Add(b.Max, e)}
}

// wallFace enumerates the six domain-wall neighbor codes used by
// Cell.Neighbors, using a −1…−6 convention to distinguish a wall crossing
// from a neighboring cell id (always >= 0).
type wallFace int

const (
	wallXmin wallFace = -1
	wallXmax wallFace = -2
	wallYmin wallFace = -3
	wallYmax wallFace = -4
	wallZmin wallFace = -5
	wallZmax wallFace = -6
)

func sqDist(a, b r3.Vec) float64 {
	d := r3.Sub(a, b)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

func axisValue(v r3.Vec, axis int) float64 {
	switch axis % 3 {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func clampInt(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(f float64) int {
	return int(math.Floor(f + 0.5))
}
