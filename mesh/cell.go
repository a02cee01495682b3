// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mesh

import "gonum.org/v1/gonum/spatial/r3"

// Cell is a convex polyhedron owning exactly one site. Cells are numbered
// 0..M-1, assigned at construction, and immutable for the grid's lifetime.
type Cell struct {
	Site      r3.Vec // input site position
	Centroid  r3.Vec
	Volume    float64
	Bounds    Box
	Neighbors []int // adjacent cell ids; negative values -1..-6 are domain walls
}

// FatalError reports a "Fatal-physical" condition: the caller should abort
// the whole simulation rather than try to recover.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string { return "mesh: fatal in " + e.Op + ": " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }
