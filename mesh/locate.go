// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mesh

import "gonum.org/v1/gonum/spatial/r3"

// CellIndexOf returns the id of the cell whose site is nearest p, or -1 if p
// is outside the domain box or the grid has no surviving sites. Ties may
// resolve to any minimizing site.
func (g *Grid) CellIndexOf(p r3.Vec) int {
	if !g.Box.Contains(p) || g.tree == nil {
		return -1
	}
	return g.tree.nearest(p)
}
