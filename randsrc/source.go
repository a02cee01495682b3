// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package randsrc provides the random-number source consumed by the rest of
// photonmc: uniform draws, uniform points in a box, and inverse-CDF sampling
// over a tabulated log-log grid.
package randsrc

import "gonum.org/v1/gonum/spatial/r3"

// Source is the external random-number collaborator this module consumes.
// mesh.RandomSource and photon.RandomDraw are narrower structural subsets of
// this interface.
type Source interface {
	// Float64 draws uniformly from [0,1).
	Float64() float64
	// Box draws a point uniformly from the axis-aligned box [min,max].
	Box(min, max r3.Vec) r3.Vec
	// LogLogCDF draws an x value from the distribution whose cumulative
	// density is tabulated at (xs[i], cdf[i]) pairs in log-log space, xs
	// sorted ascending, cdf[0] == 0, cdf[len-1] == 1.
	LogLogCDF(xs, cdf []float64) float64
}
