// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package randsrc

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// MathRand is a Source backed by math/rand/v2 for uniform draws and
// gonum.org/v1/gonum/stat/distuv for the underlying standard-uniform
// variate that LogLogCDF inverts against a tabulated grid.
type MathRand struct {
	rnd *rand.Rand
	uni distuv.Uniform
}

// NewMathRand constructs a MathRand seeded deterministically from seed1,
// seed2 (see math/rand/v2.NewPCG).
func NewMathRand(seed1, seed2 uint64) *MathRand {
	r := rand.New(rand.NewPCG(seed1, seed2))
	return &MathRand{
		rnd: r,
		uni: distuv.Uniform{Min: 0, Max: 1, Src: r},
	}
}

var _ Source = (*MathRand)(nil)

func (m *MathRand) Float64() float64 { return m.uni.Rand() }

func (m *MathRand) Box(min, max r3.Vec) r3.Vec {
	return r3.Vec{
		X: min.X + m.Float64()*(max.X-min.X),
		Y: min.Y + m.Float64()*(max.Y-min.Y),
		Z: min.Z + m.Float64()*(max.Z-min.Z),
	}
}

// LogLogCDF inverts the tabulated CDF by interpolating log(x) linearly in
// the cumulative value between the bracketing grid points; the cumulative
// value itself is not log-interpolated.
func (m *MathRand) LogLogCDF(xs, cdf []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if len(xs) == 1 {
		return xs[0]
	}
	u := m.Float64()
	i := sort.SearchFloat64s(cdf, u)
	if i <= 0 {
		return xs[0]
	}
	if i >= len(xs) {
		return xs[len(xs)-1]
	}
	x0, x1 := xs[i-1], xs[i]
	c0, c1 := cdf[i-1], cdf[i]
	if c1 <= c0 || x0 <= 0 || x1 <= 0 {
		return x1
	}
	// Interpolate log(x) linearly in u between the bracketing (log x, cdf)
	// points rather than x itself, matching the log-log tabulation.
	logX0, logX1 := math.Log(x0), math.Log(x1)
	frac := (u - c0) / (c1 - c0)
	return math.Exp(logX0 + frac*(logX1-logX0))
}
