// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package reduce provides the cross-process reduction interface consumed by
// fluxrecorder.CalibrateAndWrite. True distributed reduction
// (MPI or similar) is out of scope; this package ships the single-process
// implementation and the seam a distributed one would plug into.
package reduce

// Reducer sums detector arrays element-wise across cooperating processes,
// leaving the result on the root process only.
type Reducer interface {
	// SumToRoot reduces dst element-wise in place, summing across every
	// cooperating process. On non-root processes dst's contents after the
	// call are unspecified.
	SumToRoot(dst []float64)
	// IsRoot reports whether the calling process is the one that should
	// proceed to write output.
	IsRoot() bool
}

// Local is the single-process Reducer: SumToRoot is a no-op (there is
// nothing else to sum against) and IsRoot is always true.
type Local struct{}

var _ Reducer = Local{}

func (Local) SumToRoot(dst []float64) {}

func (Local) IsRoot() bool { return true }
