// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package randsrc

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestFloat64Range(t *testing.T) {
	r := NewMathRand(1, 2)
	for i := 0; i < 1000; i++ {
		v := r.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64() = %v, want [0,1)", v)
		}
	}
}

func TestBoxWithinBounds(t *testing.T) {
	r := NewMathRand(3, 4)
	min := r3.Vec{X: -1, Y: -2, Z: -3}
	max := r3.Vec{X: 1, Y: 2, Z: 3}
	for i := 0; i < 1000; i++ {
		p := r.Box(min, max)
		if p.X < min.X || p.X > max.X || p.Y < min.Y || p.Y > max.Y || p.Z < min.Z || p.Z > max.Z {
			t.Fatalf("Box() = %v, outside [%v,%v]", p, min, max)
		}
	}
}

func TestLogLogCDFBounds(t *testing.T) {
	r := NewMathRand(5, 6)
	xs := []float64{100e-9, 500e-9, 1000e-9}
	cdf := []float64{0, 0.5, 1}
	for i := 0; i < 1000; i++ {
		x := r.LogLogCDF(xs, cdf)
		if x < xs[0] || x > xs[len(xs)-1] {
			t.Fatalf("LogLogCDF() = %v, outside [%v,%v]", x, xs[0], xs[len(xs)-1])
		}
	}
}

func TestLogLogCDFSinglePoint(t *testing.T) {
	r := NewMathRand(7, 8)
	if got := r.LogLogCDF([]float64{42}, []float64{1}); got != 42 {
		t.Fatalf("LogLogCDF single point = %v, want 42", got)
	}
}

func TestLogLogCDFEmpty(t *testing.T) {
	r := NewMathRand(9, 10)
	if got := r.LogLogCDF(nil, nil); got != 0 {
		t.Fatalf("LogLogCDF empty = %v, want 0", got)
	}
}
