// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package photon

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

type fixedRand struct{ vals []float64 }

func (f *fixedRand) Float64() float64 {
	v := f.vals[0]
	f.vals = f.vals[1:]
	return v
}

func TestElectronMixCrossSections(t *testing.T) {
	m := &ElectronMix{}
	if got := m.AbsorptionCrossSection(500e-9); got != 0 {
		t.Fatalf("AbsorptionCrossSection = %v, want 0", got)
	}
	if got := m.ScatteringCrossSection(500e-9); got != thomsonCrossSection {
		t.Fatalf("ScatteringCrossSection = %v, want %v", got, thomsonCrossSection)
	}
	if got := m.ExtinctionCrossSection(500e-9); got != thomsonCrossSection {
		t.Fatalf("ExtinctionCrossSection = %v, want %v", got, thomsonCrossSection)
	}
}

func TestPerformScatteringPreservesUnitLength(t *testing.T) {
	src := rand.NewPCG(1, 2)
	r := rand.New(src)
	m := &ElectronMix{}
	p := &Packet{Dir: r3.Vec{X: 1, Y: 0, Z: 0}}
	for i := 0; i < 100; i++ {
		m.PerformScattering(500e-9, p, wrapStd{r})
	}
	if p.NumScatt != 100 {
		t.Fatalf("NumScatt = %d, want 100", p.NumScatt)
	}
	norm := math.Sqrt(r3.Dot(p.Dir, p.Dir))
	if math.Abs(norm-1) > 1e-9 {
		t.Fatalf("direction not unit length after scattering: %v", norm)
	}
}

type wrapStd struct{ r *rand.Rand }

func (w wrapStd) Float64() float64 { return w.r.Float64() }

// TestPerformScatteringPolarizedThomsonUpdatesStokes forces a theta=pi/2
// scattering event (via fixed draws into the dipole rejection sampler) and
// checks against the known-exact result for single Thomson scattering of
// unpolarized light at a 90-degree scattering angle: full linear
// polarization perpendicular to the scattering plane (Q = -1, U = V = 0 in
// the scattering-plane reference frame).
func TestPerformScatteringPolarizedThomsonUpdatesStokes(t *testing.T) {
	m := &ElectronMix{Polarized: true}
	p := &Packet{Dir: r3.Vec{X: 1, Y: 0, Z: 0}}
	// mu=2*0.5-1=0 (theta=pi/2), accepted immediately since 0*2<=1+0, then
	// phi=2*pi*0.25=pi/2.
	rnd := &fixedRand{vals: []float64{0.5, 0.0, 0.25}}
	m.PerformScattering(500e-9, p, rnd)

	if math.Abs(p.Q-(-1)) > 1e-9 {
		t.Fatalf("Q = %v, want -1", p.Q)
	}
	if math.Abs(p.U) > 1e-9 {
		t.Fatalf("U = %v, want 0", p.U)
	}
	if math.Abs(p.V) > 1e-9 {
		t.Fatalf("V = %v, want 0", p.V)
	}
	if math.Abs(r3.Norm(p.PolRef)-1) > 1e-9 {
		t.Fatalf("PolRef not unit length: %v", p.PolRef)
	}
	if d := r3.Dot(p.PolRef, p.Dir); math.Abs(d) > 1e-9 {
		t.Fatalf("PolRef not perpendicular to new Dir: dot=%v", d)
	}
}

// TestPerformScatteringUnpolarizedLeavesStokesZero checks that the
// unpolarized dipole path does not pass through any prior Stokes state: the
// plain dipole phase function carries no polarization information.
func TestPerformScatteringUnpolarizedLeavesStokesZero(t *testing.T) {
	m := &ElectronMix{}
	p := &Packet{Dir: r3.Vec{X: 1, Y: 0, Z: 0}, Q: 0.3, U: 0.2, V: 0.1}
	rnd := &fixedRand{vals: []float64{0.5, 0.0, 0.25}}
	m.PerformScattering(500e-9, p, rnd)
	if p.Q != 0 || p.U != 0 || p.V != 0 {
		t.Fatalf("Stokes = (%v,%v,%v), want all zero", p.Q, p.U, p.V)
	}
}

func TestAttenuated(t *testing.T) {
	p := &Packet{Luminosity: 10}
	if got := p.Attenuated(0); got != 10 {
		t.Fatalf("Attenuated(0) = %v, want 10", got)
	}
	got := p.Attenuated(math.Ln2)
	if math.Abs(got-5) > 1e-9 {
		t.Fatalf("Attenuated(ln2) = %v, want 5", got)
	}
}
