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

	"gonum.org/v1/gonum/spatial/r3"
)

// MaterialType distinguishes the physical nature of a MaterialMix.
type MaterialType int

const (
	Dust MaterialType = iota
	Electrons
	Gas
)

// RandomDraw is the minimal uniform-draw capability performScattering needs
// to sample a new direction. Satisfied structurally by randsrc.Source.
type RandomDraw interface {
	Float64() float64
}

// MaterialMix is the capability set radiative transfer needs: cross sections,
// opacity, and in-place scattering, modeled as a single interface rather than
// a class tower. Dust phase-function physics is out of scope (Non-goal); the
// only concrete implementation this module ships is ElectronMix.
type MaterialMix interface {
	MaterialType() MaterialType
	PolarizedScattering() bool
	AbsorptionCrossSection(wavelength float64) float64
	ScatteringCrossSection(wavelength float64) float64
	ExtinctionCrossSection(wavelength float64) float64

	// PerformScattering updates p's direction and Stokes vector in place,
	// drawing randomness from rnd.
	PerformScattering(wavelength float64, p *Packet, rnd RandomDraw)
}

// thomsonCrossSection is the Thomson scattering cross section, sigma_T, in
// m^2 (CODATA value).
const thomsonCrossSection = 6.6524587321e-29

// ElectronMix models Thomson scattering off free electrons: wavelength
// independent, zero absorption, and either a dipole or a
// spherical-polarization dipole phase function depending on Polarized.
type ElectronMix struct {
	// Polarized selects the spherical-polarization dipole phase function
	// instead of the plain dipole phase function.
	Polarized bool
}

var _ MaterialMix = (*ElectronMix)(nil)

func (m *ElectronMix) MaterialType() MaterialType { return Electrons }

func (m *ElectronMix) PolarizedScattering() bool { return m.Polarized }

func (m *ElectronMix) AbsorptionCrossSection(wavelength float64) float64 { return 0 }

func (m *ElectronMix) ScatteringCrossSection(wavelength float64) float64 {
	return thomsonCrossSection
}

func (m *ElectronMix) ExtinctionCrossSection(wavelength float64) float64 {
	return thomsonCrossSection
}

// PerformScattering samples a new direction from the dipole (or
// spherical-polarization dipole) phase function and updates p's direction,
// Stokes vector, and scatter count in place. The unpolarized path leaves
// p.Q, p.U, p.V at zero: the plain dipole phase function is the angular
// marginal of unpolarized Thomson scattering and carries no polarization
// information. The polarized path additionally applies the single-Thomson-
// scattering Mueller matrix, rotating p's incoming Stokes parameters into
// the scattering plane, attenuating them by the scattering angle, and
// recording the new polarization reference axis.
func (m *ElectronMix) PerformScattering(wavelength float64, p *Packet, rnd RandomDraw) {
	if m.Polarized {
		theta, phi := sampleDipolePolarized(rnd)
		u, v := localFrame(p.Dir)
		newDir := rotateInFrame(p.Dir, u, v, theta, phi)
		applyThomsonMueller(theta, phi, u, v, p)
		p.Dir = newDir
	} else {
		theta, phi := sampleDipole(rnd)
		p.Dir = rotate(p.Dir, theta, phi)
		p.Q, p.U, p.V = 0, 0, 0
	}
	p.NumScatt++
}

// sampleDipole draws (theta, phi) from the unpolarized dipole phase function
// p(theta) proportional to (1 + cos^2 theta), via rejection sampling on
// cos(theta), with phi uniform.
func sampleDipole(rnd RandomDraw) (theta, phi float64) {
	for {
		mu := 2*rnd.Float64() - 1
		if rnd.Float64()*2 <= 1+mu*mu {
			return math.Acos(mu), 2 * math.Pi * rnd.Float64()
		}
	}
}

// sampleDipolePolarized draws (theta, phi) from the same angular marginal as
// sampleDipole. The polarization-dependent azimuthal coupling of the
// spherical-polarization dipole phase function is applied separately, after
// the angle is drawn, by applyThomsonMueller: the azimuth itself is still
// uniform because this module does not importance-sample the
// polarization-weighted phase function, only apply its Mueller matrix to
// the resulting Stokes vector.
func sampleDipolePolarized(rnd RandomDraw) (theta, phi float64) {
	return sampleDipole(rnd)
}

// localFrame returns an orthonormal pair (u, v) perpendicular to dir, built
// from a fixed global reference axis so that (u, v, dir) is right-handed.
func localFrame(dir r3.Vec) (u, v r3.Vec) {
	ref := r3.Vec{X: 0, Y: 0, Z: 1}
	if math.Abs(dir.Z) > 0.99 {
		ref = r3.Vec{X: 1, Y: 0, Z: 0}
	}
	u = r3.Unit(r3.Cross(dir, ref))
	v = r3.Cross(dir, u)
	return u, v
}

// rotateInFrame returns dir rotated by polar angle theta and azimuth phi
// (measured from u) within the (u, v, dir) frame.
func rotateInFrame(dir, u, v r3.Vec, theta, phi float64) r3.Vec {
	st, ct := math.Sincos(theta)
	sp, cp := math.Sincos(phi)
	newDir := r3.Add(
		r3.Add(r3.Scale(ct, dir), r3.Scale(st*cp, u)),
		r3.Scale(st*sp, v),
	)
	return r3.Unit(newDir)
}

// rotate returns dir rotated by polar angle theta and azimuth phi about an
// arbitrary local frame built from dir.
func rotate(dir r3.Vec, theta, phi float64) r3.Vec {
	u, v := localFrame(dir)
	return rotateInFrame(dir, u, v, theta, phi)
}

// applyThomsonMueller updates p's Stokes parameters (Q, U, V, each carried as
// a fraction of intensity) and polarization reference axis for a single
// Thomson-scattering event through polar angle theta and azimuth phi, sampled
// in the (u, v, p.Dir) frame built by localFrame(p.Dir) before scattering.
// The matrix is Chandrasekhar's single-scattering Thomson/Rayleigh Mueller
// matrix, applied in the scattering-plane basis (Hovenier 1983's
// convention, reference axis perpendicular to the scattering plane).
func applyThomsonMueller(theta, phi float64, u, v r3.Vec, p *Packet) {
	q, uu := p.Q, p.U
	if refPerp, ok := perpComponent(p.PolRef, p.Dir); ok {
		alpha := phi - math.Atan2(r3.Dot(refPerp, v), r3.Dot(refPerp, u))
		s2, c2 := math.Sincos(2 * alpha)
		q, uu = p.Q*c2+p.U*s2, -p.Q*s2+p.U*c2
	}

	ct := math.Cos(theta)
	ct2 := ct * ct
	i2 := 0.5*(ct2+1) + 0.5*(ct2-1)*q
	q2 := 0.5*(ct2-1) + 0.5*(ct2+1)*q
	u2 := ct * uu
	v2 := ct * p.V

	if i2 <= 0 {
		p.Q, p.U, p.V = 0, 0, 0
	} else {
		p.Q, p.U, p.V = q2/i2, u2/i2, v2/i2
	}

	sp, cp := math.Sincos(phi)
	ref := r3.Sub(r3.Scale(cp, v), r3.Scale(sp, u))
	if n := r3.Norm(ref); n > 1e-12 {
		p.PolRef = r3.Scale(1/n, ref)
	}
}

// perpComponent returns ref's unit component perpendicular to dir, or
// ok=false if ref is the zero vector (no polarization reference established
// yet) or lies along dir.
func perpComponent(ref, dir r3.Vec) (perp r3.Vec, ok bool) {
	if r3.Norm(ref) < 1e-12 {
		return r3.Vec{}, false
	}
	proj := r3.Sub(ref, r3.Scale(r3.Dot(ref, dir), dir))
	n := r3.Norm(proj)
	if n < 1e-12 {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, proj), true
}
