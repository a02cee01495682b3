// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package photon defines the photon packet data carried through the
// simulation and the material-mix interface the core consumes to scatter it.
package photon

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Packet is a single photon packet in flight. HistoryIndex is assigned by the
// emitter and is stable across every scattering of the same history.
type Packet struct {
	Wavelength   float64
	Dir          r3.Vec
	Luminosity   float64
	Q, U, V      float64
	PolRef       r3.Vec // polarization reference axis; zero vector means unpolarized
	NumScatt     int
	Primary      bool
	HistoryIndex uint64
}

// Attenuated returns the packet's luminosity after extinction by optical
// depth tau along the path to the instrument.
func (p *Packet) Attenuated(tau float64) float64 {
	return p.Luminosity * math.Exp(-tau)
}
