// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package photonmc

import (
	"github.com/rt-sim/photonmc/photon"
	"gonum.org/v1/gonum/spatial/r3"
)

// Emitter produces one photon packet per history. How photons are emitted —
// source geometry, luminosity weighting, wavelength sampling — is outside
// this module's scope; Emitter is the seam RunBatch
// calls into, mirroring the way photon.MaterialMix and randsrc.Source are
// consumed rather than specified.
type Emitter interface {
	// Emit returns the emission position and a freshly populated packet for
	// history index, on the worker identified by workerID. workerID lets an
	// Emitter implementation address its own per-worker random source the
	// same way fluxrecorder addresses its per-worker ContributionList.
	Emit(workerID int, index int) (origin r3.Vec, pkt *photon.Packet, err error)
}

// EmitterFunc adapts a plain function to Emitter.
type EmitterFunc func(workerID, index int) (r3.Vec, *photon.Packet, error)

func (f EmitterFunc) Emit(workerID, index int) (r3.Vec, *photon.Packet, error) {
	return f(workerID, index)
}
