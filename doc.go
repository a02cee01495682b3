// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package photonmc is the simulation driver: it wires mesh.Grid,
// workerpool.Pool, and one fluxrecorder.Recorder per instrument into the
// photon-batch loop, peeling off a detection toward every instrument at
// each emission and scattering event.
package photonmc
