// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package fluxrecorder

import "fmt"

// writeIFU emits one image cube per non-empty channel, named
// "<instrument>_<channel>", skipping any channel whose cube is entirely
// zero.
func (r *Recorder) writeIFU(w ImageWriter, uc UnitConverter, instrumentName string) error {
	f := r.ifu
	nLambda := len(r.cfg.Wavelengths)
	nx, ny := r.cfg.Nx, r.cfg.Ny

	for _, name := range f.outputChannels() {
		data := make([]float64, nx*ny*nLambda)
		nonzero := false
		for bin := range data {
			v, ok := f.valueAt(name, bin)
			if !ok {
				continue
			}
			data[bin] = v
			if v != 0 {
				nonzero = true
			}
		}
		if !nonzero {
			continue
		}
		path := fmt.Sprintf("%s_%s", instrumentName, name)
		if err := w.WriteImage(path, name, nx, ny, nLambda, data); err != nil {
			return fmt.Errorf("channel %s: %w", name, err)
		}
	}
	return nil
}
