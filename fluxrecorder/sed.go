// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package fluxrecorder

import (
	"fmt"
	"io"
)

// writeSED emits the single multi-column SED text table: a title
// line and one header line per column, first column wavelength in the display unit, subsequent
// columns one per allocated channel (plus synthesized Total), rows in
// increasing wavelength. No third-party text-table library exists anywhere
// in the reference pack, so this writer is the one place in this module
// built directly on fmt.Fprintf (see DESIGN.md).
func (r *Recorder) writeSED(w io.Writer, uc UnitConverter, instrumentName string) error {
	f := r.sed
	channels := f.outputChannels()

	if _, err := fmt.Fprintf(w, "# %s SED\n", instrumentName); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# column 1: wavelength (%s)\n", uc.WavelengthUnitName()); err != nil {
		return err
	}
	for i, name := range channels {
		unitName := uc.FluxUnitName()
		if _, err := fmt.Fprintf(w, "# column %d: %s (%s)\n", i+2, name, unitName); err != nil {
			return err
		}
	}

	for ell, lambda := range r.cfg.Wavelengths {
		if _, err := fmt.Fprintf(w, "%.8g", uc.ConvertWavelength(lambda)); err != nil {
			return err
		}
		for _, name := range channels {
			v, _ := f.valueAt(name, ell)
			if _, err := fmt.Fprintf(w, " %.8g", v); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
