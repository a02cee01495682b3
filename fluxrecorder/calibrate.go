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
	"math"

	"github.com/rt-sim/photonmc/reduce"
)

// UnitConverter supplies the per-wavelength display-unit scale factors
// calibration applies before output. Consumed, not specified, by the core.
type UnitConverter interface {
	UnitFactorFlux(wavelength float64) float64
	UnitFactorSB(wavelength float64) float64
	FluxUnitName() string
	SBUnitName() string
	WavelengthUnitName() string
	ConvertWavelength(wavelength float64) float64
}

// ImageWriter writes one IFU channel cube to a named file. The only
// concrete implementation this module ships is the netCDF writer in netcdf.go;
// FITS output is out of scope.
type ImageWriter interface {
	WriteImage(path, channelName string, nx, ny, nLambda int, data []float64) error
}

// CalibrateAndWrite performs the cross-process reduction, calibrates every
// detector array in place, synthesizes Total from its components when
// needed, and writes the SED table and IFU cubes. Call must
// follow Flush. Only the root process (per reducer.IsRoot) writes output.
func (r *Recorder) CalibrateAndWrite(reducer reduce.Reducer, uc UnitConverter, w ImageWriter, sedWriter io.Writer, instrumentName string) error {
	if r.sed != nil {
		vals := r.sed.snapshot()
		reducer.SumToRoot(vals)
		r.sed.restore(vals)
	}
	if r.ifu != nil {
		vals := r.ifu.snapshot()
		reducer.SumToRoot(vals)
		r.ifu.restore(vals)
	}
	if !reducer.IsRoot() {
		return nil
	}

	cFlux := 1 / (4 * math.Pi * sq(r.cfg.SEDDistance))
	var cSB, omega float64
	if r.ifu != nil {
		omega = 4 * math.Atan(0.5*r.cfg.PixelSizeX/r.cfg.IFUDistance) * math.Atan(0.5*r.cfg.PixelSizeY/r.cfg.IFUDistance)
		if omega > 0 {
			cSB = cFlux / omega
		}
	}

	if r.sed != nil {
		r.calibrateFamily(r.sed, cFlux, uc, uc.UnitFactorFlux)
		if err := r.writeSED(sedWriter, uc, instrumentName); err != nil {
			return fmt.Errorf("fluxrecorder: writing SED table: %w", err)
		}
	}
	if r.ifu != nil {
		r.calibrateFamily(r.ifu, cSB, uc, uc.UnitFactorSB)
		if err := r.writeIFU(w, uc, instrumentName); err != nil {
			return fmt.Errorf("fluxrecorder: writing IFU cubes: %w", err)
		}
	}
	return nil
}

func sq(x float64) float64 { return x * x }

// calibrateFamily multiplies each wavelength row by c*unitFactor(wavelength)
// and synthesizes the Total channel from its components if the family isn't
// already total-only.
func (r *Recorder) calibrateFamily(f *family, c float64, uc UnitConverter, unitFactor func(float64) float64) {
	nLambda := len(r.cfg.Wavelengths)
	pixelsPerLambda := f.nBins / nLambda

	for ell, lambda := range r.cfg.Wavelengths {
		scale := c * unitFactor(lambda)
		for p := 0; p < pixelsPerLambda; p++ {
			bin := p + ell*pixelsPerLambda
			for ch := 0; ch < f.channels.numChannels(); ch++ {
				idx := ch*f.nBins + bin
				v := f.data[idx].Load()
				f.data[idx].Store(v * scale)
			}
		}
	}

	if r.recordTotalOnly {
		return
	}
	cs := f.channels
	f.totalSynth = make([]float64, f.nBins)
	for bin := 0; bin < f.nBins; bin++ {
		total := f.data[cs.idxPrimaryDirect*f.nBins+bin].Load() + f.data[cs.idxPrimaryScattered*f.nBins+bin].Load()
		if r.cfg.MediumEmission {
			total += f.data[cs.idxSecondaryDirect*f.nBins+bin].Load() + f.data[cs.idxSecondaryScattered*f.nBins+bin].Load()
		}
		f.totalSynth[bin] = total
	}
}
