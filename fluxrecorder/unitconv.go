// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package fluxrecorder

import "github.com/ctessum/unit"

// SIUnitConverter is the default UnitConverter: detector arrays accumulate
// in SI (flux in W/m^2, surface brightness in W/m^2/sr, wavelength in
// meters); this converts them to the selected display units using
// github.com/ctessum/unit for the dimensional arithmetic, the same library
// InMAP uses to keep concentration units honest across its science code.
type SIUnitConverter struct {
	// WavelengthUnit selects "nm", "um", or "m" (default).
	WavelengthUnit string
	// FluxUnit selects "cgs" (erg/s/cm^2) or "si" (default, W/m^2).
	FluxUnit string
}

var (
	meterUnit      = unit.New(1, unit.Dimensions{unit.LengthDim: 1})
	nanometerUnit  = unit.New(1e-9, unit.Dimensions{unit.LengthDim: 1})
	micrometerUnit = unit.New(1e-6, unit.Dimensions{unit.LengthDim: 1})

	// siFluxUnit is W/m^2 expressed as kg*s^-3 (power / area, area folded
	// into the dimensionless scale since unit.Dimensions has no named W).
	siFluxUnit  = unit.New(1, unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -3})
	cgsFluxUnit = unit.New(1e-3, unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -3})
)

var _ UnitConverter = (*SIUnitConverter)(nil)

func (c *SIUnitConverter) wavelengthTarget() *unit.Unit {
	switch c.WavelengthUnit {
	case "nm":
		return nanometerUnit
	case "um":
		return micrometerUnit
	default:
		return meterUnit
	}
}

func (c *SIUnitConverter) fluxTarget() *unit.Unit {
	if c.FluxUnit == "cgs" {
		return cgsFluxUnit
	}
	return siFluxUnit
}

func (c *SIUnitConverter) ConvertWavelength(wavelength float64) float64 {
	w := unit.New(wavelength, unit.Dimensions{unit.LengthDim: 1})
	return unit.Div(w, c.wavelengthTarget()).Value()
}

func (c *SIUnitConverter) UnitFactorFlux(wavelength float64) float64 {
	return unit.Div(unit.New(1, unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -3}), c.fluxTarget()).Value()
}

func (c *SIUnitConverter) UnitFactorSB(wavelength float64) float64 {
	return c.UnitFactorFlux(wavelength)
}

func (c *SIUnitConverter) WavelengthUnitName() string {
	switch c.WavelengthUnit {
	case "nm":
		return "nm"
	case "um":
		return "um"
	default:
		return "m"
	}
}

func (c *SIUnitConverter) FluxUnitName() string {
	if c.FluxUnit == "cgs" {
		return "erg/s/cm^2"
	}
	return "W/m^2"
}

func (c *SIUnitConverter) SBUnitName() string {
	return c.FluxUnitName() + "/sr"
}
