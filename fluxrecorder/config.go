// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package fluxrecorder accepts scattered-photon contributions from many
// worker threads, accumulates them into typed detector arrays, merges
// deferred per-history statistics, and calibrates/writes output at the end
// of a simulation batch.
package fluxrecorder

import (
	"fmt"

	"github.com/rt-sim/photonmc/internal/atomicfloat"
)

// Config describes an instrument's recording setup, supplied once to
// NewRecorder.
type Config struct {
	Instrument string

	// Wavelengths is the wavelength grid, Nlambda entries, increasing.
	Wavelengths []float64

	HasMedium      bool
	MediumEmission bool

	RecordComponents    bool
	NumScatteringLevels int // S
	RecordPolarization  bool
	RecordStatistics    bool

	SEDEnabled  bool
	SEDDistance float64 // d, meters

	IFUEnabled       bool
	IFUDistance      float64
	Nx, Ny           int
	PixelSizeX       float64
	PixelSizeY       float64
	CenterX, CenterY float64
}

// channel names, in detector-family output order.
const (
	chTotal                 = "total"
	chTransparent           = "transparent"
	chPrimaryDirect         = "primarydirect"
	chPrimaryScattered      = "primaryscattered"
	chSecondaryDirect       = "secondarydirect"
	chSecondaryScattered    = "secondaryscattered"
	chStokesQ               = "stokesQ"
	chStokesU               = "stokesU"
	chStokesV               = "stokesV"
	chPrimaryScatteredLevel = "primaryscatteredlevel" // + level number, 1-based
)

// channelSet is the allocated channel layout for one detector family
// (SED or IFU).
type channelSet struct {
	names []string
	index map[string]int

	idxTotal, idxTransparent                  int
	idxPrimaryDirect, idxPrimaryScattered     int
	idxSecondaryDirect, idxSecondaryScattered int
	idxStokesQ, idxStokesU, idxStokesV        int
	firstScatterLevel                         int // -1 if none
}

func buildChannelSet(cfg Config, recordTotalOnly bool) channelSet {
	cs := channelSet{index: make(map[string]int), firstScatterLevel: -1}
	add := func(name string) int {
		i := len(cs.names)
		cs.names = append(cs.names, name)
		cs.index[name] = i
		return i
	}
	cs.idxTotal, cs.idxTransparent = -1, -1
	cs.idxPrimaryDirect, cs.idxPrimaryScattered = -1, -1
	cs.idxSecondaryDirect, cs.idxSecondaryScattered = -1, -1
	cs.idxStokesQ, cs.idxStokesU, cs.idxStokesV = -1, -1, -1

	if recordTotalOnly {
		cs.idxTotal = add(chTotal)
		return cs
	}

	cs.idxTransparent = add(chTransparent)
	cs.idxPrimaryDirect = add(chPrimaryDirect)
	cs.idxPrimaryScattered = add(chPrimaryScattered)
	cs.idxSecondaryDirect = add(chSecondaryDirect)
	cs.idxSecondaryScattered = add(chSecondaryScattered)

	if cfg.RecordPolarization {
		cs.idxStokesQ = add(chStokesQ)
		cs.idxStokesU = add(chStokesU)
		cs.idxStokesV = add(chStokesV)
	}
	if cfg.NumScatteringLevels > 0 {
		cs.firstScatterLevel = len(cs.names)
		for k := 1; k <= cfg.NumScatteringLevels; k++ {
			add(fmt.Sprintf("%s%d", chPrimaryScatteredLevel, k))
		}
	}
	return cs
}

func (cs channelSet) numChannels() int { return len(cs.names) }

// family holds one detector family's (SED or IFU) flat channel-major arrays:
// data[channel*nBins + bin]. The four statistics moment arrays are
// bin-indexed only: the contribution queue tracks
// weight per (wavelength bin, pixel) regardless of which channel a given
// detection landed in (a contribution triple carries no channel field), so
// moments[k] has length nBins, not channels*nBins.
type family struct {
	channels channelSet
	nBins    int // Nlambda for SED, Nx*Ny*Nlambda for IFU
	data     []atomicfloat.Value
	moments  [4][]atomicfloat.Value // only allocated if RecordStatistics

	// pixelsPerWavelength is Nx*Ny for an IFU family (1 for SED), used to
	// convert a (pixel, ell) pair to the flat lell bin index.
	pixelsPerWavelength int

	// totalSynth holds the Total channel synthesized at calibration time
	// when the channel set doesn't already carry a dedicated Total channel
	// synthesized at calibration time; nil before calibration or when
	// recordTotalOnly.
	totalSynth []float64
}

func newFamily(cs channelSet, nBins, pixelsPerWavelength int, withStats bool) *family {
	f := &family{channels: cs, nBins: nBins, pixelsPerWavelength: pixelsPerWavelength}
	f.data = make([]atomicfloat.Value, cs.numChannels()*nBins)
	if withStats {
		for k := range f.moments {
			f.moments[k] = make([]atomicfloat.Value, nBins)
		}
	}
	return f
}

func (f *family) add(channel, bin int, w float64) {
	if channel < 0 || bin < 0 || bin >= f.nBins {
		return
	}
	f.data[channel*f.nBins+bin].Add(w)
}

// snapshot copies every channel array into a single flat slice suitable for
// reduce.Reducer.SumToRoot.
func (f *family) snapshot() []float64 {
	out := make([]float64, len(f.data))
	for i := range f.data {
		out[i] = f.data[i].Load()
	}
	return out
}

// restore writes vals (the post-reduction result) back into the atomic
// channel arrays.
func (f *family) restore(vals []float64) {
	for i := range f.data {
		f.data[i].Store(vals[i])
	}
}

// valueAt returns the calibrated value of channel name at bin, reading the
// synthesized Total slice when name is "total" and the channel set doesn't
// carry a dedicated Total channel.
func (f *family) valueAt(name string, bin int) (float64, bool) {
	if name == chTotal && f.channels.idxTotal < 0 {
		if f.totalSynth == nil {
			return 0, false
		}
		return f.totalSynth[bin], true
	}
	ch, ok := f.channels.index[name]
	if !ok {
		return 0, false
	}
	return f.data[ch*f.nBins+bin].Load(), true
}

// outputChannels returns the ordered list of channel names CalibrateAndWrite
// emits: Total first (recorded or synthesized), then every allocated channel.
func (f *family) outputChannels() []string {
	out := make([]string, 0, len(f.channels.names)+1)
	if f.channels.idxTotal < 0 {
		out = append(out, chTotal)
	}
	out = append(out, f.channels.names...)
	return out
}

// addMoments atomically adds wTotal^k to the k=1..4 moment arrays at bin,
// after every detection's stats are folded in.
func (f *family) addMoments(bin int, wTotal float64) {
	if f.moments[0] == nil || bin < 0 || bin >= f.nBins {
		return
	}
	wk := wTotal
	for k := 0; k < 4; k++ {
		f.moments[k][bin].Add(wk)
		wk *= wTotal
	}
}

// Recorder is the flux-accumulation engine, accepting
// concurrent Detect calls from many worker threads and producing calibrated
// output at CalibrateAndWrite.
type Recorder struct {
	cfg             Config
	recordTotalOnly bool
	nLambda         int

	sed *family // nil if SEDEnabled is false
	ifu *family // nil if IFUEnabled is false

	contributions []*contributionList // indexed by worker id
}

// NewRecorder finalizes the configuration: channel
// allocation follows §3's rules, with recordTotalOnly forced when
// RecordComponents is false or no medium is present.
func NewRecorder(cfg Config, numWorkers int) *Recorder {
	recordTotalOnly := !cfg.RecordComponents || !cfg.HasMedium
	cs := buildChannelSet(cfg, recordTotalOnly)

	r := &Recorder{
		cfg:             cfg,
		recordTotalOnly: recordTotalOnly,
		nLambda:         len(cfg.Wavelengths),
	}
	if cfg.SEDEnabled {
		r.sed = newFamily(cs, r.nLambda, 1, cfg.RecordStatistics)
	}
	if cfg.IFUEnabled {
		r.ifu = newFamily(cs, cfg.Nx*cfg.Ny*r.nLambda, cfg.Nx*cfg.Ny, cfg.RecordStatistics)
	}
	r.contributions = make([]*contributionList, numWorkers)
	for i := range r.contributions {
		r.contributions[i] = newContributionList()
	}
	return r
}

// RecordTotalOnly reports whether finalization collapsed the channel set to
// the single Total channel.
func (r *Recorder) RecordTotalOnly() bool { return r.recordTotalOnly }

// NumChannels returns the allocated channel count for the SED family, or the
// IFU family if SED is disabled. Returns 0 if neither is enabled.
func (r *Recorder) NumChannels() int {
	switch {
	case r.sed != nil:
		return r.sed.channels.numChannels()
	case r.ifu != nil:
		return r.ifu.channels.numChannels()
	default:
		return 0
	}
}
