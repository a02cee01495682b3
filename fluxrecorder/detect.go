// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package fluxrecorder

import "github.com/rt-sim/photonmc/photon"

// Detect records one photon-packet detection event.
// workerID addresses the calling thread's local ContributionList (see
// workerpool.Body's doc comment for why this is an explicit parameter rather
// than implicit thread-local state). ell is the wavelength bin index of
// pp.Wavelength, resolved by the caller against its wavelength grid; pixel is
// the IFU pixel index, or < 0 if the packet missed the IFU field of view;
// tau is the optical depth from the last interaction to the instrument.
func (r *Recorder) Detect(workerID int, pp *photon.Packet, ell, pixel int, tau float64) {
	lExt := pp.Attenuated(tau)

	if r.sed != nil {
		r.detectFamily(r.sed, pp, ell, lExt)
	}
	if r.ifu != nil && pixel >= 0 {
		lell := pixel + ell*r.cfg.Nx*r.cfg.Ny
		r.detectFamily(r.ifu, pp, lell, lExt)
	}

	if r.cfg.RecordStatistics {
		r.recordStatistic(workerID, pp.HistoryIndex, ell, pixel, lExt)
	}
}

// detectFamily applies the SED/IFU branch rules, identical
// for either family once indexed by bin.
func (r *Recorder) detectFamily(f *family, pp *photon.Packet, bin int, lExt float64) {
	cs := f.channels
	if r.recordTotalOnly {
		f.add(cs.idxTotal, bin, pp.Luminosity)
		return
	}

	if pp.Primary {
		if pp.NumScatt == 0 {
			f.add(cs.idxTransparent, bin, pp.Luminosity)
			f.add(cs.idxPrimaryDirect, bin, lExt)
		} else {
			f.add(cs.idxPrimaryScattered, bin, lExt)
			if cs.firstScatterLevel >= 0 && pp.NumScatt <= r.cfg.NumScatteringLevels {
				f.add(cs.firstScatterLevel+pp.NumScatt-1, bin, lExt)
			}
		}
	} else {
		if pp.NumScatt == 0 {
			f.add(cs.idxSecondaryDirect, bin, lExt)
		} else {
			f.add(cs.idxSecondaryScattered, bin, lExt)
		}
	}

	if r.cfg.RecordPolarization {
		f.add(cs.idxStokesQ, bin, lExt*pp.Q)
		f.add(cs.idxStokesU, bin, lExt*pp.U)
		f.add(cs.idxStokesV, bin, lExt*pp.V)
	}
}

// recordStatistic appends one (ell, pixel, L_ext) triple to the calling
// worker's ContributionList, folding and resetting it first if the history
// has changed.
func (r *Recorder) recordStatistic(workerID int, historyIndex uint64, ell, pixel int, lExt float64) {
	cl := r.contributions[workerID]
	if !cl.hasHistory || cl.historyIndex != historyIndex {
		cl.fold(r.sed, r.ifu)
		cl.reset(historyIndex)
	}
	cl.append(ell, pixel, lExt)
}

// Flush folds every worker's pending ContributionList into the moment
// arrays and resets them. Must be called after the photon
// loop completes and before CalibrateAndWrite. Flush is idempotent: a
// second call folds empty lists and adds nothing.
func (r *Recorder) Flush() {
	for _, cl := range r.contributions {
		cl.fold(r.sed, r.ifu)
		cl.items = cl.items[:0]
	}
}
