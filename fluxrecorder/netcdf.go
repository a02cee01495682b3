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
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// NetCDFImageWriter is the default ImageWriter: one netCDF file per channel,
// storing the (Nx, Ny, Nlambda) cube as a github.com/ctessum/sparse.DenseArray,
// modeled on a CTMData.Write / writeNCF gridded-output convention.
// FITS output is out of scope.
type NetCDFImageWriter struct {
	// Dir is the output directory each channel file is written into.
	Dir string
	// SBUnitName labels the surface-brightness attribute on each variable.
	SBUnitName string
}

var _ ImageWriter = (*NetCDFImageWriter)(nil)

func (n *NetCDFImageWriter) WriteImage(path, channelName string, nx, ny, nLambda int, data []float64) error {
	arr := sparse.ZerosDense(nLambda, ny, nx)
	for ell := 0; ell < nLambda; ell++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				idx := x + y*nx + ell*nx*ny
				arr.Set(data[idx], ell, y, x)
			}
		}
	}

	h := cdf.NewHeader([]string{"nlambda", "ny", "nx"}, []int{nLambda, ny, nx})
	h.AddVariable(channelName, []string{"nlambda", "ny", "nx"}, []float32{0})
	h.AddAttribute(channelName, "units", n.SBUnitName)
	h.Define()

	ff, err := os.Create(fmt.Sprintf("%s/%s.ncf", n.Dir, path))
	if err != nil {
		return err
	}
	defer ff.Close()

	f, err := cdf.Create(ff, h)
	if err != nil {
		return err
	}
	return writeCDFVariable(f, channelName, arr)
}

func writeCDFVariable(f *cdf.File, name string, data *sparse.DenseArray) error {
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	_, err := w.Write(data32)
	return err
}
