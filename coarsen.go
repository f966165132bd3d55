/*
Copyright © 2019 the CMORize authors.
This file is part of CMORize.

CMORize is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

CMORize is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with CMORize.  If not, see <http://www.gnu.org/licenses/>.
*/

package cmorize

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Coarsen reduces the resolution of the two-dimensional array a by
// averaging blocks of bins x bins cells. Missing values (NaN) are
// left out of each block average; a block with no valid values
// becomes NaN. Both dimensions of a must divide evenly by bins.
func Coarsen(a *sparse.DenseArray, bins int) (*sparse.DenseArray, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("cmorize: coarsen: bin size %d is not positive", bins)
	}
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("cmorize: coarsen: array should have 2 dimensions but has %d", len(a.Shape))
	}
	ny, nx := a.Shape[0], a.Shape[1]
	if ny%bins != 0 || nx%bins != 0 {
		return nil, fmt.Errorf("cmorize: coarsen: grid size %dx%d does not divide evenly into %dx%d bins",
			ny, nx, bins, bins)
	}
	o := sparse.ZerosDense(ny/bins, nx/bins)
	vals := make([]float64, 0, bins*bins)
	for j := 0; j < ny/bins; j++ {
		for i := 0; i < nx/bins; i++ {
			vals = vals[:0]
			for jj := j * bins; jj < (j+1)*bins; jj++ {
				for ii := i * bins; ii < (i+1)*bins; ii++ {
					if v := a.Get(jj, ii); !math.IsNaN(v) {
						vals = append(vals, v)
					}
				}
			}
			if len(vals) == 0 {
				o.Set(math.NaN(), j, i)
			} else {
				o.Set(floats.Sum(vals)/float64(len(vals)), j, i)
			}
		}
	}
	return o, nil
}

// coarsenCoord reduces the resolution of a cell-center coordinate to
// match data coarsened with the same bin size.
func coarsenCoord(x []float64, bins int) ([]float64, error) {
	if len(x)%bins != 0 {
		return nil, fmt.Errorf("cmorize: coarsen: coordinate length %d does not divide evenly into bins of %d",
			len(x), bins)
	}
	o := make([]float64, len(x)/bins)
	for i := range o {
		o[i] = floats.Sum(x[i*bins:(i+1)*bins]) / float64(bins)
	}
	return o, nil
}
