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
	"io"

	"github.com/ctessum/sparse"
)

// mergeMetaKeys are the global attributes that are carried over from
// the raw files into the merged dataset.
var mergeMetaKeys = []string{"creator_name", "creator_url", "license", "sensor", "processing_level"}

// inconsistentAttrs are variable attributes that vary between raw
// files in a series and are removed before merging.
var inconsistentAttrs = []string{"grid_mapping", "ancillary_variables", "parameter_vocab_uri"}

// Merge concatenates the monthly records of the variable with the
// given CMOR short name into a single dataset. The latitude axis is
// flipped to ascending order if necessary, and when bins is even and
// nonzero each record is coarsened by averaging bins x bins blocks of
// cells.
func Merge(src Source, shortName string, bins int) (*Dataset, error) {
	doBin := bins != 0 && bins%2 == 0

	lat, err := src.Lat()
	if err != nil {
		return nil, err
	}
	lon, err := src.Lon()
	if err != nil {
		return nil, err
	}
	flip := len(lat) > 1 && lat[0] > lat[len(lat)-1]
	if flip {
		lat = reversed(lat)
	}
	if doBin {
		if lat, err = coarsenCoord(lat, bins); err != nil {
			return nil, err
		}
		if lon, err = coarsenCoord(lon, bins); err != nil {
			return nil, err
		}
	}

	rawName, err := src.RawName(shortName)
	if err != nil {
		return nil, err
	}
	varAttrs, err := src.VarAttrs(rawName)
	if err != nil {
		return nil, err
	}
	for _, a := range inconsistentAttrs {
		delete(varAttrs, a)
	}
	globalAttrs, err := src.GlobalAttrs()
	if err != nil {
		return nil, err
	}
	meta := make(map[string]string)
	for _, k := range mergeMetaKeys {
		if v, ok := globalAttrs[k]; ok {
			meta[k] = v
		}
	}
	if doBin {
		// The doubled space matches the attribute value written by
		// earlier versions of this dataset.
		meta["BINNING"] = fmt.Sprintf("Data binned using  %d by %d cells average", bins, bins)
	} else {
		meta["BINNING"] = ""
	}

	var records []*sparse.DenseArray
	nextData := src.Var(shortName)
	for {
		rec, err := nextData()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if flip {
			rec = flipLat(rec)
		}
		if doBin {
			if rec, err = Coarsen(rec, bins); err != nil {
				return nil, err
			}
		}
		if len(rec.Shape) != 2 || rec.Shape[0] != len(lat) || rec.Shape[1] != len(lon) {
			return nil, fmt.Errorf("cmorize: merging %s: record shape %v does not match grid %dx%d",
				shortName, rec.Shape, len(lat), len(lon))
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("cmorize: merging %s: no data records", shortName)
	}
	times := src.Times()
	if len(times) != len(records) {
		return nil, fmt.Errorf("cmorize: merging %s: %d time steps but %d data records",
			shortName, len(times), len(records))
	}

	cube := &Cube{
		Name:  shortName,
		Attrs: make(map[string]string),
	}
	for k, v := range varAttrs {
		switch k {
		case "units":
			cube.Units = v
		case "standard_name":
			cube.StandardName = v
		case "long_name":
			cube.LongName = v
		default:
			cube.Attrs[k] = v
		}
	}
	cube.Data = stackRecords(records)
	return &Dataset{
		Cube:  cube,
		Lat:   lat,
		Lon:   lon,
		Time:  times,
		Attrs: meta,
	}, nil
}

// stackRecords concatenates two-dimensional records along a new
// leading time dimension.
func stackRecords(records []*sparse.DenseArray) *sparse.DenseArray {
	ny, nx := records[0].Shape[0], records[0].Shape[1]
	o := sparse.ZerosDense(len(records), ny, nx)
	for t, rec := range records {
		copy(o.Elements[t*ny*nx:(t+1)*ny*nx], rec.Elements)
	}
	return o
}

// flipLat reverses the latitude (leading) dimension of a
// two-dimensional record.
func flipLat(a *sparse.DenseArray) *sparse.DenseArray {
	ny, nx := a.Shape[0], a.Shape[1]
	o := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		copy(o.Elements[(ny-1-j)*nx:(ny-j)*nx], a.Elements[j*nx:(j+1)*nx])
	}
	return o
}

func reversed(x []float64) []float64 {
	o := make([]float64, len(x))
	for i, v := range x {
		o[len(x)-1-i] = v
	}
	return o
}
