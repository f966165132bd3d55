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
	"os"
	"sort"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// FillValue is the missing-data marker used in output files.
const FillValue = 1.0e20

// timeUnits is the encoding of the time coordinate in output files.
const timeUnits = "days since 1970-01-01 00:00:00"

var timeEpoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Cube holds the data and metadata of a single dataset variable.
type Cube struct {
	// Name is the CMOR short name of the variable
	// (e.g., "chl" for chlorophyll).
	Name string

	// StandardName and LongName identify the variable
	// per the CF conventions.
	StandardName string
	LongName     string

	// Units holds the physical units of the data.
	Units string

	// Attrs holds any additional variable attributes.
	Attrs map[string]string

	// Data holds the data, dimensioned [time, lat, lon].
	// Missing values are NaN.
	Data *sparse.DenseArray
}

// Dataset holds a single-variable observational dataset on a regular
// latitude-longitude grid, along with the information needed to write
// it to a NetCDF file.
type Dataset struct {
	Cube *Cube

	// Lat and Lon are the grid cell center coordinates
	// [degrees north and east, respectively].
	Lat, Lon []float64

	// LatBounds and LonBounds are the grid cell edge coordinates.
	// They are empty until FixCoords calculates them.
	LatBounds, LonBounds [][2]float64

	// Time holds the time coordinate values, one per data record.
	Time []time.Time

	// Depth is a scalar depth coordinate [m, positive down].
	// It is only written out when HasDepth is true.
	Depth    float64
	HasDepth bool

	// Attrs holds the global attributes of the dataset.
	Attrs map[string]string
}

// Write writes the dataset to w in NetCDF format, with an unlimited
// time dimension and missing values encoded as FillValue.
func (d *Dataset) Write(w *os.File) error {
	c := d.Cube
	if c == nil || len(c.Data.Shape) != 3 {
		return fmt.Errorf("cmorize: writing dataset: data must be dimensioned [time, lat, lon]")
	}
	nt, ny, nx := c.Data.Shape[0], c.Data.Shape[1], c.Data.Shape[2]
	if len(d.Time) != nt || len(d.Lat) != ny || len(d.Lon) != nx {
		return fmt.Errorf("cmorize: writing dataset: coordinate lengths (%d, %d, %d) don't match data shape (%d, %d, %d)",
			len(d.Time), len(d.Lat), len(d.Lon), nt, ny, nx)
	}
	hasBounds := len(d.LatBounds) == ny && len(d.LonBounds) == nx

	dims := []string{"time", "lat", "lon"}
	lengths := []int{0, ny, nx} // time is the record dimension.
	if hasBounds {
		dims = append(dims, "bnds")
		lengths = append(lengths, 2)
	}
	h := cdf.NewHeader(dims, lengths)
	for _, a := range sortedKeys(d.Attrs) {
		h.AddAttribute("", a, d.Attrs[a])
	}

	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "standard_name", "time")
	h.AddAttribute("time", "units", timeUnits)
	h.AddAttribute("time", "calendar", "gregorian")

	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "standard_name", "latitude")
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "standard_name", "longitude")
	h.AddAttribute("lon", "units", "degrees_east")
	if hasBounds {
		h.AddAttribute("lat", "bounds", "lat_bnds")
		h.AddVariable("lat_bnds", []string{"lat", "bnds"}, []float64{0})
		h.AddAttribute("lon", "bounds", "lon_bnds")
		h.AddVariable("lon_bnds", []string{"lon", "bnds"}, []float64{0})
	}
	if d.HasDepth {
		h.AddVariable("depth", nil, []float64{0})
		h.AddAttribute("depth", "standard_name", "depth")
		h.AddAttribute("depth", "units", "m")
		h.AddAttribute("depth", "positive", "down")
	}

	h.AddVariable(c.Name, []string{"time", "lat", "lon"}, []float32{0})
	if c.StandardName != "" {
		h.AddAttribute(c.Name, "standard_name", c.StandardName)
	}
	if c.LongName != "" {
		h.AddAttribute(c.Name, "long_name", c.LongName)
	}
	h.AddAttribute(c.Name, "units", c.Units)
	h.AddAttribute(c.Name, "_FillValue", []float32{float32(FillValue)})
	if d.HasDepth {
		h.AddAttribute(c.Name, "coordinates", "depth")
	}
	for _, a := range sortedKeys(c.Attrs) {
		h.AddAttribute(c.Name, a, c.Attrs[a])
	}
	h.Define()

	ff, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("cmorize: creating output file: %v", err)
	}
	times := make([]float64, nt)
	for i, t := range d.Time {
		times[i] = t.Sub(timeEpoch).Hours() / 24
	}
	if err := writeCoordNCF(ff, "time", times); err != nil {
		return err
	}
	if err := writeCoordNCF(ff, "lat", d.Lat); err != nil {
		return err
	}
	if err := writeCoordNCF(ff, "lon", d.Lon); err != nil {
		return err
	}
	if hasBounds {
		if err := writeCoordNCF(ff, "lat_bnds", flattenBounds(d.LatBounds)); err != nil {
			return err
		}
		if err := writeCoordNCF(ff, "lon_bnds", flattenBounds(d.LonBounds)); err != nil {
			return err
		}
	}
	if d.HasDepth {
		if err := writeCoordNCF(ff, "depth", []float64{d.Depth}); err != nil {
			return err
		}
	}
	if err := writeDataNCF(ff, c.Name, c.Data); err != nil {
		return err
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return fmt.Errorf("cmorize: writing number of records: %v", err)
	}
	return nil
}

// writeDataNCF writes a data variable, converting to float32 and
// encoding NaN as FillValue.
func writeDataNCF(f *cdf.File, Var string, data *sparse.DenseArray) error {
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		if math.IsNaN(e) {
			data32[i] = FillValue
		} else {
			data32[i] = float32(e)
		}
	}
	end := f.Header.Lengths(Var)
	if f.Header.IsRecordVariable(Var) {
		end[0] = data.Shape[0]
	}
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	if _, err := w.Write(data32); err != nil {
		return fmt.Errorf("cmorize: writing variable %s to netcdf file: %v", Var, err)
	}
	return nil
}

// writeCoordNCF writes a coordinate variable in double precision.
func writeCoordNCF(f *cdf.File, Var string, vals []float64) error {
	end := f.Header.Lengths(Var)
	if f.Header.IsRecordVariable(Var) {
		end[0] = len(vals)
	}
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	if _, err := w.Write(vals); err != nil {
		return fmt.Errorf("cmorize: writing variable %s to netcdf file: %v", Var, err)
	}
	return nil
}

// LoadDataset reads a single-variable dataset that has been written
// by (*Dataset).Write.
func LoadDataset(r *os.File) (*Dataset, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("cmorize: loading dataset: %v", err)
	}
	fi, err := r.Stat()
	if err != nil {
		return nil, fmt.Errorf("cmorize: loading dataset: %v", err)
	}
	nrec := int(f.Header.NumRecs(fi.Size()))
	d := &Dataset{
		Attrs: make(map[string]string),
	}
	for _, a := range f.Header.Attributes("") {
		if s, ok := f.Header.GetAttribute("", a).(string); ok {
			d.Attrs[a] = s
		}
	}
	times, err := readFloat64NCF(f, "time", nrec)
	if err != nil {
		return nil, err
	}
	d.Time = make([]time.Time, len(times))
	for i, t := range times {
		d.Time[i] = timeEpoch.Add(time.Duration(t * 24 * float64(time.Hour)))
	}
	if d.Lat, err = readFloat64NCF(f, "lat", nrec); err != nil {
		return nil, err
	}
	if d.Lon, err = readFloat64NCF(f, "lon", nrec); err != nil {
		return nil, err
	}
	for _, v := range f.Header.Variables() {
		switch v {
		case "time", "lat", "lon", "lat_bnds", "lon_bnds":
			continue
		case "depth":
			depth, err := readFloat64NCF(f, v, nrec)
			if err != nil {
				return nil, err
			}
			d.Depth = depth[0]
			d.HasDepth = true
			continue
		}
		if d.Cube != nil {
			return nil, fmt.Errorf("cmorize: loading dataset: more than one data variable (%s and %s)", d.Cube.Name, v)
		}
		c := &Cube{
			Name:  v,
			Attrs: make(map[string]string),
		}
		for _, a := range f.Header.Attributes(v) {
			s, ok := f.Header.GetAttribute(v, a).(string)
			if !ok {
				continue
			}
			switch a {
			case "standard_name":
				c.StandardName = s
			case "long_name":
				c.LongName = s
			case "units":
				c.Units = s
			case "coordinates":
			default:
				c.Attrs[a] = s
			}
		}
		if c.Data, err = readDataNCF(f, v, nrec); err != nil {
			return nil, err
		}
		d.Cube = c
	}
	if d.Cube == nil {
		return nil, fmt.Errorf("cmorize: loading dataset: no data variable found")
	}
	nb := len(d.Lat)
	if b, err := readFloat64NCF(f, "lat_bnds", nrec); err == nil {
		d.LatBounds = unflattenBounds(b, nb)
	}
	if b, err := readFloat64NCF(f, "lon_bnds", nrec); err == nil {
		d.LonBounds = unflattenBounds(b, len(d.Lon))
	}
	return d, nil
}

// readExtent calculates the read bounds and number of elements of a
// variable, filling in the record dimension length, which the file
// header stores as zero.
func readExtent(h *cdf.Header, Var string, nrec int) (begin, end []int, n int) {
	end = h.Lengths(Var)
	n = 1
	for i, dim := range end {
		if dim == 0 {
			end[i] = nrec
			dim = nrec
		}
		n *= dim
	}
	return make([]int, len(end)), end, n
}

// readDataNCF reads a float32 data variable, converting FillValue
// to NaN.
func readDataNCF(f *cdf.File, Var string, nrec int) (*sparse.DenseArray, error) {
	begin, end, n := readExtent(f.Header, Var, nrec)
	r := f.Reader(Var, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("cmorize: reading variable %s: %v", Var, err)
	}
	data32, ok := buf.([]float32)
	if !ok {
		return nil, fmt.Errorf("cmorize: variable %s is not float32", Var)
	}
	data := sparse.ZerosDense(end...)
	for i, e := range data32 {
		if e == FillValue {
			data.Elements[i] = math.NaN()
		} else {
			data.Elements[i] = float64(e)
		}
	}
	return data, nil
}

// readFloat64NCF reads a double-precision coordinate variable.
func readFloat64NCF(f *cdf.File, Var string, nrec int) ([]float64, error) {
	found := false
	for _, v := range f.Header.Variables() {
		if v == Var {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("cmorize: variable %s not found", Var)
	}
	begin, end, n := readExtent(f.Header, Var, nrec)
	r := f.Reader(Var, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("cmorize: reading variable %s: %v", Var, err)
	}
	vals, ok := buf.([]float64)
	if !ok {
		return nil, fmt.Errorf("cmorize: variable %s is not float64", Var)
	}
	return vals, nil
}

func flattenBounds(b [][2]float64) []float64 {
	o := make([]float64, 2*len(b))
	for i, bb := range b {
		o[2*i], o[2*i+1] = bb[0], bb[1]
	}
	return o
}

func unflattenBounds(b []float64, n int) [][2]float64 {
	if len(b) != 2*n {
		return nil
	}
	o := make([][2]float64, n)
	for i := range o {
		o[i] = [2]float64{b[2*i], b[2*i+1]}
	}
	return o
}

func sortedKeys(m map[string]string) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
