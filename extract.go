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
	"os/user"
	"path/filepath"
	"time"

	"github.com/ctessum/unit"
)

// DatasetAttrs identifies an observational dataset and the
// provenance information that is recorded in its output files.
type DatasetAttrs struct {
	// DatasetID is the name of the dataset (e.g., "ESACCI-OC").
	DatasetID string

	// Version is the dataset version (e.g., "fv5.0").
	Version string

	// Tier is the data access tier.
	Tier int

	// Source says where the raw data can be obtained.
	Source string

	// Reference is the citation for the dataset.
	Reference string

	// Comment holds free-form information about the processing.
	Comment string

	// Type is the observation type (e.g., "sat" for satellite).
	Type string
}

// ExtractVariable turns a merged dataset into its CMOR-compliant
// form: variable metadata from the CMOR table entry, repaired
// coordinates, corrected units, and the standard set of global
// attributes.
func ExtractVariable(d *Dataset, v VarInfo, attrs DatasetAttrs) error {
	FixVarMetadata(d.Cube, v)
	if err := FixCoords(d); err != nil {
		return err
	}
	if v.AddDepth {
		AddDepthCoord(d)
	}
	if err := FixData(d.Cube); err != nil {
		return err
	}
	SetGlobalAtts(d, attrs)
	return nil
}

// FixVarMetadata sets the variable metadata from the CMOR table
// entry.
func FixVarMetadata(c *Cube, v VarInfo) {
	c.Name = v.ShortName
	c.StandardName = v.StandardName
	c.LongName = v.LongName
	c.Units = v.Units
}

// dataConversions gives, for each variable whose raw units differ
// from the CMOR table units, the factor that converts the data.
var dataConversions = map[string]struct{ raw, cmor *unit.Unit }{
	// Chlorophyll concentration arrives in mg m-3; the CMOR table
	// wants kg m-3.
	"chl": {
		raw:  unit.New(1.0e-6, unit.KilogramPerMeter3),
		cmor: unit.New(1, unit.KilogramPerMeter3),
	},
}

// FixData converts the data values of c from their raw units to the
// corresponding CMOR table units.
func FixData(c *Cube) error {
	conv, ok := dataConversions[c.Name]
	if !ok {
		return nil
	}
	factor := unit.Div(conv.raw, conv.cmor)
	if err := factor.Check(unit.Dimless); err != nil {
		return fmt.Errorf("cmorize: fixing %s data: %v", c.Name, err)
	}
	c.Data.Scale(factor.Value())
	return nil
}

// FixCoords puts the horizontal coordinates into their standard CMOR
// form: latitude ascending, longitude in [0, 360) and ascending, and
// cell bounds calculated for both.
func FixCoords(d *Dataset) error {
	c := d.Cube
	if len(c.Data.Shape) != 3 {
		return fmt.Errorf("cmorize: fixing coordinates: data must be dimensioned [time, lat, lon]")
	}
	if n := len(d.Lat); n > 1 && d.Lat[0] > d.Lat[n-1] {
		d.Lat = reversed(d.Lat)
		flipLatRecords(d)
	}
	needsRoll := false
	for _, l := range d.Lon {
		if l < 0 {
			needsRoll = true
			break
		}
	}
	if needsRoll {
		lon := make([]float64, len(d.Lon))
		for i, l := range d.Lon {
			lon[i] = math.Mod(l+360, 360)
		}
		shift := 0
		for i, l := range lon {
			if l < lon[shift] {
				shift = i
			}
		}
		d.Lon = rolled(lon, shift)
		rollLonRecords(d, shift)
	}
	d.LatBounds = guessBounds(d.Lat)
	d.LonBounds = guessBounds(d.Lon)
	return nil
}

// flipLatRecords reverses the latitude dimension of every data
// record.
func flipLatRecords(d *Dataset) {
	nt, ny, nx := d.Cube.Data.Shape[0], d.Cube.Data.Shape[1], d.Cube.Data.Shape[2]
	for t := 0; t < nt; t++ {
		for j := 0; j < ny/2; j++ {
			for i := 0; i < nx; i++ {
				a := d.Cube.Data.Get(t, j, i)
				b := d.Cube.Data.Get(t, ny-1-j, i)
				d.Cube.Data.Set(b, t, j, i)
				d.Cube.Data.Set(a, t, ny-1-j, i)
			}
		}
	}
}

// rollLonRecords rotates the longitude dimension of every data
// record left by shift cells.
func rollLonRecords(d *Dataset, shift int) {
	nt, ny, nx := d.Cube.Data.Shape[0], d.Cube.Data.Shape[1], d.Cube.Data.Shape[2]
	row := make([]float64, nx)
	for t := 0; t < nt; t++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				row[i] = d.Cube.Data.Get(t, j, (i+shift)%nx)
			}
			for i := 0; i < nx; i++ {
				d.Cube.Data.Set(row[i], t, j, i)
			}
		}
	}
}

func rolled(x []float64, shift int) []float64 {
	o := make([]float64, len(x))
	for i := range x {
		o[i] = x[(i+shift)%len(x)]
	}
	return o
}

// guessBounds calculates cell edge coordinates from cell center
// coordinates, placing each edge halfway between neighboring
// centers.
func guessBounds(x []float64) [][2]float64 {
	o := make([][2]float64, len(x))
	if len(x) < 2 {
		return o
	}
	for i := range x {
		switch i {
		case 0:
			o[i][0] = x[0] - (x[1]-x[0])/2
		default:
			o[i][0] = (x[i-1] + x[i]) / 2
		}
		switch i {
		case len(x) - 1:
			o[i][1] = x[i] + (x[i]-x[i-1])/2
		default:
			o[i][1] = (x[i] + x[i+1]) / 2
		}
	}
	return o
}

// AddDepthCoord adds the scalar depth coordinate that CMOR requires
// for surface ocean variables: 1 m, positive down.
func AddDepthCoord(d *Dataset) {
	d.Depth = 1
	d.HasDepth = true
}

// SetGlobalAtts replaces the global attributes of the dataset with
// the standard set recorded in CMOR-compliant output files. Any
// binning note recorded during merging is prepended to the comment.
func SetGlobalAtts(d *Dataset, attrs DatasetAttrs) {
	comment := attrs.Comment
	if b := d.Attrs["BINNING"]; b != "" {
		if comment != "" {
			comment = b + "; " + comment
		} else {
			comment = b
		}
	}
	userName := "unknown user"
	if u, err := user.Current(); err == nil {
		userName = u.Username
	}
	host, err := os.Hostname()
	if err != nil {
		host = "unknown host"
	}
	d.Attrs = map[string]string{
		"title":      fmt.Sprintf("%s satellite data reformatted for model evaluation", attrs.DatasetID),
		"dataset_id": attrs.DatasetID,
		"version":    attrs.Version,
		"tier":       fmt.Sprintf("%d", attrs.Tier),
		"source":     attrs.Source,
		"reference":  attrs.Reference,
		"comment":    comment,
		"user":       userName,
		"host":       host,
		"history":    "Created on " + time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
		"project_id": "OBS",
	}
}

// SaveVariable writes the dataset to outDir following the
// OBS_<dataset>_<type>_<version>_<mip>_<short_name>_<startdate>-<enddate>.nc
// file name convention, returning the path of the written file.
func SaveVariable(d *Dataset, v VarInfo, attrs DatasetAttrs, outDir string) (string, error) {
	if len(d.Time) == 0 {
		return "", fmt.Errorf("cmorize: saving %s: dataset has no time steps", v.ShortName)
	}
	name := fmt.Sprintf("OBS_%s_%s_%s_%s_%s_%s-%s.nc",
		attrs.DatasetID, attrs.Type, attrs.Version, v.MIP, v.ShortName,
		d.Time[0].Format(ocFileDateFormat), d.Time[len(d.Time)-1].Format(ocFileDateFormat))
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("cmorize: saving %s: %v", v.ShortName, err)
	}
	path := filepath.Join(outDir, name)
	ff, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cmorize: saving %s: %v", v.ShortName, err)
	}
	if err := d.Write(ff); err != nil {
		ff.Close()
		return "", err
	}
	if err := ff.Close(); err != nil {
		return "", fmt.Errorf("cmorize: saving %s: %v", v.ShortName, err)
	}
	return path, nil
}
