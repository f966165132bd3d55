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
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

func testDataset() *Dataset {
	data := sparse.ZerosDense(2, 2, 3)
	for i := range data.Elements {
		data.Elements[i] = float64(i) + 0.5
	}
	return &Dataset{
		Cube: &Cube{
			Name:         "chl",
			StandardName: "mass_concentration_of_phytoplankton_expressed_as_chlorophyll_in_sea_water",
			LongName:     "Total Chlorophyll Mass Concentration",
			Units:        "kg m-3",
			Attrs:        map[string]string{"sensor": "MERIS"},
			Data:         data,
		},
		Lat: []float64{-45, 45},
		Lon: []float64{0, 120, 240},
		Time: []time.Time{
			time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2008, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		Attrs: map[string]string{
			"creator_name": "somebody",
			"BINNING":      "",
		},
	}
}

func TestDatasetWriteLoad(t *testing.T) {
	const tolerance = 1.0e-5 // The data is stored in single precision.

	d := testDataset()
	d.LatBounds = guessBounds(d.Lat)
	d.LonBounds = guessBounds(d.Lon)
	AddDepthCoord(d)

	path := filepath.Join(t.TempDir(), "test.nc")
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write(ff); err != nil {
		t.Fatal(err)
	}
	if err := ff.Close(); err != nil {
		t.Fatal(err)
	}

	fr, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()
	d2, err := LoadDataset(fr)
	if err != nil {
		t.Fatal(err)
	}

	arrayCompare(d2.Cube.Data, d.Cube.Data, tolerance, "data", t)
	if !reflect.DeepEqual(d2.Lat, d.Lat) {
		t.Errorf("lat: want %v but have %v", d.Lat, d2.Lat)
	}
	if !reflect.DeepEqual(d2.Lon, d.Lon) {
		t.Errorf("lon: want %v but have %v", d.Lon, d2.Lon)
	}
	if !reflect.DeepEqual(d2.LatBounds, d.LatBounds) {
		t.Errorf("lat bounds: want %v but have %v", d.LatBounds, d2.LatBounds)
	}
	if len(d2.Time) != len(d.Time) {
		t.Fatalf("want %d time steps but have %d", len(d.Time), len(d2.Time))
	}
	for i, tt := range d.Time {
		if !d2.Time[i].Equal(tt) {
			t.Errorf("time %d: want %v but have %v", i, tt, d2.Time[i])
		}
	}
	if !d2.HasDepth || d2.Depth != 1 {
		t.Errorf("want a scalar depth of 1 m but have %v (HasDepth=%v)", d2.Depth, d2.HasDepth)
	}
	if d2.Cube.Units != d.Cube.Units {
		t.Errorf("units: want %q but have %q", d.Cube.Units, d2.Cube.Units)
	}
	if d2.Cube.StandardName != d.Cube.StandardName {
		t.Errorf("standard name: want %q but have %q", d.Cube.StandardName, d2.Cube.StandardName)
	}
	if d2.Cube.Attrs["sensor"] != "MERIS" {
		t.Errorf("sensor attribute: want MERIS but have %q", d2.Cube.Attrs["sensor"])
	}
	if d2.Attrs["creator_name"] != "somebody" {
		t.Errorf("creator_name attribute: want somebody but have %q", d2.Attrs["creator_name"])
	}
}

func TestDatasetWriteLoad_missing(t *testing.T) {
	d := testDataset()
	d.Cube.Data.Set(math.NaN(), 0, 1, 2)

	path := filepath.Join(t.TempDir(), "missing.nc")
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write(ff); err != nil {
		t.Fatal(err)
	}
	if err := ff.Close(); err != nil {
		t.Fatal(err)
	}

	fr, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()
	d2, err := LoadDataset(fr)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(d2.Cube.Data.Get(0, 1, 2)) {
		t.Errorf("missing value should survive a round trip but is %g", d2.Cube.Data.Get(0, 1, 2))
	}
	if math.IsNaN(d2.Cube.Data.Get(0, 0, 0)) {
		t.Error("valid values should not become missing")
	}
}

func TestSaveVariable(t *testing.T) {
	d := testDataset()
	v, err := GetVariable("Omon", "chl")
	if err != nil {
		t.Fatal(err)
	}
	attrs := DatasetAttrs{
		DatasetID: "ESACCI-OC",
		Version:   "fv5.0",
		Tier:      2,
		Type:      "sat",
	}
	dir := t.TempDir()
	path, err := SaveVariable(d, v, attrs, dir)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "OBS_ESACCI-OC_sat_fv5.0_Omon_chl_200801-200802.nc")
	if path != want {
		t.Errorf("want %s but have %s", want, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
