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
	"io"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

// testSource is a Source with in-memory records.
type testSource struct {
	lat, lon    []float64
	times       []time.Time
	records     []*sparse.DenseArray
	varAttrs    map[string]string
	globalAttrs map[string]string
}

func (s *testSource) Lat() ([]float64, error) { return append([]float64{}, s.lat...), nil }
func (s *testSource) Lon() ([]float64, error) { return append([]float64{}, s.lon...), nil }
func (s *testSource) Times() []time.Time      { return s.times }

func (s *testSource) Var(shortName string) NextData {
	var i int
	return func() (*sparse.DenseArray, error) {
		if i == len(s.records) {
			return nil, io.EOF
		}
		i++
		return s.records[i-1].Copy(), nil
	}
}

func (s *testSource) RawName(shortName string) (string, error) { return "chlor_a", nil }

func (s *testSource) VarAttrs(rawName string) (map[string]string, error) {
	o := make(map[string]string)
	for k, v := range s.varAttrs {
		o[k] = v
	}
	return o, nil
}

func (s *testSource) GlobalAttrs() (map[string]string, error) { return s.globalAttrs, nil }

func newTestSource() *testSource {
	// Latitude is descending, as in the raw satellite files.
	s := &testSource{
		lat: []float64{3, 1, -1, -3},
		lon: []float64{-3, -1, 1, 3},
		times: []time.Time{
			time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2008, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		varAttrs: map[string]string{
			"units":        "mg m-3",
			"long_name":    "Chlorophyll-a concentration",
			"grid_mapping": "crs",
		},
		globalAttrs: map[string]string{
			"creator_name":     "somebody",
			"sensor":           "MERIS",
			"processing_level": "L3",
			"extra":            "should not be carried over",
		},
	}
	for r := 0; r < 2; r++ {
		rec := sparse.ZerosDense(4, 4)
		for j := 0; j < 4; j++ {
			for i := 0; i < 4; i++ {
				rec.Set(float64(r*100+j*10+i), j, i)
			}
		}
		s.records = append(s.records, rec)
	}
	// One missing value in the first record.
	s.records[0].Set(math.NaN(), 3, 0)
	return s
}

func TestMerge(t *testing.T) {
	const tolerance = 1.0e-8

	d, err := Merge(newTestSource(), "chl", 2)
	if err != nil {
		t.Fatal(err)
	}

	if want := []float64{-2, 2}; !reflect.DeepEqual(d.Lat, want) {
		t.Errorf("lat: want %v but have %v", want, d.Lat)
	}
	if want := []float64{-2, 2}; !reflect.DeepEqual(d.Lon, want) {
		t.Errorf("lon: want %v but have %v", want, d.Lon)
	}

	want := sparse.ZerosDense(2, 2, 2)
	// The first record has its (3, 0) value missing, which after the
	// latitude flip lands in the southwest block.
	want.Elements = []float64{
		24, 27.5, 5.5, 7.5,
		125.5, 127.5, 105.5, 107.5,
	}
	arrayCompare(d.Cube.Data, want, tolerance, "merged data", t)

	if want := "mg m-3"; d.Cube.Units != want {
		t.Errorf("units: want %q but have %q", want, d.Cube.Units)
	}
	if want := "Chlorophyll-a concentration"; d.Cube.LongName != want {
		t.Errorf("long_name: want %q but have %q", want, d.Cube.LongName)
	}
	if _, ok := d.Cube.Attrs["grid_mapping"]; ok {
		t.Error("the grid_mapping attribute should have been removed")
	}

	wantAttrs := map[string]string{
		"creator_name":     "somebody",
		"sensor":           "MERIS",
		"processing_level": "L3",
		"BINNING":          "Data binned using  2 by 2 cells average",
	}
	if !reflect.DeepEqual(d.Attrs, wantAttrs) {
		t.Errorf("global attributes: want %v but have %v", wantAttrs, d.Attrs)
	}
}

func TestMerge_noBinning(t *testing.T) {
	// Binning is only active when the bin size is even and nonzero.
	for _, bins := range []int{0, 3} {
		d, err := Merge(newTestSource(), "chl", bins)
		if err != nil {
			t.Fatal(err)
		}
		if want := []int{2, 4, 4}; !reflect.DeepEqual(d.Cube.Data.Shape, want) {
			t.Errorf("bins=%d: want shape %v but have %v", bins, want, d.Cube.Data.Shape)
		}
		if want := []float64{-3, -1, 1, 3}; !reflect.DeepEqual(d.Lat, want) {
			t.Errorf("bins=%d: lat should be flipped but not binned; have %v", bins, d.Lat)
		}
		if d.Attrs["BINNING"] != "" {
			t.Errorf("bins=%d: the BINNING attribute should be empty but is %q", bins, d.Attrs["BINNING"])
		}
	}
}

func TestMerge_unevenBinning(t *testing.T) {
	if _, err := Merge(newTestSource(), "chl", 6); err == nil {
		t.Error("a grid that does not divide evenly into bins should cause an error")
	}
}
