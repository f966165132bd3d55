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
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
)

func TestCoarsen(t *testing.T) {
	const tolerance = 1.0e-8

	a := sparse.ZerosDense(4, 4)
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			a.Set(float64(j*10+i), j, i)
		}
	}
	result, err := Coarsen(a, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := sparse.ZerosDense(2, 2)
	want.Elements = []float64{5.5, 7.5, 25.5, 27.5}
	arrayCompare(result, want, tolerance, "coarsen", t)
}

func TestCoarsen_missing(t *testing.T) {
	const tolerance = 1.0e-8

	a := sparse.ZerosDense(2, 2)
	a.Elements = []float64{1, 3, math.NaN(), 5}
	result, err := Coarsen(a, 2)
	if err != nil {
		t.Fatal(err)
	}
	// The missing value is left out of the block average.
	if want := 3.0; result.Get(0, 0) != want {
		t.Errorf("want %g but have %g", want, result.Get(0, 0))
	}

	allMissing := sparse.ZerosDense(2, 2)
	allMissing.Elements = []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}
	result, err = Coarsen(allMissing, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(result.Get(0, 0)) {
		t.Errorf("block with no valid values should be NaN but is %g", result.Get(0, 0))
	}
}

func TestCoarsen_uneven(t *testing.T) {
	a := sparse.ZerosDense(6, 6)
	if _, err := Coarsen(a, 4); err == nil {
		t.Error("a grid that does not divide evenly into bins should cause an error")
	}
	if _, err := Coarsen(sparse.ZerosDense(4, 4, 4), 2); err == nil {
		t.Error("a 3-d array should cause an error")
	}
}

func TestCoarsenCoord(t *testing.T) {
	x := []float64{-3, -1, 1, 3}
	result, err := coarsenCoord(x, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-2, 2}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("want %v but have %v", want, result)
	}
	if _, err := coarsenCoord(x, 3); err == nil {
		t.Error("a coordinate that does not divide evenly into bins should cause an error")
	}
}

func arrayCompare(have, want *sparse.DenseArray, tolerance float64, name string, t *testing.T) {
	if !reflect.DeepEqual(want.Shape, have.Shape) {
		t.Errorf("%s: want shape %v but have shape %v", name, want.Shape, have.Shape)
		return
	}
	for i, wantv := range want.Elements {
		havev := have.Elements[i]
		if math.IsNaN(havev) || math.IsInf(havev, 0) {
			t.Errorf("%s, element %d: is %g", name, i, havev)
		} else if math.IsNaN(wantv) || math.IsInf(wantv, 0) {
			t.Errorf("%s, golden data element %d: is %g", name, i, wantv)
		}
		if math.Abs(havev-wantv)/math.Abs(havev+wantv)*2 > tolerance {
			t.Errorf("%s, element %d: want %g but have %g", name, i, wantv, havev)
		}
	}
}
