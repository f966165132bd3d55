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
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
	"github.com/spf13/cast"
)

// NextData is a type of function that returns data records
// sequentially until it runs out of records, at which point it
// returns io.EOF.
type NextData func() (*sparse.DenseArray, error)

// nextDataNCF returns a function that sequentially retrieves one
// record of the variable varName from each file in a monthly series
// of NetCDF files. fileTemplate is the location of the files, where
// [DATE] is used as a wildcard for the date of each file, formatted
// using dateFormat. One file per calendar month is read, from start
// up to but not including end.
func nextDataNCF(fileTemplate, dateFormat, varName string, start, end time.Time, msgChan chan string) NextData {
	date := start
	return func() (*sparse.DenseArray, error) {
		if !date.Before(end) {
			return nil, io.EOF
		}
		file := strings.Replace(fileTemplate, "[DATE]", date.Format(dateFormat), -1)
		if msgChan != nil {
			msgChan <- fmt.Sprintf("Reading variable %s from %s...", varName, file)
		}
		g, err := netcdf.Open(file)
		if err != nil {
			return nil, fmt.Errorf("cmorize: opening input file %s: %v", file, err)
		}
		defer g.Close()
		data, err := readNCF(g, varName)
		if err != nil {
			return nil, fmt.Errorf("cmorize: reading %s from %s: %v", varName, file, err)
		}
		date = date.AddDate(0, 1, 0)
		return data, nil
	}
}

// readNCF reads the variable varName from the given file into a
// dense array, converting fill values to NaN.
func readNCF(g api.Group, varName string) (*sparse.DenseArray, error) {
	v, err := g.GetVariable(varName)
	if err != nil {
		return nil, err
	}
	data, err := denseFromValues(v.Values)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %v", varName, err)
	}
	// Records are stored with a leading time dimension of length 1;
	// squeeze it out so each record is a plain lat-lon array.
	if len(data.Shape) == 3 && data.Shape[0] == 1 {
		squeezed := sparse.ZerosDense(data.Shape[1], data.Shape[2])
		copy(squeezed.Elements, data.Elements)
		data = squeezed
	}
	if fv, ok := v.Attributes.Get("_FillValue"); ok {
		fill := cast.ToFloat64(flattenAttr(fv))
		for i, e := range data.Elements {
			if e == fill {
				data.Elements[i] = math.NaN()
			}
		}
	}
	return data, nil
}

// denseFromValues converts the nested-slice representation of a
// NetCDF variable into a dense array.
func denseFromValues(values interface{}) (*sparse.DenseArray, error) {
	rv := reflect.ValueOf(values)
	var shape []int
	for v := rv; v.Kind() == reflect.Slice; v = v.Index(0) {
		shape = append(shape, v.Len())
		if v.Len() == 0 {
			return nil, fmt.Errorf("cmorize: zero-length dimension in variable data")
		}
	}
	if len(shape) == 0 {
		return nil, fmt.Errorf("cmorize: variable data is scalar")
	}
	data := sparse.ZerosDense(shape...)
	i := 0
	var flatten func(v reflect.Value) error
	flatten = func(v reflect.Value) error {
		if v.Kind() != reflect.Slice {
			switch v.Kind() {
			case reflect.Float32, reflect.Float64:
				data.Elements[i] = v.Float()
			case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				data.Elements[i] = float64(v.Int())
			case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				data.Elements[i] = float64(v.Uint())
			default:
				return fmt.Errorf("cmorize: invalid variable data type %v", v.Kind())
			}
			i++
			return nil
		}
		for j := 0; j < v.Len(); j++ {
			if err := flatten(v.Index(j)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := flatten(rv); err != nil {
		return nil, err
	}
	return data, nil
}

// readCoordNCF reads a one-dimensional coordinate variable.
func readCoordNCF(g api.Group, varName string) ([]float64, error) {
	data, err := readNCF(g, varName)
	if err != nil {
		return nil, err
	}
	if len(data.Shape) != 1 {
		return nil, fmt.Errorf("cmorize: coordinate %s should have 1 dimension but has %d", varName, len(data.Shape))
	}
	return data.Elements, nil
}

// attrsToMap converts a NetCDF attribute map to string values,
// leaving out the fill value, which is handled separately.
func attrsToMap(attrs api.AttributeMap) map[string]string {
	o := make(map[string]string)
	for _, k := range attrs.Keys() {
		if k == "_FillValue" {
			continue
		}
		v, ok := attrs.Get(k)
		if !ok {
			continue
		}
		o[k] = cast.ToString(flattenAttr(v))
	}
	return o
}

// flattenAttr unwraps single-element slice attribute values, which is
// how NetCDF-4 files store scalar attributes.
func flattenAttr(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Len() == 1 {
		return rv.Index(0).Interface()
	}
	return v
}
