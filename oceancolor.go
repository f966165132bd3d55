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
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
)

// inDateFormat is the format of dates in configuration fields.
const inDateFormat = "20060102"

// ocFileDateFormat is the format of the dates embedded in ocean
// colour product file names.
const ocFileDateFormat = "200601"

// ocVars maps CMOR short names to the names the variables have in
// the raw ocean colour files.
var ocVars = map[string]string{
	"chl": "chlor_a",
}

// OceanColor is a Source for the ESA CCI merged ocean colour
// satellite product, which stores one month of data per file.
type OceanColor struct {
	fileTemplate string
	start, end   time.Time
	msgChan      chan string
}

// NewOceanColor initializes an ocean colour data source.
//
// fileTemplate is the location of the monthly product files, where
// [DATE] should be used as a wildcard for the date of each file.
//
// startDate and endDate are the dates of the beginning and end of the
// period to be processed. Format = "YYYYMMDD"; endDate is exclusive.
func NewOceanColor(fileTemplate, startDate, endDate string, msgChan chan string) (*OceanColor, error) {
	start, err := time.Parse(inDateFormat, startDate)
	if err != nil {
		return nil, fmt.Errorf("cmorize: parsing start date: %v", err)
	}
	end, err := time.Parse(inDateFormat, endDate)
	if err != nil {
		return nil, fmt.Errorf("cmorize: parsing end date: %v", err)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("cmorize: start date %v is not before end date %v", start, end)
	}
	return &OceanColor{
		fileTemplate: fileTemplate,
		start:        start,
		end:          end,
		msgChan:      msgChan,
	}, nil
}

// firstFile opens the first file of the series, which holds the
// coordinate values and metadata shared by all of the files.
func (w *OceanColor) firstFile() (api.Group, error) {
	file := strings.Replace(w.fileTemplate, "[DATE]", w.start.Format(ocFileDateFormat), -1)
	g, err := netcdf.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cmorize: opening input file %s: %v", file, err)
	}
	return g, nil
}

// Lat returns the latitude coordinate values of the raw grid.
func (w *OceanColor) Lat() ([]float64, error) {
	g, err := w.firstFile()
	if err != nil {
		return nil, err
	}
	defer g.Close()
	return readCoordNCF(g, "lat")
}

// Lon returns the longitude coordinate values of the raw grid.
func (w *OceanColor) Lon() ([]float64, error) {
	g, err := w.firstFile()
	if err != nil {
		return nil, err
	}
	defer g.Close()
	return readCoordNCF(g, "lon")
}

// Times returns the time coordinate values, one per monthly file.
func (w *OceanColor) Times() []time.Time {
	var o []time.Time
	for date := w.start; date.Before(w.end); date = date.AddDate(0, 1, 0) {
		o = append(o, date)
	}
	return o
}

// Var returns a function that sequentially reads the monthly records
// of the variable with the given CMOR short name.
func (w *OceanColor) Var(shortName string) NextData {
	rawName, err := w.RawName(shortName)
	if err != nil {
		return func() (*sparse.DenseArray, error) { return nil, err }
	}
	return nextDataNCF(w.fileTemplate, ocFileDateFormat, rawName, w.start, w.end, w.msgChan)
}

// RawName returns the name the variable with the given CMOR short
// name has in the raw files.
func (w *OceanColor) RawName(shortName string) (string, error) {
	rawName, ok := ocVars[shortName]
	if !ok {
		return "", fmt.Errorf("cmorize: unsupported ocean colour variable %s", shortName)
	}
	return rawName, nil
}

// VarAttrs returns the attributes of the given raw variable as
// recorded in the first file of the series.
func (w *OceanColor) VarAttrs(rawName string) (map[string]string, error) {
	g, err := w.firstFile()
	if err != nil {
		return nil, err
	}
	defer g.Close()
	v, err := g.GetVarGetter(rawName)
	if err != nil {
		return nil, fmt.Errorf("cmorize: reading attributes of %s: %v", rawName, err)
	}
	return attrsToMap(v.Attributes()), nil
}

// GlobalAttrs returns the global attributes of the first file of the
// series.
func (w *OceanColor) GlobalAttrs() (map[string]string, error) {
	g, err := w.firstFile()
	if err != nil {
		return nil, err
	}
	defer g.Close()
	return attrsToMap(g.Attributes()), nil
}
