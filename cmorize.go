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

// Package cmorize converts observational climate datasets to
// CMOR-compliant NetCDF files suitable for use in climate model
// evaluation.
package cmorize

import "time"

// Version gives the version number of this software.
const Version = "1.0.0"

// Source is an interface for retrieving the raw data and metadata of
// an observational dataset that is spread across a series of NetCDF
// files.
type Source interface {
	// Lat returns the latitude coordinate values of the raw grid
	// and Lon returns the longitude coordinate values.
	Lat() ([]float64, error)
	Lon() ([]float64, error)

	// Times returns the time coordinate values of the dataset,
	// one per raw file.
	Times() []time.Time

	// Var returns a function that retrieves the data records for
	// the variable with the given CMOR short name, one record per
	// raw file. The returned function returns io.EOF after the
	// last record.
	Var(shortName string) NextData

	// RawName returns the name the variable with the given CMOR
	// short name has in the raw files.
	RawName(shortName string) (string, error)

	// VarAttrs returns the attributes of the given raw variable
	// as recorded in the first file of the series.
	VarAttrs(rawName string) (map[string]string, error)

	// GlobalAttrs returns the global attributes of the first file
	// of the series.
	GlobalAttrs() (map[string]string, error)
}
