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

	"github.com/BurntSushi/toml"
)

// VarInfo describes a variable as specified in a CMOR table.
type VarInfo struct {
	// ShortName is the CMOR short name of the variable.
	ShortName string `toml:"short_name"`

	// StandardName and LongName identify the variable per the CF
	// conventions.
	StandardName string `toml:"standard_name"`
	LongName     string `toml:"long_name"`

	// Units holds the units the variable must be converted to.
	Units string `toml:"units"`

	// MIP is the name of the CMOR table the variable belongs to
	// (e.g., "Omon" for monthly ocean variables).
	MIP string `toml:"mip"`

	// AddDepth specifies whether the variable gets a scalar
	// surface depth coordinate.
	AddDepth bool `toml:"add_depth"`
}

// cmorTable holds the built-in CMOR table entries, keyed by MIP table
// name and variable short name.
var cmorTable = map[string]map[string]VarInfo{
	"Omon": {
		"chl": {
			ShortName:    "chl",
			StandardName: "mass_concentration_of_phytoplankton_expressed_as_chlorophyll_in_sea_water",
			LongName:     "Total Chlorophyll Mass Concentration",
			Units:        "kg m-3",
			MIP:          "Omon",
			AddDepth:     true,
		},
	},
}

// GetVariable returns the CMOR table entry for the given MIP table
// and variable short name.
func GetVariable(mip, shortName string) (VarInfo, error) {
	t, ok := cmorTable[mip]
	if !ok {
		return VarInfo{}, fmt.Errorf("cmorize: no CMOR table for MIP %s", mip)
	}
	v, ok := t[shortName]
	if !ok {
		return VarInfo{}, fmt.Errorf("cmorize: variable %s is not in CMOR table %s", shortName, mip)
	}
	return v, nil
}

// tableFile is the file format read by LoadTable.
type tableFile struct {
	Variables []VarInfo `toml:"variables"`
}

// LoadTable adds the entries in the TOML file at path to the CMOR
// table, overriding any built-in entries for the same variables.
//
// The file holds a list of variable descriptions:
//
//	[[variables]]
//	short_name = "chl"
//	standard_name = "..."
//	long_name = "Total Chlorophyll Mass Concentration"
//	units = "kg m-3"
//	mip = "Omon"
//	add_depth = true
func LoadTable(path string) error {
	var t tableFile
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return fmt.Errorf("cmorize: loading CMOR table %s: %v", path, err)
	}
	for _, v := range t.Variables {
		if v.ShortName == "" || v.MIP == "" {
			return fmt.Errorf("cmorize: loading CMOR table %s: every entry needs a short_name and a mip", path)
		}
		if _, ok := cmorTable[v.MIP]; !ok {
			cmorTable[v.MIP] = make(map[string]VarInfo)
		}
		cmorTable[v.MIP][v.ShortName] = v
	}
	return nil
}
