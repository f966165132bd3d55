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

package cmor

import "github.com/obsmodel/cmorize"

func init() {
	Register(AllVars{}, "CMIP5", "HadGEM2-CC", allVars)
	Register(O2{}, "CMIP5", "HadGEM2-CC", "o2")
}

// AllVars clamps latitude coordinate values in HadGEM2 output, which
// can fall slightly outside the valid [-90, 90] range.
type AllVars struct{ BaseFix }

func (AllVars) FixMetadata(d *cmorize.Dataset) error {
	for i, l := range d.Lat {
		if l > 90 {
			d.Lat[i] = 90
		} else if l < -90 {
			d.Lat[i] = -90
		}
	}
	return nil
}

// O2 sets the CF names of dissolved oxygen, which HadGEM2-CC writes
// with nonstandard values.
type O2 struct{ BaseFix }

func (O2) FixMetadata(d *cmorize.Dataset) error {
	d.Cube.StandardName = "mole_concentration_of_dissolved_molecular_oxygen_in_sea_water"
	d.Cube.LongName = "Dissolved Oxygen Concentration"
	return nil
}
