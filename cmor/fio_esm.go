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
	Register(Ch4{}, "CMIP5", "FIO-ESM", "ch4")
	Register(Co2{}, "CMIP5", "FIO-ESM", "co2")
}

// Ch4 corrects methane concentrations in FIO-ESM output. The model
// reports ch4 as a mass mixing ratio even though the declared units
// are a mole fraction, so the values are converted using the molar
// masses of dry air (29 g mol-1) and methane (16 g mol-1), scaled to
// parts per billion.
type Ch4 struct{ BaseFix }

func (Ch4) FixData(c *cmorize.Cube) error {
	c.Data.Scale(29. / 16. * 1.e9)
	return nil
}

// Co2 corrects carbon dioxide concentrations in FIO-ESM output,
// which have the same problem as ch4: mass mixing ratio converted
// with the molar mass of CO2 (44 g mol-1), scaled to parts per
// million.
type Co2 struct{ BaseFix }

func (Co2) FixData(c *cmorize.Cube) error {
	c.Data.Scale(29. / 44. * 1.e6)
	return nil
}
