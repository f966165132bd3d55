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

// Package cmor holds corrections for known problems in the published
// output of specific climate models. Fixes are registered by project,
// model, and variable, and are applied to datasets before they are
// used for model evaluation.
package cmor

import (
	"fmt"
	"strings"

	"github.com/obsmodel/cmorize"
)

// Fix corrects a known problem in the published output of a specific
// climate model.
type Fix interface {
	// FixMetadata corrects the metadata and coordinates of a
	// dataset.
	FixMetadata(d *cmorize.Dataset) error

	// FixData corrects the data values of a variable.
	FixData(c *cmorize.Cube) error
}

// BaseFix is embedded by fixes so they only need to implement the
// parts of the Fix interface they use.
type BaseFix struct{}

func (BaseFix) FixMetadata(*cmorize.Dataset) error { return nil }
func (BaseFix) FixData(*cmorize.Cube) error        { return nil }

// allVars is the registry key for fixes that apply to every variable
// of a model.
const allVars = "allvars"

var registry = make(map[string][]Fix)

// Project and model names are matched case-insensitively; variable
// short names are lower case.
func key(project, model, variable string) string {
	return strings.ToUpper(project) + "/" + strings.ToUpper(model) + "/" + strings.ToLower(variable)
}

// Register adds a fix for the given variables of the given model.
// Use the variable name "allvars" for fixes that apply to every
// variable of the model.
func Register(f Fix, project, model string, variables ...string) {
	for _, v := range variables {
		k := key(project, model, v)
		registry[k] = append(registry[k], f)
	}
}

// GetFixes returns the fixes registered for the given variable of
// the given model. Fixes that apply to all of the model's variables
// come first.
func GetFixes(project, model, variable string) []Fix {
	var o []Fix
	o = append(o, registry[key(project, model, allVars)]...)
	o = append(o, registry[key(project, model, variable)]...)
	return o
}

// Apply runs all of the fixes registered for the dataset's variable,
// metadata fixes before data fixes.
func Apply(d *cmorize.Dataset, project, model string) error {
	fixes := GetFixes(project, model, d.Cube.Name)
	for _, f := range fixes {
		if err := f.FixMetadata(d); err != nil {
			return fmt.Errorf("cmor: applying %T to %s: %v", f, d.Cube.Name, err)
		}
	}
	for _, f := range fixes {
		if err := f.FixData(d.Cube); err != nil {
			return fmt.Errorf("cmor: applying %T to %s: %v", f, d.Cube.Name, err)
		}
	}
	return nil
}
