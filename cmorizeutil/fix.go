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

package cmorizeutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/obsmodel/cmorize"
	"github.com/obsmodel/cmorize/cmor"
)

// FixFile applies the fixes registered for the given project and
// model to the model output file at inputFile and writes the result
// to outputFile. If outputFile is empty, "_fixed" is appended to the
// input file name.
func FixFile(project, model, inputFile, outputFile string, msgChan chan string) error {
	vars := []string{project, model, inputFile}
	varNames := []string{"Fix.Project", "Fix.Model", "Fix.InputFile"}
	for i, v := range vars {
		if v == "" || v == "No Default" {
			return fmt.Errorf("cmorize: configuration variable %s is not specified", varNames[i])
		}
	}
	if outputFile == "" {
		outputFile = strings.TrimSuffix(inputFile, ".nc") + "_fixed.nc"
	}

	r, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("cmorize: opening model output file: %v", err)
	}
	d, err := cmorize.LoadDataset(r)
	if err != nil {
		r.Close()
		return err
	}
	if err := r.Close(); err != nil {
		return fmt.Errorf("cmorize: closing model output file: %v", err)
	}

	fixes := cmor.GetFixes(project, model, d.Cube.Name)
	if msgChan != nil {
		if len(fixes) == 0 {
			msgChan <- fmt.Sprintf("No fixes are registered for %s %s variable %s.", project, model, d.Cube.Name)
		} else {
			msgChan <- fmt.Sprintf("Applying %d fix(es) to %s...", len(fixes), d.Cube.Name)
		}
	}
	if err := cmor.Apply(d, project, model); err != nil {
		return err
	}

	w, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("cmorize: creating fixed output file: %v", err)
	}
	if err := d.Write(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cmorize: closing fixed output file: %v", err)
	}
	if msgChan != nil {
		msgChan <- fmt.Sprintf("Wrote %s", outputFile)
	}
	return nil
}
