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
	"path/filepath"
	"sort"

	"github.com/obsmodel/cmorize"
)

// Obs cmorizes an observational satellite dataset as specified by
// the given configuration and saves the result for use in climate
// model evaluation.
//
// startDate is the date of the first month of raw data to be
// processed. Format = "YYYYMMDD".
//
// endDate is the date of the end of the period to be processed
// (exclusive). Format = "YYYYMMDD".
//
// dataFiles is the location of the raw monthly product files.
// [DATE] should be used as a wild card for the date of each file.
//
// outputDir is the directory where the output files should be
// written.
//
// tablePath is the location of an optional TOML file holding CMOR
// variable table entries that add to or override the built-in ones.
//
// binSize is the number of grid cells in each direction to average
// together when reducing the resolution of the raw data. It must be
// an even number; zero disables binning.
//
// variables maps the CMOR short names of the variables to be
// processed to the names of the CMOR tables (MIPs) they belong to.
//
// attrs identifies the dataset and the provenance information to be
// recorded in the output files.
//
// keepMerged specifies whether the intermediate merged file for each
// variable should be kept instead of deleted after processing.
func Obs(startDate, endDate, dataFiles, outputDir, tablePath string, binSize int,
	variables map[string]string, attrs cmorize.DatasetAttrs, keepMerged bool, msgChan chan string) error {
	vars := []string{startDate, endDate, dataFiles, attrs.DatasetID}
	varNames := []string{"Obs.StartDate", "Obs.EndDate", "Obs.DataFiles", "Obs.DatasetID"}
	for i, v := range vars {
		if v == "" || v == "No Default" {
			return fmt.Errorf("cmorize: configuration variable %s is not specified", varNames[i])
		}
	}
	if len(variables) == 0 {
		return fmt.Errorf("cmorize: configuration variable Obs.Variables is not specified")
	}
	if tablePath != "" {
		if err := cmorize.LoadTable(tablePath); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return fmt.Errorf("cmorize: creating output directory: %v", err)
	}

	src, err := cmorize.NewOceanColor(dataFiles, startDate, endDate, msgChan)
	if err != nil {
		return err
	}

	// Process the variables in a deterministic order.
	shortNames := make([]string, 0, len(variables))
	for shortName := range variables {
		shortNames = append(shortNames, shortName)
	}
	sort.Strings(shortNames)

	for _, shortName := range shortNames {
		v, err := cmorize.GetVariable(variables[shortName], shortName)
		if err != nil {
			return err
		}
		if msgChan != nil {
			msgChan <- fmt.Sprintf("Merging %s records...", shortName)
		}
		d, err := cmorize.Merge(src, shortName, binSize)
		if err != nil {
			return err
		}

		// The merged time series is written out before any of the
		// CMOR corrections are applied so intermediate results can
		// be checked when something goes wrong downstream.
		mergedPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s_merged.nc", attrs.DatasetID, shortName))
		ff, err := os.Create(mergedPath)
		if err != nil {
			return fmt.Errorf("cmorize: writing merged file: %v", err)
		}
		if err := d.Write(ff); err != nil {
			ff.Close()
			return err
		}
		if err := ff.Close(); err != nil {
			return fmt.Errorf("cmorize: closing merged file: %v", err)
		}

		if msgChan != nil {
			msgChan <- fmt.Sprintf("Extracting %s...", shortName)
		}
		if err := cmorize.ExtractVariable(d, v, attrs); err != nil {
			return err
		}
		path, err := cmorize.SaveVariable(d, v, attrs, outputDir)
		if err != nil {
			return err
		}
		if msgChan != nil {
			msgChan <- fmt.Sprintf("Wrote %s", path)
		}

		if !keepMerged {
			if err := os.Remove(mergedPath); err != nil {
				return fmt.Errorf("cmorize: removing merged file: %v", err)
			}
		}
	}
	return nil
}
