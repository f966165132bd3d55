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

// Package cmorizeutil wires the cmorization functionality into a
// configurable command-line interface.
package cmorizeutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/obsmodel/cmorize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to CMORize.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Obs.StartDate",
			usage: `
              Obs.StartDate is the date of the first month of raw data
              to be processed. Format = "YYYYMMDD".`,
			defaultVal: "No Default",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.EndDate",
			usage: `
              Obs.EndDate is the date of the end of the period to be
              processed (exclusive). Format = "YYYYMMDD".`,
			defaultVal: "No Default",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.DataFiles",
			usage: `
              Obs.DataFiles is the location of the raw monthly satellite
              product files. [DATE] should be used as a wild card for the
              date of each file.`,
			defaultVal: "No Default",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.OutputDir",
			usage: `
              Obs.OutputDir is the directory where the CMOR-compliant
              output files should be written.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.BinSize",
			usage: `
              Obs.BinSize is the number of grid cells in each direction to
              average together when reducing the resolution of the raw data.
              It must be an even number; zero disables binning.`,
			defaultVal: 6,
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.Variables",
			usage: `
              Obs.Variables maps the CMOR short names of the variables to
              be processed to the names of the CMOR tables (MIPs) they
              belong to.`,
			defaultVal: map[string]string{"chl": "Omon"},
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.Table",
			usage: `
              Obs.Table is the location of an optional TOML file holding
              CMOR variable table entries that add to or override the
              built-in ones.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.KeepMerged",
			usage: `
              Obs.KeepMerged specifies whether the intermediate merged
              file for each variable should be kept for inspection
              instead of deleted after processing.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.DatasetID",
			usage: `
              Obs.DatasetID is the name of the observational dataset.`,
			defaultVal: "ESACCI-OC",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.Version",
			usage: `
              Obs.Version is the version of the observational dataset.`,
			defaultVal: "fv5.0",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.Tier",
			usage: `
              Obs.Tier is the data access tier of the dataset.`,
			defaultVal: 2,
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.Source",
			usage: `
              Obs.Source says where the raw data can be obtained.`,
			defaultVal: "https://esa-oceancolour-cci.org/",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.Reference",
			usage: `
              Obs.Reference is the citation for the dataset.`,
			defaultVal: "esacci-oc",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.Comment",
			usage: `
              Obs.Comment holds free-form information to be recorded in
              the output files.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Obs.Type",
			usage: `
              Obs.Type is the observation type of the dataset, for
              example "sat" for satellite observations.`,
			defaultVal: "sat",
			flagsets:   []*pflag.FlagSet{obsCmd.Flags()},
		},
		{
			name: "Fix.Project",
			usage: `
              Fix.Project is the project the model output to be fixed
              belongs to (e.g. CMIP5).`,
			defaultVal: "CMIP5",
			flagsets:   []*pflag.FlagSet{fixCmd.Flags()},
		},
		{
			name: "Fix.Model",
			usage: `
              Fix.Model is the name of the model that produced the output
              to be fixed (e.g. FIO-ESM).`,
			defaultVal: "No Default",
			flagsets:   []*pflag.FlagSet{fixCmd.Flags()},
		},
		{
			name: "Fix.InputFile",
			usage: `
              Fix.InputFile is the location of the model output file to
              be fixed.`,
			defaultVal: "No Default",
			flagsets:   []*pflag.FlagSet{fixCmd.Flags()},
		},
		{
			name: "Fix.OutputFile",
			usage: `
              Fix.OutputFile is the location where the fixed file should
              be written. If it is empty, "_fixed" is appended to the
              input file name.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fixCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CMORIZE")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(obsCmd)
	Root.AddCommand(fixCmd)
}

// outChan returns a channel that logs the messages sent to it.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			logrus.Info(<-outChan)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("cmorize: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "cmorize",
	Short: "Convert observational datasets to CMOR-compliant NetCDF files.",
	Long: `CMORize converts raw observational climate datasets into
CMOR-compliant NetCDF files suitable for use in climate model evaluation.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'CMORIZE_var'
where 'var' is the name of the variable to be set. Many configuration
variables are additionally allowed to contain environment variables within
them. Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of CMORize.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("CMORize v%s\n", cmorize.Version)
	},
	DisableAutoGenTag: true,
}

var obsCmd = &cobra.Command{
	Use:   "obs",
	Short: "Cmorize an observational dataset.",
	Long: `obs converts the raw files of an observational satellite dataset
into CMOR-compliant NetCDF files: the monthly records of each requested
variable are merged into a single time series, optionally reduced in
resolution by cell averaging, corrected to the metadata, coordinates, and
units that the CMOR variable table specifies, and written out following the
OBS file name convention.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()
		attrs := cmorize.DatasetAttrs{
			DatasetID: Cfg.GetString("Obs.DatasetID"),
			Version:   Cfg.GetString("Obs.Version"),
			Tier:      Cfg.GetInt("Obs.Tier"),
			Source:    Cfg.GetString("Obs.Source"),
			Reference: Cfg.GetString("Obs.Reference"),
			Comment:   Cfg.GetString("Obs.Comment"),
			Type:      Cfg.GetString("Obs.Type"),
		}
		return Obs(
			Cfg.GetString("Obs.StartDate"),
			Cfg.GetString("Obs.EndDate"),
			os.ExpandEnv(Cfg.GetString("Obs.DataFiles")),
			os.ExpandEnv(Cfg.GetString("Obs.OutputDir")),
			os.ExpandEnv(Cfg.GetString("Obs.Table")),
			Cfg.GetInt("Obs.BinSize"),
			GetStringMapString("Obs.Variables", Cfg),
			attrs,
			Cfg.GetBool("Obs.KeepMerged"),
			outChan,
		)
	},
	DisableAutoGenTag: true,
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply model fixes to a model output file.",
	Long: `fix applies the corrections registered for a climate model to one
of the model's output files. Corrections exist for known problems in the
published output of specific models, for example unit errors or nonstandard
coordinate values, and are registered by project, model, and variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()
		return FixFile(
			Cfg.GetString("Fix.Project"),
			Cfg.GetString("Fix.Model"),
			os.ExpandEnv(Cfg.GetString("Fix.InputFile")),
			os.ExpandEnv(Cfg.GetString("Fix.OutputFile")),
			outChan,
		)
	},
	DisableAutoGenTag: true,
}
