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
	"io/ioutil"
	"path/filepath"
	"testing"
)

func TestGetVariable(t *testing.T) {
	v, err := GetVariable("Omon", "chl")
	if err != nil {
		t.Fatal(err)
	}
	if v.Units != "kg m-3" {
		t.Errorf("units: want kg m-3 but have %q", v.Units)
	}
	if !v.AddDepth {
		t.Error("chl should get a scalar depth coordinate")
	}
	if _, err := GetVariable("Omon", "nosuchvar"); err == nil {
		t.Error("an unknown variable should cause an error")
	}
	if _, err := GetVariable("NoSuchMIP", "chl"); err == nil {
		t.Error("an unknown MIP should cause an error")
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.toml")
	table := `
[[variables]]
short_name = "tos"
standard_name = "sea_surface_temperature"
long_name = "Sea Surface Temperature"
units = "K"
mip = "Omon"
`
	if err := ioutil.WriteFile(path, []byte(table), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadTable(path); err != nil {
		t.Fatal(err)
	}
	v, err := GetVariable("Omon", "tos")
	if err != nil {
		t.Fatal(err)
	}
	if v.Units != "K" {
		t.Errorf("units: want K but have %q", v.Units)
	}
	if v.AddDepth {
		t.Error("tos should not get a depth coordinate")
	}
}

func TestLoadTable_invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	table := `
[[variables]]
units = "K"
`
	if err := ioutil.WriteFile(path, []byte(table), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadTable(path); err == nil {
		t.Error("a table entry without a short_name should cause an error")
	}
}
