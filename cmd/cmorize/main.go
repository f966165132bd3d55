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

// Command cmorize is a command-line interface for converting
// observational climate datasets to CMOR-compliant NetCDF files.
package main

import (
	"fmt"
	"os"

	"github.com/obsmodel/cmorize/cmorizeutil"
)

func main() {
	if err := cmorizeutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
