/*
 * calc.go, part of gopt.
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 * Gopt is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*
Package calc implements energy/gradient calculators: handles that drive
external quantum chemistry programs (xtb, ORCA) plus analytic model
potentials for testing and cheap prototyping.

The external handles write an input file for the program, run it through
the shell, and parse the energy and gradient back from the files the
program leaves behind. They do not attempt to parse anything else from
the outputs. A handle is NOT safe for concurrent use on the same
name/directory, as the programs use fixed file names; use one handle,
with its own name or directory, per concurrent evaluation.
*/
package calc

import (
	"os"
	"strings"
)

//Calc holds the per-calculation options that are common to the external
//programs. Not every field is meaningful for every program; handles
//ignore what they can't use. Note that the default methods vary with
//each program and are NOT considered part of the API, so they can
//change.
type Calc struct {
	Method     string
	Basis      string
	Dielectric float64
	Memory     int //Max memory to be used in MB (the effect depends on the program)
	Others     string //additional keywords, appended verbatim
}

//SetDefaults sets reasonable defaults, which are program-dependent and
//may change between versions.
func (Q *Calc) SetDefaults() {
	if Q.Method == "" {
		Q.Method = "gfn2"
	}
}

//isInString returns true if test is in container, false otherwise.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

//searchBackwards searches a file starting from the end for a string.
//It returns the last line that contains the string, or an empty string.
func searchBackwards(str, filename string) string {
	f, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return ""
	}
	size := info.Size()
	//read backwards in chunks, keeping the tail that may hold a partial line
	const chunk = 4096
	var tail string
	for pos := size; pos > 0; {
		n := int64(chunk)
		if pos < n {
			n = pos
		}
		pos -= n
		buf := make([]byte, n)
		if _, err := f.ReadAt(buf, pos); err != nil {
			return ""
		}
		text := string(buf) + tail
		lines := strings.Split(text, "\n")
		//the first element may be a partial line, keep it for the next chunk
		start := 1
		if pos == 0 {
			start = 0
		}
		for i := len(lines) - 1; i >= start; i-- {
			if strings.Contains(lines[i], str) {
				return lines[i]
			}
		}
		tail = lines[0]
	}
	return ""
}
